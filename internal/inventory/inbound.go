package inventory

import (
	"context"
	"fmt"

	"zinc-warehouse/internal/metrics"
	"zinc-warehouse/internal/models"
	"zinc-warehouse/internal/store"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const kindInbound = "gi_inbound"

func CreateInbound(ctx context.Context, db *gorm.DB, p store.Patch) (*models.GiInbound, error) {
	m, err := p.NewMovement()
	if err != nil {
		return nil, err
	}
	rec := models.GiInbound{ZincMovement: m}
	err = store.Transact(ctx, db, func(tx *gorm.DB) error {
		return tx.Create(&rec).Error
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateInbound applies p to the record. Inbound edits are not checked
// against outbound stock.
func UpdateInbound(ctx context.Context, db *gorm.DB, id uint, p store.Patch) (*models.GiInbound, error) {
	if err := p.CheckText(); err != nil {
		return nil, err
	}
	var rec *models.GiInbound
	err := store.Transact(ctx, db, func(tx *gorm.DB) error {
		var err error
		rec, err = store.GetForUpdate[models.GiInbound](tx, id)
		if err != nil {
			return err
		}
		p.ApplyMovement(&rec.ZincMovement)
		return tx.Save(rec).Error
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// GET /api/gi-inbound
func ListInboundHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		recs, err := store.List[models.GiInbound](db.WithContext(c.UserContext()))
		if err != nil {
			return err
		}
		resp := make([]RecordResponse, 0, len(recs))
		for _, r := range recs {
			resp = append(resp, movementResponse(r.ZincMovement))
		}
		return c.JSON(fiber.Map{"success": true, "data": resp})
	}
}

// GET /api/gi-inbound/:id
func GetInboundHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		rec, err := store.Get[models.GiInbound](db.WithContext(c.UserContext()), id)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "data": movementResponse(rec.ZincMovement)})
	}
}

// POST /api/gi-inbound
func CreateInboundHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := parseRecordBody(c)
		if err != nil {
			return err
		}
		rec, err := CreateInbound(c.UserContext(), db, p)
		if err != nil {
			return err
		}
		metrics.RecordWritten(kindInbound, "create")
		return c.JSON(fiber.Map{"success": true, "data": movementResponse(rec.ZincMovement)})
	}
}

// PUT /api/gi-inbound/:id
func UpdateInboundHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		p, err := parseRecordBody(c)
		if err != nil {
			return err
		}
		rec, err := UpdateInbound(c.UserContext(), db, id, p)
		if err != nil {
			return err
		}
		metrics.RecordWritten(kindInbound, "update")
		return c.JSON(fiber.Map{"success": true, "data": movementResponse(rec.ZincMovement)})
	}
}

// DELETE /api/gi-inbound/:id
func DeleteInboundHandler(db *gorm.DB) fiber.Handler {
	return deleteHandler[models.GiInbound](db, kindInbound)
}

// POST /api/gi-inbound/batch-delete
func BatchDeleteInboundHandler(db *gorm.DB) fiber.Handler {
	return batchDeleteHandler[models.GiInbound](db, kindInbound)
}

func deleteHandler[T any](db *gorm.DB, kind string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		err = store.Transact(c.UserContext(), db, func(tx *gorm.DB) error {
			return store.Delete[T](tx, id)
		})
		if err != nil {
			return err
		}
		metrics.RecordWritten(kind, "delete")
		return c.JSON(fiber.Map{"success": true, "message": "删除成功"})
	}
}

func batchDeleteHandler[T any](db *gorm.DB, kind string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ids, err := parseBatchDelete(c)
		if err != nil {
			return err
		}
		var n int64
		err = store.Transact(c.UserContext(), db, func(tx *gorm.DB) error {
			var derr error
			n, derr = store.DeleteMany[T](tx, ids)
			return derr
		})
		if err != nil {
			return err
		}
		metrics.RecordsDeleted(kind, n)
		return c.JSON(fiber.Map{
			"success": true,
			"message": fmt.Sprintf("成功删除%d条记录", n),
			"data":    fiber.Map{"deleted": n},
		})
	}
}
