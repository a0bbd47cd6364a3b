package inventory

import (
	"context"
	"errors"

	"zinc-warehouse/internal/lock"
	"zinc-warehouse/internal/metrics"
	"zinc-warehouse/internal/models"
	"zinc-warehouse/internal/stock"
	"zinc-warehouse/internal/store"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const kindOutbound = "gi_outbound"

var errStockBusy = fiber.NewError(fiber.StatusServiceUnavailable, "库存正在被其他操作占用，请稍后重试")

// CreateOutbound stores a new outbound record if the remaining stock of its
// zinc type covers both its quantity and weight. The stock read and the
// insert run in one transaction behind the zinc type's guard row.
func CreateOutbound(ctx context.Context, db *gorm.DB, locker lock.Locker, p store.Patch) (*models.GiOutbound, error) {
	m, err := p.NewMovement()
	if err != nil {
		return nil, err
	}

	release, err := locker.Acquire(ctx, m.ZincType)
	if err != nil {
		return nil, errStockBusy
	}
	defer release()

	rec := models.GiOutbound{ZincMovement: m}
	err = store.Transact(ctx, db, func(tx *gorm.DB) error {
		if err := stock.Guard(tx, m.ZincType); err != nil {
			return err
		}
		if err := stock.ValidateOutbound(tx, m.ZincType, m.Quantity, m.Weight, 0); err != nil {
			return err
		}
		return tx.Create(&rec).Error
	})
	if err != nil {
		countRejection(err)
		return nil, err
	}
	return &rec, nil
}

// UpdateOutbound merges p into the record and re-validates the result against
// the stock that remains without the record's current amounts.
func UpdateOutbound(ctx context.Context, db *gorm.DB, locker lock.Locker, id uint, p store.Patch) (*models.GiOutbound, error) {
	if err := p.CheckText(); err != nil {
		return nil, err
	}

	zincType, err := targetZincType(ctx, db, id, p)
	if err != nil {
		return nil, err
	}
	release, err := locker.Acquire(ctx, zincType)
	if err != nil {
		return nil, errStockBusy
	}
	defer release()

	var rec *models.GiOutbound
	err = store.Transact(ctx, db, func(tx *gorm.DB) error {
		var err error
		rec, err = store.GetForUpdate[models.GiOutbound](tx, id)
		if err != nil {
			return err
		}
		p.ApplyMovement(&rec.ZincMovement)
		if err := stock.Guard(tx, rec.ZincType); err != nil {
			return err
		}
		if err := stock.ValidateOutbound(tx, rec.ZincType, rec.Quantity, rec.Weight, rec.ID); err != nil {
			return err
		}
		return tx.Save(rec).Error
	})
	if err != nil {
		countRejection(err)
		return nil, err
	}
	return rec, nil
}

// targetZincType is the type the record will have after p is applied.
func targetZincType(ctx context.Context, db *gorm.DB, id uint, p store.Patch) (string, error) {
	if p.ZincType != nil {
		return *p.ZincType, nil
	}
	rec, err := store.Get[models.GiOutbound](db.WithContext(ctx), id)
	if err != nil {
		return "", err
	}
	return rec.ZincType, nil
}

func countRejection(err error) {
	var ise *stock.InsufficientStockError
	if errors.As(err, &ise) {
		metrics.OutboundRejected(ise.ZincType, string(ise.Dimension))
	}
}

// GET /api/gi-outbound
func ListOutboundHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		recs, err := store.List[models.GiOutbound](db.WithContext(c.UserContext()))
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

// GET /api/gi-outbound/:id
func GetOutboundHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		rec, err := store.Get[models.GiOutbound](db.WithContext(c.UserContext()), id)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "data": movementResponse(rec.ZincMovement)})
	}
}

// POST /api/gi-outbound
func CreateOutboundHandler(db *gorm.DB, locker lock.Locker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := parseRecordBody(c)
		if err != nil {
			return err
		}
		rec, err := CreateOutbound(c.UserContext(), db, locker, p)
		if err != nil {
			return err
		}
		metrics.RecordWritten(kindOutbound, "create")
		return c.JSON(fiber.Map{"success": true, "data": movementResponse(rec.ZincMovement)})
	}
}

// PUT /api/gi-outbound/:id
func UpdateOutboundHandler(db *gorm.DB, locker lock.Locker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		p, err := parseRecordBody(c)
		if err != nil {
			return err
		}
		rec, err := UpdateOutbound(c.UserContext(), db, locker, id, p)
		if err != nil {
			return err
		}
		metrics.RecordWritten(kindOutbound, "update")
		return c.JSON(fiber.Map{"success": true, "data": movementResponse(rec.ZincMovement)})
	}
}

// DELETE /api/gi-outbound/:id
func DeleteOutboundHandler(db *gorm.DB) fiber.Handler {
	return deleteHandler[models.GiOutbound](db, kindOutbound)
}

// POST /api/gi-outbound/batch-delete
func BatchDeleteOutboundHandler(db *gorm.DB) fiber.Handler {
	return batchDeleteHandler[models.GiOutbound](db, kindOutbound)
}
