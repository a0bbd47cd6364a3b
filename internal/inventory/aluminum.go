package inventory

import (
	"context"

	"zinc-warehouse/internal/metrics"
	"zinc-warehouse/internal/models"
	"zinc-warehouse/internal/store"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const kindAluminum = "aluminum_zinc"

// Aluminum-zinc records are bookkeeping only; they never enter stock figures.

func CreateAluminum(ctx context.Context, db *gorm.DB, p store.Patch) (*models.AluminumZinc, error) {
	rec, err := p.NewAluminum()
	if err != nil {
		return nil, err
	}
	err = store.Transact(ctx, db, func(tx *gorm.DB) error {
		return tx.Create(&rec).Error
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func UpdateAluminum(ctx context.Context, db *gorm.DB, id uint, p store.Patch) (*models.AluminumZinc, error) {
	if err := p.CheckText(); err != nil {
		return nil, err
	}
	var rec *models.AluminumZinc
	err := store.Transact(ctx, db, func(tx *gorm.DB) error {
		var err error
		rec, err = store.GetForUpdate[models.AluminumZinc](tx, id)
		if err != nil {
			return err
		}
		p.ApplyAluminum(rec)
		return tx.Save(rec).Error
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// GET /api/aluminum
func ListAluminumHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		recs, err := store.List[models.AluminumZinc](db.WithContext(c.UserContext()))
		if err != nil {
			return err
		}
		resp := make([]RecordResponse, 0, len(recs))
		for _, r := range recs {
			resp = append(resp, aluminumResponse(r))
		}
		return c.JSON(fiber.Map{"success": true, "data": resp})
	}
}

// GET /api/aluminum/:id
func GetAluminumHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		rec, err := store.Get[models.AluminumZinc](db.WithContext(c.UserContext()), id)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "data": aluminumResponse(*rec)})
	}
}

// POST /api/aluminum
func CreateAluminumHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := parseRecordBody(c)
		if err != nil {
			return err
		}
		rec, err := CreateAluminum(c.UserContext(), db, p)
		if err != nil {
			return err
		}
		metrics.RecordWritten(kindAluminum, "create")
		return c.JSON(fiber.Map{"success": true, "data": aluminumResponse(*rec)})
	}
}

// PUT /api/aluminum/:id
func UpdateAluminumHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		p, err := parseRecordBody(c)
		if err != nil {
			return err
		}
		rec, err := UpdateAluminum(c.UserContext(), db, id, p)
		if err != nil {
			return err
		}
		metrics.RecordWritten(kindAluminum, "update")
		return c.JSON(fiber.Map{"success": true, "data": aluminumResponse(*rec)})
	}
}

// DELETE /api/aluminum/:id
func DeleteAluminumHandler(db *gorm.DB) fiber.Handler {
	return deleteHandler[models.AluminumZinc](db, kindAluminum)
}

// POST /api/aluminum/batch-delete
func BatchDeleteAluminumHandler(db *gorm.DB) fiber.Handler {
	return batchDeleteHandler[models.AluminumZinc](db, kindAluminum)
}
