package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"zinc-warehouse/internal/database/dbtest"
	"zinc-warehouse/internal/models"
	"zinc-warehouse/internal/store"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func at(s string) *time.Time {
	t, err := store.ParseTimestamp(s)
	if err != nil {
		panic(err)
	}
	return &t
}

func seedInbound(t *testing.T, db *gorm.DB, zincType string, qty int64, date *time.Time) models.GiInbound {
	t.Helper()
	rec := models.GiInbound{ZincMovement: models.ZincMovement{
		Team:     "甲",
		ZincType: zincType,
		Quantity: qty,
		Weight:   decimal.NewFromInt(qty * 5),
		Date:     date,
	}}
	if err := db.Create(&rec).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	return rec
}

func TestListOrdersByBusinessTime(t *testing.T) {
	db := dbtest.Open(t)

	late := seedInbound(t, db, "A", 1, at("2024-05-02T08:00"))
	undated := seedInbound(t, db, "A", 2, nil)
	early := seedInbound(t, db, "A", 3, at("2024-05-01T08:00"))

	recs, err := store.List[models.GiInbound](db)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	want := []uint{early.ID, late.ID, undated.ID}
	if len(recs) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(recs))
	}
	for i, id := range want {
		if recs[i].ID != id {
			t.Errorf("position %d: expected id %d, got %d", i, id, recs[i].ID)
		}
	}
}

func TestGetNotFound(t *testing.T) {
	db := dbtest.Open(t)

	_, err := store.Get[models.GiOutbound](db, 42)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteMissingLeavesStoreUnchanged(t *testing.T) {
	db := dbtest.Open(t)
	seedInbound(t, db, "A", 10, nil)

	err := store.Delete[models.GiInbound](db, 999)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	var count int64
	db.Model(&models.GiInbound{}).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 record left, got %d", count)
	}
}

func TestDeleteManyIsAtomicAndCounts(t *testing.T) {
	db := dbtest.Open(t)
	a := seedInbound(t, db, "A", 1, nil)
	b := seedInbound(t, db, "B", 1, nil)
	keep := seedInbound(t, db, "C", 1, nil)

	var n int64
	err := store.Transact(context.Background(), db, func(tx *gorm.DB) error {
		var err error
		n, err = store.DeleteMany[models.GiInbound](tx, []uint{a.ID, b.ID, 12345})
		return err
	})
	if err != nil {
		t.Fatalf("delete many: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 deleted, got %d", n)
	}

	recs, _ := store.List[models.GiInbound](db)
	if len(recs) != 1 || recs[0].ID != keep.ID {
		t.Errorf("unexpected survivors: %+v", recs)
	}

	n, err = store.DeleteMany[models.GiInbound](db, nil)
	if err != nil || n != 0 {
		t.Errorf("empty id list: n=%d err=%v", n, err)
	}
}

func TestTransactRollsBackOnError(t *testing.T) {
	db := dbtest.Open(t)
	boom := errors.New("boom")

	err := store.Transact(context.Background(), db, func(tx *gorm.DB) error {
		rec := models.GiInbound{ZincMovement: models.ZincMovement{ZincType: "A", Quantity: 1, Weight: decimal.NewFromInt(1)}}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	var count int64
	db.Model(&models.GiInbound{}).Count(&count)
	if count != 0 {
		t.Errorf("expected rollback, found %d records", count)
	}
}
