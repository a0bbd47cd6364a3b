package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"zinc-warehouse/internal/database/dbtest"
	"zinc-warehouse/internal/lock"
	"zinc-warehouse/internal/models"
	"zinc-warehouse/internal/stock"
	"zinc-warehouse/internal/store"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func patch(zincType string, qty int64, weight string) store.Patch {
	w := decimal.RequireFromString(weight)
	return store.Patch{ZincType: &zincType, Quantity: &qty, Weight: &w}
}

func countOutbound(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.GiOutbound{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func remaining(t *testing.T, db *gorm.DB, zincType string) stock.Snapshot {
	t.Helper()
	s, err := stock.Compute(db, zincType, 0)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	return s
}

func TestOutboundWarehouseScenario(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	t1 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	first := patch("A", 100, "500.0")
	first.Date = &t1
	second := patch("A", 50, "250.0")
	second.Date = &t2
	for _, p := range []store.Patch{first, second} {
		if _, err := CreateInbound(ctx, db, p); err != nil {
			t.Fatalf("inbound: %v", err)
		}
	}

	if _, err := CreateOutbound(ctx, db, lock.Noop(), patch("A", 120, "600.0")); err != nil {
		t.Fatalf("outbound within stock should pass: %v", err)
	}
	s := remaining(t, db, "A")
	if s.RemainingQuantity != 30 || !s.RemainingWeight.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("expected 30 / 150.0 remaining, got %d / %s", s.RemainingQuantity, s.RemainingWeight)
	}

	_, err := CreateOutbound(ctx, db, lock.Noop(), patch("A", 40, "10"))
	var ise *stock.InsufficientStockError
	if !errors.As(err, &ise) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if ise.Dimension != stock.DimensionQuantity || !ise.Available.Equal(decimal.NewFromInt(30)) || !ise.Requested.Equal(decimal.NewFromInt(40)) {
		t.Errorf("unexpected rejection %+v", ise)
	}
	if n := countOutbound(t, db); n != 1 {
		t.Errorf("rejected outbound must not be stored, have %d records", n)
	}
}

func TestOutboundRejectedOnWeight(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	if _, err := CreateInbound(ctx, db, patch("B", 10, "100")); err != nil {
		t.Fatalf("inbound: %v", err)
	}

	_, err := CreateOutbound(ctx, db, lock.Noop(), patch("B", 10, "100.001"))
	var ise *stock.InsufficientStockError
	if !errors.As(err, &ise) || ise.Dimension != stock.DimensionWeight {
		t.Fatalf("expected weight rejection, got %v", err)
	}
	if n := countOutbound(t, db); n != 0 {
		t.Errorf("expected no outbound records, got %d", n)
	}
}

func TestOutboundRequiresZincType(t *testing.T) {
	db := dbtest.Open(t)
	q := int64(1)
	_, err := CreateOutbound(context.Background(), db, lock.Noop(), store.Patch{Quantity: &q})
	var ve *store.ValidationError
	if !errors.As(err, &ve) || ve.Field != "ZincType" {
		t.Fatalf("expected ZincType validation error, got %v", err)
	}
}

func TestUpdateOutboundExcludesItself(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	if _, err := CreateInbound(ctx, db, patch("A", 100, "500")); err != nil {
		t.Fatalf("inbound: %v", err)
	}
	rec, err := CreateOutbound(ctx, db, lock.Noop(), patch("A", 100, "500"))
	if err != nil {
		t.Fatalf("outbound: %v", err)
	}

	// Re-saving the record's own amounts uses the stock it already holds.
	note := "复核"
	if _, err := UpdateOutbound(ctx, db, lock.Noop(), rec.ID, store.Patch{FieldE: &note}); err != nil {
		t.Fatalf("update with unchanged amounts: %v", err)
	}

	more := int64(101)
	_, err = UpdateOutbound(ctx, db, lock.Noop(), rec.ID, store.Patch{Quantity: &more})
	var ise *stock.InsufficientStockError
	if !errors.As(err, &ise) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if !ise.Available.Equal(decimal.NewFromInt(100)) {
		t.Errorf("available should exclude the record itself, got %s", ise.Available)
	}

	got, err := store.Get[models.GiOutbound](db, rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Quantity != 100 || got.FieldE != note {
		t.Errorf("rejected update must leave the record unchanged, got %+v", got.ZincMovement)
	}
}

func TestUpdateOutboundChangesType(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	if _, err := CreateInbound(ctx, db, patch("A", 10, "10")); err != nil {
		t.Fatalf("inbound: %v", err)
	}
	rec, err := CreateOutbound(ctx, db, lock.Noop(), patch("A", 5, "5"))
	if err != nil {
		t.Fatalf("outbound: %v", err)
	}

	c := "C"
	_, err = UpdateOutbound(ctx, db, lock.Noop(), rec.ID, store.Patch{ZincType: &c})
	var ise *stock.InsufficientStockError
	if !errors.As(err, &ise) || ise.ZincType != "C" {
		t.Fatalf("moving to a type without stock should fail, got %v", err)
	}
}

func TestUpdateOutboundNotFound(t *testing.T) {
	db := dbtest.Open(t)
	q := int64(1)
	_, err := UpdateOutbound(context.Background(), db, lock.Noop(), 42, store.Patch{Quantity: &q})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// The SQLite database has a single connection, so its transactions already
// run one at a time and this only checks the accounting. The Postgres
// variant below runs the writers on separate connections, where only the
// guard row keeps them from reading the same remaining stock.
func TestConcurrentOutboundNeverOverdraws(t *testing.T) {
	concurrentOutbound(t, dbtest.Open(t))
}

func TestConcurrentOutboundNeverOverdrawsPostgres(t *testing.T) {
	concurrentOutbound(t, dbtest.OpenPostgres(t))
}

func concurrentOutbound(t *testing.T, db *gorm.DB) {
	t.Helper()
	ctx := context.Background()
	if _, err := CreateInbound(ctx, db, patch("D", 100, "1000")); err != nil {
		t.Fatalf("inbound: %v", err)
	}

	const writers = 20
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		start    = make(chan struct{})
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := CreateOutbound(ctx, db, lock.Noop(), patch("D", 10, "100"))
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
				return
			}
			var ise *stock.InsufficientStockError
			if !errors.As(err, &ise) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if accepted != 10 {
		t.Errorf("expected exactly 10 accepted writes, got %d", accepted)
	}
	s := remaining(t, db, "D")
	if s.RemainingQuantity != 0 || !s.RemainingWeight.IsZero() {
		t.Errorf("expected empty stock, got %d / %s", s.RemainingQuantity, s.RemainingWeight)
	}
}

func TestInboundPartialUpdate(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	p := patch("A", 10, "20.5")
	team := "乙"
	p.Team = &team
	rec, err := CreateInbound(ctx, db, p)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	q := int64(12)
	got, err := UpdateInbound(ctx, db, rec.ID, store.Patch{Quantity: &q})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Quantity != 12 || got.Team != team || got.ZincType != "A" || !got.Weight.Equal(decimal.RequireFromString("20.5")) {
		t.Errorf("absent fields must be untouched, got %+v", got.ZincMovement)
	}
}

func TestAluminumIgnoresZincType(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	rec, err := CreateAluminum(ctx, db, patch("A", 3, "7.25"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Quantity != 3 {
		t.Errorf("unexpected record %+v", rec)
	}
	if resp := aluminumResponse(*rec); resp.ZincType != "" || resp.Weight != "7.25" {
		t.Errorf("unexpected response %+v", resp)
	}

	// Aluminum-zinc consumption does not touch zinc stock.
	if s := remaining(t, db, "A"); s.InboundQuantity != 0 {
		t.Errorf("aluminum record leaked into stock: %+v", s)
	}
}
