package stock

import (
	"fmt"
	"strings"

	"zinc-warehouse/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Dimension string

const (
	DimensionQuantity Dimension = "quantity"
	DimensionWeight   Dimension = "weight"
)

// InsufficientStockError rejects an outbound write. Available and Requested
// are in the unit of Dimension (pieces or KG).
type InsufficientStockError struct {
	ZincType  string
	Dimension Dimension
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	if e.Dimension == DimensionQuantity {
		return fmt.Sprintf("出库失败，库存不足！锌锭种类 %s 的剩余数量为 %s 个，您尝试出库 %s 个。",
			e.ZincType, e.Available, e.Requested)
	}
	return fmt.Sprintf("出库失败，库存不足！锌锭种类 %s 的剩余重量为 %s KG，您尝试出库 %s KG。",
		e.ZincType, FormatWeight(e.Available), FormatWeight(e.Requested))
}

// FormatWeight renders a weight in KG that always shows a decimal point
// ("150.0"), the form the front-end displays.
func FormatWeight(w decimal.Decimal) string {
	s := w.String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Detail is the language-neutral form of the rejection for API clients.
func (e *InsufficientStockError) Detail() map[string]any {
	return map[string]any{
		"zincType":  e.ZincType,
		"dimension": e.Dimension,
		"available": e.Available.InexactFloat64(),
		"requested": e.Requested.InexactFloat64(),
	}
}

// Check compares a request against the baseline snapshot. Quantity is checked
// first; weight is only looked at when quantity fits.
func Check(base Snapshot, quantity int64, weight decimal.Decimal) error {
	if quantity > base.RemainingQuantity {
		return &InsufficientStockError{
			ZincType:  base.ZincType,
			Dimension: DimensionQuantity,
			Available: decimal.NewFromInt(base.RemainingQuantity),
			Requested: decimal.NewFromInt(quantity),
		}
	}
	if weight.GreaterThan(base.RemainingWeight) {
		return &InsufficientStockError{
			ZincType:  base.ZincType,
			Dimension: DimensionWeight,
			Available: base.RemainingWeight,
			Requested: weight,
		}
	}
	return nil
}

// ValidateOutbound checks a request for zincType against the stock that would
// remain without the outbound record excludeOutboundID (0 for a create).
func ValidateOutbound(tx *gorm.DB, zincType string, quantity int64, weight decimal.Decimal, excludeOutboundID uint) error {
	base, err := Compute(tx, zincType, excludeOutboundID)
	if err != nil {
		return err
	}
	return Check(base, quantity, weight)
}

// Guard bumps the zinc type's guard row inside tx. Until tx ends, other
// outbound writers of the same type block on the row, so their stock reads
// see this write once they proceed.
func Guard(tx *gorm.DB, zincType string) error {
	g := models.ZincStockGuard{ZincType: zincType, Version: 1}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "zinc_type"}},
		DoUpdates: clause.Assignments(map[string]any{
			"version":    gorm.Expr("zinc_stock_guards.version + 1"),
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&g).Error
}
