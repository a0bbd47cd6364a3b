package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AluminumZinc: high-aluminum zinc consumption. Not tied to GI stock.
type AluminumZinc struct {
	ID        uint            `gorm:"primaryKey"`
	Team      string          `gorm:"size:10;not null"`
	Quantity  int64           `gorm:"not null"`
	Weight    decimal.Decimal `gorm:"type:numeric(14,3);not null"`
	Date      *time.Time      `gorm:"index"`
	FieldE    string          `gorm:"size:100"`
	FieldF    string          `gorm:"size:100"`
	FieldG    string          `gorm:"size:100"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
