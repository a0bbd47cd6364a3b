package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Column limits shared by the record tables.
const (
	TeamSize     = 10
	ZincTypeSize = 10
	NoteSize     = 100

	// Weight columns are numeric(WeightPrecision, WeightScale).
	WeightPrecision = 14
	WeightScale     = 3
)

// ZincMovement holds the columns shared by GI inbound and outbound records.
type ZincMovement struct {
	ID        uint            `gorm:"primaryKey"`
	Team      string          `gorm:"size:10;not null"`       // shift team
	ZincType  string          `gorm:"size:10;not null;index"` // ingot grade, compared verbatim
	Quantity  int64           `gorm:"not null"`
	Weight    decimal.Decimal `gorm:"type:numeric(14,3);not null"` // KG
	Date      *time.Time      `gorm:"index"`                       // business time, nil when not given
	FieldE    string          `gorm:"size:100"`
	FieldF    string          `gorm:"size:100"`
	FieldG    string          `gorm:"size:100"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GiInbound: ingots received into the warehouse.
type GiInbound struct {
	ZincMovement
}

// GiOutbound: ingots taken out of the warehouse. Writes go through the stock check.
type GiOutbound struct {
	ZincMovement
}
