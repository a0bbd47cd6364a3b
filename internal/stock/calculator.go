// Package stock derives remaining GI zinc stock from the inbound and outbound
// tables and guards outbound writes against overdrawing it.
package stock

import (
	"zinc-warehouse/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TotalKey is the entry of the all-types view that sums the fixed set.
const TotalKey = "total"

// weightPlaces matches the numeric(14,3) weight columns.
const weightPlaces = 3

type Sums struct {
	Quantity int64
	Weight   decimal.Decimal
}

type Snapshot struct {
	ZincType          string
	InboundQuantity   int64
	InboundWeight     decimal.Decimal
	OutboundQuantity  int64
	OutboundWeight    decimal.Decimal
	RemainingQuantity int64
	RemainingWeight   decimal.Decimal
}

// NewSnapshot derives the remaining figures. Negative results are kept as is.
func NewSnapshot(zincType string, in, out Sums) Snapshot {
	return Snapshot{
		ZincType:          zincType,
		InboundQuantity:   in.Quantity,
		InboundWeight:     in.Weight,
		OutboundQuantity:  out.Quantity,
		OutboundWeight:    out.Weight,
		RemainingQuantity: in.Quantity - out.Quantity,
		RemainingWeight:   in.Weight.Sub(out.Weight),
	}
}

// Total adds every field of snaps into one snapshot keyed TotalKey.
func Total(snaps []Snapshot) Snapshot {
	t := Snapshot{
		ZincType:        TotalKey,
		InboundWeight:   decimal.Zero,
		OutboundWeight:  decimal.Zero,
		RemainingWeight: decimal.Zero,
	}
	for _, s := range snaps {
		t.InboundQuantity += s.InboundQuantity
		t.InboundWeight = t.InboundWeight.Add(s.InboundWeight)
		t.OutboundQuantity += s.OutboundQuantity
		t.OutboundWeight = t.OutboundWeight.Add(s.OutboundWeight)
		t.RemainingQuantity += s.RemainingQuantity
		t.RemainingWeight = t.RemainingWeight.Add(s.RemainingWeight)
	}
	return t
}

// Compute sums inbound and outbound records of zincType. The outbound record
// with id excludeOutboundID is left out of the sums; 0 excludes nothing.
func Compute(tx *gorm.DB, zincType string, excludeOutboundID uint) (Snapshot, error) {
	in, err := sum(tx.Model(&models.GiInbound{}).Where("zinc_type = ?", zincType))
	if err != nil {
		return Snapshot{}, err
	}

	q := tx.Model(&models.GiOutbound{}).Where("zinc_type = ?", zincType)
	if excludeOutboundID != 0 {
		q = q.Where("id <> ?", excludeOutboundID)
	}
	out, err := sum(q)
	if err != nil {
		return Snapshot{}, err
	}

	return NewSnapshot(zincType, in, out), nil
}

// ComputeAll returns one snapshot per entry of zincTypes plus TotalKey.
// Types outside the list are not part of the result or of the total.
func ComputeAll(tx *gorm.DB, zincTypes []string) (map[string]Snapshot, error) {
	result := make(map[string]Snapshot, len(zincTypes)+1)
	snaps := make([]Snapshot, 0, len(zincTypes))
	for _, t := range zincTypes {
		s, err := Compute(tx, t, 0)
		if err != nil {
			return nil, err
		}
		result[t] = s
		snaps = append(snaps, s)
	}
	result[TotalKey] = Total(snaps)
	return result, nil
}

func sum(q *gorm.DB) (Sums, error) {
	var s Sums
	err := q.
		Select("COALESCE(SUM(quantity), 0) AS quantity, COALESCE(SUM(weight), 0) AS weight").
		Scan(&s).Error
	if err != nil {
		return Sums{}, err
	}
	s.Weight = s.Weight.Round(weightPlaces)
	return s, nil
}
