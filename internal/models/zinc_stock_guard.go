package models

import "time"

// ZincStockGuard is bumped by every outbound write of its zinc type. The row
// lock taken by the bump queues concurrent writers of the same type; it holds
// no stock figures.
type ZincStockGuard struct {
	ZincType  string `gorm:"primaryKey;size:10"`
	Version   int64  `gorm:"not null;default:0"`
	UpdatedAt time.Time
}
