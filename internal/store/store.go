// Package store is the record store: one GORM table per record kind, every
// write executed inside an explicit transaction handed in by the caller.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("record not found")

// ValidationError reports a missing or malformed field. It is returned
// before anything is written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// Transact runs fn as one unit of work. fn must use the tx it is given for
// every read and write; the transaction commits when fn returns nil.
func Transact(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}

func Get[T any](tx *gorm.DB, id uint) (*T, error) {
	var rec T
	if err := tx.First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// GetForUpdate is Get with a row lock held until tx ends, where the database
// supports one.
func GetForUpdate[T any](tx *gorm.DB, id uint) (*T, error) {
	return Get[T](tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

// List returns every record of T by business time ascending. Records without
// a time come last; equal times keep insertion order.
func List[T any](tx *gorm.DB) ([]T, error) {
	var recs []T
	err := tx.
		Order("date IS NULL").
		Order("date ASC").
		Order("id ASC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func Delete[T any](tx *gorm.DB, id uint) error {
	res := tx.Delete(new(T), id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMany removes all records whose id is in ids with a single statement
// and returns how many rows went away. Unknown ids are ignored.
func DeleteMany[T any](tx *gorm.DB, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := tx.Where("id IN ?", ids).Delete(new(T))
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
