// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/smart-stationery/backend/models"
)

// SequenceRepositoryImpl implements SequenceRepository on the
// sequence_counters table. Allocation is a single atomic upsert-and-increment
// statement, never a read followed by a write: two concurrent allocations for
// the same name can therefore never observe the same value.
type SequenceRepositoryImpl struct {
	DB *gorm.DB
}

// NewSequenceRepository creates a new sequence repository
func NewSequenceRepository(db *gorm.DB) SequenceRepository {
	return &SequenceRepositoryImpl{DB: db}
}

func (r *SequenceRepositoryImpl) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.DB
}

// Allocate atomically increments the named counter and returns the new value.
// The counter row is created on first use. Every successful call returns a
// value no other call for the same name has returned or ever will.
func (r *SequenceRepositoryImpl) Allocate(ctx context.Context, name string) (int64, error) {
	db := r.getDB(ctx)

	var value int64
	err := db.Raw(`
		INSERT INTO sequence_counters (name, last_value, created_at, updated_at)
		VALUES (?, 1, CURRENT_TIMESTAMP AT TIME ZONE 'UTC', CURRENT_TIMESTAMP AT TIME ZONE 'UTC')
		ON CONFLICT (name) DO UPDATE
		SET last_value = sequence_counters.last_value + 1,
		    updated_at = CURRENT_TIMESTAMP AT TIME ZONE 'UTC'
		RETURNING last_value`, name).Scan(&value).Error
	if err != nil {
		return 0, fmt.Errorf("failed to allocate sequence %s: %w", name, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("sequence %s returned non-positive value %d", name, value)
	}

	return value, nil
}

// Current returns the last value the named counter handed out, zero if the
// counter has never allocated.
func (r *SequenceRepositoryImpl) Current(ctx context.Context, name string) (int64, error) {
	db := r.getDB(ctx)

	var counter models.SequenceCounter
	err := db.Where("name = ?", name).Last(&counter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read sequence %s: %w", name, err)
	}

	return counter.LastValue, nil
}

// Reset sets the named counter directly. Administrative operation for the
// offline rewriter only; calling it while allocations for the same name are
// in flight hands out duplicate ids.
func (r *SequenceRepositoryImpl) Reset(ctx context.Context, name string, value int64) error {
	db := r.getDB(ctx)

	err := db.Exec(`
		INSERT INTO sequence_counters (name, last_value, created_at, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP AT TIME ZONE 'UTC', CURRENT_TIMESTAMP AT TIME ZONE 'UTC')
		ON CONFLICT (name) DO UPDATE
		SET last_value = EXCLUDED.last_value,
		    updated_at = CURRENT_TIMESTAMP AT TIME ZONE 'UTC'`, name, value).Error
	if err != nil {
		return fmt.Errorf("failed to reset sequence %s: %w", name, err)
	}

	return nil
}
