// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smart-stationery/backend/models"
)

// BaseRepository provides common repository functionality with transaction support.
// Concrete repositories supply their filter translation via applyFilter.
type BaseRepository[T any, F any] struct {
	DB          *gorm.DB
	applyFilter func(db *gorm.DB, filter F) *gorm.DB
}

// NewBaseRepository creates a new base repository instance
func NewBaseRepository[T any, F any](db *gorm.DB, applyFilter func(db *gorm.DB, filter F) *gorm.DB) *BaseRepository[T, F] {
	return &BaseRepository[T, F]{
		DB:          db,
		applyFilter: applyFilter,
	}
}

// getDB returns the appropriate database connection (with or without transaction)
func (r *BaseRepository[T, F]) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.DB
}

// getDBForWrite returns database connection with transaction for write operations
func (r *BaseRepository[T, F]) getDBForWrite(ctx context.Context) (*gorm.DB, bool, error) {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return tx, false, nil // Transaction already exists, don't commit
	}

	// Start new transaction for write operation
	tx := r.DB.Begin()
	if tx.Error != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	return tx, true, nil // New transaction, should commit
}

// ByUUID retrieves an entity by its storage-native key
func (r *BaseRepository[T, F]) ByUUID(ctx context.Context, key uuid.UUID) (*T, error) {
	db := r.getDB(ctx)

	var entity T
	err := db.Where("uuid = ?", key).Last(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find entity by key %s: %w", key, err)
	}

	return &entity, nil
}

// BySequentialID retrieves an entity by its sequential integer id
func (r *BaseRepository[T, F]) BySequentialID(ctx context.Context, id int64) (*T, error) {
	db := r.getDB(ctx)

	var entity T
	err := db.Where("id = ? AND id > 0", id).Last(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find entity by id %d: %w", id, err)
	}

	return &entity, nil
}

// ByAnyID resolves an identifier of unknown provenance. Values that parse as
// non-negative integers are always integer-id lookups, everything else is a
// storage-key lookup. Unparseable input and misses both come back (nil, nil).
func (r *BaseRepository[T, F]) ByAnyID(ctx context.Context, raw string) (*T, error) {
	ref, err := models.ParseEntityRef(raw)
	if err != nil {
		return nil, nil
	}
	return r.ByRef(ctx, ref)
}

// ByRef resolves a tagged reference. This is the single resolution path for
// both identifier spaces; a dangling reference is not-found, never an error.
func (r *BaseRepository[T, F]) ByRef(ctx context.Context, ref models.EntityRef) (*T, error) {
	if id, ok := ref.SequentialID(); ok {
		return r.BySequentialID(ctx, id)
	}
	if key, ok := ref.Key(); ok {
		return r.ByUUID(ctx, key)
	}
	return nil, nil
}

// ByFilter retrieves entities based on filter criteria
func (r *BaseRepository[T, F]) ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error) {
	db := r.getDB(ctx)

	var entity T
	query := r.applyFilter(db.Model(&entity), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var entities []*T
	if err := query.Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("failed to find entities by filter: %w", err)
	}

	return entities, nil
}

// Count returns the number of entities matching the filter
func (r *BaseRepository[T, F]) Count(ctx context.Context, filter F) (int64, error) {
	db := r.getDB(ctx)

	var entity T
	var count int64
	if err := r.applyFilter(db.Model(&entity), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count entities: %w", err)
	}

	return count, nil
}

// Exists checks if any entity matching the filter exists
func (r *BaseRepository[T, F]) Exists(ctx context.Context, filter F) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// Save inserts a new entity
func (r *BaseRepository[T, F]) Save(ctx context.Context, entity *T) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Create(entity).Error
	if err != nil {
		return fmt.Errorf("failed to save entity: %w", err)
	}

	return nil
}

// SaveBatch inserts multiple entities in a single transaction
func (r *BaseRepository[T, F]) SaveBatch(ctx context.Context, entities []*T) error {
	if len(entities) == 0 {
		return nil
	}

	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.CreateInBatches(entities, 100).Error // Batch size of 100
	if err != nil {
		return fmt.Errorf("failed to save batch entities: %w", err)
	}

	return nil
}

// Update persists changed fields of an existing entity
func (r *BaseRepository[T, F]) Update(ctx context.Context, entity *T) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Save(entity).Error
	if err != nil {
		return fmt.Errorf("failed to update entity: %w", err)
	}

	return nil
}

// SaveWithSequentialID inserts the entity, allocates the next value of its
// named sequence and stamps it, all before the enclosing transaction commits.
// No entity becomes externally observable without its integer id: if the
// allocation or the stamping write fails, the insert rolls back with it.
// Stamping an entity that already carries an id is a no-op for allocation.
func (r *BaseRepository[T, F]) SaveWithSequentialID(ctx context.Context, entity *T, sequences SequenceRepository) error {
	seq, ok := any(entity).(models.Sequenced)
	if !ok {
		return fmt.Errorf("entity %T does not carry a sequential id", entity)
	}

	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Create(entity).Error
	if err != nil {
		return fmt.Errorf("failed to save entity: %w", err)
	}

	// Never allocate a second id for the same entity.
	if seq.SequentialID() > 0 {
		return nil
	}

	txCtx := context.WithValue(ctx, TxContextKey, db)
	id, err := sequences.Allocate(txCtx, seq.SequenceName())
	if err != nil {
		err = fmt.Errorf("failed to allocate %s: %w", seq.SequenceName(), err)
		return err
	}
	seq.SetSequentialID(id)

	err = db.Model(entity).Update("id", id).Error
	if err != nil {
		err = fmt.Errorf("failed to stamp sequential id %d: %w", id, err)
		return err
	}

	return nil
}

// ListUnstamped retrieves entities that never received a sequential id, in
// the deterministic order the migration assigns ids in.
func (r *BaseRepository[T, F]) ListUnstamped(ctx context.Context) ([]*T, error) {
	db := r.getDB(ctx)

	var entities []*T
	err := db.Where("id = 0").
		Order("created_at ASC, uuid ASC").
		Find(&entities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list unstamped entities: %w", err)
	}

	return entities, nil
}

// MaxSequentialID returns the highest assigned sequential id, 0 when none is
// assigned yet.
func (r *BaseRepository[T, F]) MaxSequentialID(ctx context.Context) (int64, error) {
	db := r.getDB(ctx)

	var entity T
	var max int64
	err := db.Model(&entity).
		Select("COALESCE(MAX(id), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read max sequential id: %w", err)
	}

	return max, nil
}

// StampSequentialID allocates the next value of the entity's named sequence
// and writes it onto an already persisted row. Entities that carry an id
// already are left untouched.
func (r *BaseRepository[T, F]) StampSequentialID(ctx context.Context, entity *T, sequences SequenceRepository) error {
	seq, ok := any(entity).(models.Sequenced)
	if !ok {
		return fmt.Errorf("entity %T does not carry a sequential id", entity)
	}

	if seq.SequentialID() > 0 {
		return nil
	}

	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	txCtx := context.WithValue(ctx, TxContextKey, db)
	id, err := sequences.Allocate(txCtx, seq.SequenceName())
	if err != nil {
		err = fmt.Errorf("failed to allocate %s: %w", seq.SequenceName(), err)
		return err
	}
	seq.SetSequentialID(id)

	err = db.Model(entity).Update("id", id).Error
	if err != nil {
		err = fmt.Errorf("failed to stamp sequential id %d: %w", id, err)
		return err
	}

	return nil
}

// WithTransaction executes a function within a database transaction
func WithTransaction(ctx context.Context, db *gorm.DB, fn func(context.Context) error) (err error) {
	tx := db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			err = fmt.Errorf("panic in transaction: %v", r)
		}
	}()

	ctx = context.WithValue(ctx, TxContextKey, tx)

	if err := fn(ctx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
