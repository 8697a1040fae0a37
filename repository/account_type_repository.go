// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/smart-stationery/backend/models"
)

// AccountTypeRepositoryImpl implements AccountTypeRepository interface
type AccountTypeRepositoryImpl struct {
	*BaseRepository[models.AccountType, models.AccountTypeFilter]
}

// NewAccountTypeRepository creates a new account type repository
func NewAccountTypeRepository(db *gorm.DB) AccountTypeRepository {
	return &AccountTypeRepositoryImpl{
		BaseRepository: NewBaseRepository[models.AccountType, models.AccountTypeFilter](db, applyAccountTypeFilter),
	}
}

func applyAccountTypeFilter(db *gorm.DB, filter models.AccountTypeFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.TypeName != nil {
		db = db.Where("type_name = ?", *filter.TypeName)
	}
	return db
}

// ByTypeName retrieves an account type by its type name
func (r *AccountTypeRepositoryImpl) ByTypeName(ctx context.Context, typeName string) (*models.AccountType, error) {
	types, err := r.ByFilter(ctx, models.AccountTypeFilter{TypeName: &typeName}, "", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find account type by name: %w", err)
	}

	if len(types) == 0 {
		return nil, nil
	}

	return types[0], nil
}
