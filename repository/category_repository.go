// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/smart-stationery/backend/models"
)

// CategoryRepositoryImpl implements CategoryRepository interface
type CategoryRepositoryImpl struct {
	*BaseRepository[models.Category, models.CategoryFilter]
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &CategoryRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Category, models.CategoryFilter](db, applyCategoryFilter),
	}
}

func applyCategoryFilter(db *gorm.DB, filter models.CategoryFilter) *gorm.DB {
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.ID != nil {
		db = db.Where("id = ? AND id > 0", *filter.ID)
	}
	if filter.Name != nil {
		db = db.Where("name = ?", *filter.Name)
	}
	if filter.Slug != nil {
		db = db.Where("slug = ?", *filter.Slug)
	}
	return db
}

// BySlug retrieves a category by its URL slug
func (r *CategoryRepositoryImpl) BySlug(ctx context.Context, slug string) (*models.Category, error) {
	categories, err := r.ByFilter(ctx, models.CategoryFilter{Slug: &slug}, "", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find category by slug: %w", err)
	}

	if len(categories) == 0 {
		return nil, nil
	}

	return categories[0], nil
}

// List retrieves all categories ordered by name
func (r *CategoryRepositoryImpl) List(ctx context.Context) ([]*models.Category, error) {
	db := r.getDB(ctx)

	var categories []*models.Category
	if err := db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	return categories, nil
}
