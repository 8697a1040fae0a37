// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smart-stationery/backend/models"
	"github.com/smart-stationery/backend/utils"
)

// ErrInsufficientStock is returned when a conditional stock decrement matches
// no row, meaning the remaining stock does not cover the requested quantity.
var ErrInsufficientStock = fmt.Errorf("insufficient stock")

// ProductRepositoryImpl implements ProductRepository interface
type ProductRepositoryImpl struct {
	*BaseRepository[models.Product, models.ProductFilter]
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &ProductRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Product, models.ProductFilter](db, applyProductFilter),
	}
}

func applyProductFilter(db *gorm.DB, filter models.ProductFilter) *gorm.DB {
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.ID != nil {
		db = db.Where("id = ? AND id > 0", *filter.ID)
	}
	if filter.CategoryID != nil {
		db = db.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Name != nil {
		db = db.Where("name ILIKE ?", "%"+*filter.Name+"%")
	}
	if filter.Brand != nil {
		db = db.Where("brand = ?", *filter.Brand)
	}
	if filter.MinPrice != nil {
		db = db.Where("unit_price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		db = db.Where("unit_price <= ?", *filter.MaxPrice)
	}
	if filter.IsActive != nil {
		db = db.Where("is_active = ?", *filter.IsActive)
	}
	if filter.InStock != nil {
		if *filter.InStock {
			db = db.Where("stock > 0")
		} else {
			db = db.Where("stock = 0")
		}
	}
	return db
}

// DecrementStock atomically reduces stock with a guard against overselling.
// The guard and the decrement are one UPDATE, so two concurrent checkouts
// cannot both take the last unit.
func (r *ProductRepositoryImpl) DecrementStock(ctx context.Context, productUUID uuid.UUID, quantity int) error {
	db := r.getDB(ctx)

	res := db.Model(&models.Product{}).
		Where("uuid = ? AND stock >= ?", productUUID, quantity).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock - ?", quantity),
			"updated_at": utils.UTCNow(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to decrement stock: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}

	return nil
}

// IncrementStock returns stock after a cancellation
func (r *ProductRepositoryImpl) IncrementStock(ctx context.Context, productUUID uuid.UUID, quantity int) error {
	db := r.getDB(ctx)

	err := db.Model(&models.Product{}).
		Where("uuid = ?", productUUID).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock + ?", quantity),
			"updated_at": utils.UTCNow(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to increment stock: %w", err)
	}

	return nil
}

// Delete removes a product. References held by carts and orders stay behind
// and resolve to not-found afterwards; integrity is advisory by design.
func (r *ProductRepositoryImpl) Delete(ctx context.Context, productUUID uuid.UUID) error {
	db := r.getDB(ctx)

	err := db.Where("uuid = ?", productUUID).Delete(&models.Product{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}
