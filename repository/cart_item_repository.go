// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smart-stationery/backend/models"
	"github.com/smart-stationery/backend/utils"
)

// CartItemRepositoryImpl implements CartItemRepository interface
type CartItemRepositoryImpl struct {
	*BaseRepository[models.CartItem, models.CartItemFilter]
}

// NewCartItemRepository creates a new cart item repository
func NewCartItemRepository(db *gorm.DB) CartItemRepository {
	return &CartItemRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CartItem, models.CartItemFilter](db, applyCartItemFilter),
	}
}

func applyCartItemFilter(db *gorm.DB, filter models.CartItemFilter) *gorm.DB {
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}
	if filter.ProductRef != nil {
		db = db.Where("product_ref_kind = ? AND product_ref_value = ?", filter.ProductRef.Kind, filter.ProductRef.Value)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return db
}

// ListByUser retrieves a user's cart lines, oldest first
func (r *CartItemRepositoryImpl) ListByUser(ctx context.Context, userID int64) ([]*models.CartItem, error) {
	return r.ByFilter(ctx, models.CartItemFilter{UserID: &userID}, "created_at ASC", 0, 0)
}

// ByUserAndRef retrieves the cart line matching the exact product reference
func (r *CartItemRepositoryImpl) ByUserAndRef(ctx context.Context, userID int64, ref models.EntityRef) (*models.CartItem, error) {
	db := r.getDB(ctx)

	var item models.CartItem
	err := db.Where("user_id = ? AND product_ref_kind = ? AND product_ref_value = ?", userID, ref.Kind, ref.Value).
		Last(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find cart item: %w", err)
	}

	return &item, nil
}

// UpdateQuantity sets a new quantity on an existing cart line
func (r *CartItemRepositoryImpl) UpdateQuantity(ctx context.Context, itemUUID uuid.UUID, quantity int) error {
	db := r.getDB(ctx)

	err := db.Model(&models.CartItem{}).
		Where("uuid = ?", itemUUID).
		Updates(map[string]any{
			"quantity":   quantity,
			"updated_at": utils.UTCNow(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update cart item quantity: %w", err)
	}

	return nil
}

// Delete removes a single cart line
func (r *CartItemRepositoryImpl) Delete(ctx context.Context, itemUUID uuid.UUID) error {
	db := r.getDB(ctx)

	if err := db.Where("uuid = ?", itemUUID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}

	return nil
}

// ClearUser removes every cart line belonging to the user
func (r *CartItemRepositoryImpl) ClearUser(ctx context.Context, userID int64) error {
	db := r.getDB(ctx)

	if err := db.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	return nil
}

// PruneDeactivated removes cart lines whose product still exists but has been
// deactivated. Lines whose reference no longer resolves at all are kept; the
// cart view shows them as unavailable and the user removes them.
func (r *CartItemRepositoryImpl) PruneDeactivated(ctx context.Context) (int64, error) {
	db := r.getDB(ctx)

	result := db.Exec(`
		DELETE FROM cart_items
		WHERE EXISTS (
			SELECT 1 FROM products p
			WHERE p.is_active = false
			  AND ((cart_items.product_ref_kind = ? AND p.id > 0 AND cart_items.product_ref_value = p.id::text)
			    OR (cart_items.product_ref_kind = ? AND cart_items.product_ref_value = p.uuid::text))
		)`, models.RefKindID, models.RefKindKey)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune deactivated cart lines: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// ListLegacyRefs retrieves cart lines still referencing products by storage
// key; the rewriter consumes this in deterministic order.
func (r *CartItemRepositoryImpl) ListLegacyRefs(ctx context.Context) ([]*models.CartItem, error) {
	db := r.getDB(ctx)

	var items []*models.CartItem
	err := db.Where("product_ref_kind = ?", models.RefKindKey).
		Order("created_at ASC, uuid ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list legacy cart refs: %w", err)
	}

	return items, nil
}
