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

// WishlistRepositoryImpl implements WishlistRepository interface
type WishlistRepositoryImpl struct {
	*BaseRepository[models.WishlistItem, models.WishlistItemFilter]
}

// NewWishlistRepository creates a new wishlist repository
func NewWishlistRepository(db *gorm.DB) WishlistRepository {
	return &WishlistRepositoryImpl{
		BaseRepository: NewBaseRepository[models.WishlistItem, models.WishlistItemFilter](db, applyWishlistFilter),
	}
}

func applyWishlistFilter(db *gorm.DB, filter models.WishlistItemFilter) *gorm.DB {
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}
	if filter.ProductRef != nil {
		db = db.Where("product_ref_kind = ? AND product_ref_value = ?", filter.ProductRef.Kind, filter.ProductRef.Value)
	}
	return db
}

// ListByUser retrieves a user's wishlist, newest first
func (r *WishlistRepositoryImpl) ListByUser(ctx context.Context, userID int64) ([]*models.WishlistItem, error) {
	return r.ByFilter(ctx, models.WishlistItemFilter{UserID: &userID}, "created_at DESC", 0, 0)
}

// ByUserAndRef retrieves the wishlist entry for an exact product reference
func (r *WishlistRepositoryImpl) ByUserAndRef(ctx context.Context, userID int64, ref models.EntityRef) (*models.WishlistItem, error) {
	db := r.getDB(ctx)

	var item models.WishlistItem
	err := db.Where("user_id = ? AND product_ref_kind = ? AND product_ref_value = ?", userID, ref.Kind, ref.Value).
		Last(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find wishlist item: %w", err)
	}

	return &item, nil
}

// ListLegacyRefs retrieves wishlist entries still referencing products by
// storage key, in deterministic order for the rewriter.
func (r *WishlistRepositoryImpl) ListLegacyRefs(ctx context.Context) ([]*models.WishlistItem, error) {
	db := r.getDB(ctx)

	var items []*models.WishlistItem
	err := db.Where("product_ref_kind = ?", models.RefKindKey).
		Order("created_at ASC, uuid ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list legacy wishlist refs: %w", err)
	}

	return items, nil
}

// Delete removes a wishlist entry
func (r *WishlistRepositoryImpl) Delete(ctx context.Context, itemUUID uuid.UUID) error {
	db := r.getDB(ctx)

	if err := db.Where("uuid = ?", itemUUID).Delete(&models.WishlistItem{}).Error; err != nil {
		return fmt.Errorf("failed to delete wishlist item: %w", err)
	}

	return nil
}
