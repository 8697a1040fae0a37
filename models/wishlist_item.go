package models

import (
	"time"

	"github.com/google/uuid"
)

type WishlistItem struct {
	UUID uuid.UUID `gorm:"type:uuid;primaryKey" json:"uuid"`

	UserID     int64     `gorm:"not null;index:idx_wishlist_items_user_id" json:"user_id"`
	ProductRef EntityRef `gorm:"embedded;embeddedPrefix:product_ref_" json:"product_ref"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (WishlistItem) TableName() string {
	return "wishlist_items"
}

// WishlistItemFilter represents filter criteria for wishlist queries
type WishlistItemFilter struct {
	UUID       *uuid.UUID
	UserID     *int64
	ProductRef *EntityRef
}
