package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one line of a user's cart. The product reference is a tagged
// EntityRef: rows written since the id migration always carry the product's
// sequential id, legacy rows may still hold the storage key until the
// rewriter visits them.
type CartItem struct {
	UUID uuid.UUID `gorm:"type:uuid;primaryKey" json:"uuid"`

	// UserID is the owning user's sequential id (advisory integrity). One
	// line per (user, product); the repository folds duplicates on add.
	UserID int64 `gorm:"not null;index:idx_cart_items_user_id" json:"user_id"`

	ProductRef EntityRef `gorm:"embedded;embeddedPrefix:product_ref_" json:"product_ref"`
	Quantity   int       `gorm:"not null;default:1" json:"quantity"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// CartItemFilter represents filter criteria for cart item queries
type CartItemFilter struct {
	UUID          *uuid.UUID
	UserID        *int64
	ProductRef    *EntityRef
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
