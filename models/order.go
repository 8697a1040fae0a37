package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/smart-stationery/backend/utils"
)

// Order status constants
const (
	OrderStatusPending              = "pending"
	OrderStatusAwaitingVerification = "awaiting_verification"
	OrderStatusConfirmed            = "confirmed"
	OrderStatusShipped              = "shipped"
	OrderStatusDelivered            = "delivered"
	OrderStatusCancelled            = "cancelled"
)

type Order struct {
	UUID uuid.UUID `gorm:"type:uuid;primaryKey" json:"uuid"`
	ID   int64     `gorm:"index:uk_orders_seq_id,unique,where:id > 0" json:"id"`

	// UserRef points at the purchasing user. Id-kind for every order placed
	// since the migration; key-kind only on unrewritten legacy rows.
	UserRef EntityRef `gorm:"embedded;embeddedPrefix:user_ref_" json:"user_ref"`

	Status string `gorm:"type:order_status_enum;default:pending;index:idx_orders_status" json:"status"`

	// Totals are in Tomans, snapshotted at checkout.
	TotalAmount int64 `gorm:"not null" json:"total_amount"`
	TotalItems  int   `gorm:"not null" json:"total_items"`

	// Shipping address snapshot
	RecipientName   string  `gorm:"size:200;not null" json:"recipient_name"`
	ShippingAddress string  `gorm:"size:255;not null" json:"shipping_address"`
	ShippingCity    string  `gorm:"size:100;not null" json:"shipping_city"`
	PostalCode      *string `gorm:"size:10" json:"postal_code,omitempty"`

	Note *string `gorm:"type:text" json:"note,omitempty"`

	CreatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_orders_created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	Items []OrderItem `gorm:"foreignKey:OrderUUID;references:UUID" json:"items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) SequenceName() string     { return utils.SequenceOrderID }
func (o *Order) SequentialID() int64      { return o.ID }
func (o *Order) SetSequentialID(id int64) { o.ID = id }

func (o *Order) IsCancellable() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusAwaitingVerification
}

// OrderItem is a line item owned by its order. Containment uses the order's
// storage key; only the product reference crosses entity boundaries and uses
// the tagged reference scheme.
type OrderItem struct {
	UUID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"uuid"`
	OrderUUID uuid.UUID `gorm:"type:uuid;not null;index:idx_order_items_order_uuid" json:"order_uuid"`

	ProductRef EntityRef `gorm:"embedded;embeddedPrefix:product_ref_" json:"product_ref"`

	// Snapshots taken at checkout so the line survives later product edits.
	ProductName string `gorm:"size:150;not null" json:"product_name"`
	UnitPrice   int64  `gorm:"not null" json:"unit_price"`
	Quantity    int    `gorm:"not null" json:"quantity"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// OrderFilter represents filter criteria for order queries
type OrderFilter struct {
	UUID          *uuid.UUID
	ID            *int64
	UserRef       *EntityRef
	Status        *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// ValidOrderStatusTransitions enumerates the legal admin status moves.
var ValidOrderStatusTransitions = map[string][]string{
	OrderStatusPending:              {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusAwaitingVerification: {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:            {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:              {OrderStatusDelivered},
}

// CanTransitionTo reports whether the order may move to the target status.
func (o *Order) CanTransitionTo(target string) bool {
	for _, s := range ValidOrderStatusTransitions[o.Status] {
		if s == target {
			return true
		}
	}
	return false
}
