// Package dto contains Data Transfer Objects for API request and response structures
package dto

// CheckoutRequest places an order from the current cart contents
type CheckoutRequest struct {
	RecipientName   string `json:"recipient_name" validate:"required,max=200"`
	ShippingAddress string `json:"shipping_address" validate:"required,max=255"`
	ShippingCity    string `json:"shipping_city" validate:"required,max=100"`
	PostalCode      string `json:"postal_code" validate:"omitempty,max=10"`
	Note            string `json:"note" validate:"omitempty,max=500"`
}

// OrderItemDTO represents one order line with its price snapshot
type OrderItemDTO struct {
	UUID        string `json:"uuid"`
	ProductRef  string `json:"product_ref"`
	ProductName string `json:"product_name"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int    `json:"quantity"`
	LineTotal   int64  `json:"line_total"`
}

// OrderDTO represents order data for API responses
type OrderDTO struct {
	ID              int64          `json:"id"`
	UUID            string         `json:"uuid"`
	Status          string         `json:"status"`
	TotalItems      int            `json:"total_items"`
	TotalAmount     int64          `json:"total_amount"`
	RecipientName   string         `json:"recipient_name"`
	ShippingAddress string         `json:"shipping_address"`
	ShippingCity    string         `json:"shipping_city"`
	PostalCode      string         `json:"postal_code,omitempty"`
	Note            string         `json:"note,omitempty"`
	CreatedAt       string         `json:"created_at"`
	ConfirmedAt     *string        `json:"confirmed_at,omitempty"`
	CancelledAt     *string        `json:"cancelled_at,omitempty"`
	Items           []OrderItemDTO `json:"items,omitempty"`
}

// CheckoutResponse is returned after a successful checkout
type CheckoutResponse struct {
	Message string   `json:"message"`
	Order   OrderDTO `json:"order"`
}

// ListOrdersRequest paginates the user's order history
type ListOrdersRequest struct {
	Page     int `json:"page" query:"page" validate:"omitempty,min=1"`
	PageSize int `json:"page_size" query:"page_size" validate:"omitempty,min=1,max=100"`
}

// UpdateOrderStatusRequest moves an order along the status state machine (admin)
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending awaiting_verification confirmed shipped delivered cancelled"`
}

// AdminListOrdersRequest filters the back-office order listing
type AdminListOrdersRequest struct {
	Status   *string `json:"status,omitempty" query:"status" validate:"omitempty,oneof=pending awaiting_verification confirmed shipped delivered cancelled"`
	User     *string `json:"user,omitempty" query:"user" validate:"omitempty"` // sequential id or storage key
	Page     int     `json:"page" query:"page" validate:"omitempty,min=1"`
	PageSize int     `json:"page_size" query:"page_size" validate:"omitempty,min=1,max=100"`
}
