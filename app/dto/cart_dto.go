// Package dto contains Data Transfer Objects for API request and response structures
package dto

// AddCartItemRequest adds a product to the cart. The product field accepts
// either a sequential id or a storage key.
type AddCartItemRequest struct {
	Product  string `json:"product" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

// UpdateCartItemRequest changes the quantity of a cart line
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// CartItemDTO represents one cart line
type CartItemDTO struct {
	UUID      string      `json:"uuid"`
	Product   *ProductDTO `json:"product,omitempty"` // nil when the product was deleted
	Quantity  int         `json:"quantity"`
	LineTotal int64       `json:"line_total"`
}

// CartDTO represents the user's full cart
type CartDTO struct {
	Items []CartItemDTO `json:"items"`
	Total int64         `json:"total"`
}

// AddWishlistItemRequest adds a product to the wishlist
type AddWishlistItemRequest struct {
	Product string `json:"product" validate:"required"`
}

// WishlistItemDTO represents one wishlist entry
type WishlistItemDTO struct {
	UUID    string      `json:"uuid"`
	Product *ProductDTO `json:"product,omitempty"`
	AddedAt string      `json:"added_at"`
}
