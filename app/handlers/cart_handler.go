// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/smart-stationery/backend/app/dto"
	businessflow "github.com/smart-stationery/backend/business_flow"
)

// CartHandlerInterface defines the contract for cart and wishlist handlers
type CartHandlerInterface interface {
	GetCart(c fiber.Ctx) error
	AddCartItem(c fiber.Ctx) error
	UpdateCartItem(c fiber.Ctx) error
	RemoveCartItem(c fiber.Ctx) error
	ClearCart(c fiber.Ctx) error
	ListWishlist(c fiber.Ctx) error
	AddWishlistItem(c fiber.Ctx) error
	RemoveWishlistItem(c fiber.Ctx) error
}

// CartHandler handles cart and wishlist HTTP requests
type CartHandler struct {
	cartFlow     businessflow.CartFlow
	wishlistFlow businessflow.WishlistFlow
	validator    *validator.Validate
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartFlow businessflow.CartFlow, wishlistFlow businessflow.WishlistFlow) *CartHandler {
	return &CartHandler{
		cartFlow:     cartFlow,
		wishlistFlow: wishlistFlow,
		validator:    validator.New(),
	}
}

// GetCart returns the authenticated user's cart
// @Summary Get Cart
// @Tags Cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.CartDTO} "Cart"
// @Router /api/v1/cart [get]
func (h *CartHandler) GetCart(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return nil
	}

	cart, err := h.cartFlow.GetCart(requestContext(c), user)
	if err != nil {
		log.Println("Cart fetch failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to fetch cart", "CART_FETCH_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Cart retrieved successfully", cart)
}

// AddCartItem adds a product to the cart
// @Summary Add Cart Item
// @Tags Cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AddCartItemRequest true "Product and quantity"
// @Success 200 {object} dto.APIResponse{data=dto.CartDTO} "Updated cart"
// @Failure 404 {object} dto.APIResponse "Product not found"
// @Router /api/v1/cart/items [post]
func (h *CartHandler) AddCartItem(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return nil
	}

	var req dto.AddCartItemRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	cart, err := h.cartFlow.AddItem(requestContext(c), user, &req)
	if err != nil {
		return h.cartError(c, err, "Failed to add to cart", "CART_ADD_FAILED")
	}

	return successResponse(c, fiber.StatusOK, "Item added to cart", cart)
}

// UpdateCartItem changes the quantity of a cart line
// @Summary Update Cart Item
// @Tags Cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cart item storage key"
// @Param request body dto.UpdateCartItemRequest true "New quantity"
// @Success 200 {object} dto.APIResponse{data=dto.CartDTO} "Updated cart"
// @Failure 404 {object} dto.APIResponse "Cart item not found"
// @Router /api/v1/cart/items/{id} [put]
func (h *CartHandler) UpdateCartItem(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return nil
	}

	var req dto.UpdateCartItemRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	cart, err := h.cartFlow.UpdateItem(requestContext(c), user, c.Params("id"), &req)
	if err != nil {
		return h.cartError(c, err, "Failed to update cart", "CART_UPDATE_FAILED")
	}

	return successResponse(c, fiber.StatusOK, "Cart item updated", cart)
}

// RemoveCartItem deletes a cart line
// @Summary Remove Cart Item
// @Tags Cart
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cart item storage key"
// @Success 200 {object} dto.APIResponse{data=dto.CartDTO} "Updated cart"
// @Failure 404 {object} dto.APIResponse "Cart item not found"
// @Router /api/v1/cart/items/{id} [delete]
func (h *CartHandler) RemoveCartItem(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return nil
	}

	cart, err := h.cartFlow.RemoveItem(requestContext(c), user, c.Params("id"))
	if err != nil {
		return h.cartError(c, err, "Failed to remove from cart", "CART_REMOVE_FAILED")
	}

	return successResponse(c, fiber.StatusOK, "Cart item removed", cart)
}

// ClearCart removes every line of the user's cart
// @Summary Clear Cart
// @Tags Cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse "Cart cleared"
// @Router /api/v1/cart [delete]
func (h *CartHandler) ClearCart(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return nil
	}

	if err := h.cartFlow.ClearCart(requestContext(c), user); err != nil {
		log.Println("Cart clear failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to clear cart", "CART_CLEAR_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Cart cleared", nil)
}

// ListWishlist returns the authenticated user's wishlist
// @Summary List Wishlist
// @Tags Wishlist
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.WishlistItemDTO} "Wishlist"
// @Router /api/v1/wishlist [get]
func (h *CartHandler) ListWishlist(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return nil
	}

	items, err := h.wishlistFlow.List(requestContext(c), user)
	if err != nil {
		log.Println("Wishlist fetch failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to fetch wishlist", "WISHLIST_FETCH_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Wishlist retrieved successfully", items)
}

// AddWishlistItem adds a product to the wishlist
// @Summary Add Wishlist Item
// @Tags Wishlist
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AddWishlistItemRequest true "Product"
// @Success 200 {object} dto.APIResponse{data=[]dto.WishlistItemDTO} "Updated wishlist"
// @Failure 404 {object} dto.APIResponse "Product not found"
// @Failure 409 {object} dto.APIResponse "Already in wishlist"
// @Router /api/v1/wishlist [post]
func (h *CartHandler) AddWishlistItem(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return nil
	}

	var req dto.AddWishlistItemRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	items, err := h.wishlistFlow.AddItem(requestContext(c), user, &req)
	if err != nil {
		if businessflow.IsProductNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Product not found", "PRODUCT_NOT_FOUND", nil)
		}
		if errors.Is(err, businessflow.ErrAlreadyInWishlist) {
			return errorResponse(c, fiber.StatusConflict, "Product is already in the wishlist", "ALREADY_IN_WISHLIST", nil)
		}

		log.Println("Wishlist add failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to add to wishlist", "WISHLIST_ADD_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Item added to wishlist", items)
}

// RemoveWishlistItem deletes one wishlist entry
// @Summary Remove Wishlist Item
// @Tags Wishlist
// @Produce json
// @Security BearerAuth
// @Param id path string true "Wishlist item storage key"
// @Success 200 {object} dto.APIResponse{data=[]dto.WishlistItemDTO} "Updated wishlist"
// @Failure 404 {object} dto.APIResponse "Wishlist item not found"
// @Router /api/v1/wishlist/{id} [delete]
func (h *CartHandler) RemoveWishlistItem(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return nil
	}

	items, err := h.wishlistFlow.RemoveItem(requestContext(c), user, c.Params("id"))
	if err != nil {
		if errors.Is(err, businessflow.ErrWishlistItemNotFound) {
			return errorResponse(c, fiber.StatusNotFound, "Wishlist item not found", "WISHLIST_ITEM_NOT_FOUND", nil)
		}

		log.Println("Wishlist remove failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to remove from wishlist", "WISHLIST_REMOVE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Wishlist item removed", items)
}

func (h *CartHandler) cartError(c fiber.Ctx, err error, message, code string) error {
	if businessflow.IsProductNotFound(err) {
		return errorResponse(c, fiber.StatusNotFound, "Product not found", "PRODUCT_NOT_FOUND", nil)
	}
	if errors.Is(err, businessflow.ErrCartItemNotFound) {
		return errorResponse(c, fiber.StatusNotFound, "Cart item not found", "CART_ITEM_NOT_FOUND", nil)
	}
	if errors.Is(err, businessflow.ErrQuantityOutOfRange) {
		return errorResponse(c, fiber.StatusBadRequest, "Quantity is out of range", "QUANTITY_OUT_OF_RANGE", nil)
	}

	log.Println(message, err)
	return errorResponse(c, fiber.StatusInternalServerError, message, code, nil)
}
