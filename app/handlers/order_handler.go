// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/smart-stationery/backend/app/dto"
	businessflow "github.com/smart-stationery/backend/business_flow"
)

// OrderHandlerInterface defines the contract for customer order handlers
type OrderHandlerInterface interface {
	Checkout(c fiber.Ctx) error
	ListOrders(c fiber.Ctx) error
	GetOrder(c fiber.Ctx) error
	CancelOrder(c fiber.Ctx) error
}

// OrderHandler handles customer-facing order HTTP requests
type OrderHandler struct {
	orderFlow businessflow.OrderFlow
	validator *validator.Validate
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderFlow businessflow.OrderFlow) *OrderHandler {
	return &OrderHandler{
		orderFlow: orderFlow,
		validator: validator.New(),
	}
}

// Checkout places an order from the current cart
// @Summary Checkout
// @Tags Orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CheckoutRequest true "Shipping details"
// @Success 201 {object} dto.APIResponse{data=dto.CheckoutResponse} "Order placed"
// @Failure 400 {object} dto.APIResponse "Cart empty"
// @Failure 409 {object} dto.APIResponse "Insufficient stock"
// @Router /api/v1/orders/checkout [post]
func (h *OrderHandler) Checkout(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return nil
	}

	var req dto.CheckoutRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	result, err := h.orderFlow.Checkout(requestContext(c), user, &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsCartEmpty(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Cart is empty", "CART_EMPTY", nil)
		}
		if businessflow.IsInsufficientStock(err) {
			return errorResponse(c, fiber.StatusConflict, "Insufficient stock", "INSUFFICIENT_STOCK", err.Error())
		}
		if businessflow.IsProductNotFound(err) {
			return errorResponse(c, fiber.StatusConflict, "A cart line no longer resolves to a product", "PRODUCT_NOT_FOUND", err.Error())
		}

		log.Println("Checkout failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to place order", "CHECKOUT_FAILED", nil)
	}

	return successResponse(c, fiber.StatusCreated, "Order placed successfully", result)
}

// ListOrders lists the authenticated user's order history
// @Summary List Orders
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=[]dto.OrderDTO} "Orders"
// @Router /api/v1/orders [get]
func (h *OrderHandler) ListOrders(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return nil
	}

	var req dto.ListOrdersRequest
	if err := c.Bind().Query(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	orders, err := h.orderFlow.ListOrders(requestContext(c), user, &req)
	if err != nil {
		log.Println("Order listing failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to list orders", "ORDER_LIST_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Orders retrieved successfully", orders)
}

// GetOrder returns one of the user's orders by sequential id or storage key
// @Summary Get Order
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order sequential id or storage key"
// @Success 200 {object} dto.APIResponse{data=dto.OrderDTO} "Order"
// @Failure 404 {object} dto.APIResponse "Order not found"
// @Router /api/v1/orders/{id} [get]
func (h *OrderHandler) GetOrder(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return nil
	}

	order, err := h.orderFlow.GetOrder(requestContext(c), user, c.Params("id"))
	if err != nil {
		return h.orderError(c, err, "Failed to fetch order", "ORDER_FETCH_FAILED")
	}

	return successResponse(c, fiber.StatusOK, "Order retrieved successfully", order)
}

// CancelOrder cancels a pending or awaiting-verification order and restocks it
// @Summary Cancel Order
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order sequential id or storage key"
// @Success 200 {object} dto.APIResponse{data=dto.OrderDTO} "Cancelled order"
// @Failure 404 {object} dto.APIResponse "Order not found"
// @Failure 409 {object} dto.APIResponse "Order can no longer be cancelled"
// @Router /api/v1/orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrder(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return nil
	}

	order, err := h.orderFlow.CancelOrder(requestContext(c), user, c.Params("id"), clientMetadata(c))
	if err != nil {
		if businessflow.IsOrderNotCancellable(err) {
			return errorResponse(c, fiber.StatusConflict, "Order can no longer be cancelled", "ORDER_NOT_CANCELLABLE", nil)
		}
		return h.orderError(c, err, "Failed to cancel order", "ORDER_CANCEL_FAILED")
	}

	return successResponse(c, fiber.StatusOK, "Order cancelled", order)
}

func (h *OrderHandler) orderError(c fiber.Ctx, err error, message, code string) error {
	// Orders belonging to someone else surface as not-found so the sequential
	// id space cannot be probed.
	if businessflow.IsOrderNotFound(err) || businessflow.IsOrderAccessDenied(err) {
		return errorResponse(c, fiber.StatusNotFound, "Order not found", "ORDER_NOT_FOUND", nil)
	}

	log.Println(message, err)
	return errorResponse(c, fiber.StatusInternalServerError, message, code, nil)
}
