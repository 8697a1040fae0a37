// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/smart-stationery/backend/app/dto"
	businessflow "github.com/smart-stationery/backend/business_flow"
)

// AdminHandlerInterface defines the contract for back-office handlers
type AdminHandlerInterface interface {
	CreateCategory(c fiber.Ctx) error
	UpdateCategory(c fiber.Ctx) error
	CreateProduct(c fiber.Ctx) error
	UpdateProduct(c fiber.Ctx) error
	DeleteProduct(c fiber.Ctx) error
	ListOrders(c fiber.Ctx) error
	GetOrder(c fiber.Ctx) error
	UpdateOrderStatus(c fiber.Ctx) error
	ExportOrders(c fiber.Ctx) error
	ListUsers(c fiber.Ctx) error
	GetUser(c fiber.Ctx) error
	SetUserActive(c fiber.Ctx) error
	ListVerifications(c fiber.Ctx) error
	ReviewVerification(c fiber.Ctx) error
}

// AdminHandler handles back-office catalog, order and user management
type AdminHandler struct {
	adminCatalogFlow businessflow.AdminCatalogFlow
	adminOrderFlow   businessflow.AdminOrderFlow
	adminUserFlow    businessflow.AdminUserFlow
	validator        *validator.Validate
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	adminCatalogFlow businessflow.AdminCatalogFlow,
	adminOrderFlow businessflow.AdminOrderFlow,
	adminUserFlow businessflow.AdminUserFlow,
) *AdminHandler {
	return &AdminHandler{
		adminCatalogFlow: adminCatalogFlow,
		adminOrderFlow:   adminOrderFlow,
		adminUserFlow:    adminUserFlow,
		validator:        validator.New(),
	}
}

// CreateCategory creates a category and stamps its sequential id
// @Summary Create Category
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCategoryRequest true "Category"
// @Success 201 {object} dto.APIResponse{data=dto.CategoryDTO} "Created category"
// @Failure 409 {object} dto.APIResponse "Slug already exists"
// @Router /api/v1/admin/categories [post]
func (h *AdminHandler) CreateCategory(c fiber.Ctx) error {
	if _, ok := currentAdmin(c); !ok {
		return nil
	}

	var req dto.CreateCategoryRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	category, err := h.adminCatalogFlow.CreateCategory(requestContext(c), &req)
	if err != nil {
		if errors.Is(err, businessflow.ErrSlugAlreadyExists) {
			return errorResponse(c, fiber.StatusConflict, "Category slug already exists", "SLUG_EXISTS", nil)
		}

		log.Println("Category creation failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to create category", "CATEGORY_CREATE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusCreated, "Category created", category)
}

// UpdateCategory updates a category addressed by sequential id or storage key
// @Summary Update Category
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category sequential id or storage key"
// @Param request body dto.UpdateCategoryRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.CategoryDTO} "Updated category"
// @Failure 404 {object} dto.APIResponse "Category not found"
// @Router /api/v1/admin/categories/{id} [put]
func (h *AdminHandler) UpdateCategory(c fiber.Ctx) error {
	if _, ok := currentAdmin(c); !ok {
		return nil
	}

	var req dto.UpdateCategoryRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	category, err := h.adminCatalogFlow.UpdateCategory(requestContext(c), c.Params("id"), &req)
	if err != nil {
		if businessflow.IsCategoryNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Category not found", "CATEGORY_NOT_FOUND", nil)
		}
		if errors.Is(err, businessflow.ErrSlugAlreadyExists) {
			return errorResponse(c, fiber.StatusConflict, "Category slug already exists", "SLUG_EXISTS", nil)
		}

		log.Println("Category update failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to update category", "CATEGORY_UPDATE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Category updated", category)
}

// CreateProduct creates a product and stamps its sequential id
// @Summary Create Product
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateProductRequest true "Product"
// @Success 201 {object} dto.APIResponse{data=dto.ProductDTO} "Created product"
// @Failure 404 {object} dto.APIResponse "Category not found"
// @Router /api/v1/admin/products [post]
func (h *AdminHandler) CreateProduct(c fiber.Ctx) error {
	if _, ok := currentAdmin(c); !ok {
		return nil
	}

	var req dto.CreateProductRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	product, err := h.adminCatalogFlow.CreateProduct(requestContext(c), &req)
	if err != nil {
		if businessflow.IsCategoryNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Category not found", "CATEGORY_NOT_FOUND", nil)
		}

		log.Println("Product creation failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to create product", "PRODUCT_CREATE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusCreated, "Product created", product)
}

// UpdateProduct updates a product addressed by sequential id or storage key
// @Summary Update Product
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product sequential id or storage key"
// @Param request body dto.UpdateProductRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.ProductDTO} "Updated product"
// @Failure 404 {object} dto.APIResponse "Product not found"
// @Router /api/v1/admin/products/{id} [put]
func (h *AdminHandler) UpdateProduct(c fiber.Ctx) error {
	if _, ok := currentAdmin(c); !ok {
		return nil
	}

	var req dto.UpdateProductRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	product, err := h.adminCatalogFlow.UpdateProduct(requestContext(c), c.Params("id"), &req)
	if err != nil {
		if businessflow.IsProductNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Product not found", "PRODUCT_NOT_FOUND", nil)
		}
		if businessflow.IsCategoryNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Category not found", "CATEGORY_NOT_FOUND", nil)
		}

		log.Println("Product update failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to update product", "PRODUCT_UPDATE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Product updated", product)
}

// DeleteProduct removes a product from the catalog
// @Summary Delete Product
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product sequential id or storage key"
// @Success 200 {object} dto.APIResponse "Product deleted"
// @Failure 404 {object} dto.APIResponse "Product not found"
// @Router /api/v1/admin/products/{id} [delete]
func (h *AdminHandler) DeleteProduct(c fiber.Ctx) error {
	if _, ok := currentAdmin(c); !ok {
		return nil
	}

	if err := h.adminCatalogFlow.DeleteProduct(requestContext(c), c.Params("id")); err != nil {
		if businessflow.IsProductNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Product not found", "PRODUCT_NOT_FOUND", nil)
		}

		log.Println("Product deletion failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to delete product", "PRODUCT_DELETE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Product deleted", nil)
}

// ListOrders lists orders across all users with optional filters
// @Summary List Orders (admin)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Order status"
// @Param user query string false "User sequential id or storage key"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=[]dto.OrderDTO} "Orders"
// @Router /api/v1/admin/orders [get]
func (h *AdminHandler) ListOrders(c fiber.Ctx) error {
	if _, ok := currentAdmin(c); !ok {
		return nil
	}

	var req dto.AdminListOrdersRequest
	if err := c.Bind().Query(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	orders, total, err := h.adminOrderFlow.ListOrders(requestContext(c), &req)
	if err != nil {
		if businessflow.IsUserNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "User not found", "USER_NOT_FOUND", nil)
		}

		log.Println("Admin order listing failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to list orders", "ORDER_LIST_FAILED", nil)
	}

	c.Set("X-Total-Count", strconv.FormatInt(total, 10))
	return successResponse(c, fiber.StatusOK, "Orders retrieved successfully", orders)
}

// GetOrder returns any order by sequential id or storage key
// @Summary Get Order (admin)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order sequential id or storage key"
// @Success 200 {object} dto.APIResponse{data=dto.OrderDTO} "Order"
// @Failure 404 {object} dto.APIResponse "Order not found"
// @Router /api/v1/admin/orders/{id} [get]
func (h *AdminHandler) GetOrder(c fiber.Ctx) error {
	if _, ok := currentAdmin(c); !ok {
		return nil
	}

	order, err := h.adminOrderFlow.GetOrder(requestContext(c), c.Params("id"))
	if err != nil {
		if businessflow.IsOrderNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Order not found", "ORDER_NOT_FOUND", nil)
		}

		log.Println("Admin order fetch failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to fetch order", "ORDER_FETCH_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Order retrieved successfully", order)
}

// UpdateOrderStatus moves an order along the status state machine
// @Summary Update Order Status
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order sequential id or storage key"
// @Param request body dto.UpdateOrderStatusRequest true "Target status"
// @Success 200 {object} dto.APIResponse{data=dto.OrderDTO} "Updated order"
// @Failure 404 {object} dto.APIResponse "Order not found"
// @Failure 409 {object} dto.APIResponse "Invalid status change"
// @Router /api/v1/admin/orders/{id}/status [put]
func (h *AdminHandler) UpdateOrderStatus(c fiber.Ctx) error {
	if _, ok := currentAdmin(c); !ok {
		return nil
	}

	var req dto.UpdateOrderStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	order, err := h.adminOrderFlow.UpdateStatus(requestContext(c), c.Params("id"), &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsOrderNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Order not found", "ORDER_NOT_FOUND", nil)
		}
		if businessflow.IsInvalidStatusChange(err) {
			return errorResponse(c, fiber.StatusConflict, "Invalid order status change", "INVALID_STATUS_CHANGE", nil)
		}

		log.Println("Order status update failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to update order status", "ORDER_STATUS_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Order status updated", order)
}

// ExportOrders streams the filtered order listing as an Excel workbook
// @Summary Export Orders
// @Tags Admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param status query string false "Order status"
// @Param user query string false "User sequential id or storage key"
// @Success 200 {file} binary "Excel workbook"
// @Router /api/v1/admin/orders/export [get]
func (h *AdminHandler) ExportOrders(c fiber.Ctx) error {
	if _, ok := currentAdmin(c); !ok {
		return nil
	}

	var req dto.AdminListOrdersRequest
	if err := c.Bind().Query(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	filename, content, err := h.adminOrderFlow.ExportOrders(requestContext(c), &req)
	if err != nil {
		if businessflow.IsUserNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "User not found", "USER_NOT_FOUND", nil)
		}

		log.Println("Order export failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to export orders", "ORDER_EXPORT_FAILED", nil)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(content)
}

// ListUsers lists users with optional account type and activity filters
// @Summary List Users
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param account_type query string false "personal or institute"
// @Param is_active query bool false "Active accounts only"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.AdminListUsersResponse} "Users"
// @Router /api/v1/admin/users [get]
func (h *AdminHandler) ListUsers(c fiber.Ctx) error {
	if _, ok := currentAdmin(c); !ok {
		return nil
	}

	var req dto.AdminListUsersRequest
	if err := c.Bind().Query(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	result, err := h.adminUserFlow.ListUsers(requestContext(c), &req)
	if err != nil {
		log.Println("User listing failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to list users", "USER_LIST_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Users retrieved successfully", result)
}

// GetUser returns one user by sequential id or storage key
// @Summary Get User
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "User sequential id or storage key"
// @Success 200 {object} dto.APIResponse{data=dto.UserDTO} "User"
// @Failure 404 {object} dto.APIResponse "User not found"
// @Router /api/v1/admin/users/{id} [get]
func (h *AdminHandler) GetUser(c fiber.Ctx) error {
	if _, ok := currentAdmin(c); !ok {
		return nil
	}

	user, err := h.adminUserFlow.GetUser(requestContext(c), c.Params("id"))
	if err != nil {
		if businessflow.IsUserNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "User not found", "USER_NOT_FOUND", nil)
		}

		log.Println("User fetch failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to fetch user", "USER_FETCH_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "User retrieved successfully", user)
}

// SetUserActive activates or deactivates a user account
// @Summary Set User Active
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User sequential id or storage key"
// @Param request body dto.SetUserActiveRequest true "Target state"
// @Success 200 {object} dto.APIResponse{data=dto.UserDTO} "Updated user"
// @Failure 404 {object} dto.APIResponse "User not found"
// @Router /api/v1/admin/users/{id}/active [put]
func (h *AdminHandler) SetUserActive(c fiber.Ctx) error {
	if _, ok := currentAdmin(c); !ok {
		return nil
	}

	var req dto.SetUserActiveRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	user, err := h.adminUserFlow.SetUserActive(requestContext(c), c.Params("id"), &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsUserNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "User not found", "USER_NOT_FOUND", nil)
		}

		log.Println("User activation update failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to update user", "USER_UPDATE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "User updated", user)
}

// ListVerifications lists institute verification requests
// @Summary List Institute Verifications
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved or rejected"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=[]dto.InstituteVerificationDTO} "Verifications"
// @Router /api/v1/admin/verifications [get]
func (h *AdminHandler) ListVerifications(c fiber.Ctx) error {
	if _, ok := currentAdmin(c); !ok {
		return nil
	}

	page := fiber.Query(c, "page", 0)
	pageSize := fiber.Query(c, "page_size", 0)

	verifications, err := h.adminUserFlow.ListVerifications(requestContext(c), c.Query("status"), page, pageSize)
	if err != nil {
		log.Println("Verification listing failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to list verifications", "VERIFICATION_LIST_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Verifications retrieved successfully", verifications)
}

// ReviewVerification approves or rejects an institute verification request
// @Summary Review Institute Verification
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Verification storage key"
// @Param request body dto.ReviewVerificationRequest true "Review decision"
// @Success 200 {object} dto.APIResponse{data=dto.InstituteVerificationDTO} "Reviewed verification"
// @Failure 404 {object} dto.APIResponse "Verification not found"
// @Failure 409 {object} dto.APIResponse "Verification already reviewed"
// @Router /api/v1/admin/verifications/{id}/review [post]
func (h *AdminHandler) ReviewVerification(c fiber.Ctx) error {
	admin, ok := currentAdmin(c)
	if !ok {
		return nil
	}

	var req dto.ReviewVerificationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	verification, err := h.adminUserFlow.ReviewVerification(requestContext(c), admin, c.Params("id"), &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsVerificationNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Verification not found", "VERIFICATION_NOT_FOUND", nil)
		}
		if errors.Is(err, businessflow.ErrVerificationAlreadyClosed) {
			return errorResponse(c, fiber.StatusConflict, "Verification already reviewed", "VERIFICATION_CLOSED", nil)
		}

		log.Println("Verification review failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to review verification", "VERIFICATION_REVIEW_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Verification reviewed", verification)
}
