// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/smart-stationery/backend/app/dto"
	businessflow "github.com/smart-stationery/backend/business_flow"
)

// CatalogHandlerInterface defines the contract for public catalog handlers
type CatalogHandlerInterface interface {
	ListCategories(c fiber.Ctx) error
	GetCategory(c fiber.Ctx) error
	ListProducts(c fiber.Ctx) error
	GetProduct(c fiber.Ctx) error
}

// CatalogHandler handles public catalog browsing
type CatalogHandler struct {
	catalogFlow businessflow.CatalogFlow
	validator   *validator.Validate
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogFlow businessflow.CatalogFlow) *CatalogHandler {
	return &CatalogHandler{
		catalogFlow: catalogFlow,
		validator:   validator.New(),
	}
}

// ListCategories lists all categories
// @Summary List Categories
// @Tags Catalog
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.CategoryDTO} "Categories"
// @Router /api/v1/categories [get]
func (h *CatalogHandler) ListCategories(c fiber.Ctx) error {
	categories, err := h.catalogFlow.ListCategories(requestContext(c))
	if err != nil {
		log.Println("Category listing failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to list categories", "CATEGORY_LIST_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Categories retrieved successfully", categories)
}

// GetCategory returns one category by sequential id, storage key or slug
// @Summary Get Category
// @Tags Catalog
// @Produce json
// @Param id path string true "Category sequential id, storage key or slug"
// @Success 200 {object} dto.APIResponse{data=dto.CategoryDTO} "Category"
// @Failure 404 {object} dto.APIResponse "Category not found"
// @Router /api/v1/categories/{id} [get]
func (h *CatalogHandler) GetCategory(c fiber.Ctx) error {
	category, err := h.catalogFlow.GetCategory(requestContext(c), c.Params("id"))
	if err != nil {
		if businessflow.IsCategoryNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Category not found", "CATEGORY_NOT_FOUND", nil)
		}

		log.Println("Category lookup failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to lookup category", "CATEGORY_LOOKUP_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Category retrieved successfully", category)
}

// ListProducts lists a filtered page of active products
// @Summary List Products
// @Tags Catalog
// @Produce json
// @Param category query string false "Category sequential id or storage key"
// @Param brand query string false "Brand"
// @Param search query string false "Name search"
// @Param in_stock query bool false "Only in-stock products"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListProductsResponse} "Products"
// @Router /api/v1/products [get]
func (h *CatalogHandler) ListProducts(c fiber.Ctx) error {
	var req dto.ListProductsRequest
	if err := c.Bind().Query(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	result, err := h.catalogFlow.ListProducts(requestContext(c), &req)
	if err != nil {
		if businessflow.IsCategoryNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Category not found", "CATEGORY_NOT_FOUND", nil)
		}

		log.Println("Product listing failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to list products", "PRODUCT_LIST_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Products retrieved successfully", result)
}

// GetProduct returns one product by sequential id or storage key
// @Summary Get Product
// @Tags Catalog
// @Produce json
// @Param id path string true "Product sequential id or storage key"
// @Success 200 {object} dto.APIResponse{data=dto.ProductDTO} "Product"
// @Failure 404 {object} dto.APIResponse "Product not found"
// @Router /api/v1/products/{id} [get]
func (h *CatalogHandler) GetProduct(c fiber.Ctx) error {
	product, err := h.catalogFlow.GetProduct(requestContext(c), c.Params("id"))
	if err != nil {
		if businessflow.IsProductNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Product not found", "PRODUCT_NOT_FOUND", nil)
		}

		log.Println("Product lookup failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to lookup product", "PRODUCT_LOOKUP_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Product retrieved successfully", product)
}
