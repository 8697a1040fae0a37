// Package dto contains Data Transfer Objects for API request and response structures
package dto

// CategoryDTO represents category data for API responses
type CategoryDTO struct {
	ID          int64  `json:"id"`
	UUID        string `json:"uuid"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

// ProductDTO represents product data for API responses
type ProductDTO struct {
	ID          int64  `json:"id"`
	UUID        string `json:"uuid"`
	CategoryID  int64  `json:"category_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Brand       string `json:"brand,omitempty"`
	UnitPrice   int64  `json:"unit_price"` // Tomans
	Stock       int      `json:"stock"`
	InStock     bool     `json:"in_stock"`
	ImageURL    string   `json:"image_url,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	IsActive    *bool    `json:"is_active,omitempty"`
}

// ListProductsRequest filters the catalog listing
type ListProductsRequest struct {
	Category *string `json:"category,omitempty" query:"category" validate:"omitempty"` // sequential id or storage key
	Brand    *string `json:"brand,omitempty" query:"brand" validate:"omitempty,max=120"`
	Search   *string `json:"search,omitempty" query:"search" validate:"omitempty,max=120"`
	InStock  *bool   `json:"in_stock,omitempty" query:"in_stock"`
	Page     int     `json:"page" query:"page" validate:"omitempty,min=1"`
	PageSize int     `json:"page_size" query:"page_size" validate:"omitempty,min=1,max=100"`
}

// ListProductsResponse is a page of the catalog
type ListProductsResponse struct {
	Products []ProductDTO `json:"products"`
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
}

// CreateCategoryRequest creates a category (admin)
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Slug        string `json:"slug" validate:"required,max=120"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

// UpdateCategoryRequest updates a category (admin)
type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=120"`
	Slug        *string `json:"slug,omitempty" validate:"omitempty,max=120"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

// CreateProductRequest creates a product (admin)
type CreateProductRequest struct {
	Category    string `json:"category" validate:"required"` // sequential id or storage key
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	Brand       string `json:"brand" validate:"omitempty,max=120"`
	UnitPrice   int64    `json:"unit_price" validate:"required,min=0"`
	Stock       int      `json:"stock" validate:"min=0"`
	ImageURL    string   `json:"image_url" validate:"omitempty,url,max=500"`
	Tags        []string `json:"tags" validate:"omitempty,max=20,dive,max=50"`
}

// UpdateProductRequest updates a product (admin)
type UpdateProductRequest struct {
	Category    *string `json:"category,omitempty" validate:"omitempty"`
	Name        *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Brand       *string `json:"brand,omitempty" validate:"omitempty,max=120"`
	UnitPrice   *int64  `json:"unit_price,omitempty" validate:"omitempty,min=0"`
	Stock       *int    `json:"stock,omitempty" validate:"omitempty,min=0"`
	ImageURL    *string  `json:"image_url,omitempty" validate:"omitempty,url,max=500"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=50"`
	IsActive    *bool    `json:"is_active,omitempty"`
}
