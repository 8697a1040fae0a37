// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/smart-stationery/backend/app/dto"
	"github.com/smart-stationery/backend/config"
	"github.com/smart-stationery/backend/models"
	"github.com/smart-stationery/backend/repository"
	"github.com/smart-stationery/backend/utils"
	"gorm.io/gorm"
)

// AdminCatalogFlow manages the catalog from the back office
type AdminCatalogFlow interface {
	CreateCategory(ctx context.Context, req *dto.CreateCategoryRequest) (*dto.CategoryDTO, error)
	UpdateCategory(ctx context.Context, raw string, req *dto.UpdateCategoryRequest) (*dto.CategoryDTO, error)
	CreateProduct(ctx context.Context, req *dto.CreateProductRequest) (*dto.ProductDTO, error)
	UpdateProduct(ctx context.Context, raw string, req *dto.UpdateProductRequest) (*dto.ProductDTO, error)
	DeleteProduct(ctx context.Context, raw string) error
}

// AdminCatalogFlowImpl implements the back-office catalog flow
type AdminCatalogFlowImpl struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	sequenceRepo repository.SequenceRepository
	rc           *redis.Client
	cacheConfig  *config.CacheConfig
	db           *gorm.DB
}

// NewAdminCatalogFlow creates a new back-office catalog flow instance
func NewAdminCatalogFlow(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	sequenceRepo repository.SequenceRepository,
	rc *redis.Client,
	cacheConfig *config.CacheConfig,
	db *gorm.DB,
) AdminCatalogFlow {
	return &AdminCatalogFlowImpl{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		sequenceRepo: sequenceRepo,
		rc:           rc,
		cacheConfig:  cacheConfig,
		db:           db,
	}
}

// CreateCategory inserts a category and stamps its sequential id
func (acf *AdminCatalogFlowImpl) CreateCategory(ctx context.Context, req *dto.CreateCategoryRequest) (*dto.CategoryDTO, error) {
	existing, err := acf.categoryRepo.BySlug(ctx, req.Slug)
	if err != nil {
		return nil, NewBusinessError("CATEGORY_CREATION_FAILED", "Category creation failed", err)
	}
	if existing != nil {
		return nil, NewBusinessError("CATEGORY_CREATION_FAILED", "Category creation failed", ErrSlugAlreadyExists)
	}

	category := &models.Category{
		UUID: uuid.New(),
		Name: req.Name,
		Slug: req.Slug,
	}
	if req.Description != "" {
		category.Description = &req.Description
	}

	err = repository.WithTransaction(ctx, acf.db, func(txCtx context.Context) error {
		return acf.categoryRepo.SaveWithSequentialID(txCtx, category, acf.sequenceRepo)
	})
	if err != nil {
		return nil, NewBusinessError("CATEGORY_CREATION_FAILED", "Category creation failed", err)
	}

	InvalidateCatalogCache(ctx, acf.rc, acf.cacheConfig)

	out := ToCategoryDTO(*category)
	return &out, nil
}

// UpdateCategory applies a partial update to a category
func (acf *AdminCatalogFlowImpl) UpdateCategory(ctx context.Context, raw string, req *dto.UpdateCategoryRequest) (*dto.CategoryDTO, error) {
	category, err := acf.categoryRepo.ByAnyID(ctx, raw)
	if err != nil {
		return nil, NewBusinessError("CATEGORY_UPDATE_FAILED", "Category update failed", err)
	}
	if category == nil {
		return nil, NewBusinessError("CATEGORY_NOT_FOUND", "Category not found", ErrCategoryNotFound)
	}

	if req.Slug != nil && *req.Slug != category.Slug {
		existing, err := acf.categoryRepo.BySlug(ctx, *req.Slug)
		if err != nil {
			return nil, NewBusinessError("CATEGORY_UPDATE_FAILED", "Category update failed", err)
		}
		if existing != nil {
			return nil, NewBusinessError("CATEGORY_UPDATE_FAILED", "Category update failed", ErrSlugAlreadyExists)
		}
		category.Slug = *req.Slug
	}
	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Description != nil {
		category.Description = req.Description
	}

	if err := acf.categoryRepo.Update(ctx, category); err != nil {
		return nil, NewBusinessError("CATEGORY_UPDATE_FAILED", "Category update failed", err)
	}

	InvalidateCatalogCache(ctx, acf.rc, acf.cacheConfig)

	out := ToCategoryDTO(*category)
	return &out, nil
}

// CreateProduct inserts a product and stamps its sequential id
func (acf *AdminCatalogFlowImpl) CreateProduct(ctx context.Context, req *dto.CreateProductRequest) (*dto.ProductDTO, error) {
	category, err := acf.categoryRepo.ByAnyID(ctx, req.Category)
	if err != nil {
		return nil, NewBusinessError("PRODUCT_CREATION_FAILED", "Product creation failed", err)
	}
	if category == nil {
		return nil, NewBusinessError("CATEGORY_NOT_FOUND", "Category not found", ErrCategoryNotFound)
	}

	product := &models.Product{
		UUID:       uuid.New(),
		CategoryID: category.ID,
		Name:       req.Name,
		UnitPrice:  req.UnitPrice,
		Stock:      req.Stock,
		IsActive:   utils.ToPtr(true),
	}
	if req.Description != "" {
		product.Description = &req.Description
	}
	if req.Brand != "" {
		product.Brand = &req.Brand
	}
	if req.ImageURL != "" {
		product.ImageURL = &req.ImageURL
	}
	if len(req.Tags) > 0 {
		product.Tags = pq.StringArray(req.Tags)
	}

	err = repository.WithTransaction(ctx, acf.db, func(txCtx context.Context) error {
		return acf.productRepo.SaveWithSequentialID(txCtx, product, acf.sequenceRepo)
	})
	if err != nil {
		return nil, NewBusinessError("PRODUCT_CREATION_FAILED", "Product creation failed", err)
	}

	InvalidateCatalogCache(ctx, acf.rc, acf.cacheConfig)

	out := ToProductDTO(*product)
	return &out, nil
}

// UpdateProduct applies a partial update to a product
func (acf *AdminCatalogFlowImpl) UpdateProduct(ctx context.Context, raw string, req *dto.UpdateProductRequest) (*dto.ProductDTO, error) {
	product, err := acf.productRepo.ByAnyID(ctx, raw)
	if err != nil {
		return nil, NewBusinessError("PRODUCT_UPDATE_FAILED", "Product update failed", err)
	}
	if product == nil {
		return nil, NewBusinessError("PRODUCT_NOT_FOUND", "Product not found", ErrProductNotFound)
	}

	if req.Category != nil {
		category, err := acf.categoryRepo.ByAnyID(ctx, *req.Category)
		if err != nil {
			return nil, NewBusinessError("PRODUCT_UPDATE_FAILED", "Product update failed", err)
		}
		if category == nil {
			return nil, NewBusinessError("CATEGORY_NOT_FOUND", "Category not found", ErrCategoryNotFound)
		}
		product.CategoryID = category.ID
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.Brand != nil {
		product.Brand = req.Brand
	}
	if req.UnitPrice != nil {
		product.UnitPrice = *req.UnitPrice
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.ImageURL != nil {
		product.ImageURL = req.ImageURL
	}
	if req.Tags != nil {
		product.Tags = pq.StringArray(req.Tags)
	}
	if req.IsActive != nil {
		product.IsActive = req.IsActive
	}

	if err := acf.productRepo.Update(ctx, product); err != nil {
		return nil, NewBusinessError("PRODUCT_UPDATE_FAILED", "Product update failed", err)
	}

	InvalidateCatalogCache(ctx, acf.rc, acf.cacheConfig)

	out := ToProductDTO(*product)
	return &out, nil
}

// DeleteProduct removes a product. Existing order lines keep their reference
// and resolve it to not-found from then on.
func (acf *AdminCatalogFlowImpl) DeleteProduct(ctx context.Context, raw string) error {
	product, err := acf.productRepo.ByAnyID(ctx, raw)
	if err != nil {
		return NewBusinessError("PRODUCT_DELETION_FAILED", "Product deletion failed", err)
	}
	if product == nil {
		return NewBusinessError("PRODUCT_NOT_FOUND", "Product not found", ErrProductNotFound)
	}

	if err := acf.productRepo.Delete(ctx, product.UUID); err != nil {
		return NewBusinessError("PRODUCT_DELETION_FAILED", "Product deletion failed", err)
	}

	InvalidateCatalogCache(ctx, acf.rc, acf.cacheConfig)

	return nil
}
