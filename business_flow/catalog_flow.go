// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/smart-stationery/backend/app/dto"
	"github.com/smart-stationery/backend/config"
	"github.com/smart-stationery/backend/models"
	"github.com/smart-stationery/backend/repository"
	"github.com/smart-stationery/backend/utils"
)

const catalogCacheVersionKey = "catalog:version"

// CatalogFlow serves the public product catalog
type CatalogFlow interface {
	ListCategories(ctx context.Context) ([]dto.CategoryDTO, error)
	GetCategory(ctx context.Context, raw string) (*dto.CategoryDTO, error)
	ListProducts(ctx context.Context, req *dto.ListProductsRequest) (*dto.ListProductsResponse, error)
	GetProduct(ctx context.Context, raw string) (*dto.ProductDTO, error)
}

// CatalogFlowImpl implements the public catalog flow with an optional redis cache
type CatalogFlowImpl struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	rc           *redis.Client
	cacheConfig  *config.CacheConfig
}

// NewCatalogFlow creates a new catalog flow instance
func NewCatalogFlow(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	rc *redis.Client,
	cacheConfig *config.CacheConfig,
) CatalogFlow {
	return &CatalogFlowImpl{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		rc:           rc,
		cacheConfig:  cacheConfig,
	}
}

// ListCategories returns all categories ordered by name
func (cf *CatalogFlowImpl) ListCategories(ctx context.Context) ([]dto.CategoryDTO, error) {
	cacheKey, _ := cf.cacheKey(ctx, "categories")

	if cf.cacheEnabled() && cacheKey != "" {
		if bs, err := cf.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(bs) > 0 {
			var cached []dto.CategoryDTO
			if err := json.Unmarshal(bs, &cached); err == nil {
				return cached, nil
			}
		}
	}

	categories, err := cf.categoryRepo.List(ctx)
	if err != nil {
		return nil, NewBusinessError("CATEGORY_LIST_FAILED", "Failed to list categories", err)
	}

	out := make([]dto.CategoryDTO, 0, len(categories))
	for _, category := range categories {
		out = append(out, ToCategoryDTO(*category))
	}

	if cf.cacheEnabled() && cacheKey != "" {
		if bs, err := json.Marshal(out); err == nil {
			_ = cf.rc.Set(ctx, cacheKey, bs, cf.cacheConfig.CatalogTTL).Err()
		}
	}

	return out, nil
}

// GetCategory resolves a category by sequential id, storage key or slug
func (cf *CatalogFlowImpl) GetCategory(ctx context.Context, raw string) (*dto.CategoryDTO, error) {
	category, err := cf.categoryRepo.ByAnyID(ctx, raw)
	if err != nil {
		return nil, NewBusinessError("CATEGORY_LOOKUP_FAILED", "Failed to lookup category", err)
	}
	if category == nil {
		category, err = cf.categoryRepo.BySlug(ctx, raw)
		if err != nil {
			return nil, NewBusinessError("CATEGORY_LOOKUP_FAILED", "Failed to lookup category", err)
		}
	}
	if category == nil {
		return nil, NewBusinessError("CATEGORY_NOT_FOUND", "Category not found", ErrCategoryNotFound)
	}

	out := ToCategoryDTO(*category)
	return &out, nil
}

// ListProducts returns a filtered page of active products
func (cf *CatalogFlowImpl) ListProducts(ctx context.Context, req *dto.ListProductsRequest) (*dto.ListProductsResponse, error) {
	page, pageSize, err := normalizePage(req.Page, req.PageSize)
	if err != nil {
		return nil, NewBusinessError("PRODUCT_LIST_VALIDATION_FAILED", "Product listing validation failed", err)
	}

	filter := models.ProductFilter{
		IsActive: utils.ToPtr(true),
		Brand:    req.Brand,
		Name:     req.Search,
		InStock:  req.InStock,
	}

	// Resolve the category reference to its sequential id
	if req.Category != nil && *req.Category != "" {
		category, err := cf.categoryRepo.ByAnyID(ctx, *req.Category)
		if err != nil {
			return nil, NewBusinessError("PRODUCT_LIST_FAILED", "Failed to list products", err)
		}
		if category == nil {
			return nil, NewBusinessError("CATEGORY_NOT_FOUND", "Category not found", ErrCategoryNotFound)
		}
		filter.CategoryID = &category.ID
	}

	cacheKey, _ := cf.cacheKey(ctx, productsCacheSuffix(filter, page, pageSize))

	if cf.cacheEnabled() && cacheKey != "" {
		if bs, err := cf.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(bs) > 0 {
			var cached dto.ListProductsResponse
			if err := json.Unmarshal(bs, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	total, err := cf.productRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("PRODUCT_LIST_FAILED", "Failed to list products", err)
	}

	products, err := cf.productRepo.ByFilter(ctx, filter, "id ASC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("PRODUCT_LIST_FAILED", "Failed to list products", err)
	}

	out := &dto.ListProductsResponse{
		Products: make([]dto.ProductDTO, 0, len(products)),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	for _, product := range products {
		out.Products = append(out.Products, ToProductDTO(*product))
	}

	if cf.cacheEnabled() && cacheKey != "" {
		if bs, err := json.Marshal(out); err == nil {
			_ = cf.rc.Set(ctx, cacheKey, bs, cf.cacheConfig.CatalogTTL).Err()
		}
	}

	return out, nil
}

// GetProduct resolves an active product by sequential id or storage key
func (cf *CatalogFlowImpl) GetProduct(ctx context.Context, raw string) (*dto.ProductDTO, error) {
	product, err := cf.productRepo.ByAnyID(ctx, raw)
	if err != nil {
		return nil, NewBusinessError("PRODUCT_LOOKUP_FAILED", "Failed to lookup product", err)
	}
	if product == nil || !utils.IsTrue(product.IsActive) {
		return nil, NewBusinessError("PRODUCT_NOT_FOUND", "Product not found", ErrProductNotFound)
	}

	out := ToProductDTO(*product)
	return &out, nil
}

// Private helper methods

func (cf *CatalogFlowImpl) cacheEnabled() bool {
	return cf.rc != nil && cf.cacheConfig != nil && cf.cacheConfig.Enabled
}

// cacheKey builds a versioned cache key so writers can invalidate every
// catalog page with a single INCR.
func (cf *CatalogFlowImpl) cacheKey(ctx context.Context, suffix string) (string, error) {
	if !cf.cacheEnabled() {
		return "", ErrCacheNotAvailable
	}

	ver, err := cf.rc.Get(ctx, cf.cacheConfig.RedisPrefix+catalogCacheVersionKey).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}
	if err == redis.Nil {
		ver = 0
	}

	return fmt.Sprintf("%scatalog:v%d:%s", cf.cacheConfig.RedisPrefix, ver, suffix), nil
}

func productsCacheSuffix(filter models.ProductFilter, page, pageSize int) string {
	categoryID := int64(0)
	if filter.CategoryID != nil {
		categoryID = *filter.CategoryID
	}
	brand := ""
	if filter.Brand != nil {
		brand = *filter.Brand
	}
	search := ""
	if filter.Name != nil {
		search = *filter.Name
	}
	inStock := ""
	if filter.InStock != nil {
		inStock = strconv.FormatBool(*filter.InStock)
	}
	return fmt.Sprintf("products:c%d:b%s:s%s:i%s:p%d:n%d", categoryID, brand, search, inStock, page, pageSize)
}

// InvalidateCatalogCache bumps the catalog cache version so every cached page
// is ignored from now on. Used by the admin catalog flow after writes.
func InvalidateCatalogCache(ctx context.Context, rc *redis.Client, cacheConfig *config.CacheConfig) {
	if rc == nil || cacheConfig == nil || !cacheConfig.Enabled {
		return
	}
	_ = rc.Incr(ctx, cacheConfig.RedisPrefix+catalogCacheVersionKey).Err()
}

func normalizePage(page, pageSize int) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = 20
	}
	if page < 1 {
		return 0, 0, ErrInvalidPage
	}
	if pageSize < 1 || pageSize > 100 {
		return 0, 0, ErrInvalidPageSize
	}
	return page, pageSize, nil
}
