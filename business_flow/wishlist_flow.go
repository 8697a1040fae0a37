// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/smart-stationery/backend/app/dto"
	"github.com/smart-stationery/backend/models"
	"github.com/smart-stationery/backend/repository"
	"github.com/smart-stationery/backend/utils"
)

// WishlistFlow manages a user's wishlist
type WishlistFlow interface {
	AddItem(ctx context.Context, user *models.User, req *dto.AddWishlistItemRequest) ([]dto.WishlistItemDTO, error)
	RemoveItem(ctx context.Context, user *models.User, itemUUID string) ([]dto.WishlistItemDTO, error)
	List(ctx context.Context, user *models.User) ([]dto.WishlistItemDTO, error)
}

// WishlistFlowImpl implements the wishlist business flow
type WishlistFlowImpl struct {
	wishlistRepo repository.WishlistRepository
	productRepo  repository.ProductRepository
}

// NewWishlistFlow creates a new wishlist flow instance
func NewWishlistFlow(wishlistRepo repository.WishlistRepository, productRepo repository.ProductRepository) WishlistFlow {
	return &WishlistFlowImpl{
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
	}
}

// AddItem puts a product on the wishlist once per user
func (wf *WishlistFlowImpl) AddItem(ctx context.Context, user *models.User, req *dto.AddWishlistItemRequest) ([]dto.WishlistItemDTO, error) {
	product, err := wf.productRepo.ByAnyID(ctx, req.Product)
	if err != nil {
		return nil, NewBusinessError("WISHLIST_ADD_FAILED", "Failed to add to wishlist", err)
	}
	if product == nil || !utils.IsTrue(product.IsActive) {
		return nil, NewBusinessError("PRODUCT_NOT_FOUND", "Product not found", ErrProductNotFound)
	}

	ref := models.NewIDRef(product.ID)

	existing, err := wf.wishlistRepo.ByUserAndRef(ctx, user.ID, ref)
	if err != nil {
		return nil, NewBusinessError("WISHLIST_ADD_FAILED", "Failed to add to wishlist", err)
	}
	if existing != nil {
		return nil, NewBusinessError("WISHLIST_ADD_FAILED", "Failed to add to wishlist", ErrAlreadyInWishlist)
	}

	item := &models.WishlistItem{
		UUID:       uuid.New(),
		UserID:     user.ID,
		ProductRef: ref,
	}
	if err := wf.wishlistRepo.Save(ctx, item); err != nil {
		return nil, NewBusinessError("WISHLIST_ADD_FAILED", "Failed to add to wishlist", err)
	}

	return wf.List(ctx, user)
}

// RemoveItem deletes one wishlist entry
func (wf *WishlistFlowImpl) RemoveItem(ctx context.Context, user *models.User, itemUUID string) ([]dto.WishlistItemDTO, error) {
	key, err := uuid.Parse(itemUUID)
	if err != nil {
		return nil, NewBusinessError("WISHLIST_ITEM_NOT_FOUND", "Wishlist item not found", ErrWishlistItemNotFound)
	}

	item, err := wf.wishlistRepo.ByUUID(ctx, key)
	if err != nil {
		return nil, NewBusinessError("WISHLIST_FETCH_FAILED", "Failed to fetch wishlist", err)
	}
	if item == nil || item.UserID != user.ID {
		return nil, NewBusinessError("WISHLIST_ITEM_NOT_FOUND", "Wishlist item not found", ErrWishlistItemNotFound)
	}

	if err := wf.wishlistRepo.Delete(ctx, item.UUID); err != nil {
		return nil, NewBusinessError("WISHLIST_REMOVE_FAILED", "Failed to remove from wishlist", err)
	}

	return wf.List(ctx, user)
}

// List returns the wishlist with resolved products. Entries whose product no
// longer resolves are kept without product data.
func (wf *WishlistFlowImpl) List(ctx context.Context, user *models.User) ([]dto.WishlistItemDTO, error) {
	items, err := wf.wishlistRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, NewBusinessError("WISHLIST_FETCH_FAILED", "Failed to fetch wishlist", err)
	}

	out := make([]dto.WishlistItemDTO, 0, len(items))
	for _, item := range items {
		entry := dto.WishlistItemDTO{
			UUID:    item.UUID.String(),
			AddedAt: item.CreatedAt.Format(time.RFC3339),
		}

		product, err := wf.productRepo.ByRef(ctx, item.ProductRef)
		if err != nil {
			return nil, NewBusinessError("WISHLIST_FETCH_FAILED", "Failed to fetch wishlist", err)
		}
		if product != nil {
			p := ToProductDTO(*product)
			entry.Product = &p
		}

		out = append(out, entry)
	}

	return out, nil
}
