// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"

	"github.com/google/uuid"
	"github.com/smart-stationery/backend/app/dto"
	"github.com/smart-stationery/backend/models"
	"github.com/smart-stationery/backend/repository"
	"github.com/smart-stationery/backend/utils"
	"gorm.io/gorm"
)

// CartFlow manages a user's shopping cart
type CartFlow interface {
	AddItem(ctx context.Context, user *models.User, req *dto.AddCartItemRequest) (*dto.CartDTO, error)
	UpdateItem(ctx context.Context, user *models.User, itemUUID string, req *dto.UpdateCartItemRequest) (*dto.CartDTO, error)
	RemoveItem(ctx context.Context, user *models.User, itemUUID string) (*dto.CartDTO, error)
	GetCart(ctx context.Context, user *models.User) (*dto.CartDTO, error)
	ClearCart(ctx context.Context, user *models.User) error
}

// CartFlowImpl implements the cart business flow
type CartFlowImpl struct {
	cartRepo    repository.CartItemRepository
	productRepo repository.ProductRepository
	db          *gorm.DB
}

// NewCartFlow creates a new cart flow instance
func NewCartFlow(cartRepo repository.CartItemRepository, productRepo repository.ProductRepository, db *gorm.DB) CartFlow {
	return &CartFlowImpl{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		db:          db,
	}
}

// AddItem puts a product into the cart, folding into the existing line when
// the user already has one for the same product.
func (cf *CartFlowImpl) AddItem(ctx context.Context, user *models.User, req *dto.AddCartItemRequest) (*dto.CartDTO, error) {
	if req.Quantity < 1 || req.Quantity > utils.MaxCartItemQuantity {
		return nil, NewBusinessError("CART_VALIDATION_FAILED", "Cart validation failed", ErrQuantityOutOfRange)
	}

	product, err := cf.productRepo.ByAnyID(ctx, req.Product)
	if err != nil {
		return nil, NewBusinessError("CART_ADD_FAILED", "Failed to add to cart", err)
	}
	if product == nil || !utils.IsTrue(product.IsActive) {
		return nil, NewBusinessError("PRODUCT_NOT_FOUND", "Product not found", ErrProductNotFound)
	}

	// New cart lines always reference by sequential id
	ref := models.NewIDRef(product.ID)

	err = repository.WithTransaction(ctx, cf.db, func(txCtx context.Context) error {
		existing, err := cf.cartRepo.ByUserAndRef(txCtx, user.ID, ref)
		if err != nil {
			return err
		}

		if existing != nil {
			quantity := existing.Quantity + req.Quantity
			if quantity > utils.MaxCartItemQuantity {
				return ErrQuantityOutOfRange
			}
			return cf.cartRepo.UpdateQuantity(txCtx, existing.UUID, quantity)
		}

		item := &models.CartItem{
			UUID:       uuid.New(),
			UserID:     user.ID,
			ProductRef: ref,
			Quantity:   req.Quantity,
		}
		return cf.cartRepo.Save(txCtx, item)
	})
	if err != nil {
		return nil, NewBusinessError("CART_ADD_FAILED", "Failed to add to cart", err)
	}

	return cf.GetCart(ctx, user)
}

// UpdateItem changes the quantity of one cart line
func (cf *CartFlowImpl) UpdateItem(ctx context.Context, user *models.User, itemUUID string, req *dto.UpdateCartItemRequest) (*dto.CartDTO, error) {
	if req.Quantity < 1 || req.Quantity > utils.MaxCartItemQuantity {
		return nil, NewBusinessError("CART_VALIDATION_FAILED", "Cart validation failed", ErrQuantityOutOfRange)
	}

	item, err := cf.ownedItem(ctx, user, itemUUID)
	if err != nil {
		return nil, err
	}

	if err := cf.cartRepo.UpdateQuantity(ctx, item.UUID, req.Quantity); err != nil {
		return nil, NewBusinessError("CART_UPDATE_FAILED", "Failed to update cart", err)
	}

	return cf.GetCart(ctx, user)
}

// RemoveItem deletes one cart line
func (cf *CartFlowImpl) RemoveItem(ctx context.Context, user *models.User, itemUUID string) (*dto.CartDTO, error) {
	item, err := cf.ownedItem(ctx, user, itemUUID)
	if err != nil {
		return nil, err
	}

	if err := cf.cartRepo.Delete(ctx, item.UUID); err != nil {
		return nil, NewBusinessError("CART_REMOVE_FAILED", "Failed to remove from cart", err)
	}

	return cf.GetCart(ctx, user)
}

// GetCart returns all cart lines with resolved products. A line whose product
// no longer resolves keeps its quantity but carries no product and contributes
// nothing to the total.
func (cf *CartFlowImpl) GetCart(ctx context.Context, user *models.User) (*dto.CartDTO, error) {
	items, err := cf.cartRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, NewBusinessError("CART_FETCH_FAILED", "Failed to fetch cart", err)
	}

	cart := &dto.CartDTO{Items: make([]dto.CartItemDTO, 0, len(items))}
	for _, item := range items {
		line := dto.CartItemDTO{
			UUID:     item.UUID.String(),
			Quantity: item.Quantity,
		}

		product, err := cf.productRepo.ByRef(ctx, item.ProductRef)
		if err != nil {
			return nil, NewBusinessError("CART_FETCH_FAILED", "Failed to fetch cart", err)
		}
		if product != nil {
			p := ToProductDTO(*product)
			line.Product = &p
			line.LineTotal = product.UnitPrice * int64(item.Quantity)
			cart.Total += line.LineTotal
		}

		cart.Items = append(cart.Items, line)
	}

	return cart, nil
}

// ClearCart removes every line of the user's cart
func (cf *CartFlowImpl) ClearCart(ctx context.Context, user *models.User) error {
	if err := cf.cartRepo.ClearUser(ctx, user.ID); err != nil {
		return NewBusinessError("CART_CLEAR_FAILED", "Failed to clear cart", err)
	}
	return nil
}

func (cf *CartFlowImpl) ownedItem(ctx context.Context, user *models.User, itemUUID string) (*models.CartItem, error) {
	key, err := uuid.Parse(itemUUID)
	if err != nil {
		return nil, NewBusinessError("CART_ITEM_NOT_FOUND", "Cart item not found", ErrCartItemNotFound)
	}

	item, err := cf.cartRepo.ByUUID(ctx, key)
	if err != nil {
		return nil, NewBusinessError("CART_FETCH_FAILED", "Failed to fetch cart", err)
	}
	if item == nil || item.UserID != user.ID {
		return nil, NewBusinessError("CART_ITEM_NOT_FOUND", "Cart item not found", ErrCartItemNotFound)
	}

	return item, nil
}
