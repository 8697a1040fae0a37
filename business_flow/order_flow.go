// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/smart-stationery/backend/app/dto"
	"github.com/smart-stationery/backend/config"
	"github.com/smart-stationery/backend/models"
	"github.com/smart-stationery/backend/repository"
	"github.com/smart-stationery/backend/utils"
	"gorm.io/gorm"
)

// OrderFlow handles checkout and the customer's view of orders
type OrderFlow interface {
	Checkout(ctx context.Context, user *models.User, req *dto.CheckoutRequest, metadata *ClientMetadata) (*dto.CheckoutResponse, error)
	ListOrders(ctx context.Context, user *models.User, req *dto.ListOrdersRequest) ([]dto.OrderDTO, error)
	GetOrder(ctx context.Context, user *models.User, raw string) (*dto.OrderDTO, error)
	CancelOrder(ctx context.Context, user *models.User, raw string, metadata *ClientMetadata) (*dto.OrderDTO, error)
}

// OrderFlowImpl implements the order business flow
type OrderFlowImpl struct {
	orderRepo    repository.OrderRepository
	cartRepo     repository.CartItemRepository
	productRepo  repository.ProductRepository
	sequenceRepo repository.SequenceRepository
	auditRepo    repository.AuditLogRepository
	ordersConfig *config.OrdersConfig
	db           *gorm.DB
}

// NewOrderFlow creates a new order flow instance
func NewOrderFlow(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartItemRepository,
	productRepo repository.ProductRepository,
	sequenceRepo repository.SequenceRepository,
	auditRepo repository.AuditLogRepository,
	ordersConfig *config.OrdersConfig,
	db *gorm.DB,
) OrderFlow {
	return &OrderFlowImpl{
		orderRepo:    orderRepo,
		cartRepo:     cartRepo,
		productRepo:  productRepo,
		sequenceRepo: sequenceRepo,
		auditRepo:    auditRepo,
		ordersConfig: ordersConfig,
		db:           db,
	}
}

// Checkout turns the cart into an order in one transaction: every line is
// re-resolved and re-priced, stock is decremented with an oversell guard, the
// order gets its sequential id and the cart is cleared. Institute accounts
// whose total reaches the bulk threshold start in awaiting_verification.
func (of *OrderFlowImpl) Checkout(ctx context.Context, user *models.User, req *dto.CheckoutRequest, metadata *ClientMetadata) (*dto.CheckoutResponse, error) {
	var order *models.Order

	err := repository.WithTransaction(ctx, of.db, func(txCtx context.Context) error {
		cartItems, err := of.cartRepo.ListByUser(txCtx, user.ID)
		if err != nil {
			return err
		}
		if len(cartItems) == 0 {
			return ErrCartEmpty
		}

		order = &models.Order{
			UUID:            uuid.New(),
			UserRef:         models.NewIDRef(user.ID),
			Status:          models.OrderStatusPending,
			RecipientName:   req.RecipientName,
			ShippingAddress: req.ShippingAddress,
			ShippingCity:    req.ShippingCity,
		}
		if req.PostalCode != "" {
			order.PostalCode = &req.PostalCode
		}
		if req.Note != "" {
			order.Note = &req.Note
		}

		var items []*models.OrderItem
		for _, line := range cartItems {
			product, err := of.productRepo.ByRef(txCtx, line.ProductRef)
			if err != nil {
				return err
			}
			if product == nil || !utils.IsTrue(product.IsActive) {
				return fmt.Errorf("%w: cart line %s", ErrProductNotFound, line.UUID)
			}

			if err := of.productRepo.DecrementStock(txCtx, product.UUID, line.Quantity); err != nil {
				if err == repository.ErrInsufficientStock {
					return fmt.Errorf("%w: %s", ErrInsufficientStock, product.Name)
				}
				return err
			}

			items = append(items, &models.OrderItem{
				UUID:        uuid.New(),
				OrderUUID:   order.UUID,
				ProductRef:  models.NewIDRef(product.ID),
				ProductName: product.Name,
				UnitPrice:   product.UnitPrice,
				Quantity:    line.Quantity,
			})
			order.TotalAmount += product.UnitPrice * int64(line.Quantity)
			order.TotalItems += line.Quantity
		}

		// Bulk institute orders need a manual verification step
		if user.IsInstitute() && order.TotalItems >= of.bulkOrderThreshold() {
			order.Status = models.OrderStatusAwaitingVerification
		}

		if err := of.orderRepo.SaveWithSequentialID(txCtx, order, of.sequenceRepo); err != nil {
			return err
		}
		if err := of.orderRepo.SaveItems(txCtx, items); err != nil {
			return err
		}
		order.Items = make([]models.OrderItem, 0, len(items))
		for _, item := range items {
			order.Items = append(order.Items, *item)
		}

		return of.cartRepo.ClearUser(txCtx, user.ID)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Order placement failed: %s", err.Error())
		_ = createAuditLog(ctx, of.auditRepo, user, models.AuditActionOrderPlacementFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("CHECKOUT_FAILED", "Checkout failed", err)
	}

	msg := fmt.Sprintf("Order placed: %d", order.ID)
	_ = createAuditLog(ctx, of.auditRepo, user, models.AuditActionOrderPlaced, msg, true, nil, metadata)

	message := "Order placed successfully"
	if order.Status == models.OrderStatusAwaitingVerification {
		message = "Order placed and awaiting verification"
	}

	return &dto.CheckoutResponse{
		Message: message,
		Order:   ToOrderDTO(*order),
	}, nil
}

// ListOrders returns a page of the user's order history, newest first
func (of *OrderFlowImpl) ListOrders(ctx context.Context, user *models.User, req *dto.ListOrdersRequest) ([]dto.OrderDTO, error) {
	page, pageSize, err := normalizePage(req.Page, req.PageSize)
	if err != nil {
		return nil, NewBusinessError("ORDER_LIST_VALIDATION_FAILED", "Order listing validation failed", err)
	}

	orders, err := of.orderRepo.ListByUser(ctx, user.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("ORDER_LIST_FAILED", "Failed to list orders", err)
	}

	out := make([]dto.OrderDTO, 0, len(orders))
	for _, order := range orders {
		out = append(out, ToOrderDTO(*order))
	}

	return out, nil
}

// GetOrder returns one order with its items, restricted to the owner
func (of *OrderFlowImpl) GetOrder(ctx context.Context, user *models.User, raw string) (*dto.OrderDTO, error) {
	order, err := of.ownedOrder(ctx, user, raw)
	if err != nil {
		return nil, err
	}

	items, err := of.orderRepo.ItemsByOrder(ctx, order.UUID)
	if err != nil {
		return nil, NewBusinessError("ORDER_FETCH_FAILED", "Failed to fetch order", err)
	}
	order.Items = make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		order.Items = append(order.Items, *item)
	}

	out := ToOrderDTO(*order)
	return &out, nil
}

// CancelOrder cancels a pending or awaiting-verification order and restocks
// every line whose product still resolves.
func (of *OrderFlowImpl) CancelOrder(ctx context.Context, user *models.User, raw string, metadata *ClientMetadata) (*dto.OrderDTO, error) {
	order, err := of.ownedOrder(ctx, user, raw)
	if err != nil {
		return nil, err
	}

	if !order.IsCancellable() {
		return nil, NewBusinessError("ORDER_NOT_CANCELLABLE", "Order can no longer be cancelled", ErrOrderNotCancellable)
	}

	err = repository.WithTransaction(ctx, of.db, func(txCtx context.Context) error {
		if err := of.orderRepo.UpdateStatus(txCtx, order.UUID, models.OrderStatusCancelled, utils.UTCNow()); err != nil {
			return err
		}

		items, err := of.orderRepo.ItemsByOrder(txCtx, order.UUID)
		if err != nil {
			return err
		}
		for _, item := range items {
			product, err := of.productRepo.ByRef(txCtx, item.ProductRef)
			if err != nil {
				return err
			}
			if product == nil {
				// Product deleted since checkout, nothing to restock
				continue
			}
			if err := of.productRepo.IncrementStock(txCtx, product.UUID, item.Quantity); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Order cancellation failed: %s", err.Error())
		_ = createAuditLog(ctx, of.auditRepo, user, models.AuditActionOrderCancelled, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("ORDER_CANCELLATION_FAILED", "Order cancellation failed", err)
	}

	msg := fmt.Sprintf("Order cancelled: %d", order.ID)
	_ = createAuditLog(ctx, of.auditRepo, user, models.AuditActionOrderCancelled, msg, true, nil, metadata)

	return of.GetOrder(ctx, user, raw)
}

// Private helper methods

func (of *OrderFlowImpl) bulkOrderThreshold() int {
	if of.ordersConfig != nil && of.ordersConfig.BulkOrderThreshold > 0 {
		return of.ordersConfig.BulkOrderThreshold
	}
	return utils.DefaultBulkOrderThreshold
}

func (of *OrderFlowImpl) ownedOrder(ctx context.Context, user *models.User, raw string) (*models.Order, error) {
	order, err := of.orderRepo.ByAnyID(ctx, raw)
	if err != nil {
		return nil, NewBusinessError("ORDER_FETCH_FAILED", "Failed to fetch order", err)
	}
	if order == nil {
		return nil, NewBusinessError("ORDER_NOT_FOUND", "Order not found", ErrOrderNotFound)
	}

	if !orderBelongsTo(order, user) {
		return nil, NewBusinessError("ORDER_ACCESS_DENIED", "Order access denied", ErrOrderAccessDenied)
	}

	return order, nil
}

// orderBelongsTo matches the order's user reference against the user in both
// identifier spaces, so legacy key-kind rows stay reachable for their owner.
func orderBelongsTo(order *models.Order, user *models.User) bool {
	if id, ok := order.UserRef.SequentialID(); ok {
		return id == user.ID
	}
	if key, ok := order.UserRef.Key(); ok {
		return key == user.UUID
	}
	return false
}
