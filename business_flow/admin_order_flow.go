// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/smart-stationery/backend/app/dto"
	"github.com/smart-stationery/backend/models"
	"github.com/smart-stationery/backend/repository"
	"github.com/smart-stationery/backend/utils"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// AdminOrderFlow manages orders from the back office
type AdminOrderFlow interface {
	ListOrders(ctx context.Context, req *dto.AdminListOrdersRequest) ([]dto.OrderDTO, int64, error)
	GetOrder(ctx context.Context, raw string) (*dto.OrderDTO, error)
	UpdateStatus(ctx context.Context, raw string, req *dto.UpdateOrderStatusRequest, metadata *ClientMetadata) (*dto.OrderDTO, error)
	ExportOrders(ctx context.Context, req *dto.AdminListOrdersRequest) (string, []byte, error)
}

// AdminOrderFlowImpl implements the back-office order flow
type AdminOrderFlowImpl struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	auditRepo   repository.AuditLogRepository
	db          *gorm.DB
}

// NewAdminOrderFlow creates a new back-office order flow instance
func NewAdminOrderFlow(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) AdminOrderFlow {
	return &AdminOrderFlowImpl{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		auditRepo:   auditRepo,
		db:          db,
	}
}

// ListOrders returns a filtered page of all orders, newest first
func (aof *AdminOrderFlowImpl) ListOrders(ctx context.Context, req *dto.AdminListOrdersRequest) ([]dto.OrderDTO, int64, error) {
	page, pageSize, err := normalizePage(req.Page, req.PageSize)
	if err != nil {
		return nil, 0, NewBusinessError("ORDER_LIST_VALIDATION_FAILED", "Order listing validation failed", err)
	}

	filter, err := aof.buildFilter(ctx, req)
	if err != nil {
		return nil, 0, err
	}

	total, err := aof.orderRepo.Count(ctx, *filter)
	if err != nil {
		return nil, 0, NewBusinessError("ORDER_LIST_FAILED", "Failed to list orders", err)
	}

	orders, err := aof.orderRepo.ByFilter(ctx, *filter, "created_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, NewBusinessError("ORDER_LIST_FAILED", "Failed to list orders", err)
	}

	out := make([]dto.OrderDTO, 0, len(orders))
	for _, order := range orders {
		out = append(out, ToOrderDTO(*order))
	}

	return out, total, nil
}

// GetOrder returns one order with items, any owner
func (aof *AdminOrderFlowImpl) GetOrder(ctx context.Context, raw string) (*dto.OrderDTO, error) {
	order, err := aof.orderRepo.ByAnyID(ctx, raw)
	if err != nil {
		return nil, NewBusinessError("ORDER_FETCH_FAILED", "Failed to fetch order", err)
	}
	if order == nil {
		return nil, NewBusinessError("ORDER_NOT_FOUND", "Order not found", ErrOrderNotFound)
	}

	items, err := aof.orderRepo.ItemsByOrder(ctx, order.UUID)
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

// UpdateStatus moves an order along the status state machine. Moving to
// cancelled restocks every line whose product still resolves.
func (aof *AdminOrderFlowImpl) UpdateStatus(ctx context.Context, raw string, req *dto.UpdateOrderStatusRequest, metadata *ClientMetadata) (*dto.OrderDTO, error) {
	order, err := aof.orderRepo.ByAnyID(ctx, raw)
	if err != nil {
		return nil, NewBusinessError("ORDER_FETCH_FAILED", "Failed to fetch order", err)
	}
	if order == nil {
		return nil, NewBusinessError("ORDER_NOT_FOUND", "Order not found", ErrOrderNotFound)
	}

	if !order.CanTransitionTo(req.Status) {
		return nil, NewBusinessError("INVALID_STATUS_CHANGE", "Invalid order status change", ErrInvalidStatusChange)
	}

	err = repository.WithTransaction(ctx, aof.db, func(txCtx context.Context) error {
		if err := aof.orderRepo.UpdateStatus(txCtx, order.UUID, req.Status, utils.UTCNow()); err != nil {
			return err
		}

		if req.Status != models.OrderStatusCancelled {
			return nil
		}

		items, err := aof.orderRepo.ItemsByOrder(txCtx, order.UUID)
		if err != nil {
			return err
		}
		for _, item := range items {
			product, err := aof.productRepo.ByRef(txCtx, item.ProductRef)
			if err != nil {
				return err
			}
			if product == nil {
				continue
			}
			if err := aof.productRepo.IncrementStock(txCtx, product.UUID, item.Quantity); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Order status change failed: %s", err.Error())
		_ = createAuditLog(ctx, aof.auditRepo, nil, models.AuditActionOrderStatusChanged, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("ORDER_STATUS_CHANGE_FAILED", "Order status change failed", err)
	}

	msg := fmt.Sprintf("Order %d moved %s -> %s", order.ID, order.Status, req.Status)
	_ = createAuditLog(ctx, aof.auditRepo, nil, models.AuditActionOrderStatusChanged, msg, true, nil, metadata)

	return aof.GetOrder(ctx, raw)
}

// ExportOrders builds an XLSX workbook of the filtered orders
func (aof *AdminOrderFlowImpl) ExportOrders(ctx context.Context, req *dto.AdminListOrdersRequest) (string, []byte, error) {
	filter, err := aof.buildFilter(ctx, req)
	if err != nil {
		return "", nil, err
	}

	orders, err := aof.orderRepo.ByFilter(ctx, *filter, "created_at ASC", 0, 0)
	if err != nil {
		return "", nil, NewBusinessError("ORDER_EXPORT_FAILED", "Failed to export orders", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := "orders"
	xl.SetSheetName(xl.GetSheetName(0), sheet)

	header := []string{"id", "uuid", "user_ref", "status", "total_items", "total_amount", "recipient_name", "shipping_city", "created_at"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for ri, order := range orders {
		record := []string{
			strconv.FormatInt(order.ID, 10),
			order.UUID.String(),
			order.UserRef.String(),
			order.Status,
			strconv.Itoa(order.TotalItems),
			strconv.FormatInt(order.TotalAmount, 10),
			order.RecipientName,
			order.ShippingCity,
			order.CreatedAt.UTC().Format(time.RFC3339),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	return "orders.xlsx", buf.Bytes(), nil
}

// buildFilter resolves the optional user reference in the request to an
// id-kind filter reference.
func (aof *AdminOrderFlowImpl) buildFilter(ctx context.Context, req *dto.AdminListOrdersRequest) (*models.OrderFilter, error) {
	filter := &models.OrderFilter{
		Status: req.Status,
	}

	if req.User != nil && *req.User != "" {
		user, err := aof.userRepo.ByAnyID(ctx, *req.User)
		if err != nil {
			return nil, NewBusinessError("ORDER_LIST_FAILED", "Failed to list orders", err)
		}
		if user == nil {
			return nil, NewBusinessError("USER_NOT_FOUND", "User not found", ErrUserNotFound)
		}
		ref := models.NewIDRef(user.ID)
		filter.UserRef = &ref
	}

	return filter, nil
}
