// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smart-stationery/backend/models"
	"github.com/smart-stationery/backend/utils"
)

// OrderRepositoryImpl implements OrderRepository interface
type OrderRepositoryImpl struct {
	*BaseRepository[models.Order, models.OrderFilter]
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &OrderRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Order, models.OrderFilter](db, applyOrderFilter),
	}
}

func applyOrderFilter(db *gorm.DB, filter models.OrderFilter) *gorm.DB {
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.ID != nil {
		db = db.Where("id = ? AND id > 0", *filter.ID)
	}
	if filter.UserRef != nil {
		db = db.Where("user_ref_kind = ? AND user_ref_value = ?", filter.UserRef.Kind, filter.UserRef.Value)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return db
}

// ListByUser retrieves the user's orders, newest first, items preloaded
func (r *OrderRepositoryImpl) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*models.Order, error) {
	db := r.getDB(ctx)

	ref := models.NewIDRef(userID)
	query := db.Where("user_ref_kind = ? AND user_ref_value = ?", ref.Kind, ref.Value).
		Order("created_at DESC").
		Preload("Items")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var orders []*models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders by user: %w", err)
	}

	return orders, nil
}

// ItemsByOrder retrieves the line items of an order
func (r *OrderRepositoryImpl) ItemsByOrder(ctx context.Context, orderUUID uuid.UUID) ([]*models.OrderItem, error) {
	db := r.getDB(ctx)

	var items []*models.OrderItem
	err := db.Where("order_uuid = ?", orderUUID).
		Order("created_at ASC, uuid ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}

	return items, nil
}

// SaveItems inserts order line items
func (r *OrderRepositoryImpl) SaveItems(ctx context.Context, items []*models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.CreateInBatches(items, 100).Error
	if err != nil {
		return fmt.Errorf("failed to save order items: %w", err)
	}

	return nil
}

// UpdateStatus moves an order to a new status and records the moment
func (r *OrderRepositoryImpl) UpdateStatus(ctx context.Context, orderUUID uuid.UUID, status string, at time.Time) error {
	db := r.getDB(ctx)

	updates := map[string]any{
		"status":     status,
		"updated_at": at,
	}
	switch status {
	case models.OrderStatusConfirmed:
		updates["confirmed_at"] = at
	case models.OrderStatusCancelled:
		updates["cancelled_at"] = at
	}

	err := db.Model(&models.Order{}).
		Where("uuid = ?", orderUUID).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	return nil
}

// ListAwaitingVerificationBefore retrieves bulk orders that have been waiting
// for admin review since before the cutoff.
func (r *OrderRepositoryImpl) ListAwaitingVerificationBefore(ctx context.Context, cutoff time.Time) ([]*models.Order, error) {
	return r.ByFilter(ctx, models.OrderFilter{
		Status:        utils.ToPtr(models.OrderStatusAwaitingVerification),
		CreatedBefore: &cutoff,
	}, "created_at ASC", 0, 0)
}

// ListLegacyRefs retrieves orders whose user reference still uses the storage
// key, in deterministic order for the rewriter.
func (r *OrderRepositoryImpl) ListLegacyRefs(ctx context.Context) ([]*models.Order, error) {
	db := r.getDB(ctx)

	var orders []*models.Order
	err := db.Where("user_ref_kind = ?", models.RefKindKey).
		Order("created_at ASC, uuid ASC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list legacy order refs: %w", err)
	}

	return orders, nil
}

// ListLegacyItemRefs retrieves order line items still referencing products by
// storage key.
func (r *OrderRepositoryImpl) ListLegacyItemRefs(ctx context.Context) ([]*models.OrderItem, error) {
	db := r.getDB(ctx)

	var items []*models.OrderItem
	err := db.Where("product_ref_kind = ?", models.RefKindKey).
		Order("created_at ASC, uuid ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list legacy order item refs: %w", err)
	}

	return items, nil
}

// UpdateItem persists a rewritten order line item
func (r *OrderRepositoryImpl) UpdateItem(ctx context.Context, item *models.OrderItem) error {
	db := r.getDB(ctx)

	if err := db.Save(item).Error; err != nil {
		return fmt.Errorf("failed to update order item: %w", err)
	}

	return nil
}
