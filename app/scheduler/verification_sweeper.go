// Package scheduler runs the periodic maintenance loops of the platform
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/smart-stationery/backend/models"
	"github.com/smart-stationery/backend/repository"
	"github.com/smart-stationery/backend/utils"
	"gorm.io/gorm"
)

// VerificationSweeper cancels bulk orders that sat in awaiting_verification
// past the configured deadline and returns their stock.
type VerificationSweeper struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	db          *gorm.DB
	logger      *log.Logger
	staleAfter  time.Duration
	interval    time.Duration
}

func NewVerificationSweeper(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	db *gorm.DB,
	staleAfter time.Duration,
	interval time.Duration,
) *VerificationSweeper {
	if staleAfter <= 0 {
		staleAfter = 72 * time.Hour
	}
	if interval <= 0 {
		interval = time.Hour
	}

	return &VerificationSweeper{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		db:          db,
		logger:      newSchedulerLogger("sweeper "),
		staleAfter:  staleAfter,
		interval:    interval,
	}
}

// Start launches the sweeper loop in a background goroutine and returns a stop function
func (s *VerificationSweeper) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()

	return cancel
}

func (s *VerificationSweeper) runOnce(ctx context.Context) {
	cutoff := utils.UTCNow().Add(-s.staleAfter)

	orders, err := s.orderRepo.ListAwaitingVerificationBefore(ctx, cutoff)
	if err != nil {
		s.logger.Printf("stale order listing failed: %v", err)
		return
	}

	for _, order := range orders {
		if err := s.cancelOrder(ctx, order); err != nil {
			s.logger.Printf("failed to cancel stale order %d: %v", order.ID, err)
			continue
		}
		s.logger.Printf("cancelled stale order %d (awaiting verification since %s)",
			order.ID, order.CreatedAt.Format(time.RFC3339))
	}
}

func (s *VerificationSweeper) cancelOrder(ctx context.Context, order *models.Order) error {
	return repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		if err := s.orderRepo.UpdateStatus(txCtx, order.UUID, models.OrderStatusCancelled, utils.UTCNow()); err != nil {
			return err
		}

		items, err := s.orderRepo.ItemsByOrder(txCtx, order.UUID)
		if err != nil {
			return err
		}

		for _, item := range items {
			product, err := s.productRepo.ByRef(txCtx, item.ProductRef)
			if err != nil {
				return err
			}
			// Lines whose product no longer resolves are skipped.
			if product == nil {
				continue
			}
			if err := s.productRepo.IncrementStock(txCtx, product.UUID, item.Quantity); err != nil {
				return err
			}
		}

		return nil
	})
}
