// Package migration implements the offline one-shot pass that introduces
// sequential integer ids into a database populated before the dual-identifier
// scheme existed. It must run with no concurrent writers.
package migration

import (
	"context"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/smart-stationery/backend/models"
	"github.com/smart-stationery/backend/repository"
	"github.com/smart-stationery/backend/utils"
)

// Rewriter stamps sequential ids onto unstamped entities and rewrites legacy
// storage-key cross-references to integer ids. Every step is idempotent per
// row: a second run over the same database changes nothing.
type Rewriter struct {
	db         *gorm.DB
	sequences  repository.SequenceRepository
	users      repository.UserRepository
	categories repository.CategoryRepository
	products   repository.ProductRepository
	orders     repository.OrderRepository
	cartItems  repository.CartItemRepository
	wishlist   repository.WishlistRepository
	logger     *log.Logger
}

// NewRewriter creates a rewriter over the given repositories
func NewRewriter(
	db *gorm.DB,
	sequences repository.SequenceRepository,
	users repository.UserRepository,
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	orders repository.OrderRepository,
	cartItems repository.CartItemRepository,
	wishlist repository.WishlistRepository,
	logger *log.Logger,
) *Rewriter {
	return &Rewriter{
		db:         db,
		sequences:  sequences,
		users:      users,
		categories: categories,
		products:   products,
		orders:     orders,
		cartItems:  cartItems,
		wishlist:   wishlist,
		logger:     logger,
	}
}

// Summary reports what a run changed.
type Summary struct {
	UsersStamped      int
	CategoriesStamped int
	ProductsStamped   int
	OrdersStamped     int

	OrderUserRefsRewritten    int
	OrderItemRefsRewritten    int
	CartItemRefsRewritten     int
	WishlistItemRefsRewritten int

	DanglingRefs int
}

// Changed reports whether the run modified any row.
func (s *Summary) Changed() bool {
	return s.UsersStamped+s.CategoriesStamped+s.ProductsStamped+s.OrdersStamped+
		s.OrderUserRefsRewritten+s.OrderItemRefsRewritten+
		s.CartItemRefsRewritten+s.WishlistItemRefsRewritten > 0
}

// Run executes the full pass: stamp ids on every unstamped entity in
// deterministic (created_at, uuid) order, then rewrite every legacy
// cross-reference whose target still exists. References to deleted entities
// are left in place and counted; resolution treats them as not-found.
func (rw *Rewriter) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{}

	var err error
	if summary.UsersStamped, err = stampEntities(ctx, rw.users, rw.sequences, utils.SequenceUserID, rw.logger); err != nil {
		return summary, err
	}
	if summary.CategoriesStamped, err = stampEntities(ctx, rw.categories, rw.sequences, utils.SequenceCategoryID, rw.logger); err != nil {
		return summary, err
	}
	if summary.ProductsStamped, err = stampEntities(ctx, rw.products, rw.sequences, utils.SequenceProductID, rw.logger); err != nil {
		return summary, err
	}
	if summary.OrdersStamped, err = stampEntities(ctx, rw.orders, rw.sequences, utils.SequenceOrderID, rw.logger); err != nil {
		return summary, err
	}

	if err := rw.rewriteOrderUserRefs(ctx, summary); err != nil {
		return summary, err
	}
	if err := rw.rewriteOrderItemRefs(ctx, summary); err != nil {
		return summary, err
	}
	if err := rw.rewriteCartItemRefs(ctx, summary); err != nil {
		return summary, err
	}
	if err := rw.rewriteWishlistRefs(ctx, summary); err != nil {
		return summary, err
	}

	rw.logger.Printf("migration pass complete: stamped users=%d categories=%d products=%d orders=%d, rewrote order-user=%d order-item=%d cart=%d wishlist=%d, dangling=%d",
		summary.UsersStamped, summary.CategoriesStamped, summary.ProductsStamped, summary.OrdersStamped,
		summary.OrderUserRefsRewritten, summary.OrderItemRefsRewritten,
		summary.CartItemRefsRewritten, summary.WishlistItemRefsRewritten,
		summary.DanglingRefs)

	return summary, nil
}

// stampEntities advances the named counter to the highest already assigned id,
// then allocates and stamps an id for every entity that lacks one, in
// (created_at, uuid) order. Already stamped entities keep their id unchanged.
func stampEntities[T any, F any](
	ctx context.Context,
	repo repository.IdentifiedRepository[T, F],
	sequences repository.SequenceRepository,
	sequenceName string,
	logger *log.Logger,
) (int, error) {
	max, err := repo.MaxSequentialID(ctx)
	if err != nil {
		return 0, err
	}

	current, err := sequences.Current(ctx, sequenceName)
	if err != nil {
		return 0, err
	}
	if current < max {
		if err := sequences.Reset(ctx, sequenceName, max); err != nil {
			return 0, err
		}
		logger.Printf("sequence %s advanced from %d to %d", sequenceName, current, max)
	}

	unstamped, err := repo.ListUnstamped(ctx)
	if err != nil {
		return 0, err
	}

	stamped := 0
	for _, entity := range unstamped {
		if err := repo.StampSequentialID(ctx, entity, sequences); err != nil {
			return stamped, fmt.Errorf("failed to stamp %s entity: %w", sequenceName, err)
		}
		if seq, ok := any(entity).(models.Sequenced); ok {
			logger.Printf("stamped %s id %d", sequenceName, seq.SequentialID())
		}
		stamped++
	}

	return stamped, nil
}

func (rw *Rewriter) rewriteOrderUserRefs(ctx context.Context, summary *Summary) error {
	orders, err := rw.orders.ListLegacyRefs(ctx)
	if err != nil {
		return err
	}

	for _, order := range orders {
		key, ok := order.UserRef.Key()
		if !ok {
			continue
		}

		user, err := rw.users.ByUUID(ctx, key)
		if err != nil {
			return err
		}
		if user == nil {
			summary.DanglingRefs++
			rw.logger.Printf("order %s references deleted user %s, reference left as is", order.UUID, key)
			continue
		}

		order.UserRef = models.NewIDRef(user.ID)
		if err := rw.orders.Update(ctx, order); err != nil {
			return fmt.Errorf("failed to rewrite user ref on order %s: %w", order.UUID, err)
		}
		rw.logger.Printf("order %s user ref rewritten to id %d", order.UUID, user.ID)
		summary.OrderUserRefsRewritten++
	}

	return nil
}

func (rw *Rewriter) rewriteOrderItemRefs(ctx context.Context, summary *Summary) error {
	items, err := rw.orders.ListLegacyItemRefs(ctx)
	if err != nil {
		return err
	}

	for _, item := range items {
		key, ok := item.ProductRef.Key()
		if !ok {
			continue
		}

		product, err := rw.products.ByUUID(ctx, key)
		if err != nil {
			return err
		}
		if product == nil {
			summary.DanglingRefs++
			rw.logger.Printf("order item %s references deleted product %s, reference left as is", item.UUID, key)
			continue
		}

		item.ProductRef = models.NewIDRef(product.ID)
		if err := rw.orders.UpdateItem(ctx, item); err != nil {
			return fmt.Errorf("failed to rewrite product ref on order item %s: %w", item.UUID, err)
		}
		rw.logger.Printf("order item %s product ref rewritten to id %d", item.UUID, product.ID)
		summary.OrderItemRefsRewritten++
	}

	return nil
}

func (rw *Rewriter) rewriteCartItemRefs(ctx context.Context, summary *Summary) error {
	items, err := rw.cartItems.ListLegacyRefs(ctx)
	if err != nil {
		return err
	}

	for _, item := range items {
		key, ok := item.ProductRef.Key()
		if !ok {
			continue
		}

		product, err := rw.products.ByUUID(ctx, key)
		if err != nil {
			return err
		}
		if product == nil {
			summary.DanglingRefs++
			rw.logger.Printf("cart item %s references deleted product %s, reference left as is", item.UUID, key)
			continue
		}

		item.ProductRef = models.NewIDRef(product.ID)
		if err := rw.cartItems.Update(ctx, item); err != nil {
			return fmt.Errorf("failed to rewrite product ref on cart item %s: %w", item.UUID, err)
		}
		rw.logger.Printf("cart item %s product ref rewritten to id %d", item.UUID, product.ID)
		summary.CartItemRefsRewritten++
	}

	return nil
}

func (rw *Rewriter) rewriteWishlistRefs(ctx context.Context, summary *Summary) error {
	items, err := rw.wishlist.ListLegacyRefs(ctx)
	if err != nil {
		return err
	}

	for _, item := range items {
		key, ok := item.ProductRef.Key()
		if !ok {
			continue
		}

		product, err := rw.products.ByUUID(ctx, key)
		if err != nil {
			return err
		}
		if product == nil {
			summary.DanglingRefs++
			rw.logger.Printf("wishlist item %s references deleted product %s, reference left as is", item.UUID, key)
			continue
		}

		item.ProductRef = models.NewIDRef(product.ID)
		if err := rw.wishlist.Update(ctx, item); err != nil {
			return fmt.Errorf("failed to rewrite product ref on wishlist item %s: %w", item.UUID, err)
		}
		rw.logger.Printf("wishlist item %s product ref rewritten to id %d", item.UUID, product.ID)
		summary.WishlistItemRefsRewritten++
	}

	return nil
}
