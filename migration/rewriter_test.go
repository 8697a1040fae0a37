package migration_test

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/google/uuid"
	"github.com/smart-stationery/backend/migration"
	"github.com/smart-stationery/backend/models"
	"github.com/smart-stationery/backend/repository"
	testingutil "github.com/smart-stationery/backend/testing"
	"github.com/smart-stationery/backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newRewriter(db *gorm.DB) *migration.Rewriter {
	return migration.NewRewriter(
		db,
		repository.NewSequenceRepository(db),
		repository.NewUserRepository(db),
		repository.NewCategoryRepository(db),
		repository.NewProductRepository(db),
		repository.NewOrderRepository(db),
		repository.NewCartItemRepository(db),
		repository.NewWishlistRepository(db),
		log.New(io.Discard, "", 0),
	)
}

// seedLegacyUser inserts a user the way rows looked before sequential ids
// existed: storage key only, id column zero.
func seedLegacyUser(db *gorm.DB, email string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("LegacyPass123!"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		UUID:          uuid.New(),
		AccountTypeID: 1,
		FirstName:     "Reza",
		LastName:      "Karimi",
		Email:         email,
		Mobile:        "+989121234567",
		PasswordHash:  string(hash),
		IsActive:      utils.ToPtr(true),
	}
	return user, db.Create(user).Error
}

func seedLegacyCategory(db *gorm.DB, name, slug string) (*models.Category, error) {
	category := &models.Category{UUID: uuid.New(), Name: name, Slug: slug}
	return category, db.Create(category).Error
}

func seedLegacyProduct(db *gorm.DB, categoryID int64, name string) (*models.Product, error) {
	product := &models.Product{
		UUID:       uuid.New(),
		CategoryID: categoryID,
		Name:       name,
		UnitPrice:  50000,
		Stock:      10,
		IsActive:   utils.ToPtr(true),
	}
	return product, db.Create(product).Error
}

func TestRewriterRun(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		db := testDB.DB
		ctx := context.Background()

		user, err := seedLegacyUser(db, "legacy.user@example.com")
		require.NoError(t, err)
		_, err = seedLegacyCategory(db, "Markers", "markers")
		require.NoError(t, err)
		product, err := seedLegacyProduct(db, 0, "Whiteboard Marker")
		require.NoError(t, err)

		// A legacy order referencing the user and product by storage key.
		order := &models.Order{
			UUID:            uuid.New(),
			UserRef:         models.NewKeyRef(user.UUID),
			Status:          models.OrderStatusConfirmed,
			TotalAmount:     100000,
			TotalItems:      2,
			RecipientName:   "Reza Karimi",
			ShippingAddress: "1 Enghelab Ave",
			ShippingCity:    "Tehran",
		}
		require.NoError(t, db.Create(order).Error)
		orderItem := &models.OrderItem{
			UUID:        uuid.New(),
			OrderUUID:   order.UUID,
			ProductRef:  models.NewKeyRef(product.UUID),
			ProductName: product.Name,
			UnitPrice:   product.UnitPrice,
			Quantity:    2,
		}
		require.NoError(t, db.Create(orderItem).Error)

		// A legacy cart line and wishlist entry, plus one line whose product
		// was deleted before the pass ran.
		cartItem := &models.CartItem{
			UUID:       uuid.New(),
			UserID:     1,
			ProductRef: models.NewKeyRef(product.UUID),
			Quantity:   1,
		}
		require.NoError(t, db.Create(cartItem).Error)
		danglingItem := &models.CartItem{
			UUID:       uuid.New(),
			UserID:     1,
			ProductRef: models.NewKeyRef(uuid.New()),
			Quantity:   3,
		}
		require.NoError(t, db.Create(danglingItem).Error)
		wishlistItem := &models.WishlistItem{
			UUID:       uuid.New(),
			UserID:     1,
			ProductRef: models.NewKeyRef(product.UUID),
		}
		require.NoError(t, db.Create(wishlistItem).Error)

		summary, err := newRewriter(db).Run(ctx)
		require.NoError(t, err)
		require.True(t, summary.Changed())

		assert.Equal(t, 1, summary.UsersStamped)
		assert.Equal(t, 1, summary.CategoriesStamped)
		assert.Equal(t, 1, summary.ProductsStamped)
		assert.Equal(t, 1, summary.OrdersStamped)
		assert.Equal(t, 1, summary.OrderUserRefsRewritten)
		assert.Equal(t, 1, summary.OrderItemRefsRewritten)
		assert.Equal(t, 1, summary.CartItemRefsRewritten)
		assert.Equal(t, 1, summary.WishlistItemRefsRewritten)
		assert.Equal(t, 1, summary.DanglingRefs)

		t.Run("EntitiesStamped", func(t *testing.T) {
			userRepo := repository.NewUserRepository(db)
			stamped, err := userRepo.ByUUID(ctx, user.UUID)
			require.NoError(t, err)
			require.NotNil(t, stamped)
			assert.Equal(t, int64(1), stamped.ID)

			productRepo := repository.NewProductRepository(db)
			stampedProduct, err := productRepo.ByUUID(ctx, product.UUID)
			require.NoError(t, err)
			require.NotNil(t, stampedProduct)
			assert.Equal(t, int64(1), stampedProduct.ID)
		})

		t.Run("RefsRewrittenToIDKind", func(t *testing.T) {
			orderRepo := repository.NewOrderRepository(db)
			rewritten, err := orderRepo.ByUUID(ctx, order.UUID)
			require.NoError(t, err)
			require.NotNil(t, rewritten)
			assert.Equal(t, models.RefKindID, rewritten.UserRef.Kind)
			userID, ok := rewritten.UserRef.SequentialID()
			require.True(t, ok)
			assert.Equal(t, int64(1), userID)

			items, err := orderRepo.ItemsByOrder(ctx, order.UUID)
			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.Equal(t, models.RefKindID, items[0].ProductRef.Kind)
		})

		t.Run("DanglingRefLeftAsIs", func(t *testing.T) {
			var reloaded models.CartItem
			require.NoError(t, db.First(&reloaded, "uuid = ?", danglingItem.UUID).Error)
			assert.Equal(t, models.RefKindKey, reloaded.ProductRef.Kind)
			assert.Equal(t, danglingItem.ProductRef.Value, reloaded.ProductRef.Value)
		})

		t.Run("SecondRunChangesNothing", func(t *testing.T) {
			again, err := newRewriter(db).Run(ctx)
			require.NoError(t, err)
			assert.False(t, again.Changed())
			// The dangling reference is counted every run but never touched.
			assert.Equal(t, 1, again.DanglingRefs)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestRewriterAdvancesCounterPastStampedRows(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		db := testDB.DB
		ctx := context.Background()

		// One row already stamped with a high id, one unstamped. The pass must
		// not reuse an id at or below the existing maximum.
		category, err := seedLegacyCategory(db, "Glue", "glue")
		require.NoError(t, err)
		stamped := &models.Product{
			UUID:       uuid.New(),
			ID:         7,
			CategoryID: category.ID,
			Name:       "Glue Stick",
			UnitPrice:  15000,
			Stock:      100,
			IsActive:   utils.ToPtr(true),
		}
		require.NoError(t, db.Create(stamped).Error)
		unstamped, err := seedLegacyProduct(db, category.ID, "Craft Glue")
		require.NoError(t, err)

		summary, err := newRewriter(db).Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, summary.ProductsStamped)

		productRepo := repository.NewProductRepository(db)
		reloaded, err := productRepo.ByUUID(ctx, unstamped.UUID)
		require.NoError(t, err)
		require.NotNil(t, reloaded)
		assert.Equal(t, int64(8), reloaded.ID)

		untouched, err := productRepo.ByUUID(ctx, stamped.UUID)
		require.NoError(t, err)
		require.NotNil(t, untouched)
		assert.Equal(t, int64(7), untouched.ID)

		return nil
	})
	require.NoError(t, err)
}
