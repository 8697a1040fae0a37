package businessflow_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/smart-stationery/backend/app/dto"
	businessflow "github.com/smart-stationery/backend/business_flow"
	"github.com/smart-stationery/backend/models"
	"github.com/smart-stationery/backend/repository"
	testingutil "github.com/smart-stationery/backend/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCartFlow(db *gorm.DB) businessflow.CartFlow {
	return businessflow.NewCartFlow(
		repository.NewCartItemRepository(db),
		repository.NewProductRepository(db),
		db,
	)
}

func TestCartAddItem(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newCartFlow(testDB.DB)
		ctx := context.Background()

		user, err := fixtures.CreateTestUser(models.AccountTypePersonal)
		require.NoError(t, err)
		category, err := fixtures.CreateTestCategory("Notebooks", "notebooks")
		require.NoError(t, err)
		product, err := fixtures.CreateTestProduct(category.ID, "A5 Notebook", 85000, 30)
		require.NoError(t, err)

		t.Run("AddBySequentialID", func(t *testing.T) {
			cart, err := flow.AddItem(ctx, user, &dto.AddCartItemRequest{
				Product:  fmt.Sprintf("%d", product.ID),
				Quantity: 2,
			})
			require.NoError(t, err)
			require.Len(t, cart.Items, 1)
			assert.Equal(t, 2, cart.Items[0].Quantity)
			assert.Equal(t, int64(170000), cart.Total)
		})

		t.Run("AddByStorageKeyFoldsIntoSameLine", func(t *testing.T) {
			cart, err := flow.AddItem(ctx, user, &dto.AddCartItemRequest{
				Product:  product.UUID.String(),
				Quantity: 1,
			})
			require.NoError(t, err)
			require.Len(t, cart.Items, 1)
			assert.Equal(t, 3, cart.Items[0].Quantity)
		})

		t.Run("UnknownProduct", func(t *testing.T) {
			_, err := flow.AddItem(ctx, user, &dto.AddCartItemRequest{
				Product:  "999999",
				Quantity: 1,
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsProductNotFound(err))
		})

		t.Run("QuantityOutOfRange", func(t *testing.T) {
			_, err := flow.AddItem(ctx, user, &dto.AddCartItemRequest{
				Product:  fmt.Sprintf("%d", product.ID),
				Quantity: 0,
			})
			require.Error(t, err)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestGetCartWithLegacyRef(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newCartFlow(testDB.DB)
		ctx := context.Background()

		user, err := fixtures.CreateTestUser(models.AccountTypePersonal)
		require.NoError(t, err)
		category, err := fixtures.CreateTestCategory("Pens", "pens")
		require.NoError(t, err)
		product, err := fixtures.CreateTestProduct(category.ID, "Gel Pen", 22000, 100)
		require.NoError(t, err)

		// A pre-migration cart line still referencing the product by storage key.
		_, err = fixtures.CreateLegacyCartItem(user.ID, product.UUID, 2)
		require.NoError(t, err)

		t.Run("LegacyLineResolves", func(t *testing.T) {
			cart, err := flow.GetCart(ctx, user)
			require.NoError(t, err)
			require.Len(t, cart.Items, 1)
			require.NotNil(t, cart.Items[0].Product)
			assert.Equal(t, product.ID, cart.Items[0].Product.ID)
			assert.Equal(t, int64(44000), cart.Total)
		})

		t.Run("DanglingLineKeepsQuantity", func(t *testing.T) {
			_, err = fixtures.CreateLegacyCartItem(user.ID, uuid.New(), 5)
			require.NoError(t, err)

			cart, err := flow.GetCart(ctx, user)
			require.NoError(t, err)
			require.Len(t, cart.Items, 2)

			// The dangling line carries no product and adds nothing to the total.
			var dangling *dto.CartItemDTO
			for i := range cart.Items {
				if cart.Items[i].Product == nil {
					dangling = &cart.Items[i]
				}
			}
			require.NotNil(t, dangling)
			assert.Equal(t, 5, dangling.Quantity)
			assert.Equal(t, int64(44000), cart.Total)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCartUpdateAndRemove(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newCartFlow(testDB.DB)
		ctx := context.Background()

		user, err := fixtures.CreateTestUser(models.AccountTypePersonal)
		require.NoError(t, err)
		other, err := fixtures.CreateTestUser(models.AccountTypePersonal)
		require.NoError(t, err)
		category, err := fixtures.CreateTestCategory("Markers", "markers")
		require.NoError(t, err)
		product, err := fixtures.CreateTestProduct(category.ID, "Marker", 35000, 60)
		require.NoError(t, err)

		item, err := fixtures.CreateTestCartItem(user.ID, product.ID, 2)
		require.NoError(t, err)

		t.Run("UpdateQuantity", func(t *testing.T) {
			cart, err := flow.UpdateItem(ctx, user, item.UUID.String(), &dto.UpdateCartItemRequest{Quantity: 7})
			require.NoError(t, err)
			require.Len(t, cart.Items, 1)
			assert.Equal(t, 7, cart.Items[0].Quantity)
		})

		t.Run("OtherUsersLineInvisible", func(t *testing.T) {
			_, err := flow.UpdateItem(ctx, other, item.UUID.String(), &dto.UpdateCartItemRequest{Quantity: 1})
			require.Error(t, err)
		})

		t.Run("Remove", func(t *testing.T) {
			cart, err := flow.RemoveItem(ctx, user, item.UUID.String())
			require.NoError(t, err)
			assert.Empty(t, cart.Items)
		})

		t.Run("ClearEmptiesCart", func(t *testing.T) {
			_, err := fixtures.CreateTestCartItem(user.ID, product.ID, 1)
			require.NoError(t, err)
			require.NoError(t, flow.ClearCart(ctx, user))

			cart, err := flow.GetCart(ctx, user)
			require.NoError(t, err)
			assert.Empty(t, cart.Items)
		})

		return nil
	})
	require.NoError(t, err)
}
