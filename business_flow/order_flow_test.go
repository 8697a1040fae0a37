package businessflow_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/smart-stationery/backend/app/dto"
	businessflow "github.com/smart-stationery/backend/business_flow"
	"github.com/smart-stationery/backend/config"
	"github.com/smart-stationery/backend/models"
	"github.com/smart-stationery/backend/repository"
	testingutil "github.com/smart-stationery/backend/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newOrderFlow(db *gorm.DB, ordersConfig *config.OrdersConfig) businessflow.OrderFlow {
	return businessflow.NewOrderFlow(
		repository.NewOrderRepository(db),
		repository.NewCartItemRepository(db),
		repository.NewProductRepository(db),
		repository.NewSequenceRepository(db),
		repository.NewAuditLogRepository(db),
		ordersConfig,
		db,
	)
}

func checkoutRequest() *dto.CheckoutRequest {
	return &dto.CheckoutRequest{
		RecipientName:   "Sara Mohammadi",
		ShippingAddress: "1 Enghelab Ave",
		ShippingCity:    "Tehran",
	}
}

func TestCheckout(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newOrderFlow(testDB.DB, &config.OrdersConfig{BulkOrderThreshold: 100})
		ctx := context.Background()

		user, err := fixtures.CreateTestUser(models.AccountTypePersonal)
		require.NoError(t, err)
		category, err := fixtures.CreateTestCategory("Notebooks", "notebooks")
		require.NoError(t, err)
		notebook, err := fixtures.CreateTestProduct(category.ID, "A5 Notebook", 85000, 10)
		require.NoError(t, err)
		pen, err := fixtures.CreateTestProduct(category.ID, "Gel Pen", 22000, 5)
		require.NoError(t, err)

		t.Run("EmptyCart", func(t *testing.T) {
			_, err := flow.Checkout(ctx, user, checkoutRequest(), testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsCartEmpty(err))
		})

		_, err = fixtures.CreateTestCartItem(user.ID, notebook.ID, 2)
		require.NoError(t, err)
		_, err = fixtures.CreateTestCartItem(user.ID, pen.ID, 3)
		require.NoError(t, err)

		t.Run("SuccessfulCheckout", func(t *testing.T) {
			resp, err := flow.Checkout(ctx, user, checkoutRequest(), testMetadata())
			require.NoError(t, err)

			assert.Equal(t, int64(1), resp.Order.ID)
			assert.Equal(t, models.OrderStatusPending, resp.Order.Status)
			assert.Equal(t, 5, resp.Order.TotalItems)
			assert.Equal(t, int64(2*85000+3*22000), resp.Order.TotalAmount)
			require.Len(t, resp.Order.Items, 2)

			// Stock came down and the cart is gone.
			productRepo := repository.NewProductRepository(testDB.DB)
			reloaded, err := productRepo.BySequentialID(ctx, notebook.ID)
			require.NoError(t, err)
			assert.Equal(t, 8, reloaded.Stock)

			cartRepo := repository.NewCartItemRepository(testDB.DB)
			lines, err := cartRepo.ListByUser(ctx, user.ID)
			require.NoError(t, err)
			assert.Empty(t, lines)
		})

		t.Run("InsufficientStock", func(t *testing.T) {
			_, err := fixtures.CreateTestCartItem(user.ID, pen.ID, 100)
			require.NoError(t, err)

			_, err = flow.Checkout(ctx, user, checkoutRequest(), testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsInsufficientStock(err))

			// The failed checkout rolled back: no stock lost, cart intact.
			productRepo := repository.NewProductRepository(testDB.DB)
			reloaded, err := productRepo.BySequentialID(ctx, pen.ID)
			require.NoError(t, err)
			assert.Equal(t, 2, reloaded.Stock)

			cartRepo := repository.NewCartItemRepository(testDB.DB)
			lines, err := cartRepo.ListByUser(ctx, user.ID)
			require.NoError(t, err)
			assert.Len(t, lines, 1)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCheckoutBulkInstituteOrder(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newOrderFlow(testDB.DB, &config.OrdersConfig{BulkOrderThreshold: 50})
		ctx := context.Background()

		institute, err := fixtures.CreateTestUser(models.AccountTypeInstitute)
		require.NoError(t, err)
		category, err := fixtures.CreateTestCategory("Paper", "paper")
		require.NoError(t, err)
		paper, err := fixtures.CreateTestProduct(category.ID, "A4 Copy Paper", 150000, 200)
		require.NoError(t, err)

		_, err = fixtures.CreateTestCartItem(institute.ID, paper.ID, 60)
		require.NoError(t, err)

		resp, err := flow.Checkout(ctx, institute, checkoutRequest(), testMetadata())
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusAwaitingVerification, resp.Order.Status)

		// The same volume from a personal account goes straight to pending.
		personal, err := fixtures.CreateTestUser(models.AccountTypePersonal)
		require.NoError(t, err)
		_, err = fixtures.CreateTestCartItem(personal.ID, paper.ID, 60)
		require.NoError(t, err)

		resp, err = flow.Checkout(ctx, personal, checkoutRequest(), testMetadata())
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusPending, resp.Order.Status)

		return nil
	})
	require.NoError(t, err)
}

func TestGetOrder(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newOrderFlow(testDB.DB, nil)
		ctx := context.Background()

		owner, err := fixtures.CreateTestUser(models.AccountTypePersonal)
		require.NoError(t, err)
		other, err := fixtures.CreateTestUser(models.AccountTypePersonal)
		require.NoError(t, err)
		category, err := fixtures.CreateTestCategory("Pens", "pens")
		require.NoError(t, err)
		product, err := fixtures.CreateTestProduct(category.ID, "Fountain Pen", 450000, 20)
		require.NoError(t, err)

		order, err := fixtures.CreateTestOrder(owner, models.OrderStatusConfirmed, []*models.Product{product}, 1)
		require.NoError(t, err)

		t.Run("BySequentialID", func(t *testing.T) {
			got, err := flow.GetOrder(ctx, owner, fmt.Sprintf("%d", order.ID))
			require.NoError(t, err)
			assert.Equal(t, order.ID, got.ID)
			require.Len(t, got.Items, 1)
			assert.Equal(t, product.Name, got.Items[0].ProductName)
		})

		t.Run("ByStorageKey", func(t *testing.T) {
			got, err := flow.GetOrder(ctx, owner, order.UUID.String())
			require.NoError(t, err)
			assert.Equal(t, order.ID, got.ID)
		})

		t.Run("OtherUserDenied", func(t *testing.T) {
			_, err := flow.GetOrder(ctx, other, fmt.Sprintf("%d", order.ID))
			require.Error(t, err)
			assert.True(t, businessflow.IsOrderAccessDenied(err))
		})

		t.Run("DeletedProductLineSurvives", func(t *testing.T) {
			// The line keeps its snapshot after the product disappears.
			productRepo := repository.NewProductRepository(testDB.DB)
			require.NoError(t, productRepo.Delete(ctx, product.UUID))

			got, err := flow.GetOrder(ctx, owner, fmt.Sprintf("%d", order.ID))
			require.NoError(t, err)
			require.Len(t, got.Items, 1)
			assert.Equal(t, product.Name, got.Items[0].ProductName)
			assert.Equal(t, product.UnitPrice, got.Items[0].UnitPrice)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCancelOrder(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newOrderFlow(testDB.DB, nil)
		ctx := context.Background()

		user, err := fixtures.CreateTestUser(models.AccountTypePersonal)
		require.NoError(t, err)
		category, err := fixtures.CreateTestCategory("Markers", "markers")
		require.NoError(t, err)
		marker, err := fixtures.CreateTestProduct(category.ID, "Whiteboard Marker", 35000, 50)
		require.NoError(t, err)
		highlighter, err := fixtures.CreateTestProduct(category.ID, "Highlighter", 28000, 50)
		require.NoError(t, err)

		order, err := fixtures.CreateTestOrder(user, models.OrderStatusPending,
			[]*models.Product{marker, highlighter}, 4)
		require.NoError(t, err)

		// One product vanishes between checkout and cancellation; only the
		// surviving one gets its stock back.
		productRepo := repository.NewProductRepository(testDB.DB)
		require.NoError(t, productRepo.Delete(ctx, highlighter.UUID))

		cancelled, err := flow.CancelOrder(ctx, user, fmt.Sprintf("%d", order.ID), testMetadata())
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
		assert.NotNil(t, cancelled.CancelledAt)

		reloaded, err := productRepo.BySequentialID(ctx, marker.ID)
		require.NoError(t, err)
		assert.Equal(t, 54, reloaded.Stock)

		t.Run("SecondCancelRejected", func(t *testing.T) {
			_, err := flow.CancelOrder(ctx, user, fmt.Sprintf("%d", order.ID), testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsOrderNotCancellable(err))
		})

		return nil
	})
	require.NoError(t, err)
}
