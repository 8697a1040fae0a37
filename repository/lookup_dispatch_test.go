package repository_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/smart-stationery/backend/models"
	"github.com/smart-stationery/backend/repository"
	testingutil "github.com/smart-stationery/backend/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductByAnyID(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := context.Background()

		category, err := fixtures.CreateTestCategory("Notebooks", "notebooks")
		require.NoError(t, err)

		product, err := fixtures.CreateTestProduct(category.ID, "A5 Dotted Notebook", 85000, 40)
		require.NoError(t, err)
		require.Greater(t, product.ID, int64(0))

		productRepo := repository.NewProductRepository(testDB.DB)

		t.Run("NumericRaw", func(t *testing.T) {
			found, err := productRepo.ByAnyID(ctx, "1")
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, product.UUID, found.UUID)
		})

		t.Run("UUIDRaw", func(t *testing.T) {
			found, err := productRepo.ByAnyID(ctx, product.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, product.ID, found.ID)
		})

		t.Run("NumericMissReturnsNil", func(t *testing.T) {
			found, err := productRepo.ByAnyID(ctx, "999999")
			require.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("UUIDMissReturnsNil", func(t *testing.T) {
			found, err := productRepo.ByAnyID(ctx, uuid.NewString())
			require.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("MalformedRawIsNotFound", func(t *testing.T) {
			// Unparseable identifiers resolve like misses, never as errors.
			found, err := productRepo.ByAnyID(ctx, "not-an-identifier")
			require.NoError(t, err)
			assert.Nil(t, found)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestProductByRef(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := context.Background()

		category, err := fixtures.CreateTestCategory("Pens", "pens")
		require.NoError(t, err)

		product, err := fixtures.CreateTestProduct(category.ID, "Gel Pen 0.5mm", 22000, 200)
		require.NoError(t, err)

		productRepo := repository.NewProductRepository(testDB.DB)

		t.Run("IDKind", func(t *testing.T) {
			found, err := productRepo.ByRef(ctx, models.NewIDRef(product.ID))
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, product.UUID, found.UUID)
		})

		t.Run("KeyKind", func(t *testing.T) {
			found, err := productRepo.ByRef(ctx, models.NewKeyRef(product.UUID))
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, product.ID, found.ID)
		})

		t.Run("DanglingKeyReturnsNil", func(t *testing.T) {
			found, err := productRepo.ByRef(ctx, models.NewKeyRef(uuid.New()))
			require.NoError(t, err)
			assert.Nil(t, found)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestSaveWithSequentialID(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := context.Background()

		category, err := fixtures.CreateTestCategory("Paper", "paper")
		require.NoError(t, err)

		// Fixtures already go through SaveWithSequentialID; ids come out
		// consecutive within an entity type.
		first, err := fixtures.CreateTestProduct(category.ID, "A4 Copy Paper", 150000, 500)
		require.NoError(t, err)
		second, err := fixtures.CreateTestProduct(category.ID, "A3 Copy Paper", 260000, 300)
		require.NoError(t, err)

		assert.Equal(t, int64(1), first.ID)
		assert.Equal(t, int64(2), second.ID)

		// The category counter runs independently of the product counter.
		assert.Equal(t, int64(1), category.ID)

		productRepo := repository.NewProductRepository(testDB.DB)
		maxID, err := productRepo.MaxSequentialID(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), maxID)

		return nil
	})
	require.NoError(t, err)
}
