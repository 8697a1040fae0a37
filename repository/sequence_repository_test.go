package repository_test

import (
	"context"
	"sync"
	"testing"

	"github.com/smart-stationery/backend/repository"
	testingutil "github.com/smart-stationery/backend/testing"
	"github.com/smart-stationery/backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceAllocate(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		seqRepo := repository.NewSequenceRepository(testDB.DB)
		ctx := context.Background()

		t.Run("StartsAtOne", func(t *testing.T) {
			id, err := seqRepo.Allocate(ctx, "test_counter_a")
			require.NoError(t, err)
			assert.Equal(t, int64(1), id)
		})

		t.Run("Monotonic", func(t *testing.T) {
			var last int64
			for i := 0; i < 10; i++ {
				id, err := seqRepo.Allocate(ctx, "test_counter_b")
				require.NoError(t, err)
				assert.Greater(t, id, last)
				last = id
			}
			assert.Equal(t, int64(10), last)
		})

		t.Run("IndependentCounters", func(t *testing.T) {
			userID, err := seqRepo.Allocate(ctx, utils.SequenceUserID)
			require.NoError(t, err)
			productID, err := seqRepo.Allocate(ctx, utils.SequenceProductID)
			require.NoError(t, err)

			assert.Equal(t, int64(1), userID)
			assert.Equal(t, int64(1), productID)
		})

		t.Run("CurrentReflectsAllocations", func(t *testing.T) {
			current, err := seqRepo.Current(ctx, "test_counter_b")
			require.NoError(t, err)
			assert.Equal(t, int64(10), current)

			// An unknown counter reads as zero without being created.
			current, err = seqRepo.Current(ctx, "never_allocated")
			require.NoError(t, err)
			assert.Equal(t, int64(0), current)
		})

		t.Run("ResetAdvancesCounter", func(t *testing.T) {
			require.NoError(t, seqRepo.Reset(ctx, "test_counter_c", 500))

			id, err := seqRepo.Allocate(ctx, "test_counter_c")
			require.NoError(t, err)
			assert.Equal(t, int64(501), id)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestSequenceAllocateConcurrent(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		seqRepo := repository.NewSequenceRepository(testDB.DB)
		ctx := context.Background()

		const workers = 20
		const perWorker = 50

		var mu sync.Mutex
		seen := make(map[int64]bool)
		var wg sync.WaitGroup
		errCh := make(chan error, workers)

		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < perWorker; i++ {
					id, err := seqRepo.Allocate(ctx, "concurrent_counter")
					if err != nil {
						errCh <- err
						return
					}
					mu.Lock()
					if seen[id] {
						mu.Unlock()
						errCh <- assert.AnError
						return
					}
					seen[id] = true
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		close(errCh)

		for err := range errCh {
			require.NoError(t, err, "duplicate or failed allocation under concurrency")
		}

		// Every id in [1, workers*perWorker] was handed out exactly once.
		assert.Len(t, seen, workers*perWorker)
		for id := int64(1); id <= int64(workers*perWorker); id++ {
			assert.True(t, seen[id], "id %d was never allocated", id)
		}

		return nil
	})
	require.NoError(t, err)
}
