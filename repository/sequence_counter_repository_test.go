package repository_test

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killaresto/killa-backend/repository"
	testingutil "github.com/killaresto/killa-backend/testing"
)

func requireTestDB(t *testing.T) {
	t.Helper()
	if os.Getenv("TEST_DB_HOST") == "" {
		t.Skip("TEST_DB_HOST not set, skipping database integration test")
	}
}

func TestSequenceCounterNext(t *testing.T) {
	requireTestDB(t)

	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewSequenceCounterRepository(testDB.DB)
		ctx := context.Background()

		t.Run("StartsAtOne", func(t *testing.T) {
			current, err := repo.Current(ctx, "starts_at_one")
			require.NoError(t, err)
			assert.Equal(t, int64(0), current)

			next, err := repo.Next(ctx, "starts_at_one")
			require.NoError(t, err)
			assert.Equal(t, int64(1), next)
		})

		t.Run("MonotonicPerName", func(t *testing.T) {
			for want := int64(1); want <= 5; want++ {
				got, err := repo.Next(ctx, "monotonic")
				require.NoError(t, err)
				assert.Equal(t, want, got)
			}

			current, err := repo.Current(ctx, "monotonic")
			require.NoError(t, err)
			assert.Equal(t, int64(5), current)
		})

		t.Run("NamesAreIndependent", func(t *testing.T) {
			a, err := repo.Next(ctx, "counter_a")
			require.NoError(t, err)
			b, err := repo.Next(ctx, "counter_b")
			require.NoError(t, err)
			assert.Equal(t, int64(1), a)
			assert.Equal(t, int64(1), b)
		})

		t.Run("ConcurrentCallersGetDistinctValues", func(t *testing.T) {
			const workers = 20
			values := make(chan int64, workers)
			var wg sync.WaitGroup

			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					v, err := repo.Next(context.Background(), "concurrent")
					if err == nil {
						values <- v
					}
				}()
			}
			wg.Wait()
			close(values)

			seen := make(map[int64]bool)
			count := 0
			for v := range values {
				assert.False(t, seen[v], "value %d issued twice", v)
				seen[v] = true
				count++
			}
			assert.Equal(t, workers, count)
		})

		return nil
	})
	require.NoError(t, err)
}
