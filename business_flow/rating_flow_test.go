package businessflow_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killaresto/killa-backend/app/dto"
	businessflow "github.com/killaresto/killa-backend/business_flow"
	"github.com/killaresto/killa-backend/models"
	"github.com/killaresto/killa-backend/repository"
	testingutil "github.com/killaresto/killa-backend/testing"
)

func newRatingFlow(testDB *testingutil.TestDB) businessflow.RatingFlow {
	return businessflow.NewRatingFlow(
		repository.NewRatingRepository(testDB.DB),
		repository.NewOrderRepository(testDB.DB),
		repository.NewAuditLogRepository(testDB.DB),
		testDB.DB,
	)
}

func TestSubmitRating(t *testing.T) {
	requireTestDB(t)

	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		ratingFlow := newRatingFlow(testDB)
		ctx := context.Background()

		user, err := fixtures.CreateTestUser(models.RoleUser)
		require.NoError(t, err)
		other, err := fixtures.CreateTestUser(models.RoleUser)
		require.NoError(t, err)

		item, err := fixtures.CreateTestMenuItem("Chole Bhature", models.MenuCategoryVeg, 160)
		require.NoError(t, err)

		t.Run("SuccessfulRating", func(t *testing.T) {
			order, err := fixtures.CreateTestOrder(user.ID, item, models.OrderStatusCompleted)
			require.NoError(t, err)

			result, err := ratingFlow.SubmitRating(ctx, user.ID, &dto.SubmitRatingRequest{
				OrderID: order.ID,
				Score:   4,
				Comment: "Great food",
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, order.ID, result.OrderID)
			assert.Equal(t, 4, result.Score)
			require.NotNil(t, result.Comment)
			assert.Equal(t, "Great food", *result.Comment)
		})

		t.Run("SecondRatingRejected", func(t *testing.T) {
			order, err := fixtures.CreateTestOrder(user.ID, item, models.OrderStatusCompleted)
			require.NoError(t, err)

			_, err = ratingFlow.SubmitRating(ctx, user.ID, &dto.SubmitRatingRequest{
				OrderID: order.ID,
				Score:   5,
			}, testMetadata())
			require.NoError(t, err)

			_, err = ratingFlow.SubmitRating(ctx, user.ID, &dto.SubmitRatingRequest{
				OrderID: order.ID,
				Score:   1,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsOrderAlreadyRated(err))
		})

		t.Run("ScoreZeroRecordsDecline", func(t *testing.T) {
			order, err := fixtures.CreateTestOrder(user.ID, item, models.OrderStatusCompleted)
			require.NoError(t, err)

			result, err := ratingFlow.SubmitRating(ctx, user.ID, &dto.SubmitRatingRequest{
				OrderID: order.ID,
				Score:   0,
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, 0, result.Score)

			// The decline still counts as the one rating for the order
			_, err = ratingFlow.SubmitRating(ctx, user.ID, &dto.SubmitRatingRequest{
				OrderID: order.ID,
				Score:   5,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsOrderAlreadyRated(err))
		})

		t.Run("ScoreOutOfRange", func(t *testing.T) {
			order, err := fixtures.CreateTestOrder(user.ID, item, models.OrderStatusCompleted)
			require.NoError(t, err)

			_, err = ratingFlow.SubmitRating(ctx, user.ID, &dto.SubmitRatingRequest{
				OrderID: order.ID,
				Score:   6,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidScore(err))
		})

		t.Run("CannotRateForeignOrder", func(t *testing.T) {
			order, err := fixtures.CreateTestOrder(other.ID, item, models.OrderStatusCompleted)
			require.NoError(t, err)

			_, err = ratingFlow.SubmitRating(ctx, user.ID, &dto.SubmitRatingRequest{
				OrderID: order.ID,
				Score:   3,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsOrderAccessDenied(err))
		})

		t.Run("UnknownOrder", func(t *testing.T) {
			_, err := ratingFlow.SubmitRating(ctx, user.ID, &dto.SubmitRatingRequest{
				OrderID: 99999,
				Score:   3,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsOrderNotFound(err))
		})

		t.Run("ConcurrentSubmissionsOnlyOneWins", func(t *testing.T) {
			order, err := fixtures.CreateTestOrder(user.ID, item, models.OrderStatusCompleted)
			require.NoError(t, err)

			results := make(chan error, 2)
			var wg sync.WaitGroup

			for score := 3; score <= 4; score++ {
				wg.Add(1)
				go func(score int) {
					defer wg.Done()
					_, err := ratingFlow.SubmitRating(context.Background(), user.ID, &dto.SubmitRatingRequest{
						OrderID: order.ID,
						Score:   score,
					}, testMetadata())
					results <- err
				}(score)
			}
			wg.Wait()
			close(results)

			successes := 0
			conflicts := 0
			for err := range results {
				switch {
				case err == nil:
					successes++
				case businessflow.IsOrderAlreadyRated(err):
					conflicts++
				default:
					t.Fatalf("unexpected error: %v", err)
				}
			}
			assert.Equal(t, 1, successes)
			assert.Equal(t, 1, conflicts)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestGetOrderRating(t *testing.T) {
	requireTestDB(t)

	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		ratingFlow := newRatingFlow(testDB)
		ctx := context.Background()

		user, err := fixtures.CreateTestUser(models.RoleUser)
		require.NoError(t, err)
		other, err := fixtures.CreateTestUser(models.RoleUser)
		require.NoError(t, err)

		item, err := fixtures.CreateTestMenuItem("Dal Makhani", models.MenuCategoryVeg, 180)
		require.NoError(t, err)

		ratedOrder, err := fixtures.CreateTestOrder(user.ID, item, models.OrderStatusCompleted)
		require.NoError(t, err)
		_, err = fixtures.CreateTestRating(ratedOrder.ID, user.ID, 5)
		require.NoError(t, err)

		unratedOrder, err := fixtures.CreateTestOrder(user.ID, item, models.OrderStatusCompleted)
		require.NoError(t, err)

		t.Run("ExistingRating", func(t *testing.T) {
			result, err := ratingFlow.GetOrderRating(ctx, user.ID, ratedOrder.ID)
			require.NoError(t, err)
			assert.Equal(t, 5, result.Score)
		})

		t.Run("UnratedOrder", func(t *testing.T) {
			_, err := ratingFlow.GetOrderRating(ctx, user.ID, unratedOrder.ID)
			require.Error(t, err)
		})

		t.Run("ForeignOrder", func(t *testing.T) {
			_, err := ratingFlow.GetOrderRating(ctx, other.ID, ratedOrder.ID)
			require.Error(t, err)
			assert.True(t, businessflow.IsOrderAccessDenied(err))
		})

		return nil
	})
	require.NoError(t, err)
}
