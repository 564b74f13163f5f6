package businessflow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killaresto/killa-backend/app/dto"
	businessflow "github.com/killaresto/killa-backend/business_flow"
	"github.com/killaresto/killa-backend/models"
	"github.com/killaresto/killa-backend/repository"
	testingutil "github.com/killaresto/killa-backend/testing"
	"github.com/killaresto/killa-backend/utils"
)

// stubRecommendationClient stands in for the model service
type stubRecommendationClient struct {
	ids []uint
	err error
}

func (s *stubRecommendationClient) Recommend(ctx context.Context, userID uint) ([]uint, error) {
	return s.ids, s.err
}

func newMenuFlow(testDB *testingutil.TestDB, client *stubRecommendationClient) businessflow.MenuFlow {
	return businessflow.NewMenuFlow(
		repository.NewMenuItemRepository(testDB.DB),
		repository.NewOrderRepository(testDB.DB),
		repository.NewRecommendationLogRepository(testDB.DB),
		repository.NewAuditLogRepository(testDB.DB),
		client,
		nil,
		testDB.DB,
	)
}

func TestMenuCatalog(t *testing.T) {
	requireTestDB(t)

	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		menuFlow := newMenuFlow(testDB, &stubRecommendationClient{})
		ctx := context.Background()

		t.Run("CreateSinglePriced", func(t *testing.T) {
			result, err := menuFlow.CreateMenuItem(ctx, &dto.CreateMenuItemRequest{
				Name:        "Paneer Tikka",
				Category:    models.MenuCategoryVeg,
				SubCategory: models.MenuSubCategoryStarters,
				PricingType: models.PricingTypeSingle,
				Price:       utils.ToPtr(250.0),
			}, testMetadata())
			require.NoError(t, err)
			assert.NotZero(t, result.ID)
			assert.True(t, utils.IsTrue(result.IsAvailable))
		})

		t.Run("CreateSingleWithoutPrice", func(t *testing.T) {
			_, err := menuFlow.CreateMenuItem(ctx, &dto.CreateMenuItemRequest{
				Name:        "Broken Item",
				Category:    models.MenuCategoryVeg,
				SubCategory: models.MenuSubCategoryStarters,
				PricingType: models.PricingTypeSingle,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidPricing(err))
		})

		t.Run("CreateHalfFullMissingFull", func(t *testing.T) {
			_, err := menuFlow.CreateMenuItem(ctx, &dto.CreateMenuItemRequest{
				Name:        "Broken Item",
				Category:    models.MenuCategoryNonVeg,
				SubCategory: models.MenuSubCategoryIndian,
				PricingType: models.PricingTypeHalfFull,
				PriceHalf:   utils.ToPtr(150.0),
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidPricing(err))
		})

		t.Run("UpdatePartial", func(t *testing.T) {
			created, err := menuFlow.CreateMenuItem(ctx, &dto.CreateMenuItemRequest{
				Name:        "Veg Manchurian",
				Category:    models.MenuCategoryVeg,
				SubCategory: models.MenuSubCategoryChinese,
				PricingType: models.PricingTypeSingle,
				Price:       utils.ToPtr(180.0),
			}, testMetadata())
			require.NoError(t, err)

			updated, err := menuFlow.UpdateMenuItem(ctx, created.ID, &dto.UpdateMenuItemRequest{
				Price:       utils.ToPtr(200.0),
				IsAvailable: utils.ToPtr(false),
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, "Veg Manchurian", updated.Name)
			assert.InDelta(t, 200.0, *updated.Price, 0.001)
			assert.False(t, utils.IsTrue(updated.IsAvailable))
		})

		t.Run("UpdatePricingTypeNeedsMatchingPrices", func(t *testing.T) {
			created, err := menuFlow.CreateMenuItem(ctx, &dto.CreateMenuItemRequest{
				Name:        "Fried Rice",
				Category:    models.MenuCategoryVeg,
				SubCategory: models.MenuSubCategoryChinese,
				PricingType: models.PricingTypeSingle,
				Price:       utils.ToPtr(160.0),
			}, testMetadata())
			require.NoError(t, err)

			_, err = menuFlow.UpdateMenuItem(ctx, created.ID, &dto.UpdateMenuItemRequest{
				PricingType: utils.ToPtr(models.PricingTypeHalfFull),
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidPricing(err))
		})

		t.Run("UpdateUnknownItem", func(t *testing.T) {
			_, err := menuFlow.UpdateMenuItem(ctx, 99999, &dto.UpdateMenuItemRequest{
				Price: utils.ToPtr(100.0),
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsMenuItemNotFound(err))
		})

		t.Run("ListExcludesUnavailableByDefault", func(t *testing.T) {
			visible, err := menuFlow.ListMenu(ctx, false)
			require.NoError(t, err)
			for _, item := range visible.Items {
				assert.True(t, utils.IsTrue(item.IsAvailable))
			}

			all, err := menuFlow.ListMenu(ctx, true)
			require.NoError(t, err)
			assert.Greater(t, all.Total, visible.Total)
		})

		t.Run("Delete", func(t *testing.T) {
			created, err := menuFlow.CreateMenuItem(ctx, &dto.CreateMenuItemRequest{
				Name:        "Short Lived",
				Category:    models.MenuCategoryVeg,
				SubCategory: models.MenuSubCategorySides,
				PricingType: models.PricingTypeSingle,
				Price:       utils.ToPtr(80.0),
			}, testMetadata())
			require.NoError(t, err)

			require.NoError(t, menuFlow.DeleteMenuItem(ctx, created.ID, testMetadata()))

			err = menuFlow.DeleteMenuItem(ctx, created.ID, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsMenuItemNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestGetRecommendations(t *testing.T) {
	requireTestDB(t)

	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := context.Background()

		user, err := fixtures.CreateTestUser(models.RoleUser)
		require.NoError(t, err)

		dishes := make([]*models.MenuItem, 0, 5)
		names := []string{"Paneer Tikka", "Butter Chicken", "Veg Biryani", "Masala Dosa", "Chole Bhature"}
		for _, name := range names {
			item, err := fixtures.CreateTestMenuItem(name, models.MenuCategoryVeg, 200)
			require.NoError(t, err)
			dishes = append(dishes, item)
		}

		drink, err := fixtures.CreateTestMenuItem("Cola", models.MenuCategoryDrinks, 60)
		require.NoError(t, err)

		unavailable, err := fixtures.CreateTestMenuItem("Off Menu", models.MenuCategoryVeg, 300)
		require.NoError(t, err)
		unavailable.IsAvailable = utils.ToPtr(false)
		require.NoError(t, testDB.DB.Save(unavailable).Error)

		// Order history: dish 0 three times, dish 1 twice, dish 2 once
		for i, count := range []int{3, 2, 1} {
			for j := 0; j < count; j++ {
				_, err := fixtures.CreateTestOrder(user.ID, dishes[i], models.OrderStatusCompleted)
				require.NoError(t, err)
			}
		}

		t.Run("ModelServed", func(t *testing.T) {
			client := &stubRecommendationClient{ids: []uint{dishes[3].ID, dishes[0].ID, unavailable.ID}}
			menuFlow := newMenuFlow(testDB, client)

			result, err := menuFlow.GetRecommendations(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, models.RecommendationSourceModel, result.Source)

			// Served order preserved, unavailable dropped
			require.Len(t, result.Items, 2)
			assert.Equal(t, dishes[3].ID, result.Items[0].ID)
			assert.Equal(t, dishes[0].ID, result.Items[1].ID)
		})

		t.Run("FallbackOnModelError", func(t *testing.T) {
			client := &stubRecommendationClient{err: errors.New("connection refused")}
			menuFlow := newMenuFlow(testDB, client)

			result, err := menuFlow.GetRecommendations(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, models.RecommendationSourceFallback, result.Source)
			assert.Len(t, result.Items, utils.RecommendationCount)

			// Popularity ranking leads, drinks and unavailable items excluded
			assert.Equal(t, dishes[0].ID, result.Items[0].ID)
			assert.Equal(t, dishes[1].ID, result.Items[1].ID)
			assert.Equal(t, dishes[2].ID, result.Items[2].ID)
			for _, item := range result.Items {
				assert.NotEqual(t, drink.ID, item.ID)
				assert.NotEqual(t, unavailable.ID, item.ID)
			}
		})

		t.Run("FallbackOnEmptyModelAnswer", func(t *testing.T) {
			client := &stubRecommendationClient{ids: []uint{}}
			menuFlow := newMenuFlow(testDB, client)

			result, err := menuFlow.GetRecommendations(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, models.RecommendationSourceFallback, result.Source)
		})

		return nil
	})
	require.NoError(t, err)
}
