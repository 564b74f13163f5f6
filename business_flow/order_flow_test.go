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
	"github.com/killaresto/killa-backend/utils"
)

func newOrderFlow(testDB *testingutil.TestDB) businessflow.OrderFlow {
	return businessflow.NewOrderFlow(
		repository.NewOrderRepository(testDB.DB),
		repository.NewMenuItemRepository(testDB.DB),
		repository.NewSequenceCounterRepository(testDB.DB),
		repository.NewOrderStatusLogRepository(testDB.DB),
		repository.NewAuditLogRepository(testDB.DB),
		testDB.DB,
	)
}

func TestCreateOrder(t *testing.T) {
	requireTestDB(t)

	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		orderFlow := newOrderFlow(testDB)
		statusLogRepo := repository.NewOrderStatusLogRepository(testDB.DB)
		ctx := context.Background()

		user, err := fixtures.CreateTestUser(models.RoleUser)
		require.NoError(t, err)

		single, err := fixtures.CreateTestMenuItem("Paneer Tikka", models.MenuCategoryVeg, 250)
		require.NoError(t, err)

		halfFull, err := fixtures.CreateTestHalfFullMenuItem("Butter Chicken", models.MenuCategoryNonVeg, 180, 320)
		require.NoError(t, err)

		unavailable, err := fixtures.CreateTestMenuItem("Seasonal Special", models.MenuCategoryVeg, 400)
		require.NoError(t, err)
		unavailable.IsAvailable = utils.ToPtr(false)
		require.NoError(t, testDB.DB.Save(unavailable).Error)

		t.Run("SuccessfulOrder", func(t *testing.T) {
			result, err := orderFlow.CreateOrder(ctx, user.ID, &dto.CreateOrderRequest{
				OrderType: models.OrderTypeTakeaway,
				Items: []dto.OrderItemRequest{
					{MenuItemID: single.ID, Quantity: 2},
					{MenuItemID: halfFull.ID, Quantity: 1, Variant: models.OrderItemVariantFull},
				},
				PaymentMethod: models.PaymentMethodCash,
			}, testMetadata())
			require.NoError(t, err)
			require.NotNil(t, result)

			assert.Len(t, result.OrderNumber, 6)
			assert.Equal(t, models.OrderStatusNew, result.OrderStatus)
			assert.Equal(t, models.PaymentStatusPending, result.PaymentStatus)
			assert.InDelta(t, 2*250+320, result.TotalAmount, 0.001)

			require.Len(t, result.Items, 2)
			assert.Equal(t, "Paneer Tikka", result.Items[0].Name)
			assert.InDelta(t, 250, result.Items[0].UnitPrice, 0.001)
			assert.Equal(t, models.OrderItemVariantSingle, result.Items[0].Variant)
			assert.Equal(t, models.OrderItemVariantFull, result.Items[1].Variant)

			logs, err := statusLogRepo.ListByOrder(ctx, result.ID)
			require.NoError(t, err)
			require.Len(t, logs, 1)
			assert.Equal(t, models.OrderStatusNew, logs[0].Status)
			assert.Equal(t, models.StatusChangedBySystem, logs[0].ChangedBy)
		})

		t.Run("PriceSnapshotSurvivesCatalogEdit", func(t *testing.T) {
			result, err := orderFlow.CreateOrder(ctx, user.ID, &dto.CreateOrderRequest{
				OrderType:     models.OrderTypeTakeaway,
				Items:         []dto.OrderItemRequest{{MenuItemID: single.ID, Quantity: 1}},
				PaymentMethod: models.PaymentMethodCash,
			}, testMetadata())
			require.NoError(t, err)

			single.Price = utils.ToPtr(999.0)
			require.NoError(t, testDB.DB.Save(single).Error)

			reloaded, err := repository.NewOrderRepository(testDB.DB).ByID(ctx, result.ID)
			require.NoError(t, err)
			require.Len(t, reloaded.Items, 1)
			assert.InDelta(t, 250, reloaded.Items[0].UnitPrice, 0.001)

			// Reset for later subtests
			single.Price = utils.ToPtr(250.0)
			require.NoError(t, testDB.DB.Save(single).Error)
		})

		t.Run("EmptyOrder", func(t *testing.T) {
			_, err := orderFlow.CreateOrder(ctx, user.ID, &dto.CreateOrderRequest{
				OrderType:     models.OrderTypeTakeaway,
				Items:         []dto.OrderItemRequest{},
				PaymentMethod: models.PaymentMethodCash,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsEmptyOrder(err))
		})

		t.Run("DineInRequiresPeople", func(t *testing.T) {
			_, err := orderFlow.CreateOrder(ctx, user.ID, &dto.CreateOrderRequest{
				OrderType:     models.OrderTypeDineIn,
				Items:         []dto.OrderItemRequest{{MenuItemID: single.ID, Quantity: 1}},
				PaymentMethod: models.PaymentMethodCash,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsNumberOfPeopleRequired(err))
		})

		t.Run("DineInWithPeople", func(t *testing.T) {
			result, err := orderFlow.CreateOrder(ctx, user.ID, &dto.CreateOrderRequest{
				OrderType:      models.OrderTypeDineIn,
				NumberOfPeople: utils.ToPtr(4),
				Items:          []dto.OrderItemRequest{{MenuItemID: single.ID, Quantity: 1}},
				PaymentMethod:  models.PaymentMethodCash,
			}, testMetadata())
			require.NoError(t, err)
			require.NotNil(t, result.NumberOfPeople)
			assert.Equal(t, 4, *result.NumberOfPeople)
		})

		t.Run("UnknownMenuItem", func(t *testing.T) {
			_, err := orderFlow.CreateOrder(ctx, user.ID, &dto.CreateOrderRequest{
				OrderType:     models.OrderTypeTakeaway,
				Items:         []dto.OrderItemRequest{{MenuItemID: 99999, Quantity: 1}},
				PaymentMethod: models.PaymentMethodCash,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsMenuItemNotFound(err))
		})

		t.Run("UnavailableMenuItem", func(t *testing.T) {
			_, err := orderFlow.CreateOrder(ctx, user.ID, &dto.CreateOrderRequest{
				OrderType:     models.OrderTypeTakeaway,
				Items:         []dto.OrderItemRequest{{MenuItemID: unavailable.ID, Quantity: 1}},
				PaymentMethod: models.PaymentMethodCash,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsMenuItemUnavailable(err))
		})

		t.Run("VariantMismatch", func(t *testing.T) {
			_, err := orderFlow.CreateOrder(ctx, user.ID, &dto.CreateOrderRequest{
				OrderType:     models.OrderTypeTakeaway,
				Items:         []dto.OrderItemRequest{{MenuItemID: single.ID, Quantity: 1, Variant: models.OrderItemVariantHalf}},
				PaymentMethod: models.PaymentMethodCash,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidVariant(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestOrderNumbersAreDistinctUnderConcurrency(t *testing.T) {
	requireTestDB(t)

	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		orderFlow := newOrderFlow(testDB)

		user, err := fixtures.CreateTestUser(models.RoleUser)
		require.NoError(t, err)

		item, err := fixtures.CreateTestMenuItem("Masala Dosa", models.MenuCategoryVeg, 120)
		require.NoError(t, err)

		const workers = 10
		numbers := make(chan string, workers)
		var wg sync.WaitGroup

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				result, err := orderFlow.CreateOrder(context.Background(), user.ID, &dto.CreateOrderRequest{
					OrderType:     models.OrderTypeTakeaway,
					Items:         []dto.OrderItemRequest{{MenuItemID: item.ID, Quantity: 1}},
					PaymentMethod: models.PaymentMethodCash,
				}, testMetadata())
				if err == nil {
					numbers <- result.OrderNumber
				}
			}()
		}
		wg.Wait()
		close(numbers)

		seen := make(map[string]bool)
		count := 0
		for number := range numbers {
			assert.False(t, seen[number], "order number %s issued twice", number)
			seen[number] = true
			count++
		}
		assert.Equal(t, workers, count)

		return nil
	})
	require.NoError(t, err)
}

func TestCancelOrder(t *testing.T) {
	requireTestDB(t)

	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		orderFlow := newOrderFlow(testDB)
		statusLogRepo := repository.NewOrderStatusLogRepository(testDB.DB)
		ctx := context.Background()

		user, err := fixtures.CreateTestUser(models.RoleUser)
		require.NoError(t, err)
		other, err := fixtures.CreateTestUser(models.RoleUser)
		require.NoError(t, err)

		item, err := fixtures.CreateTestMenuItem("Spring Rolls", models.MenuCategoryVeg, 150)
		require.NoError(t, err)

		t.Run("CancelOwnNewOrder", func(t *testing.T) {
			order, err := fixtures.CreateTestOrder(user.ID, item, models.OrderStatusNew)
			require.NoError(t, err)

			result, err := orderFlow.CancelOrder(ctx, user.ID, order.ID, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, models.OrderStatusCancelled, result.OrderStatus)

			logs, err := statusLogRepo.ListByOrder(ctx, order.ID)
			require.NoError(t, err)
			require.NotEmpty(t, logs)
			last := logs[len(logs)-1]
			assert.Equal(t, models.OrderStatusCancelled, last.Status)
			assert.Equal(t, models.StatusChangedByUser, last.ChangedBy)
		})

		t.Run("CannotCancelForeignOrder", func(t *testing.T) {
			order, err := fixtures.CreateTestOrder(other.ID, item, models.OrderStatusNew)
			require.NoError(t, err)

			_, err = orderFlow.CancelOrder(ctx, user.ID, order.ID, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsOrderAccessDenied(err))
		})

		t.Run("CannotCancelPreparingOrder", func(t *testing.T) {
			order, err := fixtures.CreateTestOrder(user.ID, item, models.OrderStatusPreparing)
			require.NoError(t, err)

			_, err = orderFlow.CancelOrder(ctx, user.ID, order.ID, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsOrderNotCancellable(err))
		})

		t.Run("UnknownOrder", func(t *testing.T) {
			_, err := orderFlow.CancelOrder(ctx, user.ID, 99999, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsOrderNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestUpdateOrderStatus(t *testing.T) {
	requireTestDB(t)

	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		orderFlow := newOrderFlow(testDB)
		statusLogRepo := repository.NewOrderStatusLogRepository(testDB.DB)
		ctx := context.Background()

		user, err := fixtures.CreateTestUser(models.RoleUser)
		require.NoError(t, err)

		item, err := fixtures.CreateTestMenuItem("Gulab Jamun", models.MenuCategoryVeg, 90)
		require.NoError(t, err)

		t.Run("ForwardTransition", func(t *testing.T) {
			order, err := fixtures.CreateTestOrder(user.ID, item, models.OrderStatusNew)
			require.NoError(t, err)

			result, err := orderFlow.UpdateOrderStatus(ctx, order.ID, &dto.UpdateOrderStatusRequest{
				OrderStatus:   models.OrderStatusPreparing,
				PaymentStatus: models.PaymentStatusPaid,
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, models.OrderStatusPreparing, result.OrderStatus)
			assert.Equal(t, models.PaymentStatusPaid, result.PaymentStatus)

			logs, err := statusLogRepo.ListByOrder(ctx, order.ID)
			require.NoError(t, err)
			require.NotEmpty(t, logs)
			last := logs[len(logs)-1]
			assert.Equal(t, models.OrderStatusPreparing, last.Status)
			assert.Equal(t, models.StatusChangedByOwner, last.ChangedBy)
		})

		t.Run("BackwardTransitionAllowed", func(t *testing.T) {
			order, err := fixtures.CreateTestOrder(user.ID, item, models.OrderStatusCompleted)
			require.NoError(t, err)

			result, err := orderFlow.UpdateOrderStatus(ctx, order.ID, &dto.UpdateOrderStatusRequest{
				OrderStatus: models.OrderStatusNew,
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, models.OrderStatusNew, result.OrderStatus)
		})

		t.Run("InvalidStatus", func(t *testing.T) {
			order, err := fixtures.CreateTestOrder(user.ID, item, models.OrderStatusNew)
			require.NoError(t, err)

			_, err = orderFlow.UpdateOrderStatus(ctx, order.ID, &dto.UpdateOrderStatusRequest{
				OrderStatus: "SHIPPED",
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidOrderStatus(err))
		})

		t.Run("UnknownOrder", func(t *testing.T) {
			_, err := orderFlow.UpdateOrderStatus(ctx, 99999, &dto.UpdateOrderStatusRequest{
				OrderStatus: models.OrderStatusReady,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsOrderNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestListOrders(t *testing.T) {
	requireTestDB(t)

	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		orderFlow := newOrderFlow(testDB)
		ctx := context.Background()

		alice, err := fixtures.CreateTestUser(models.RoleUser)
		require.NoError(t, err)
		bob, err := fixtures.CreateTestUser(models.RoleUser)
		require.NoError(t, err)

		item, err := fixtures.CreateTestMenuItem("Veg Biryani", models.MenuCategoryVeg, 200)
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			_, err := fixtures.CreateTestOrder(alice.ID, item, models.OrderStatusNew)
			require.NoError(t, err)
		}
		_, err = fixtures.CreateTestOrder(bob.ID, item, models.OrderStatusCompleted)
		require.NoError(t, err)

		t.Run("MyOrdersOnlyMine", func(t *testing.T) {
			result, err := orderFlow.ListMyOrders(ctx, alice.ID, 50, 0)
			require.NoError(t, err)
			assert.Equal(t, 3, result.Total)
			assert.Len(t, result.Orders, 3)
			for _, order := range result.Orders {
				assert.Nil(t, order.User)
			}
		})

		t.Run("AllOrdersWithUser", func(t *testing.T) {
			result, err := orderFlow.ListAllOrders(ctx, models.OrderFilter{}, 50, 0)
			require.NoError(t, err)
			assert.Equal(t, 4, result.Total)
			for _, order := range result.Orders {
				require.NotNil(t, order.User)
			}
		})

		t.Run("FilterByStatus", func(t *testing.T) {
			status := models.OrderStatusCompleted
			result, err := orderFlow.ListAllOrders(ctx, models.OrderFilter{OrderStatus: &status}, 50, 0)
			require.NoError(t, err)
			assert.Equal(t, 1, result.Total)
		})

		return nil
	})
	require.NoError(t, err)
}
