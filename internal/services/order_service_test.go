package services_test

import (
	"testing"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newOrderService() (*services.OrderService, *MockOrderRepository, *MockUserRepository, *MockProductRepository) {
	orders := new(MockOrderRepository)
	users := new(MockUserRepository)
	products := new(MockProductRepository)
	return services.NewOrderService(orders, users, products, zap.NewNop()), orders, users, products
}

func TestOrderService_GetOrderVisibility(t *testing.T) {
	service, orders, _, _ := newOrderService()
	order := &models.Order{ID: "o1", UserID: "owner"}
	orders.On("GetByID", "o1").Return(order, nil)
	orders.On("GetByID", "missing").Return(nil, notFound())

	got, err := service.GetOrder("o1", "owner", false)
	require.NoError(t, err)
	assert.Equal(t, order, got)

	_, err = service.GetOrder("o1", "someone-else", false)
	assert.ErrorIs(t, err, services.ErrOrderNotFound)

	got, err = service.GetOrder("o1", "admin", true)
	require.NoError(t, err)
	assert.Equal(t, "o1", got.ID)

	_, err = service.GetOrder("missing", "owner", false)
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
}

func TestOrderService_UpdateOrderStatus(t *testing.T) {
	service, orders, _, _ := newOrderService()

	_, err := service.UpdateOrderStatus("o1", "teleported")
	assert.ErrorIs(t, err, services.ErrInvalidStatus)

	orders.On("UpdateStatus", "o1", models.OrderStatusShipped).Return(nil).Once()
	orders.On("GetByID", "o1").Return(&models.Order{ID: "o1", Status: models.OrderStatusShipped}, nil).Once()
	order, err := service.UpdateOrderStatus("o1", models.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, order.Status)

	orders.On("UpdateStatus", "missing", models.OrderStatusShipped).Return(notFound()).Once()
	_, err = service.UpdateOrderStatus("missing", models.OrderStatusShipped)
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
	orders.AssertExpectations(t)
}

func TestOrderService_Summary(t *testing.T) {
	service, orders, users, products := newOrderService()
	orders.On("Summary").Return(repositories.OrderSummary{Orders: 4, Revenue: 1234.5}, nil)
	users.On("Count").Return(int64(10), nil)
	products.On("Count").Return(int64(25), nil)

	summary, err := service.Summary()
	require.NoError(t, err)
	assert.Equal(t, &services.Summary{Orders: 4, Users: 10, Products: 25, Revenue: 1234.5}, summary)
}

func TestOrderService_Listings(t *testing.T) {
	service, orders, _, _ := newOrderService()
	orders.On("GetByUserID", "u1").Return([]models.Order{{ID: "o1"}}, nil).Once()
	orders.On("GetAll").Return([]models.Order{{ID: "o1"}, {ID: "o2"}}, nil).Once()

	mine, err := service.GetMyOrders("u1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := service.GetAllOrders()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
