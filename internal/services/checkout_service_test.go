package services_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"storefront/internal/models"
	"storefront/internal/pricing"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type checkoutFixture struct {
	carts     *MockCartRepository
	products  *MockProductRepository
	orders    *MockOrderRepository
	coupons   *MockCouponRepository
	publisher *MockPublisher
	service   *services.CheckoutService
}

func newCheckoutFixture(opts services.CheckoutOptions) *checkoutFixture {
	f := &checkoutFixture{
		carts:     new(MockCartRepository),
		products:  new(MockProductRepository),
		orders:    new(MockOrderRepository),
		coupons:   new(MockCouponRepository),
		publisher: new(MockPublisher),
	}
	clock := func() time.Time { return fixedNow }
	couponService := services.NewCouponService(f.coupons, clock, zap.NewNop())
	f.service = services.NewCheckoutService(f.carts, f.products, f.orders, couponService, f.publisher, opts, clock, zap.NewNop())
	return f
}

func (f *checkoutFixture) assertNothingPlaced(t *testing.T) {
	t.Helper()
	f.orders.AssertNotCalled(t, "Place", mock.Anything, mock.Anything)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func testAddress() models.ShippingAddress {
	return models.ShippingAddress{FullName: "Asha Rao", Address: "1 Main St", City: "Pune", PostalCode: "411001", Country: "IN"}
}

func twoLineCart() []models.CartItem {
	return []models.CartItem{
		{ID: 1, UserID: "u1", ProductID: "p1", Quantity: 2},
		{ID: 2, UserID: "u1", ProductID: "p2", Quantity: 1},
	}
}

func TestCheckout_UsesLivePricesAndSnapshotsItems(t *testing.T) {
	f := newCheckoutFixture(services.CheckoutOptions{})

	f.carts.On("GetByUserID", "u1").Return(twoLineCart(), nil).Once()
	f.products.On("GetByID", "p1").Return(&models.Product{ID: "p1", Title: "Shirt", Price: 499.99, Stock: 5, Images: []string{"https://img/shirt.jpg", "https://img/back.jpg"}}, nil).Once()
	f.products.On("GetByID", "p2").Return(&models.Product{ID: "p2", Title: "Mug", Price: 0.1, Stock: 1}, nil).Once()
	f.orders.On("Place", mock.AnythingOfType("*models.Order"), "").Return(nil).Once()
	f.publisher.On("Publish", services.EventOrderCreated, mock.Anything).Return(nil).Once()

	order, err := f.service.Checkout("u1", services.CheckoutRequest{ShippingAddress: testAddress(), PaymentMethod: "Card"})
	require.NoError(t, err)

	assert.Equal(t, "u1", order.UserID)
	assert.Equal(t, 1000.08, order.TotalAmount)
	assert.Equal(t, 1000.08, order.PayableAmount)
	assert.Zero(t, order.DiscountAmount)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
	require.NotNil(t, order.PaidAt)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, testAddress(), order.ShippingAddress)

	require.Len(t, order.Items, 2)
	assert.Equal(t, models.OrderItem{ProductID: "p1", Title: "Shirt", Price: 499.99, Quantity: 2, Image: "https://img/shirt.jpg"}, order.Items[0])
	assert.Equal(t, models.OrderItem{ProductID: "p2", Title: "Mug", Price: 0.1, Quantity: 1}, order.Items[1])

	var evt services.OrderEvent
	body := f.publisher.Calls[0].Arguments.Get(1).([]byte)
	require.NoError(t, json.Unmarshal(body, &evt))
	assert.Equal(t, services.EventOrderCreated, evt.Type)
	assert.Equal(t, "u1", evt.UserID)

	f.carts.AssertExpectations(t)
	f.products.AssertExpectations(t)
	f.orders.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestCheckout_PaymentStatus(t *testing.T) {
	tests := []struct {
		name   string
		method string
		opts   services.CheckoutOptions
		want   string
	}{
		{"cash on delivery", models.PaymentMethodCOD, services.CheckoutOptions{}, models.PaymentStatusPending},
		{"card is optimistic", "Card", services.CheckoutOptions{}, models.PaymentStatusPaid},
		{"card deferred", "Card", services.CheckoutOptions{DeferCardConfirmation: true}, models.PaymentStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCheckoutFixture(tt.opts)
			f.carts.On("GetByUserID", "u1").Return([]models.CartItem{{UserID: "u1", ProductID: "p1", Quantity: 1}}, nil)
			f.products.On("GetByID", "p1").Return(&models.Product{ID: "p1", Title: "Shirt", Price: 10, Stock: 1}, nil)
			f.orders.On("Place", mock.AnythingOfType("*models.Order"), "").Return(nil)
			f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

			order, err := f.service.Checkout("u1", services.CheckoutRequest{ShippingAddress: testAddress(), PaymentMethod: tt.method})
			require.NoError(t, err)
			assert.Equal(t, tt.want, order.PaymentStatus)
			assert.Equal(t, tt.want == models.PaymentStatusPaid, order.PaidAt != nil)
		})
	}
}

func TestCheckout_EmptyCartPersistsNothing(t *testing.T) {
	f := newCheckoutFixture(services.CheckoutOptions{})
	f.carts.On("GetByUserID", "u1").Return([]models.CartItem{}, nil).Once()

	order, err := f.service.Checkout("u1", services.CheckoutRequest{ShippingAddress: testAddress(), PaymentMethod: "COD"})
	assert.ErrorIs(t, err, services.ErrEmptyCart)
	assert.Nil(t, order)
	f.assertNothingPlaced(t)
}

func TestCheckout_InsufficientStockPersistsNothing(t *testing.T) {
	f := newCheckoutFixture(services.CheckoutOptions{})
	f.carts.On("GetByUserID", "u1").Return(twoLineCart(), nil).Once()
	f.products.On("GetByID", "p1").Return(&models.Product{ID: "p1", Title: "Shirt", Price: 10, Stock: 1}, nil).Once()

	_, err := f.service.Checkout("u1", services.CheckoutRequest{ShippingAddress: testAddress(), PaymentMethod: "COD"})

	var stockErr *services.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Shirt", stockErr.Title)
	assert.Equal(t, 2, stockErr.Requested)
	assert.Equal(t, 1, stockErr.Available)
	assert.Equal(t, "insufficient stock for Shirt", err.Error())

	// The first failure stops validation.
	f.products.AssertNotCalled(t, "GetByID", "p2")
	f.assertNothingPlaced(t)
}

func TestCheckout_MissingProduct(t *testing.T) {
	f := newCheckoutFixture(services.CheckoutOptions{})
	f.carts.On("GetByUserID", "u1").Return(twoLineCart(), nil).Once()
	f.products.On("GetByID", "p1").Return(nil, notFound()).Once()

	_, err := f.service.Checkout("u1", services.CheckoutRequest{ShippingAddress: testAddress(), PaymentMethod: "COD"})

	var nfErr *services.ProductNotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "p1", nfErr.ProductID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	f.assertNothingPlaced(t)
}

func TestCheckout_WithCoupon(t *testing.T) {
	f := newCheckoutFixture(services.CheckoutOptions{})
	maxDiscount := 150.0
	coupon := &models.Coupon{ID: "c1", Code: "SAVE20", DiscountType: models.DiscountPercentage, DiscountValue: 20,
		MaxDiscountAmount: &maxDiscount, ExpiryDate: fixedNow.Add(time.Hour), IsActive: true}

	f.carts.On("GetByUserID", "u1").Return([]models.CartItem{{UserID: "u1", ProductID: "p1", Quantity: 2}}, nil).Once()
	f.products.On("GetByID", "p1").Return(&models.Product{ID: "p1", Title: "Shirt", Price: 500, Stock: 5}, nil).Once()
	f.coupons.On("GetByCode", "save20").Return(coupon, nil).Once()
	f.orders.On("Place", mock.AnythingOfType("*models.Order"), "c1").Return(nil).Once()
	f.publisher.On("Publish", services.EventOrderCreated, mock.Anything).Return(nil).Once()

	order, err := f.service.Checkout("u1", services.CheckoutRequest{ShippingAddress: testAddress(), PaymentMethod: "COD", CouponCode: "save20"})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, order.TotalAmount)
	assert.Equal(t, "SAVE20", order.CouponCode)
	assert.Equal(t, 150.0, order.DiscountAmount)
	assert.Equal(t, 850.0, order.PayableAmount)
	f.orders.AssertExpectations(t)
}

func TestCheckout_CouponRejected(t *testing.T) {
	f := newCheckoutFixture(services.CheckoutOptions{})
	expired := &models.Coupon{ID: "c1", Code: "OLD", DiscountType: models.DiscountFlat, DiscountValue: 10,
		ExpiryDate: fixedNow.Add(-time.Hour), IsActive: true}

	f.carts.On("GetByUserID", "u1").Return([]models.CartItem{{UserID: "u1", ProductID: "p1", Quantity: 1}}, nil)
	f.products.On("GetByID", "p1").Return(&models.Product{ID: "p1", Title: "Shirt", Price: 500, Stock: 5}, nil)
	f.coupons.On("GetByCode", "OLD").Return(expired, nil).Once()
	f.coupons.On("GetByCode", "NOPE").Return(nil, notFound()).Once()

	_, err := f.service.Checkout("u1", services.CheckoutRequest{ShippingAddress: testAddress(), PaymentMethod: "COD", CouponCode: "OLD"})
	assert.ErrorIs(t, err, pricing.ErrCouponExpired)

	_, err = f.service.Checkout("u1", services.CheckoutRequest{ShippingAddress: testAddress(), PaymentMethod: "COD", CouponCode: "NOPE"})
	assert.ErrorIs(t, err, services.ErrCouponNotFound)

	f.assertNothingPlaced(t)
}

func TestCheckout_CouponExhaustedWhilePlacing(t *testing.T) {
	f := newCheckoutFixture(services.CheckoutOptions{})
	limit := 1
	coupon := &models.Coupon{ID: "c1", Code: "ONCE", DiscountType: models.DiscountFlat, DiscountValue: 10,
		ExpiryDate: fixedNow.Add(time.Hour), UsageLimit: &limit, IsActive: true}

	f.carts.On("GetByUserID", "u1").Return([]models.CartItem{{UserID: "u1", ProductID: "p1", Quantity: 1}}, nil)
	f.products.On("GetByID", "p1").Return(&models.Product{ID: "p1", Title: "Shirt", Price: 500, Stock: 5}, nil)
	f.coupons.On("GetByCode", "ONCE").Return(coupon, nil)
	f.orders.On("Place", mock.AnythingOfType("*models.Order"), "c1").Return(repositories.ErrCouponExhausted).Once()

	_, err := f.service.Checkout("u1", services.CheckoutRequest{ShippingAddress: testAddress(), PaymentMethod: "COD", CouponCode: "ONCE"})
	assert.ErrorIs(t, err, pricing.ErrUsageLimitExceeded)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestCheckout_PublishFailureDoesNotFailCheckout(t *testing.T) {
	f := newCheckoutFixture(services.CheckoutOptions{})
	f.carts.On("GetByUserID", "u1").Return([]models.CartItem{{UserID: "u1", ProductID: "p1", Quantity: 1}}, nil)
	f.products.On("GetByID", "p1").Return(&models.Product{ID: "p1", Title: "Shirt", Price: 10, Stock: 1}, nil)
	f.orders.On("Place", mock.AnythingOfType("*models.Order"), "").Return(nil)
	f.publisher.On("Publish", services.EventOrderCreated, mock.Anything).Return(errors.New("broker down")).Once()

	order, err := f.service.Checkout("u1", services.CheckoutRequest{ShippingAddress: testAddress(), PaymentMethod: "COD"})
	require.NoError(t, err)
	assert.NotNil(t, order)
	f.publisher.AssertExpectations(t)
}

func TestCheckout_PlaceFailure(t *testing.T) {
	f := newCheckoutFixture(services.CheckoutOptions{})
	f.carts.On("GetByUserID", "u1").Return([]models.CartItem{{UserID: "u1", ProductID: "p1", Quantity: 1}}, nil)
	f.products.On("GetByID", "p1").Return(&models.Product{ID: "p1", Title: "Shirt", Price: 10, Stock: 1}, nil)
	f.orders.On("Place", mock.AnythingOfType("*models.Order"), "").Return(errors.New("disk full"))

	_, err := f.service.Checkout("u1", services.CheckoutRequest{ShippingAddress: testAddress(), PaymentMethod: "COD"})
	assert.ErrorContains(t, err, "failed to place order")
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}
