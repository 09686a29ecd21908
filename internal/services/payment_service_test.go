package services_test

import (
	"errors"
	"testing"
	"time"

	"storefront/internal/models"
	"storefront/internal/payments"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type paymentFixture struct {
	gateway   *MockGateway
	orders    *MockOrderRepository
	users     *MockUserRepository
	publisher *MockPublisher
	service   *services.PaymentService
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		gateway:   new(MockGateway),
		orders:    new(MockOrderRepository),
		users:     new(MockUserRepository),
		publisher: new(MockPublisher),
	}
	f.service = services.NewPaymentService(f.gateway, f.orders, f.users, f.publisher,
		services.PaymentOptions{Currency: "inr", ClientURL: "http://shop.test"},
		func() time.Time { return fixedNow }, zap.NewNop())
	return f
}

func cardOrder() *models.Order {
	return &models.Order{
		ID:            "o1",
		UserID:        "u1",
		PaymentMethod: "Card",
		PaymentStatus: models.PaymentStatusPending,
		Items: []models.OrderItem{
			{ProductID: "p1", Title: "Shirt", Price: 499.99, Quantity: 2, Image: "https://img/shirt.jpg"},
		},
		TotalAmount:   999.98,
		PayableAmount: 999.98,
	}
}

func TestPaymentService_CreateCheckoutSessionFromSnapshot(t *testing.T) {
	f := newPaymentFixture()
	f.orders.On("GetByID", "o1").Return(cardOrder(), nil).Once()
	f.users.On("GetByID", "u1").Return(&models.User{ID: "u1", Email: "asha@example.com"}, nil).Once()
	f.gateway.On("CreateCheckoutSession", mock.MatchedBy(func(req payments.SessionRequest) bool {
		return req.OrderID == "o1" &&
			req.Currency == "inr" &&
			req.CustomerEmail == "asha@example.com" &&
			req.SuccessURL == "http://shop.test/order/o1?session_id={CHECKOUT_SESSION_ID}" &&
			len(req.LineItems) == 1 &&
			req.LineItems[0] == payments.LineItem{Name: "Shirt", Image: "https://img/shirt.jpg", UnitAmount: 49999, Quantity: 2}
	})).Return(&payments.Session{ID: "cs_1", URL: "https://checkout.stripe.test/cs_1"}, nil).Once()
	f.orders.On("SetCheckoutSession", "o1", "cs_1").Return(nil).Once()

	resp, err := f.service.CreateCheckoutSession("o1", "u1")
	require.NoError(t, err)
	assert.Equal(t, &services.CheckoutSessionResponse{ID: "cs_1", URL: "https://checkout.stripe.test/cs_1"}, resp)
	f.gateway.AssertExpectations(t)
	f.orders.AssertExpectations(t)
}

func TestPaymentService_CreateCheckoutSessionDiscounted(t *testing.T) {
	f := newPaymentFixture()
	order := cardOrder()
	order.CouponCode = "SAVE10"
	order.DiscountAmount = 100
	order.PayableAmount = 899.98

	f.orders.On("GetByID", "o1").Return(order, nil).Once()
	f.users.On("GetByID", "u1").Return(nil, notFound()).Once()
	f.gateway.On("CreateCheckoutSession", mock.MatchedBy(func(req payments.SessionRequest) bool {
		return len(req.LineItems) == 1 && req.LineItems[0].UnitAmount == 89998 && req.LineItems[0].Quantity == 1
	})).Return(&payments.Session{ID: "cs_2"}, nil).Once()
	f.orders.On("SetCheckoutSession", "o1", "cs_2").Return(nil).Once()

	_, err := f.service.CreateCheckoutSession("o1", "u1")
	require.NoError(t, err)
	f.gateway.AssertExpectations(t)
}

func TestPaymentService_CreateCheckoutSessionRejections(t *testing.T) {
	f := newPaymentFixture()

	f.orders.On("GetByID", "o1").Return(cardOrder(), nil).Once()
	_, err := f.service.CreateCheckoutSession("o1", "intruder")
	assert.ErrorIs(t, err, services.ErrOrderNotFound)

	cod := cardOrder()
	cod.PaymentMethod = models.PaymentMethodCOD
	f.orders.On("GetByID", "o2").Return(cod, nil).Once()
	_, err = f.service.CreateCheckoutSession("o2", "u1")
	assert.ErrorIs(t, err, services.ErrPaymentNotRequired)

	paid := cardOrder()
	paid.PaymentIntentID = "pi_1"
	f.orders.On("GetByID", "o3").Return(paid, nil).Once()
	_, err = f.service.CreateCheckoutSession("o3", "u1")
	assert.ErrorIs(t, err, services.ErrAlreadyPaid)

	disabled := services.NewPaymentService(nil, f.orders, f.users, nil, services.PaymentOptions{}, nil, zap.NewNop())
	_, err = disabled.CreateCheckoutSession("o1", "u1")
	assert.ErrorIs(t, err, services.ErrPaymentsDisabled)

	f.gateway.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything)
}

func TestPaymentService_VerifyPayment(t *testing.T) {
	f := newPaymentFixture()
	order := cardOrder()

	f.orders.On("GetByID", "o1").Return(order, nil)
	f.gateway.On("GetCheckoutSession", "cs_unpaid").Return(&payments.Session{ID: "cs_unpaid", OrderID: "o1"}, nil).Once()
	f.gateway.On("GetCheckoutSession", "cs_other").Return(&payments.Session{ID: "cs_other", Paid: true, OrderID: "o9"}, nil).Once()
	f.gateway.On("GetCheckoutSession", "cs_paid").Return(&payments.Session{ID: "cs_paid", Paid: true, OrderID: "o1", PaymentIntentID: "pi_1"}, nil).Once()
	f.orders.On("MarkPaid", "o1", "pi_1", fixedNow).Return(true, nil).Once()
	f.publisher.On("Publish", services.EventOrderPaid, mock.Anything).Return(nil).Once()

	res, err := f.service.VerifyPayment("o1", "cs_unpaid", "u1")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Payment not completed yet", res.Message)

	res, err = f.service.VerifyPayment("o1", "cs_other", "u1")
	require.NoError(t, err)
	assert.False(t, res.Success)

	res, err = f.service.VerifyPayment("o1", "cs_paid", "u1")
	require.NoError(t, err)
	assert.True(t, res.Success)
	f.orders.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestPaymentService_HandleWebhook(t *testing.T) {
	f := newPaymentFixture()
	payload := []byte(`{}`)
	completed := &payments.Event{ID: "evt_1", Type: payments.EventCheckoutCompleted,
		Session: &payments.Session{ID: "cs_1", Paid: true, OrderID: "o1", PaymentIntentID: "pi_1"}}

	f.gateway.On("ParseWebhook", payload, "sig").Return(completed, nil).Twice()
	f.orders.On("MarkPaid", "o1", "pi_1", fixedNow).Return(true, nil).Once()
	f.orders.On("MarkPaid", "o1", "pi_1", fixedNow).Return(false, nil).Once()
	f.orders.On("GetByID", "o1").Return(cardOrder(), nil)
	f.publisher.On("Publish", services.EventOrderPaid, mock.Anything).Return(nil).Once()

	require.NoError(t, f.service.HandleWebhook(payload, "sig"))
	// Redelivery of the same event does not publish again.
	require.NoError(t, f.service.HandleWebhook(payload, "sig"))
	f.publisher.AssertNumberOfCalls(t, "Publish", 1)

	f.gateway.On("ParseWebhook", payload, "other").Return(&payments.Event{ID: "evt_2", Type: "charge.refunded"}, nil).Once()
	require.NoError(t, f.service.HandleWebhook(payload, "other"))

	f.gateway.On("ParseWebhook", payload, "bad").Return(nil, payments.ErrInvalidSignature).Once()
	assert.ErrorIs(t, f.service.HandleWebhook(payload, "bad"), payments.ErrInvalidSignature)

	f.gateway.On("ParseWebhook", payload, "unknown").Return(&payments.Event{Type: payments.EventCheckoutCompleted,
		Session: &payments.Session{ID: "cs_x", Paid: true, OrderID: "missing", PaymentIntentID: "pi_x"}}, nil).Once()
	f.orders.On("MarkPaid", "missing", "pi_x", fixedNow).Return(false, notFound()).Once()
	assert.ErrorIs(t, f.service.HandleWebhook(payload, "unknown"), services.ErrOrderNotFound)

	f.orders.AssertExpectations(t)
}

func TestPaymentService_GatewayErrors(t *testing.T) {
	f := newPaymentFixture()
	f.orders.On("GetByID", "o1").Return(cardOrder(), nil)
	f.gateway.On("GetCheckoutSession", "cs_1").Return(nil, errors.New("stripe unavailable")).Once()

	_, err := f.service.VerifyPayment("o1", "cs_1", "u1")
	assert.ErrorContains(t, err, "stripe unavailable")
}
