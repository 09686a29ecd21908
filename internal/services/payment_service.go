package services

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/payments"
	"storefront/internal/pricing"
	"storefront/internal/repositories"
)

type CreateSessionRequest struct {
	OrderID string `json:"orderId" validate:"required"`
}

type VerifyPaymentRequest struct {
	OrderID   string `json:"orderId" validate:"required"`
	SessionID string `json:"sessionId" validate:"required"`
}

type CheckoutSessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type VerifyPaymentResult struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Order   *models.Order `json:"order,omitempty"`
}

type PaymentOptions struct {
	Currency  string
	ClientURL string
}

// PaymentService connects orders to the hosted checkout of the payment gateway.
type PaymentService struct {
	gateway   payments.Gateway
	orderRepo repositories.OrderRepository
	userRepo  repositories.UserRepository
	publisher EventPublisher
	opts      PaymentOptions
	now       func() time.Time
	logger    *zap.Logger
}

// NewPaymentService builds the service. gateway may be nil when card payments are disabled.
func NewPaymentService(
	gateway payments.Gateway,
	orderRepo repositories.OrderRepository,
	userRepo repositories.UserRepository,
	publisher EventPublisher,
	opts PaymentOptions,
	now func() time.Time,
	logger *zap.Logger,
) *PaymentService {
	if now == nil {
		now = time.Now
	}
	return &PaymentService{
		gateway:   gateway,
		orderRepo: orderRepo,
		userRepo:  userRepo,
		publisher: publisher,
		opts:      opts,
		now:       now,
		logger:    logger,
	}
}

// CreateCheckoutSession opens a hosted checkout page for an unpaid order of userID.
// Line items come from the order snapshot.
func (s *PaymentService) CreateCheckoutSession(orderID, userID string) (*CheckoutSessionResponse, error) {
	if s.gateway == nil {
		return nil, ErrPaymentsDisabled
	}

	order, err := s.ownedOrder(orderID, userID)
	if err != nil {
		return nil, err
	}
	if order.IsCOD() {
		return nil, ErrPaymentNotRequired
	}
	if order.PaymentIntentID != "" {
		return nil, ErrAlreadyPaid
	}

	req := payments.SessionRequest{
		OrderID:    order.ID,
		Currency:   s.opts.Currency,
		LineItems:  sessionLineItems(order),
		SuccessURL: fmt.Sprintf("%s/order/%s?session_id={CHECKOUT_SESSION_ID}", s.opts.ClientURL, order.ID),
		CancelURL:  fmt.Sprintf("%s/cart", s.opts.ClientURL),
	}
	if user, err := s.userRepo.GetByID(userID); err == nil {
		req.CustomerEmail = user.Email
	}

	session, err := s.gateway.CreateCheckoutSession(req)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.SetCheckoutSession(order.ID, session.ID); err != nil {
		return nil, err
	}
	return &CheckoutSessionResponse{ID: session.ID, URL: session.URL}, nil
}

// sessionLineItems prices the order snapshot. A discounted order is charged as a
// single line for its payable amount.
func sessionLineItems(order *models.Order) []payments.LineItem {
	if order.DiscountAmount > 0 {
		return []payments.LineItem{{
			Name:       fmt.Sprintf("Order %s (coupon %s)", order.ID, order.CouponCode),
			UnitAmount: pricing.MinorUnits(order.PayableAmount),
			Quantity:   1,
		}}
	}

	items := make([]payments.LineItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, payments.LineItem{
			Name:       item.Title,
			Image:      item.Image,
			UnitAmount: pricing.MinorUnits(item.Price),
			Quantity:   int64(item.Quantity),
		})
	}
	return items
}

// VerifyPayment checks a returned checkout session and marks the order paid when it is.
func (s *PaymentService) VerifyPayment(orderID, sessionID, userID string) (*VerifyPaymentResult, error) {
	if s.gateway == nil {
		return nil, ErrPaymentsDisabled
	}
	if _, err := s.ownedOrder(orderID, userID); err != nil {
		return nil, err
	}

	session, err := s.gateway.GetCheckoutSession(sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Paid || session.OrderID != orderID {
		return &VerifyPaymentResult{Success: false, Message: "Payment not completed yet"}, nil
	}

	order, err := s.markPaid(orderID, session)
	if err != nil {
		return nil, err
	}
	return &VerifyPaymentResult{Success: true, Message: "Payment verified", Order: order}, nil
}

// HandleWebhook processes a signed gateway notification.
func (s *PaymentService) HandleWebhook(payload []byte, signature string) error {
	if s.gateway == nil {
		return ErrPaymentsDisabled
	}

	evt, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}
	if evt.Type != payments.EventCheckoutCompleted || evt.Session == nil {
		s.logger.Debug("ignoring webhook event", zap.String("event_id", evt.ID), zap.String("type", evt.Type))
		return nil
	}
	if evt.Session.OrderID == "" {
		s.logger.Warn("checkout session without order id", zap.String("session_id", evt.Session.ID))
		return nil
	}
	if !evt.Session.Paid {
		s.logger.Info("checkout completed without payment", zap.String("order_id", evt.Session.OrderID))
		return nil
	}

	_, err = s.markPaid(evt.Session.OrderID, evt.Session)
	return err
}

func (s *PaymentService) markPaid(orderID string, session *payments.Session) (*models.Order, error) {
	reference := session.PaymentIntentID
	if reference == "" {
		reference = session.ID
	}

	changed, err := s.orderRepo.MarkPaid(orderID, reference, s.now())
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if changed {
		s.logger.Info("order paid", zap.String("order_id", orderID), zap.String("payment_intent", reference))
		publishOrderEvent(s.publisher, s.logger, newOrderEvent(EventOrderPaid, order, s.now()))
	}
	return order, nil
}

func (s *PaymentService) ownedOrder(orderID, userID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}
