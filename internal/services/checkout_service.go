package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/pricing"
	"storefront/internal/repositories"
)

// CheckoutRequest is the body of POST /api/checkout.
type CheckoutRequest struct {
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod" validate:"required,max=30"`
	CouponCode      string                 `json:"couponCode" validate:"omitempty,max=50"`
}

// CheckoutOptions tune how new orders are recorded.
type CheckoutOptions struct {
	// DeferCardConfirmation keeps non-COD orders Pending until the payment is confirmed.
	DeferCardConfirmation bool
}

// CheckoutService turns a user's cart into an order.
type CheckoutService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
	orderRepo   repositories.OrderRepository
	coupons     *CouponService
	publisher   EventPublisher
	opts        CheckoutOptions
	now         func() time.Time
	logger      *zap.Logger
}

func NewCheckoutService(
	cartRepo repositories.CartRepository,
	productRepo repositories.ProductRepository,
	orderRepo repositories.OrderRepository,
	coupons *CouponService,
	publisher EventPublisher,
	opts CheckoutOptions,
	now func() time.Time,
	logger *zap.Logger,
) *CheckoutService {
	if now == nil {
		now = time.Now
	}
	return &CheckoutService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		coupons:     coupons,
		publisher:   publisher,
		opts:        opts,
		now:         now,
		logger:      logger,
	}
}

// Checkout validates the cart against live product data and places the order.
// Nothing is written unless every line passes validation.
func (s *CheckoutService) Checkout(userID string, req CheckoutRequest) (*models.Order, error) {
	lines, err := s.cartRepo.GetByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	items, err := s.snapshot(lines)
	if err != nil {
		return nil, err
	}
	total := pricing.OrderTotal(items)

	order := &models.Order{
		UserID:          userID,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   s.initialPaymentStatus(req.PaymentMethod),
		Status:          models.OrderStatusPending,
		TotalAmount:     total,
		PayableAmount:   total,
	}

	var couponID string
	if code := strings.TrimSpace(req.CouponCode); code != "" {
		coupon, quote, err := s.coupons.Evaluate(code, total)
		if err != nil {
			return nil, err
		}
		couponID = coupon.ID
		order.CouponCode = quote.CouponCode
		order.DiscountAmount = quote.DiscountAmount
		order.PayableAmount = quote.FinalAmount
	}

	if order.PaymentStatus == models.PaymentStatusPaid {
		paidAt := s.now()
		order.PaidAt = &paidAt
	}

	if err := s.orderRepo.Place(order, couponID); err != nil {
		if errors.Is(err, repositories.ErrCouponExhausted) {
			return nil, pricing.ErrUsageLimitExceeded
		}
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	s.logger.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("user_id", userID),
		zap.Int("items", len(order.Items)),
		zap.Float64("payable", order.PayableAmount))

	publishOrderEvent(s.publisher, s.logger, newOrderEvent(EventOrderCreated, order, s.now()))
	return order, nil
}

// snapshot re-reads every product and freezes its current title, price and image.
func (s *CheckoutService) snapshot(lines []models.CartItem) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		product, err := s.productRepo.GetByID(line.ProductID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, &ProductNotFoundError{ProductID: line.ProductID}
			}
			return nil, err
		}
		if line.Quantity > product.Stock {
			return nil, &InsufficientStockError{
				ProductID: product.ID,
				Title:     product.Title,
				Requested: line.Quantity,
				Available: product.Stock,
			}
		}

		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Title:     product.Title,
			Price:     decimal.NewFromFloat(product.Price).Round(2).InexactFloat64(),
			Quantity:  line.Quantity,
			Image:     product.PrimaryImage(),
		})
	}
	return items, nil
}

func (s *CheckoutService) initialPaymentStatus(method string) string {
	if method == models.PaymentMethodCOD || s.opts.DeferCardConfirmation {
		return models.PaymentStatusPending
	}
	return models.PaymentStatusPaid
}
