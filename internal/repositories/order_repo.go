package repositories

import (
	"time"

	"storefront/internal/models"
)

// OrderSummary aggregates order figures for the admin dashboard.
type OrderSummary struct {
	Orders  int64   `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	GetByUserID(userID string) ([]models.Order, error)
	// Place persists the order, consumes one use of the coupon (when couponID is set)
	// and clears the owner's cart as a single unit.
	Place(order *models.Order, couponID string) error
	UpdateStatus(id string, status string) error
	SetCheckoutSession(id string, sessionID string) error
	// MarkPaid records a confirmed payment. It reports false when the same payment was already recorded.
	MarkPaid(id string, paymentIntentID string, paidAt time.Time) (bool, error)
	Summary() (OrderSummary, error)
}
