package repositories

import (
	"errors"
	"fmt"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// GetAll returns all orders, newest first.
func (r *GORMOrderRepository) GetAll() ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Preload("Items").Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}
	return orders, nil
}

// GetByID returns an order with its items.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// GetByUserID returns the user's orders, newest first.
func (r *GORMOrderRepository) GetByUserID(userID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items").Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get orders for user %s: %w", userID, err)
	}
	return orders, nil
}

// Place creates the order and its items, consumes a coupon use and clears the cart in one transaction.
func (r *GORMOrderRepository) Place(order *models.Order, couponID string) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		if couponID != "" {
			res := tx.Model(&models.Coupon{}).
				Where("id = ? AND (usage_limit IS NULL OR usage_limit <= 0 OR used_count < usage_limit)", couponID).
				UpdateColumn("used_count", gorm.Expr("used_count + ?", 1))
			if res.Error != nil {
				return fmt.Errorf("failed to consume coupon %s: %w", couponID, res.Error)
			}
			if res.RowsAffected == 0 {
				return ErrCouponExhausted
			}
		}

		if err := tx.Where("user_id = ?", order.UserID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart for user %s: %w", order.UserID, err)
		}
		return nil
	})
}

// UpdateStatus updates the fulfilment status of an order.
func (r *GORMOrderRepository) UpdateStatus(id string, status string) error {
	res := r.db.Model(&models.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update status of order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

// SetCheckoutSession stores the payment provider session created for the order.
func (r *GORMOrderRepository) SetCheckoutSession(id string, sessionID string) error {
	res := r.db.Model(&models.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"checkout_session_id": sessionID,
		"updated_at":          time.Now(),
	})
	if res.Error != nil {
		return fmt.Errorf("failed to store checkout session for order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

// MarkPaid sets the order Paid and records the payment intent. Repeated calls with the
// same intent are no-ops.
func (r *GORMOrderRepository) MarkPaid(id string, paymentIntentID string, paidAt time.Time) (bool, error) {
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND (payment_intent_id IS NULL OR payment_intent_id <> ?)", id, paymentIntentID).
		Updates(map[string]interface{}{
			"payment_status":    models.PaymentStatusPaid,
			"payment_intent_id": paymentIntentID,
			"paid_at":           paidAt,
			"updated_at":        time.Now(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark order %s paid: %w", id, res.Error)
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	// Either the order does not exist or this payment is already recorded.
	if _, err := r.GetByID(id); err != nil {
		return false, err
	}
	return false, nil
}

// Summary returns the order count and the revenue of paid orders.
func (r *GORMOrderRepository) Summary() (OrderSummary, error) {
	var summary OrderSummary
	if err := r.db.Model(&models.Order{}).Count(&summary.Orders).Error; err != nil {
		return summary, fmt.Errorf("failed to count orders: %w", err)
	}
	err := r.db.Model(&models.Order{}).
		Where("payment_status = ?", models.PaymentStatusPaid).
		Select("COALESCE(SUM(payable_amount), 0)").
		Scan(&summary.Revenue).Error
	if err != nil {
		return summary, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return summary, nil
}
