// Package pricing holds the money arithmetic of the storefront: order totals
// and coupon discounts. Amounts are float64 at the edges and decimal inside.
package pricing

import (
	"errors"
	"fmt"
	"time"

	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrCouponInactive     = errors.New("coupon is inactive")
	ErrCouponExpired      = errors.New("coupon has expired")
	ErrUsageLimitExceeded = errors.New("coupon usage limit exceeded")
)

// MinimumAmountError is returned when the cart total is below the coupon's minimum order amount.
type MinimumAmountError struct {
	Minimum float64
}

func (e *MinimumAmountError) Error() string {
	return fmt.Sprintf("minimum order amount of ₹%s required", decimal.NewFromFloat(e.Minimum).StringFixedBank(2))
}

// IsRuleViolation reports whether err is one of the coupon eligibility failures.
func IsRuleViolation(err error) bool {
	var minErr *MinimumAmountError
	return errors.Is(err, ErrCouponInactive) ||
		errors.Is(err, ErrCouponExpired) ||
		errors.Is(err, ErrUsageLimitExceeded) ||
		errors.As(err, &minErr)
}

// Quote is the outcome of applying a coupon to a cart total.
type Quote struct {
	CouponCode     string  `json:"couponCode"`
	DiscountAmount float64 `json:"discountAmount"`
	FinalAmount    float64 `json:"finalAmount"`
}

// OrderTotal sums price × quantity over the items, rounded to 2 places.
func OrderTotal(items []models.OrderItem) float64 {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total.Round(2).InexactFloat64()
}

// CheckEligibility runs the coupon rules in order and returns the first failure.
func CheckEligibility(c *models.Coupon, cartTotal float64, now time.Time) error {
	if !c.IsActive {
		return ErrCouponInactive
	}
	if now.After(c.ExpiryDate) {
		return ErrCouponExpired
	}
	if c.HasUsageLimit() && c.UsedCount >= *c.UsageLimit {
		return ErrUsageLimitExceeded
	}
	if decimal.NewFromFloat(cartTotal).LessThan(decimal.NewFromFloat(c.MinOrderAmount)) {
		return &MinimumAmountError{Minimum: c.MinOrderAmount}
	}
	return nil
}

// Discount computes the coupon's discount on cartTotal, never exceeding the total.
func Discount(c *models.Coupon, cartTotal float64) float64 {
	total := decimal.NewFromFloat(cartTotal)
	if total.IsNegative() {
		total = decimal.Zero
	}

	var discount decimal.Decimal
	switch c.DiscountType {
	case models.DiscountPercentage:
		discount = total.Mul(decimal.NewFromFloat(c.DiscountValue)).Div(decimal.NewFromInt(100))
		if c.HasMaxDiscount() {
			discount = decimal.Min(discount, decimal.NewFromFloat(*c.MaxDiscountAmount))
		}
	default:
		discount = decimal.NewFromFloat(c.DiscountValue)
	}

	discount = decimal.Min(discount, total)
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	return discount.Round(2).InexactFloat64()
}

// EvaluateCoupon checks the coupon against cartTotal at time now and prices it.
func EvaluateCoupon(c *models.Coupon, cartTotal float64, now time.Time) (Quote, error) {
	if err := CheckEligibility(c, cartTotal, now); err != nil {
		return Quote{}, err
	}

	discount := Discount(c, cartTotal)
	final := decimal.NewFromFloat(cartTotal).Sub(decimal.NewFromFloat(discount)).Round(2)
	return Quote{
		CouponCode:     c.Code,
		DiscountAmount: discount,
		FinalAmount:    final.InexactFloat64(),
	}, nil
}

// MinorUnits converts an amount to the smallest currency unit (paise, cents).
func MinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
