package services

import (
	"errors"
	"fmt"

	"storefront/internal/repositories"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrCouponNotFound     = errors.New("invalid coupon code")
	ErrCouponExists       = errors.New("coupon code already exists")
	ErrCategoryExists     = errors.New("category already exists")
	ErrOrderNotFound      = errors.New("order not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrInvalidQuantity    = errors.New("quantity must be greater than zero")
	ErrPaymentsDisabled   = errors.New("card payments are not configured")
	ErrPaymentNotRequired = errors.New("order does not require online payment")
	ErrAlreadyPaid        = errors.New("order is already paid")
)

// ProductNotFoundError is returned when a cart line refers to a product that no longer exists.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

func (e *ProductNotFoundError) Unwrap() error {
	return repositories.ErrNotFound
}

// InsufficientStockError is returned when a requested quantity exceeds the product's stock.
type InsufficientStockError struct {
	ProductID string
	Title     string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s", e.Title)
}
