package repositories

import "errors"

var (
	// ErrNotFound is returned (wrapped) when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrCouponExhausted is returned when a coupon reached its usage limit while placing an order.
	ErrCouponExhausted = errors.New("coupon usage limit reached")
)
