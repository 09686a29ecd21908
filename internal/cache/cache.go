// Package cache provides the key/value store behind the product cache and the
// coupon-apply rate limiter.
package cache

import (
	"context"
	"time"
)

// Cache stores JSON-encoded values and counters with expiry.
type Cache interface {
	// Get decodes the value stored at key into dest. It reports false on a miss.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// Incr increments the counter at key. A new counter expires after window.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}
