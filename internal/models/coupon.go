package models

import "time"

const (
	DiscountPercentage = "percentage"
	DiscountFlat       = "flat"
)

// Coupon is a discount code. Codes are stored uppercase and matched case-insensitively.
type Coupon struct {
	ID                string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Code              string    `json:"code" gorm:"uniqueIndex;type:varchar(50)"`
	DiscountType      string    `json:"discountType" gorm:"type:varchar(20)"`
	DiscountValue     float64   `json:"discountValue"`
	MinOrderAmount    float64   `json:"minOrderAmount"`
	MaxDiscountAmount *float64  `json:"maxDiscountAmount,omitempty"`
	ExpiryDate        time.Time `json:"expiryDate"`
	UsageLimit        *int      `json:"usageLimit,omitempty"`
	UsedCount         int       `json:"usedCount"`
	IsActive          bool      `json:"isActive"`
	CreatedBy         string    `json:"createdBy" gorm:"type:varchar(36)"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// HasUsageLimit reports whether the coupon caps its number of uses. A zero limit means unlimited.
func (c *Coupon) HasUsageLimit() bool {
	return c.UsageLimit != nil && *c.UsageLimit > 0
}

// HasMaxDiscount reports whether percentage discounts are capped. A zero cap means uncapped.
func (c *Coupon) HasMaxDiscount() bool {
	return c.MaxDiscountAmount != nil && *c.MaxDiscountAmount > 0
}
