package models

import "time"

const (
	PaymentMethodCOD = "COD"

	PaymentStatusPending = "Pending"
	PaymentStatusPaid    = "Paid"

	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// ValidOrderStatuses lists the fulfilment statuses an order can move through.
var ValidOrderStatuses = map[string]bool{
	OrderStatusPending:    true,
	OrderStatusProcessing: true,
	OrderStatusShipped:    true,
	OrderStatusDelivered:  true,
	OrderStatusCancelled:  true,
}

// OrderItem is the snapshot of a product taken when the order was placed.
// It is written once and never updated.
type OrderItem struct {
	ID        uint    `json:"-" gorm:"primaryKey"`
	OrderID   string  `json:"-" gorm:"type:varchar(36);index"`
	ProductID string  `json:"productId" gorm:"type:varchar(36)"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"` // Price at the time of order
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image"`
}

// ShippingAddress is embedded in an order.
type ShippingAddress struct {
	FullName   string `json:"fullName" validate:"required,max=100"`
	Address    string `json:"address" validate:"required,max=255"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state" validate:"omitempty,max=100"`
	PostalCode string `json:"postalCode" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,max=100"`
	Phone      string `json:"phone" validate:"omitempty,max=30"`
}

// Order represents a customer order.
type Order struct {
	ID                string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID            string          `json:"userId" gorm:"type:varchar(36);index"`
	Items             []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ShippingAddress   ShippingAddress `json:"shippingAddress" gorm:"embedded;embeddedPrefix:ship_"`
	PaymentMethod     string          `json:"paymentMethod" gorm:"type:varchar(30)"`
	PaymentStatus     string          `json:"paymentStatus" gorm:"type:varchar(20);index"`
	Status            string          `json:"status" gorm:"type:varchar(20)"`
	TotalAmount       float64         `json:"totalAmount"`
	CouponCode        string          `json:"couponCode,omitempty" gorm:"type:varchar(50)"`
	DiscountAmount    float64         `json:"discountAmount"`
	PayableAmount     float64         `json:"payableAmount"`
	CheckoutSessionID string          `json:"checkoutSessionId,omitempty"`
	PaymentIntentID   string          `json:"paymentIntentId,omitempty"`
	PaidAt            *time.Time      `json:"paidAt,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// IsCOD reports whether the order is paid on delivery.
func (o *Order) IsCOD() bool {
	return o.PaymentMethod == PaymentMethodCOD
}
