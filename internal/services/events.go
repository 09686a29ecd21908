package services

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"storefront/internal/models"
)

const (
	EventOrderCreated = "order.created"
	EventOrderPaid    = "order.paid"
)

// EventPublisher publishes domain events to the message broker.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// OrderEvent is the body of order.* messages.
type OrderEvent struct {
	Type          string    `json:"type"`
	OrderID       string    `json:"orderId"`
	UserID        string    `json:"userId"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	Total         float64   `json:"total"`
	OccurredAt    time.Time `json:"occurredAt"`
}

func newOrderEvent(eventType string, order *models.Order, now time.Time) OrderEvent {
	return OrderEvent{
		Type:          eventType,
		OrderID:       order.ID,
		UserID:        order.UserID,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		Total:         order.PayableAmount,
		OccurredAt:    now,
	}
}

// publishOrderEvent sends an order event. Failures are logged and never returned.
func publishOrderEvent(publisher EventPublisher, logger *zap.Logger, evt OrderEvent) {
	if publisher == nil {
		logger.Debug("event publisher not configured, skipping", zap.String("event", evt.Type), zap.String("order_id", evt.OrderID))
		return
	}

	body, err := json.Marshal(evt)
	if err != nil {
		logger.Error("failed to marshal order event", zap.String("order_id", evt.OrderID), zap.Error(err))
		return
	}
	if err := publisher.Publish(evt.Type, body); err != nil {
		logger.Warn("failed to publish order event", zap.String("event", evt.Type), zap.String("order_id", evt.OrderID), zap.Error(err))
		return
	}
	logger.Info("order event published", zap.String("event", evt.Type), zap.String("order_id", evt.OrderID))
}
