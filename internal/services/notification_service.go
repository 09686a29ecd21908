package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"storefront/internal/notify"
	"storefront/internal/repositories"
	"storefront/pkg/rabbitmq"
)

// NotificationService e-mails customers about order events consumed from the broker.
type NotificationService struct {
	orderRepo repositories.OrderRepository
	userRepo  repositories.UserRepository
	mailer    notify.Mailer
	clientURL string
	logger    *zap.Logger
}

func NewNotificationService(orderRepo repositories.OrderRepository, userRepo repositories.UserRepository, mailer notify.Mailer, clientURL string, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		orderRepo: orderRepo,
		userRepo:  userRepo,
		mailer:    mailer,
		clientURL: clientURL,
		logger:    logger,
	}
}

// HandleOrderEvent renders and sends the e-mail for one order event.
// Undecodable or unknown events are discarded.
func (s *NotificationService) HandleOrderEvent(ctx context.Context, routingKey string, body []byte) error {
	var evt OrderEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return fmt.Errorf("decode order event: %v: %w", err, rabbitmq.ErrDiscard)
	}

	var kind notify.OrderEmailKind
	switch evt.Type {
	case EventOrderCreated:
		kind = notify.OrderPlaced
	case EventOrderPaid:
		kind = notify.OrderPaid
	default:
		s.logger.Debug("no notification for event", zap.String("routing_key", routingKey), zap.String("type", evt.Type))
		return nil
	}

	order, err := s.orderRepo.GetByID(evt.OrderID)
	if err != nil {
		return discardIfMissing(fmt.Sprintf("load order %s", evt.OrderID), err)
	}
	user, err := s.userRepo.GetByID(order.UserID)
	if err != nil {
		return discardIfMissing(fmt.Sprintf("load user %s", order.UserID), err)
	}

	msg, err := notify.RenderOrderEmail(kind, order, user, fmt.Sprintf("%s/order/%s", s.clientURL, order.ID))
	if err != nil {
		return fmt.Errorf("%v: %w", err, rabbitmq.ErrDiscard)
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return err
	}
	s.logger.Info("order e-mail sent", zap.String("order_id", order.ID), zap.String("type", evt.Type))
	return nil
}

// discardIfMissing drops events about deleted records and retries everything else.
func discardIfMissing(op string, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%s: %v: %w", op, err, rabbitmq.ErrDiscard)
	}
	return fmt.Errorf("%s: %w", op, err)
}
