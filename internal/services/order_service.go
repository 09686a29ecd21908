package services

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Summary is the admin dashboard overview.
type Summary struct {
	Orders   int64   `json:"orders"`
	Users    int64   `json:"users"`
	Products int64   `json:"products"`
	Revenue  float64 `json:"revenue"`
}

// OrderService handles business logic related to placed orders.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	userRepo    repositories.UserRepository
	productRepo repositories.ProductRepository
	logger      *zap.Logger
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository, userRepo repositories.UserRepository, productRepo repositories.ProductRepository, logger *zap.Logger) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// GetAllOrders retrieves all orders.
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// GetMyOrders retrieves the orders of one user, newest first.
func (s *OrderService) GetMyOrders(userID string) ([]models.Order, error) {
	return s.orderRepo.GetByUserID(userID)
}

// GetOrder returns an order to its owner or to an admin. Anyone else gets ErrOrderNotFound.
func (s *OrderService) GetOrder(id, userID string, isAdmin bool) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !isAdmin && order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// UpdateOrderStatus updates the fulfilment status of an existing order.
func (s *OrderService) UpdateOrderStatus(id string, status string) (*models.Order, error) {
	if !models.ValidOrderStatuses[status] {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	if err := s.orderRepo.UpdateStatus(id, status); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to update order status for order %s: %w", id, err)
	}
	s.logger.Info("order status updated", zap.String("order_id", id), zap.String("status", status))
	return s.orderRepo.GetByID(id)
}

// Summary aggregates order, user and product counts with paid revenue.
func (s *OrderService) Summary() (*Summary, error) {
	orders, err := s.orderRepo.Summary()
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.Count()
	if err != nil {
		return nil, err
	}
	products, err := s.productRepo.Count()
	if err != nil {
		return nil, err
	}
	return &Summary{
		Orders:   orders.Orders,
		Users:    users,
		Products: products,
		Revenue:  orders.Revenue,
	}, nil
}
