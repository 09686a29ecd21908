package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CheckoutHandler turns the caller's cart into an order.
type CheckoutHandler struct {
	service  *services.CheckoutService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewCheckoutHandler(service *services.CheckoutService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service:  service,
		validate: newValidator(),
		logger:   logger,
	}
}

func (h *CheckoutHandler) RegisterRoutes(router fiber.Router, guards Guards) {
	router.Post("/checkout", guards.Auth, h.HandleCheckout)
}

func (h *CheckoutHandler) HandleCheckout(c *fiber.Ctx) error {
	var req services.CheckoutRequest
	if err := bindJSON(c, h.validate, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	order, err := h.service.Checkout(middleware.UserID(c), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}
