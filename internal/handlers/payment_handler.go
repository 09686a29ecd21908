package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// PaymentHandler bridges orders and the hosted card checkout.
type PaymentHandler struct {
	service  *services.PaymentService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewPaymentHandler(service *services.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service:  service,
		validate: newValidator(),
		logger:   logger,
	}
}

func (h *PaymentHandler) RegisterRoutes(router fiber.Router, guards Guards) {
	paymentRoutes := router.Group("/payment")
	paymentRoutes.Post("/create-checkout-session", guards.Auth, h.HandleCreateSession)
	paymentRoutes.Post("/verify", guards.Auth, h.HandleVerify)
	paymentRoutes.Post("/webhook", h.HandleWebhook)
}

func (h *PaymentHandler) HandleCreateSession(c *fiber.Ctx) error {
	var req services.CreateSessionRequest
	if err := bindJSON(c, h.validate, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	session, err := h.service.CreateCheckoutSession(req.OrderID, middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(session)
}

func (h *PaymentHandler) HandleVerify(c *fiber.Ctx) error {
	var req services.VerifyPaymentRequest
	if err := bindJSON(c, h.validate, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	result, err := h.service.VerifyPayment(req.OrderID, req.SessionID, middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(result)
}

// HandleWebhook needs the exact bytes Stripe signed, so the body is never re-encoded.
func (h *PaymentHandler) HandleWebhook(c *fiber.Ctx) error {
	if err := h.service.HandleWebhook(c.Body(), c.Get("Stripe-Signature")); err != nil {
		h.logger.Warn("webhook rejected", zap.Error(err))
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"received": true})
}
