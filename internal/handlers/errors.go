package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"storefront/internal/payments"
	"storefront/internal/pricing"
	"storefront/internal/repositories"
	"storefront/internal/services"
)

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var reqErr *requestError
	var stockErr *services.InsufficientStockError
	var fiberErr *fiber.Error

	switch {
	case errors.As(err, &reqErr),
		errors.As(err, &stockErr),
		pricing.IsRuleViolation(err),
		errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidDiscount),
		errors.Is(err, services.ErrMissingApplyInput),
		errors.Is(err, services.ErrCouponExists),
		errors.Is(err, services.ErrCategoryExists),
		errors.Is(err, services.ErrPaymentNotRequired),
		errors.Is(err, services.ErrAlreadyPaid),
		errors.Is(err, payments.ErrInvalidSignature),
		errors.Is(err, payments.ErrWebhookSecretMissing):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrCouponNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, repositories.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrEmailTaken):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrPaymentsDisabled):
		return fiber.StatusServiceUnavailable
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	}
	return fiber.StatusInternalServerError
}

// respondError writes err as a {"message"} JSON body with its mapped status.
func respondError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	status := statusFor(err)
	body := fiber.Map{"message": err.Error()}

	var reqErr *requestError
	if errors.As(err, &reqErr) {
		body["message"] = reqErr.message
		if reqErr.fields != nil {
			body["errors"] = reqErr.fields
		}
		if reqErr.cause != nil {
			body["error"] = reqErr.cause.Error()
		}
	}

	if status >= fiber.StatusInternalServerError {
		logger.Error("request failed", zap.String("method", c.Method()), zap.String("path", c.Path()), zap.Error(err))
	} else {
		logger.Debug("request rejected", zap.String("path", c.Path()), zap.Int("status", status), zap.Error(err))
	}
	return c.Status(status).JSON(body)
}

// ErrorHandler is the Fiber fallback for errors returned by handlers and middleware.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return respondError(c, logger, err)
	}
}
