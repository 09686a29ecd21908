package handlers

import (
	"errors"

	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CouponHandler exposes coupon quotes to shoppers and coupon management to admins.
type CouponHandler struct {
	service  *services.CouponService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewCouponHandler(service *services.CouponService, logger *zap.Logger) *CouponHandler {
	return &CouponHandler{
		service:  service,
		validate: newValidator(),
		logger:   logger,
	}
}

// RegisterRoutes mounts /coupons. applyLimit runs after authentication so
// quotes are throttled per user.
func (h *CouponHandler) RegisterRoutes(router fiber.Router, guards Guards, applyLimit fiber.Handler) {
	couponRoutes := router.Group("/coupons")
	couponRoutes.Post("/apply", guards.Auth, applyLimit, h.HandleApply)

	couponRoutes.Post("/", guards.Auth, guards.Admin, h.HandleCreate)
	couponRoutes.Get("/", guards.Auth, guards.Admin, h.HandleGetAll)
	couponRoutes.Put("/:id", guards.Auth, guards.Admin, h.HandleUpdate)
	couponRoutes.Delete("/:id", guards.Auth, guards.Admin, h.HandleDisable)
}

// HandleApply prices a cart total against a coupon without consuming it.
func (h *CouponHandler) HandleApply(c *fiber.Ctx) error {
	var req services.ApplyCouponRequest
	if err := bindJSON(c, h.validate, &req); err != nil {
		var reqErr *requestError
		if errors.As(err, &reqErr) && reqErr.fields != nil {
			reqErr.message = "Missing coupon code or cart total"
		}
		return respondError(c, h.logger, err)
	}

	quote, err := h.service.Apply(req.CouponCode, req.CartTotal)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(fiber.Map{
		"couponCode":     quote.CouponCode,
		"discountAmount": quote.DiscountAmount,
		"finalAmount":    quote.FinalAmount,
		"message":        "Coupon applied successfully",
	})
}

func (h *CouponHandler) HandleCreate(c *fiber.Ctx) error {
	var req services.CreateCouponRequest
	if err := bindJSON(c, h.validate, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	coupon, err := h.service.CreateCoupon(req, middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(coupon)
}

func (h *CouponHandler) HandleGetAll(c *fiber.Ctx) error {
	coupons, err := h.service.GetCoupons()
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(coupons)
}

func (h *CouponHandler) HandleUpdate(c *fiber.Ctx) error {
	var req services.UpdateCouponRequest
	if err := bindJSON(c, h.validate, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	coupon, err := h.service.UpdateCoupon(c.Params("id"), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(coupon)
}

// HandleDisable deactivates a coupon. Placed orders keep referencing it.
func (h *CouponHandler) HandleDisable(c *fiber.Ctx) error {
	if err := h.service.DisableCoupon(c.Params("id")); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"message": "Coupon disabled"})
}
