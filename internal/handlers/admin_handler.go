package handlers

import (
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AdminHandler serves the back-office views over orders and users.
type AdminHandler struct {
	orderService *services.OrderService
	authService  *services.AuthService
	validate     *validator.Validate
	logger       *zap.Logger
}

func NewAdminHandler(orderService *services.OrderService, authService *services.AuthService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		orderService: orderService,
		authService:  authService,
		validate:     newValidator(),
		logger:       logger,
	}
}

func (h *AdminHandler) RegisterRoutes(router fiber.Router, guards Guards) {
	adminRoutes := router.Group("/admin", guards.Auth, guards.Admin)
	adminRoutes.Get("/orders", h.HandleGetAllOrders)
	adminRoutes.Get("/orders/:id", h.HandleGetOrder)
	adminRoutes.Put("/orders/:id/status", h.HandleUpdateStatus)
	adminRoutes.Get("/summary", h.HandleSummary)
	adminRoutes.Get("/users", h.HandleGetUsers)
}

func (h *AdminHandler) HandleGetAllOrders(c *fiber.Ctx) error {
	orders, err := h.orderService.GetAllOrders()
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(orders)
}

func (h *AdminHandler) HandleGetOrder(c *fiber.Ctx) error {
	order, err := h.orderService.GetOrder(c.Params("id"), "", true)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(order)
}

func (h *AdminHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	var req services.UpdateStatusRequest
	if err := bindJSON(c, h.validate, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	order, err := h.orderService.UpdateOrderStatus(c.Params("id"), req.Status)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(order)
}

func (h *AdminHandler) HandleSummary(c *fiber.Ctx) error {
	summary, err := h.orderService.Summary()
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(summary)
}

func (h *AdminHandler) HandleGetUsers(c *fiber.Ctx) error {
	users, err := h.authService.GetUsers()
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(users)
}
