package handlers

import (
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CategoryHandler struct {
	service  *services.CategoryService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewCategoryHandler(service *services.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		service:  service,
		validate: newValidator(),
		logger:   logger,
	}
}

func (h *CategoryHandler) RegisterRoutes(router fiber.Router, guards Guards) {
	categoryRoutes := router.Group("/categories")
	categoryRoutes.Get("/", h.HandleGetActive)
	categoryRoutes.Get("/admin", guards.Auth, guards.Admin, h.HandleGetAll)
	categoryRoutes.Post("/", guards.Auth, guards.Admin, h.HandleCreate)
	categoryRoutes.Put("/:id", guards.Auth, guards.Admin, h.HandleUpdate)
	categoryRoutes.Delete("/:id", guards.Auth, guards.Admin, h.HandleDelete)
}

func (h *CategoryHandler) HandleGetActive(c *fiber.Ctx) error {
	categories, err := h.service.GetCategories(true)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(categories)
}

func (h *CategoryHandler) HandleGetAll(c *fiber.Ctx) error {
	categories, err := h.service.GetCategories(false)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(categories)
}

func (h *CategoryHandler) HandleCreate(c *fiber.Ctx) error {
	var req services.CategoryRequest
	if err := bindJSON(c, h.validate, &req); err != nil {
		return respondError(c, h.logger, err)
	}
	category, err := h.service.CreateCategory(req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

func (h *CategoryHandler) HandleUpdate(c *fiber.Ctx) error {
	var req services.CategoryRequest
	if err := bindJSON(c, h.validate, &req); err != nil {
		return respondError(c, h.logger, err)
	}
	category, err := h.service.UpdateCategory(c.Params("id"), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(category)
}

func (h *CategoryHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.DeleteCategory(c.Params("id")); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"message": "Category removed"})
}
