// Package app wires repositories, services and handlers into a Fiber application.
package app

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/notify"
	"storefront/internal/payments"
	"storefront/internal/repositories"
	"storefront/internal/services"
)

// Dependencies are the external resources the application runs on.
// Publisher, Gateway and Mailer are optional.
type Dependencies struct {
	DB        *gorm.DB
	Cache     cache.Cache
	Publisher services.EventPublisher
	Gateway   payments.Gateway
	Mailer    notify.Mailer
	Logger    *zap.Logger
	Clock     func() time.Time
}

// App is the assembled HTTP application.
type App struct {
	Fiber         *fiber.App
	Auth          *services.AuthService
	Notifications *services.NotificationService
}

// New builds the application from cfg and deps.
func New(cfg *config.Config, deps Dependencies) (*App, error) {
	if deps.DB == nil {
		return nil, errors.New("app: database is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Cache == nil {
		deps.Cache = cache.NewMemoryCache()
	}
	if deps.Mailer == nil {
		deps.Mailer = notify.NewLogMailer(deps.Logger)
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	log := deps.Logger

	// --- Repositories ---
	productRepo := repositories.NewGORMProductRepository(deps.DB)
	userRepo := repositories.NewGORMUserRepository(deps.DB)
	cartRepo := repositories.NewGORMCartRepository(deps.DB)
	orderRepo := repositories.NewGORMOrderRepository(deps.DB)
	couponRepo := repositories.NewGORMCouponRepository(deps.DB)
	categoryRepo := repositories.NewGORMCategoryRepository(deps.DB)

	// --- Services ---
	authService := services.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.TTL, log)
	productService := services.NewProductService(productRepo, deps.Cache, cfg.CacheTTL, log)
	categoryService := services.NewCategoryService(categoryRepo)
	cartService := services.NewCartService(cartRepo, productRepo)
	couponService := services.NewCouponService(couponRepo, deps.Clock, log)
	checkoutService := services.NewCheckoutService(
		cartRepo, productRepo, orderRepo, couponService, deps.Publisher,
		services.CheckoutOptions{DeferCardConfirmation: cfg.DeferCardConfirmation},
		deps.Clock, log,
	)
	orderService := services.NewOrderService(orderRepo, userRepo, productRepo, log)
	paymentService := services.NewPaymentService(
		deps.Gateway, orderRepo, userRepo, deps.Publisher,
		services.PaymentOptions{Currency: cfg.Stripe.Currency, ClientURL: cfg.ClientURL},
		deps.Clock, log,
	)
	notificationService := services.NewNotificationService(orderRepo, userRepo, deps.Mailer, cfg.ClientURL, log)

	// --- Fiber ---
	app := fiber.New(fiber.Config{
		AppName:      "storefront",
		Immutable:    true,
		ErrorHandler: handlers.ErrorHandler(log),
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   deps.Clock().Format(time.RFC3339),
		})
	})

	guards := handlers.Guards{
		Auth:  middleware.AuthRequired(authService, log),
		Admin: middleware.AdminRequired(),
	}
	couponLimit := middleware.RateLimit(deps.Cache, "coupon-apply", cfg.CouponApplyLimit, cfg.CouponApplyWindow, log)

	api := app.Group("/api")
	handlers.NewAuthHandler(authService, log).RegisterRoutes(api)
	handlers.NewProductHandler(productService, log).RegisterRoutes(api, guards)
	handlers.NewCategoryHandler(categoryService, log).RegisterRoutes(api, guards)
	handlers.NewCartHandler(cartService, log).RegisterRoutes(api, guards)
	handlers.NewCheckoutHandler(checkoutService, log).RegisterRoutes(api, guards)
	handlers.NewCouponHandler(couponService, log).RegisterRoutes(api, guards, couponLimit)
	handlers.NewOrderHandler(orderService, log).RegisterRoutes(api, guards)
	handlers.NewAdminHandler(orderService, authService, log).RegisterRoutes(api, guards)
	handlers.NewPaymentHandler(paymentService, log).RegisterRoutes(api, guards)

	return &App{
		Fiber:         app,
		Auth:          authService,
		Notifications: notificationService,
	}, nil
}
