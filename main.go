package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"storefront/internal/app"
	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/logger"
	"storefront/internal/notify"
	"storefront/internal/payments"
	"storefront/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("storefront stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Database ---
	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	deps := app.Dependencies{DB: db, Logger: zlog}

	// --- Cache ---
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedisCache(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer redisCache.Close()
		deps.Cache = redisCache
		zlog.Info("using redis cache", zap.String("addr", cfg.Redis.Addr))
	} else {
		deps.Cache = cache.NewMemoryCache()
		zlog.Info("REDIS_ADDR not set, using in-process cache")
	}

	// --- RabbitMQ ---
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, zlog)
		if err != nil {
			return err
		}
		defer mqClient.Close()
		deps.Publisher = mqClient
	} else {
		zlog.Warn("RABBITMQ_URL not set, order events are not published")
	}

	// --- Payments and mail ---
	if cfg.PaymentsEnabled() {
		deps.Gateway = payments.NewStripeGateway(cfg.Stripe, zlog)
	} else {
		zlog.Warn("STRIPE_SECRET_KEY not set, card payments are disabled")
	}
	if cfg.MailEnabled() {
		deps.Mailer = notify.NewSMTPMailer(cfg.SMTP)
	} else {
		deps.Mailer = notify.NewLogMailer(zlog)
	}

	a, err := app.New(cfg, deps)
	if err != nil {
		return err
	}
	if err := a.Auth.EnsureAdmin(cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return err
	}

	// --- Order event consumer ---
	if mqClient != nil {
		go func() {
			err := mqClient.Consume(ctx, func(routingKey string, body []byte) error {
				return a.Notifications.HandleOrderEvent(ctx, routingKey, body)
			})
			if err != nil {
				zlog.Error("order event consumer stopped", zap.Error(err))
			}
		}()
	}

	// --- HTTP server ---
	serverErr := make(chan error, 1)
	go func() {
		zlog.Info("starting server", zap.String("addr", cfg.AppPort))
		serverErr <- a.Fiber.Listen(cfg.AppPort)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	zlog.Info("shutting down server")
	if err := a.Fiber.ShutdownWithTimeout(10 * time.Second); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		zlog.Error("error during shutdown", zap.Error(err))
	}
	zlog.Info("server gracefully stopped")
	return nil
}
