package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration for the storefront API.
type Config struct {
	AppPort     string
	LogLevel    string
	CORSOrigins string

	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Stripe   StripeConfig
	SMTP     SMTPConfig
	Admin    AdminConfig

	RabbitMQURL string
	CacheTTL    time.Duration

	// CouponApplyLimit is the number of coupon price checks a user may make per CouponApplyWindow.
	CouponApplyLimit  int
	CouponApplyWindow time.Duration

	ClientURL string
	// DeferCardConfirmation keeps non-COD orders Pending until the payment provider confirms them.
	DeferCardConfirmation bool
}

type DatabaseConfig struct {
	Driver string // "postgres" or "sqlite"
	DSN    string
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type AdminConfig struct {
	Email    string
	Password string
}

// Load reads configuration from a local .env file (if present) and the environment.
func Load() (*Config, error) {
	// A missing .env is fine, the process environment is used as is.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:     v.GetString("APP_PORT"),
		LogLevel:    strings.ToLower(v.GetString("LOG_LEVEL")),
		CORSOrigins: v.GetString("CORS_ORIGINS"),
		Database: DatabaseConfig{
			Driver: strings.ToLower(v.GetString("DB_DRIVER")),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
			TTL:    v.GetDuration("JWT_TTL"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Stripe: StripeConfig{
			SecretKey:     v.GetString("STRIPE_SECRET_KEY"),
			WebhookSecret: v.GetString("STRIPE_WEBHOOK_SECRET"),
			Currency:      strings.ToLower(v.GetString("PAYMENT_CURRENCY")),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			Username: v.GetString("SMTP_USERNAME"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("MAIL_FROM"),
		},
		Admin: AdminConfig{
			Email:    v.GetString("ADMIN_EMAIL"),
			Password: v.GetString("ADMIN_PASSWORD"),
		},
		RabbitMQURL:           v.GetString("RABBITMQ_URL"),
		CacheTTL:              v.GetDuration("CACHE_TTL"),
		CouponApplyLimit:      v.GetInt("COUPON_APPLY_LIMIT"),
		CouponApplyWindow:     v.GetDuration("COUPON_APPLY_WINDOW"),
		ClientURL:             strings.TrimRight(v.GetString("CLIENT_URL"), "/"),
		DeferCardConfirmation: v.GetBool("PAYMENT_DEFER_CARD_CONFIRMATION"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=storefront port=5432 sslmode=disable")
	v.SetDefault("JWT_SECRET", "change_me")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("COUPON_APPLY_LIMIT", 20)
	v.SetDefault("COUPON_APPLY_WINDOW", "1m")
	v.SetDefault("PAYMENT_CURRENCY", "inr")
	v.SetDefault("CLIENT_URL", "http://localhost:3000")
	v.SetDefault("PAYMENT_DEFER_CARD_CONFIRMATION", false)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("MAIL_FROM", "no-reply@storefront.local")
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.AppPort == "" {
		return fmt.Errorf("APP_PORT is required")
	}
	if c.Database.Driver != "postgres" && c.Database.Driver != "sqlite" {
		return fmt.Errorf("unsupported DB_DRIVER %q (must be postgres or sqlite)", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("DATABASE_DSN is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	if c.Stripe.Currency == "" {
		return fmt.Errorf("PAYMENT_CURRENCY is required")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}
	return nil
}

// PaymentsEnabled reports whether a Stripe key is configured.
func (c *Config) PaymentsEnabled() bool {
	return c.Stripe.SecretKey != ""
}

// MailEnabled reports whether outgoing e-mail is configured.
func (c *Config) MailEnabled() bool {
	return c.SMTP.Host != ""
}
