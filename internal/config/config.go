package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the whole application configuration.
// Populated from environment variables at startup.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Payment  PaymentConfig
	Booking  BookingConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	FrontendURL string
	Version     string
}

type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

// PaymentConfig carries the payment gateway credentials. Secret is the API
// key used for outgoing calls, WebhookSecret verifies incoming event
// signatures. Provider selects the gateway implementation ("stripe" in
// deployments, "mock" for local development without gateway access).
type PaymentConfig struct {
	Provider      string
	Secret        string
	WebhookSecret string
}

// BookingConfig tunes booking behavior that is environment dependent.
type BookingConfig struct {
	DefaultCurrency string
}

// Load reads config from environment variables and fails fast when a
// required variable is missing.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "XcelTutors Booking API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        os.Getenv("PORT"),
			FrontendURL: os.Getenv("FRONTEND_URL"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Database: DatabaseConfig{
			URL:      os.Getenv("DATABASE_URL"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		},
		Payment: PaymentConfig{
			Provider:      getEnv("PAYMENT_GATEWAY_PROVIDER", "stripe"),
			Secret:        os.Getenv("PAYMENT_GATEWAY_SECRET"),
			WebhookSecret: os.Getenv("PAYMENT_GATEWAY_WEBHOOK_SECRET"),
		},
		Booking: BookingConfig{
			DefaultCurrency: getEnv("BOOKING_CURRENCY", "GBP"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate rejects a configuration with any required variable missing so
// the process refuses to start instead of failing on the first request.
func (c *Config) Validate() error {
	var missing []string

	if c.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.Payment.Secret == "" {
		missing = append(missing, "PAYMENT_GATEWAY_SECRET")
	}
	if c.Payment.WebhookSecret == "" {
		missing = append(missing, "PAYMENT_GATEWAY_WEBHOOK_SECRET")
	}
	if c.App.FrontendURL == "" {
		missing = append(missing, "FRONTEND_URL")
	}
	if c.App.Port == "" {
		missing = append(missing, "PORT")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if c.App.Environment == "production" && c.JWT.Secret == "your-secret-key-change-in-production" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
