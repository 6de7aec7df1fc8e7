package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// JWT configuration
	JWT JWTConfig

	// Booking lifecycle configuration
	Booking BookingConfig

	// Card payment gateway configuration
	Gateway GatewayConfig

	// Hosted-checkout funding configuration (wallet top-ups, gift cards)
	Funding FundingConfig

	// Mail gateway configuration
	Mail MailConfig

	// CORS configuration
	CORS CORSConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
	Timezone    string // IANA zone the catalog dates are computed in
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// BookingConfig holds the reservation lifecycle windows
type BookingConfig struct {
	HoldGrace        time.Duration // how long an initiated booking keeps its seats
	CompletionBuffer time.Duration // paid -> completed bookkeeping delay
	DepartureLead    time.Duration // minimum time before departure a seat can still be sold
	RolloutHour      int           // hour of day the next-day catalog is materialized
	RolloutMinute    int
}

// GatewayConfig holds the card payment gateway credentials and endpoints
type GatewayConfig struct {
	Environment string // "sandbox" or "production"
	KeyID       string
	KeySecret   string // SECRET - never expose to client
	// WebhookSecret signs payment callbacks; HMAC-SHA256 over "orderRef|paymentRef"
	WebhookSecret string
	BaseURL       string
	Currency      string
}

// FundingConfig holds the hosted-checkout provider used for stored-value
// purchases (wallet top-ups and gift cards)
type FundingConfig struct {
	SecretKey  string // SECRET - never expose to client
	BaseURL    string
	SuccessURL string
	CancelURL  string
	Currency   string
}

// MailConfig holds transactional mail gateway configuration
type MailConfig struct {
	Mode     string // "dev" logs instead of sending
	APIURL   string
	APIKey   string
	FromAddr string
	FromName string
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Timezone:    getEnv("TIMEZONE", "Asia/Kolkata"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", ""),
			AccessTokenExpiry: time.Duration(getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY", 3600)) * time.Second,
		},
		Booking: BookingConfig{
			HoldGrace:        time.Duration(getEnvAsInt("BOOKING_HOLD_GRACE_MINUTES", 10)) * time.Minute,
			CompletionBuffer: time.Duration(getEnvAsInt("BOOKING_COMPLETION_BUFFER_MINUTES", 2700)) * time.Minute,
			DepartureLead:    time.Duration(getEnvAsInt("BOOKING_DEPARTURE_LEAD_MINUTES", 20)) * time.Minute,
			RolloutHour:      getEnvAsInt("CATALOG_ROLLOUT_HOUR", 18),
			RolloutMinute:    getEnvAsInt("CATALOG_ROLLOUT_MINUTE", 30),
		},
		Gateway: GatewayConfig{
			Environment:   getEnv("GATEWAY_ENVIRONMENT", "sandbox"),
			KeyID:         getEnv("GATEWAY_KEY_ID", ""),
			KeySecret:     getEnv("GATEWAY_KEY_SECRET", ""),
			WebhookSecret: getEnv("GATEWAY_WEBHOOK_SECRET", ""),
			BaseURL:       getEnv("GATEWAY_BASE_URL", "https://api.razorpay.com/v1"),
			Currency:      getEnv("GATEWAY_CURRENCY", "INR"),
		},
		Funding: FundingConfig{
			SecretKey:  getEnv("FUNDING_SECRET_KEY", ""),
			BaseURL:    getEnv("FUNDING_BASE_URL", "https://api.stripe.com/v1"),
			SuccessURL: getEnv("FUNDING_SUCCESS_URL", ""),
			CancelURL:  getEnv("FUNDING_CANCEL_URL", ""),
			Currency:   getEnv("FUNDING_CURRENCY", "inr"),
		},
		Mail: MailConfig{
			Mode:     getEnv("MAIL_MODE", "dev"),
			APIURL:   getEnv("MAIL_API_URL", ""),
			APIKey:   getEnv("MAIL_API_KEY", ""),
			FromAddr: getEnv("MAIL_FROM_ADDRESS", "support@eazybus.in"),
			FromName: getEnv("MAIL_FROM_NAME", "EazyBus"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Booking.HoldGrace <= 0 {
		return fmt.Errorf("BOOKING_HOLD_GRACE_MINUTES must be positive")
	}

	if c.Booking.CompletionBuffer <= c.Booking.HoldGrace {
		return fmt.Errorf("BOOKING_COMPLETION_BUFFER_MINUTES must exceed the hold grace")
	}

	if c.Booking.RolloutHour < 0 || c.Booking.RolloutHour > 23 || c.Booking.RolloutMinute < 0 || c.Booking.RolloutMinute > 59 {
		return fmt.Errorf("invalid catalog rollout time %02d:%02d", c.Booking.RolloutHour, c.Booking.RolloutMinute)
	}

	// Gateway credentials are only mandatory once real money moves
	if c.Server.Environment == "production" {
		if c.Gateway.KeyID == "" || c.Gateway.KeySecret == "" {
			return fmt.Errorf("GATEWAY_KEY_ID and GATEWAY_KEY_SECRET are required in production")
		}
		if c.Gateway.WebhookSecret == "" {
			return fmt.Errorf("GATEWAY_WEBHOOK_SECRET is required in production")
		}
		if c.Funding.SecretKey == "" {
			return fmt.Errorf("FUNDING_SECRET_KEY is required in production")
		}
		if c.Mail.Mode == "production" && (c.Mail.APIURL == "" || c.Mail.APIKey == "") {
			return fmt.Errorf("MAIL_API_URL and MAIL_API_KEY are required for production mail")
		}
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
