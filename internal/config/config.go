package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAPIURL is the production backend the mobile app talks to
const DefaultAPIURL = "https://pomoyka-backend.onrender.com"

// Config holds all configuration for the client and the dev backend
type Config struct {
	// API client configuration
	API APIConfig

	// Secure token store configuration
	Store StoreConfig

	// Payment gateway configuration
	Payment PaymentConfig

	// Booking status polling configuration
	Polling PollingConfig

	// Bookable window configuration
	Booking BookingConfig

	// Logging configuration
	Log LogConfig

	// Dev backend configuration
	Server ServerConfig

	// JWT configuration (dev backend only)
	JWT JWTConfig

	// CORS configuration (dev backend only)
	CORS CORSConfig
}

// APIConfig holds REST client configuration
type APIConfig struct {
	BaseURL         string
	Timeout         time.Duration // Default per-request timeout
	ListTimeout     time.Duration // Timeout raced against booking/transaction list fetches
	RegisterTimeout time.Duration
	UserAgent       string
}

// StoreConfig holds secure token store configuration
type StoreConfig struct {
	Driver string // "sqlite", "postgres" or "memory"
	DSN    string
	Key    string // Passphrase used to seal persisted tokens
}

// PaymentConfig holds LiqPay configuration
type PaymentConfig struct {
	CheckoutURL     string
	AllowedPrefixes []string // Navigation targets allowed inside the payment surface
	PublicKey       string   // Dev backend only
	PrivateKey      string   // Dev backend only (SECRET - never ship to the client)
}

// PollingConfig holds booking status polling configuration
type PollingConfig struct {
	Interval    time.Duration
	MaxAttempts int
}

// BookingConfig holds the bookable window, in local hours
type BookingConfig struct {
	OpenHour  int
	CloseHour int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string // debug, info, warn, error
}

// ServerConfig holds dev backend server configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret             string
	RefreshSecret      string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
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
		API: APIConfig{
			BaseURL:         strings.TrimRight(getEnv("POMOYKA_API_URL", DefaultAPIURL), "/"),
			Timeout:         time.Duration(getEnvAsInt("HTTP_TIMEOUT_SECONDS", 15)) * time.Second,
			ListTimeout:     time.Duration(getEnvAsInt("LIST_TIMEOUT_SECONDS", 10)) * time.Second,
			RegisterTimeout: time.Duration(getEnvAsInt("REGISTER_TIMEOUT_SECONDS", 20)) * time.Second,
			UserAgent:       getEnv("POMOYKA_USER_AGENT", "PoMoyka/1.0 (Linux; CLI) Go-http-client"),
		},
		Store: StoreConfig{
			Driver: getEnv("TOKEN_STORE_DRIVER", "sqlite"),
			DSN:    getEnv("TOKEN_STORE_DSN", defaultStorePath()),
			Key:    getEnv("TOKEN_STORE_KEY", ""),
		},
		Payment: PaymentConfig{
			CheckoutURL: getEnv("LIQPAY_CHECKOUT_URL", "https://www.liqpay.ua/api/3/checkout"),
			AllowedPrefixes: getEnvAsSlice("PAYMENT_ALLOWED_PREFIXES", []string{
				"https://www.liqpay.ua",
				"https://liqpay.ua",
				"about:blank",
			}),
			PublicKey:  getEnv("LIQPAY_PUBLIC_KEY", "sandbox_public"),
			PrivateKey: getEnv("LIQPAY_PRIVATE_KEY", ""),
		},
		Polling: PollingConfig{
			Interval:    time.Duration(getEnvAsInt("POLL_INTERVAL_MS", 2000)) * time.Millisecond,
			MaxAttempts: getEnvAsInt("POLL_MAX_ATTEMPTS", 10),
		},
		Booking: BookingConfig{
			OpenHour:  getEnvAsInt("BOOKING_OPEN_HOUR", 8),
			CloseHour: getEnvAsInt("BOOKING_CLOSE_HOUR", 18),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", ""),
			RefreshSecret:      getEnv("JWT_REFRESH_SECRET", ""),
			AccessTokenExpiry:  time.Duration(getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY", 900)) * time.Second,
			RefreshTokenExpiry: time.Duration(getEnvAsInt("JWT_REFRESH_TOKEN_EXPIRY", 604800)) * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
	}

	return config, nil
}

// Validate validates the client configuration
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("POMOYKA_API_URL must be an absolute URL, got %q", c.API.BaseURL)
	}

	switch c.Store.Driver {
	case "memory":
	case "sqlite", "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("TOKEN_STORE_DSN is required for driver %s", c.Store.Driver)
		}
		if c.Store.Key == "" {
			return fmt.Errorf("TOKEN_STORE_KEY is required for driver %s", c.Store.Driver)
		}
	default:
		return fmt.Errorf("invalid token store driver: %s (must be 'sqlite', 'postgres' or 'memory')", c.Store.Driver)
	}

	if c.Polling.MaxAttempts < 1 {
		return fmt.Errorf("POLL_MAX_ATTEMPTS must be at least 1")
	}
	if c.Polling.Interval <= 0 {
		return fmt.Errorf("POLL_INTERVAL_MS must be positive")
	}

	if c.Booking.OpenHour < 0 || c.Booking.CloseHour > 24 || c.Booking.OpenHour >= c.Booking.CloseHour {
		return fmt.Errorf("invalid booking window %02d:00-%02d:00", c.Booking.OpenHour, c.Booking.CloseHour)
	}

	return nil
}

// ValidateServer validates the dev backend configuration
func (c *Config) ValidateServer() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.JWT.RefreshSecret == "" {
		return fmt.Errorf("JWT_REFRESH_SECRET is required")
	}

	if c.Payment.PrivateKey == "" {
		return fmt.Errorf("LIQPAY_PRIVATE_KEY is required")
	}

	if c.Booking.OpenHour >= c.Booking.CloseHour {
		return fmt.Errorf("invalid booking window %02d:00-%02d:00", c.Booking.OpenHour, c.Booking.CloseHour)
	}

	return nil
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "pomoyka-session.db"
	}
	return filepath.Join(home, ".pomoyka", "session.db")
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
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
