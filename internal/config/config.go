package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// Following 12-factor app principles, all config is loaded from environment variables.
// A .env file in the working directory is read first when present.
type Config struct {
	Server     ServerConfig
	Auth       AuthConfig
	Database   DatabaseConfig
	Cache      CacheConfig
	Payments   PaymentsConfig
	Storefront StorefrontConfig
	CORS       CORSConfig
	LogLevel   string
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

type AuthConfig struct {
	JWTSecret             string
	TokenTTL              time.Duration
	AllowPrivilegedSignup bool
	LoginRateLimit        int // login attempts per minute per IP
}

type DatabaseConfig struct {
	Driver      string // sqlite or postgres
	URL         string
	SeedCatalog bool
}

type CacheConfig struct {
	RedisAddr     string // empty disables the product cache
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

type PaymentsConfig struct {
	RazorpayKeyID     string
	RazorpayKeySecret string
}

type StorefrontConfig struct {
	Port         string
	Host         string
	APIURL       string
	FetchTimeout time.Duration
	ContentFile  string // optional YAML override for page sections
}

type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Missing .env is the normal case in containers.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8000"),
			Host:            getEnv("HOST", "0.0.0.0"),
			ReadTimeout:     getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout:    getEnvAsInt("WRITE_TIMEOUT", 15),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 30),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("JWT_SECRET", ""),
			TokenTTL:              time.Duration(getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
			AllowPrivilegedSignup: getEnvAsBool("ALLOW_PRIVILEGED_SIGNUP", false),
			LoginRateLimit:        getEnvAsInt("LOGIN_RATE_LIMIT", 10),
		},
		Database: DatabaseConfig{
			Driver:      getEnv("DATABASE_DRIVER", "sqlite"),
			URL:         getEnv("DATABASE_URL", "kalaasutra.db"),
			SeedCatalog: getEnvAsBool("SEED_CATALOG", true),
		},
		Cache: CacheConfig{
			RedisAddr:     getEnv("REDIS_ADDR", ""),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("REDIS_DB", 0),
			TTL:           time.Duration(getEnvAsInt("CACHE_TTL_SECONDS", 60)) * time.Second,
		},
		Payments: PaymentsConfig{
			RazorpayKeyID:     getEnv("RAZORPAY_KEY_ID", ""),
			RazorpayKeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
		},
		Storefront: StorefrontConfig{
			Port:         getEnv("STOREFRONT_PORT", "5173"),
			Host:         getEnv("STOREFRONT_HOST", "0.0.0.0"),
			APIURL:       getEnv("KALAASUTRA_API_URL", "http://localhost:8000"),
			FetchTimeout: time.Duration(getEnvAsInt("STOREFRONT_FETCH_TIMEOUT_MS", 3000)) * time.Millisecond,
			ContentFile:  getEnv("STOREFRONT_CONTENT_FILE", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("invalid database driver: %s (must be sqlite or postgres)", c.Database.Driver)
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}

	if c.Auth.LoginRateLimit <= 0 {
		return fmt.Errorf("LOGIN_RATE_LIMIT must be positive")
	}

	if c.Storefront.FetchTimeout <= 0 {
		return fmt.Errorf("STOREFRONT_FETCH_TIMEOUT_MS must be positive")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// ValidateAPI checks settings only the API server needs
func (c *Config) ValidateAPI() error {
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	return nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
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

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
