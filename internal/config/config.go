// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the storefront
type Config struct {
	App      AppConfig
	Remote   RemoteConfig
	JWT      JWTConfig
	Security SecurityConfig
	Storage  StorageConfig
	Payment  PaymentConfig
	Logging  LoggingConfig
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string
	Version     string
	Environment string
	BasePath    string
	Debug       bool
}

// RemoteConfig contains the remote document service connection configuration
type RemoteConfig struct {
	// Backend selects the document service transport: "redis" or "memory".
	// Memory is the anonymous/local-only mode with no remote persistence.
	Backend      string
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	// RetryBackoff is the base delay between subscription retries after a
	// failed ordered subscribe.
	RetryBackoff time.Duration
	MaxRetries   int
}

// JWTConfig contains session token configuration
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	BcryptCost int
}

// StorageConfig contains local device storage configuration
type StorageConfig struct {
	// Path is the directory holding the per-key JSON snapshots that survive
	// restarts (cart, wishlist cache, order cache, reviews).
	Path string
}

// PaymentConfig contains payment flow configuration
type PaymentConfig struct {
	UPIID    string
	Currency string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Storefront"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
			BasePath:    getEnv("APP_BASE_PATH", "/"),
			Debug:       getEnvAsBool("APP_DEBUG", true),
		},
		Remote: RemoteConfig{
			Backend:      getEnv("REMOTE_BACKEND", "redis"),
			Host:         getEnv("REMOTE_HOST", "localhost"),
			Port:         getEnv("REMOTE_PORT", "6379"),
			Password:     getEnv("REMOTE_PASSWORD", ""),
			DB:           getEnvAsInt("REMOTE_DB", 0),
			PoolSize:     getEnvAsInt("REMOTE_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REMOTE_MIN_IDLE_CONNS", 5),
			RetryBackoff: getEnvAsDuration("REMOTE_RETRY_BACKOFF", 2*time.Second),
			MaxRetries:   getEnvAsInt("REMOTE_MAX_RETRIES", 5),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", "your-super-secret-jwt-key-change-in-production"),
			AccessTokenExpiry: getEnvAsDuration("JWT_ACCESS_EXPIRE", 24*time.Hour),
		},
		Security: SecurityConfig{
			BcryptCost: getEnvAsInt("BCRYPT_COST", 12),
		},
		Storage: StorageConfig{
			Path: getEnv("STORAGE_LOCAL_PATH", "./data"),
		},
		Payment: PaymentConfig{
			UPIID:    getEnv("UPI_ID", "support@dsmart.upi"),
			Currency: getEnv("CURRENCY", "INR"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "debug"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	switch c.Remote.Backend {
	case "redis":
		if c.Remote.Host == "" {
			return fmt.Errorf("REMOTE_HOST is required for the redis backend")
		}
	case "memory":
		// Local-only mode needs no connection details.
	default:
		return fmt.Errorf("unknown REMOTE_BACKEND %q (expected redis or memory)", c.Remote.Backend)
	}

	if c.Storage.Path == "" {
		return fmt.Errorf("STORAGE_LOCAL_PATH is required")
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetRemoteAddr returns the remote document service address
func (c *Config) GetRemoteAddr() string {
	return fmt.Sprintf("%s:%s", c.Remote.Host, c.Remote.Port)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
