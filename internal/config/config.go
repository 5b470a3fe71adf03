package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	Cart     CartConfig
	Payment  PaymentConfig
	Checkout CheckoutConfig
	Logger   LoggerConfig
	S3       S3Config
	Media    MediaConfig
	CORS     CORSConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// BackendConfig holds the commerce backend connection settings.
type BackendConfig struct {
	BaseURL        string
	TimeoutSeconds int
	RateLimit      float64 // requests per second
	RateBurst      int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// RedisConfig holds the optional redis session store settings.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// SessionConfig holds session settings.
type SessionConfig struct {
	TTLMinutes int
	CookieName string
	JWTSecret  string // empty means tokens are decoded without verification
}

// CartConfig holds cart cache settings.
type CartConfig struct {
	CacheTTLSeconds int
}

// PaymentConfig holds payment polling settings.
type PaymentConfig struct {
	PollIntervalSeconds int
	TimeoutMinutes      int
	Currency            string
}

// CheckoutConfig holds the storefront pricing rules.
type CheckoutConfig struct {
	FreeShippingThreshold float64
	ShippingFee           float64
	TaxRate               float64
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// S3Config holds AWS S3 configuration for product images.
type S3Config struct {
	Enabled       bool
	Bucket        string
	Region        string
	Prefix        string // Path prefix within bucket (e.g., "products/")
	PublicBaseURL string
}

// MediaConfig holds local product image storage settings.
type MediaConfig struct {
	Dir       string
	BaseURL   string
	MaxImages int
}

// CORSConfig holds cross-origin settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Backend: BackendConfig{
			BaseURL:        strings.TrimRight(getEnv("BACKEND_BASE_URL", ""), "/"),
			TimeoutSeconds: getEnvAsInt("BACKEND_TIMEOUT_SECONDS", 15),
			RateLimit:      getEnvAsFloat("BACKEND_RATE_LIMIT", 50),
			RateBurst:      getEnvAsInt("BACKEND_RATE_BURST", 100),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "shopcart"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Session: SessionConfig{
			TTLMinutes: getEnvAsInt("SESSION_TTL_MINUTES", 1440),
			CookieName: getEnv("SESSION_COOKIE_NAME", "shopcart_session"),
			JWTSecret:  getEnv("JWT_SECRET", ""),
		},
		Cart: CartConfig{
			CacheTTLSeconds: getEnvAsInt("CART_CACHE_TTL_SECONDS", 30),
		},
		Payment: PaymentConfig{
			PollIntervalSeconds: getEnvAsInt("PAYMENT_POLL_INTERVAL_SECONDS", 5),
			TimeoutMinutes:      getEnvAsInt("PAYMENT_TIMEOUT_MINUTES", 15),
			Currency:            strings.ToLower(getEnv("PAYMENT_CURRENCY", "thb")),
		},
		Checkout: CheckoutConfig{
			FreeShippingThreshold: getEnvAsFloat("CHECKOUT_FREE_SHIPPING_THRESHOLD", 500),
			ShippingFee:           getEnvAsFloat("CHECKOUT_SHIPPING_FEE", 15),
			TaxRate:               getEnvAsFloat("CHECKOUT_TAX_RATE", 0.10),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		S3: S3Config{
			Enabled:       getEnvAsBool("S3_ENABLED", false),
			Bucket:        getEnv("S3_BUCKET", ""),
			Region:        getEnv("S3_REGION", "ap-southeast-1"),
			Prefix:        getEnv("S3_PREFIX", "products/"),
			PublicBaseURL: strings.TrimRight(getEnv("S3_PUBLIC_BASE_URL", ""), "/"),
		},
		Media: MediaConfig{
			Dir:       getEnv("MEDIA_DIR", "data/media"),
			BaseURL:   strings.TrimRight(getEnv("MEDIA_BASE_URL", "/media"), "/"),
			MaxImages: getEnvAsInt("MEDIA_MAX_IMAGES", 8),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend base URL is required")
	}

	if u, err := url.Parse(c.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid backend base URL: %s", c.Backend.BaseURL)
	}

	if c.Backend.TimeoutSeconds < 1 {
		return fmt.Errorf("backend timeout must be at least 1 second")
	}

	if c.Backend.RateLimit <= 0 || c.Backend.RateBurst < 1 {
		return fmt.Errorf("backend rate limit and burst must be positive")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Redis.Enabled && (c.Redis.Port < 1 || c.Redis.Port > 65535) {
		return fmt.Errorf("invalid redis port: %d", c.Redis.Port)
	}

	if c.Session.TTLMinutes < 1 {
		return fmt.Errorf("session TTL must be at least 1 minute")
	}

	if c.Session.CookieName == "" {
		return fmt.Errorf("session cookie name is required")
	}

	if c.Cart.CacheTTLSeconds < 0 {
		return fmt.Errorf("cart cache TTL cannot be negative")
	}

	if c.Payment.PollIntervalSeconds < 1 {
		return fmt.Errorf("payment poll interval must be at least 1 second")
	}

	if c.Payment.TimeoutMinutes < 1 {
		return fmt.Errorf("payment timeout must be at least 1 minute")
	}

	if c.Payment.Currency == "" {
		return fmt.Errorf("payment currency is required")
	}

	if c.Checkout.FreeShippingThreshold < 0 || c.Checkout.ShippingFee < 0 {
		return fmt.Errorf("shipping threshold and fee cannot be negative")
	}

	if c.Checkout.TaxRate < 0 || c.Checkout.TaxRate >= 1 {
		return fmt.Errorf("invalid tax rate: %v (must be in [0, 1))", c.Checkout.TaxRate)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	if c.Media.Dir == "" {
		return fmt.Errorf("media directory is required")
	}

	if c.Media.MaxImages < 1 {
		return fmt.Errorf("media max images must be at least 1")
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Address returns the redis address.
func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Timeout returns the per-request backend timeout.
func (c *BackendConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// TTL returns the session lifetime.
func (c *SessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// TTL returns the cart cache lifetime.
func (c *CartConfig) TTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// PollInterval returns the delay between QR status checks.
func (c *PaymentConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// Timeout returns how long a QR payment stays payable.
func (c *PaymentConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMinutes) * time.Minute
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat retrieves an environment variable as a float or returns a default value.
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsList retrieves a comma-separated environment variable.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
