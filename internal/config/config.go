// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// insecureSecrets are signing secrets that must never reach production.
// The placeholder shipped with early deployments is included so an
// unconfigured instance refuses to start instead of issuing forgeable tokens.
var insecureSecrets = map[string]bool{
	"secret":               true,
	"changeme":             true,
	"puzzlekit-secret":     true,
	"puzzlekit-dev-secret": true,
	"puzzlekit-production-secret-key-2024-super-secure": true,
}

// minBcryptCost is the lowest work factor accepted outside development.
const minBcryptCost = 10

// Rate-limit store backends.
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"5000"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Rate-limit store backend: "memory" (default) or "redis".
	// REDIS_URL is only required when the redis backend is selected.
	RateLimitStore string `env:"RATE_LIMIT_STORE" envDefault:"memory"`
	RedisURL       string `env:"REDIS_URL" envDefault:""`

	// Token signing
	JWTSecret string        `env:"JWT_SECRET,required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"168h"`

	// Password hashing work factor
	BcryptCost int `env:"BCRYPT_COST" envDefault:"12"`

	// Rate limiting (fixed window)
	RateLimitWindow  time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`
	RateLimitMax     int           `env:"RATE_LIMIT_MAX" envDefault:"100"`
	AuthRateLimitMax int           `env:"AUTH_RATE_LIMIT_MAX" envDefault:"5"`

	// API path prefix for all routes
	APIPrefix string `env:"API_PREFIX" envDefault:"/api/v1"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 10MB, SVG payloads are large)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"10485760"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Validate checks invariants that env parsing cannot express.
// A misconfigured signing secret or weak hashing cost is startup-fatal
// rather than a silently accepted default.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if !c.IsDevelopment() && insecureSecrets[c.JWTSecret] {
		return errors.New("JWT_SECRET is a known placeholder value; set a real secret")
	}
	if !c.IsDevelopment() && c.BcryptCost < minBcryptCost {
		return fmt.Errorf("BCRYPT_COST must be at least %d, got %d", minBcryptCost, c.BcryptCost)
	}
	if c.RateLimitStore != RateLimitStoreMemory && c.RateLimitStore != RateLimitStoreRedis {
		return fmt.Errorf("RATE_LIMIT_STORE must be \"memory\" or \"redis\", got %q", c.RateLimitStore)
	}
	if c.RateLimitStore == RateLimitStoreRedis && c.RedisURL == "" {
		return errors.New("REDIS_URL is required when RATE_LIMIT_STORE=redis")
	}
	if c.RateLimitWindow <= 0 {
		return errors.New("RATE_LIMIT_WINDOW must be positive")
	}
	if c.RateLimitMax <= 0 || c.AuthRateLimitMax <= 0 {
		return errors.New("rate limit maximums must be positive")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if !strings.HasPrefix(c.APIPrefix, "/") {
		return fmt.Errorf("API_PREFIX must start with \"/\", got %q", c.APIPrefix)
	}
	return nil
}

// Load parses environment variables and returns a validated Config.
// Returns an error if required variables are missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
