package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,     default=8080"`
	Env      string `env:"ENV,      default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// DemoMode runs against the seeded in-memory user store with no
	// external dependencies.
	DemoMode bool `env:"DEMO_MODE, default=true"`

	Auth      AuthConfig
	RateLimit RateLimitConfig
	Mongo     MongoConfig
	Redis     RedisConfig
}

type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET"`
	TokenTTL   time.Duration `env:"TOKEN_TTL,        default=24h"`
	CookieName string        `env:"AUTH_COOKIE_NAME, default=token"`

	// PublicRoutes are exempt from the user auth gate. The /api/internal
	// prefix is listed because those routes authenticate with an API key
	// instead of a user token.
	PublicRoutes []string `env:"PUBLIC_ROUTES, default=/api/health,/api/auth/login,/metrics,/api/internal"`

	// APIKeys is the allow-list for service-to-service callers.
	APIKeys []string `env:"API_KEYS"`
}

type RateLimitConfig struct {
	MaxRequests int           `env:"RATE_LIMIT_MAX_REQUESTS, default=100"`
	Window      time.Duration `env:"RATE_LIMIT_WINDOW,       default=15m"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=cortexbuild"`
}

type RedisConfig struct {
	// Addr empty disables Redis: in-process rate limiting, no token
	// revocation list.
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// Validate enforces the settings without which the service must not start:
// a missing signing secret would mean issuing unverifiable tokens, and a
// zero rate limit quota would reject or admit everything.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.RateLimit.MaxRequests <= 0 {
		return errors.New("RATE_LIMIT_MAX_REQUESTS must be positive")
	}
	if c.RateLimit.Window <= 0 {
		return errors.New("RATE_LIMIT_WINDOW must be positive")
	}
	if !c.DemoMode && c.Mongo.URI == "" {
		return errors.New("MONGO_URI is required outside demo mode")
	}
	return nil
}
