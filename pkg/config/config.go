package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const developmentSecret = "development-secret-change-me"

// AppConfig fields tagged with env are overridden by the matching variable
// when it is set and non-empty.
type AppConfig struct {
	Port        string `env:"PORT"`
	MetricsPort string `env:"METRICS_PORT"`
	Environment string `env:"-"`
	ServiceName string `env:"SERVICE_NAME"`

	DBDriver       string `env:"DB_DRIVER"`
	DatabasePath   string `env:"DATABASE_PATH"`
	DatabaseURL    string `env:"DATABASE_URL"`
	MigrationsPath string `env:"MIGRATIONS_PATH"`
	LogQueries     bool   `env:"LOG_QUERIES"`

	JWTSecret       string        `env:"JWT_SECRET"`
	JWTTTL          time.Duration `env:"JWT_TTL"`
	CursorSecretKey string        `env:"CURSOR_SECRET_KEY"`

	CacheDriver   string        `env:"CACHE_DRIVER"`
	CacheTTL      time.Duration `env:"CACHE_TTL"`
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB"`

	RateLimitEnabled bool                       `env:"RATE_LIMIT_ENABLED"`
	RateLimitConfigs map[string]RateLimitConfig `env:"-"`

	EnforceHTTPS bool `env:"ENFORCE_HTTPS"`

	OTLPEndpoint string `env:"OTLP_ENDPOINT"`
	LokiURL      string `env:"LOKI_URL"`
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// GetDefaultConfig returns the development settings. Tests build on it.
func GetDefaultConfig() *AppConfig {
	return &AppConfig{
		Port:        "8080",
		MetricsPort: "9091",
		Environment: "development",
		ServiceName: "tasklist",

		DBDriver:     "sqlite",
		DatabasePath: "database.db",

		JWTSecret: developmentSecret,
		JWTTTL:    3 * time.Hour,

		CacheDriver: "memory",
		CacheTTL:    30 * time.Second,
		RedisAddr:   "localhost:6379",

		RateLimitEnabled: true,
		RateLimitConfigs: map[string]RateLimitConfig{
			"POST /signup": {
				Requests: 5,
				Window:   time.Minute,
			},
			"POST /auth": {
				Requests: 10,
				Window:   time.Minute,
			},
			"GET /tasks": {
				Requests: 100,
				Window:   time.Minute,
			},
			"POST /tasks": {
				Requests: 20,
				Window:   time.Minute,
			},
			"PUT /tasks/:id": {
				Requests: 30,
				Window:   time.Minute,
			},
			"PATCH /tasks/:id": {
				Requests: 30,
				Window:   time.Minute,
			},
			"DELETE /tasks/:id": {
				Requests: 30,
				Window:   time.Minute,
			},
			"default": {
				Requests: 60,
				Window:   time.Minute,
			},
		},
		EnforceHTTPS: false,
	}
}

// Load reads an optional .env file and overlays the environment on the
// defaults.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := GetDefaultConfig()

	if os.Getenv("GIN_MODE") == "release" {
		cfg.Environment = "production"
	}

	cfg.EnforceHTTPS = cfg.Environment == "production"

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.CursorSecretKey == "" {
		cfg.CursorSecretKey = cfg.JWTSecret
	}

	return cfg, cfg.Validate()
}

func (c *AppConfig) Validate() error {
	switch c.DBDriver {
	case "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	switch c.CacheDriver {
	case "memory", "redis", "none":
	default:
		return fmt.Errorf("unsupported CACHE_DRIVER %q", c.CacheDriver)
	}

	if c.Environment == "production" && c.JWTSecret == developmentSecret {
		return errors.New("JWT_SECRET must be set in production")
	}

	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}

	return nil
}
