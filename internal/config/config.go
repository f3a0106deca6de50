// Package config handles application configuration from environment variables
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

// Config holds everything the CLI binaries need to wire up a client.
type Config struct {
	// BaseURL is the API root requests are resolved against.
	BaseURL string `env:"HTTPKIT_BASE_URL"`

	// RefreshURL is the endpoint POSTed to when a request hits a 401.
	RefreshURL string `env:"HTTPKIT_REFRESH_URL"`

	// TokenFile is where the credential pair is persisted.
	TokenFile string `env:"HTTPKIT_TOKEN_FILE" envDefault:""`

	// CacheDir enables the file-backed cache store when set.
	CacheDir string `env:"HTTPKIT_CACHE_DIR"`

	// RedisAddr enables the redis cache store when set; takes precedence
	// over CacheDir.
	RedisAddr string `env:"HTTPKIT_REDIS_ADDR"`

	// CacheTTL is the fixed TTL applied to cache writes.
	CacheTTL time.Duration `env:"HTTPKIT_CACHE_TTL" envDefault:"5m"`

	// Timeout bounds each request end to end.
	Timeout time.Duration `env:"HTTPKIT_TIMEOUT" envDefault:"120s"`

	// LogLevel is a zerolog level name (debug, info, warn, error).
	LogLevel string `env:"HTTPKIT_LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "parse environment")
	}
	if cfg.CacheTTL <= 0 {
		return nil, errors.New("HTTPKIT_CACHE_TTL must be positive")
	}
	if cfg.Timeout <= 0 {
		return nil, errors.New("HTTPKIT_TIMEOUT must be positive")
	}
	return cfg, nil
}

// HasCache reports whether any cache backend is configured.
func (c *Config) HasCache() bool {
	return c.RedisAddr != "" || c.CacheDir != ""
}
