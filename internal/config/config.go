// Package config loads runtime settings from the environment.
package config

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/aretw0/stitch/internal/logging"
	"github.com/aretw0/stitch/pkg/persistence/middleware"
)

// Config holds the settings shared by every command.
type Config struct {
	LogLevel  string `env:"STITCH_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"STITCH_LOG_FORMAT" envDefault:"text"`

	// Workers bounds replay and join concurrency; zero means unbounded.
	Workers int `env:"STITCH_WORKERS" envDefault:"0"`

	Redis Redis `envPrefix:"STITCH_REDIS_"`

	// RedactVars are patterns of variable names masked before storage.
	RedactVars []string `env:"STITCH_REDACT_VARS" envSeparator:","`

	// EncryptionKey is a base64 AES-256 key; stored summaries are encrypted when set.
	EncryptionKey string   `env:"STITCH_ENCRYPTION_KEY"`
	FallbackKeys  []string `env:"STITCH_ENCRYPTION_FALLBACK_KEYS" envSeparator:","`
}

// Redis configures the optional request store.
type Redis struct {
	Addr     string        `env:"ADDR"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	Prefix   string        `env:"PREFIX" envDefault:"stitch:run:"`
	TTL      time.Duration `env:"TTL" envDefault:"0s"`
}

// Enabled reports whether a Redis address was configured.
func (r Redis) Enabled() bool {
	return r.Addr != ""
}

// Load parses the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("STITCH_WORKERS must not be negative, got %d", cfg.Workers)
	}
	return &cfg, nil
}

// Level converts LogLevel.
func (c *Config) Level() (slog.Level, error) {
	return logging.ParseLevel(c.LogLevel)
}

// Format converts LogFormat.
func (c *Config) Format() logging.Format {
	if c.LogFormat == string(logging.FormatJSON) {
		return logging.FormatJSON
	}
	return logging.FormatText
}

// StoreMiddlewares builds the decorators applied to the request store, redaction first.
func (c *Config) StoreMiddlewares() ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(c.RedactVars) > 0 {
		pii, err := middleware.NewPIIMiddleware(c.RedactVars)
		if err != nil {
			return nil, err
		}
		mws = append(mws, pii)
	}
	if c.EncryptionKey == "" {
		return mws, nil
	}

	active, err := base64.StdEncoding.DecodeString(c.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("STITCH_ENCRYPTION_KEY is not base64: %w", err)
	}
	encCfg := middleware.EncryptionConfig{ActiveKey: active}
	for i, k := range c.FallbackKeys {
		key, err := base64.StdEncoding.DecodeString(k)
		if err != nil {
			return nil, fmt.Errorf("STITCH_ENCRYPTION_FALLBACK_KEYS[%d] is not base64: %w", i, err)
		}
		encCfg.FallbackKeys = append(encCfg.FallbackKeys, key)
	}
	enc, err := middleware.NewEncryptionMiddleware(encCfg)
	if err != nil {
		return nil, err
	}
	return append(mws, enc), nil
}
