// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all configuration for the application. Every backend is
// optional: without Redis, SQLite, or S3 settings the service falls back
// to in-memory implementations, which is enough for local development.
type Config struct {
	// Server settings
	Port int `env:"PORT, default=8080" json:"port"`

	// Key-value config store (provider keys)
	RedisAddr     string `env:"REDIS_ADDR" json:"redis_addr,omitempty"`
	RedisPassword string `env:"REDIS_PASSWORD" json:"-"` // Masked in JSON
	RedisDB       int    `env:"REDIS_DB, default=0" json:"redis_db"`

	// Job store
	SQLitePath string `env:"SQLITE_PATH" json:"sqlite_path,omitempty"`

	// Artifact store (S3-compatible; set S3_ENDPOINT for R2)
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION, default=auto" json:"s3_region,omitempty"`
	S3Endpoint         string `env:"S3_ENDPOINT" json:"s3_endpoint,omitempty"`
	S3PublicBaseURL    string `env:"S3_PUBLIC_BASE_URL" json:"s3_public_base_url,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Polling settings
	PollInterval    time.Duration `env:"POLL_INTERVAL, default=3s" json:"poll_interval"`
	PollMaxDuration time.Duration `env:"POLL_MAX_DURATION, default=10m" json:"poll_max_duration"`
	PollMaxAttempts int           `env:"POLL_MAX_ATTEMPTS, default=200" json:"poll_max_attempts"`

	// Vendor API overrides (useful for tests and proxies)
	OpenAIBaseURL    string `env:"OPENAI_BASE_URL" json:"openai_base_url,omitempty"`
	WaveSpeedBaseURL string `env:"WAVESPEED_BASE_URL" json:"wavespeed_base_url,omitempty"`

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// RedisEnabled returns true if a Redis key store is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

// SQLiteEnabled returns true if a persistent job store is configured.
func (c *Config) SQLiteEnabled() bool {
	return c.SQLitePath != ""
}

// S3Enabled returns true if artifact storage is configured.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

// Load reads configuration from environment variables using go-envconfig.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive
// values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %d, RedisAddr: %s, SQLitePath: %s, S3Bucket: %s, S3Endpoint: %s, PollInterval: %s, PollMaxDuration: %s, PollMaxAttempts: %d, LogFormat: %s, LogLevel: %s}",
		c.Port,
		c.RedisAddr,
		c.SQLitePath,
		c.S3Bucket,
		c.S3Endpoint,
		c.PollInterval,
		c.PollMaxDuration,
		c.PollMaxAttempts,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
