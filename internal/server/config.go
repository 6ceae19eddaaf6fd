// Package server provides configuration helpers that define runtime defaults,
// validation, and rate-limiting parameters for the chat relay service.
package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
)

// RateLimitConfig defines the parameters for per-connection event rate limiting.
type RateLimitConfig struct {
	Burst          int
	RefillInterval time.Duration
}

// Config holds the server configuration settings including security controls,
// persistence, and shutdown behavior.
type Config struct {
	Port            string
	AllowedOrigins  []string
	MaxMessageSize  int64
	RateLimit       RateLimitConfig
	DatabasePath    string
	HistoryLimit    int
	ShutdownTimeout time.Duration
}

// envConfig mirrors Config for environment parsing via struct tags.
type envConfig struct {
	Port            string        `env:"SERVER_PORT" envDefault:":8080"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
	MaxMessageSize  int64         `env:"MAX_MESSAGE_SIZE" envDefault:"4096"`
	RateLimitBurst  int           `env:"RATE_LIMIT_BURST" envDefault:"10"`
	RateLimitRefill time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" envDefault:"1s"`
	DatabasePath    string        `env:"DATABASE_PATH" envDefault:"chat.db"`
	HistoryLimit    int           `env:"HISTORY_LIMIT" envDefault:"50"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

var (
	configMu        sync.RWMutex
	activeConfig    Config
	allowedOrigins  map[string]struct{}
	allowAllOrigins bool
)

func init() {
	SetConfig(nil)
}

func defaultConfig() Config {
	return Config{
		Port: ":8080",
		AllowedOrigins: []string{
			"http://localhost:8080",
		},
		MaxMessageSize: 4096,
		RateLimit: RateLimitConfig{
			Burst:          10,
			RefillInterval: time.Second,
		},
		DatabasePath:    "chat.db",
		HistoryLimit:    50,
		ShutdownTimeout: 10 * time.Second,
	}
}

func sanitizeConfig(cfg Config) Config {
	if cfg.Port == "" {
		cfg.Port = ":8080"
	}

	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 4096
	}

	if cfg.RateLimit.Burst <= 0 {
		cfg.RateLimit.Burst = 10
	}

	if cfg.RateLimit.RefillInterval <= 0 {
		cfg.RateLimit.RefillInterval = time.Second
	}

	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "chat.db"
	}

	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 50
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	normalizedOrigins, allowAll := normalizeOrigins(cfg.AllowedOrigins)
	cfg.AllowedOrigins = normalizedOrigins

	configMu.Lock()
	defer configMu.Unlock()

	activeConfig = cfg
	allowAllOrigins = allowAll
	allowedOrigins = make(map[string]struct{}, len(normalizedOrigins))
	for _, origin := range normalizedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	return cfg
}

// SetConfig applies the provided configuration. Passing nil resets to defaults.
func SetConfig(cfg *Config) {
	if cfg == nil {
		defaultCfg := defaultConfig()
		sanitizeConfig(defaultCfg)
		return
	}

	sanitized := Config{
		Port:           cfg.Port,
		AllowedOrigins: append([]string(nil), cfg.AllowedOrigins...),
		MaxMessageSize: cfg.MaxMessageSize,
		RateLimit: RateLimitConfig{
			Burst:          cfg.RateLimit.Burst,
			RefillInterval: cfg.RateLimit.RefillInterval,
		},
		DatabasePath:    cfg.DatabasePath,
		HistoryLimit:    cfg.HistoryLimit,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}
	sanitizeConfig(sanitized)
}

func currentConfig() Config {
	configMu.RLock()
	defer configMu.RUnlock()

	cfg := activeConfig
	cfg.AllowedOrigins = append([]string(nil), cfg.AllowedOrigins...)
	return cfg
}

// NewConfig creates a Config instance populated with default values for all settings.
func NewConfig() *Config {
	cfg := defaultConfig()
	return &cfg
}

// NewConfigFromEnv creates a Config instance from environment variables.
// Unset variables fall back to the defaults declared in the struct tags.
func NewConfigFromEnv() (*Config, error) {
	var parsed envConfig
	if err := env.Parse(&parsed); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg := defaultConfig()
	cfg.Port = parsed.Port
	if len(parsed.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = parsed.AllowedOrigins
	}
	cfg.MaxMessageSize = parsed.MaxMessageSize
	cfg.RateLimit.Burst = parsed.RateLimitBurst
	cfg.RateLimit.RefillInterval = parsed.RateLimitRefill
	cfg.DatabasePath = parsed.DatabasePath
	cfg.HistoryLimit = parsed.HistoryLimit
	cfg.ShutdownTimeout = parsed.ShutdownTimeout

	return &cfg, nil
}
