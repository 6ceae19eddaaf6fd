package unit

import (
	"testing"
	"time"

	"github.com/tidechat/relay/internal/server"
)

// TestNewConfig verifies that NewConfig returns the expected defaults.
func TestNewConfig(t *testing.T) {
	config := server.NewConfig()

	if config == nil {
		t.Fatal("NewConfig returned nil")
	}

	if config.Port != ":8080" {
		t.Errorf("Expected default port %q, got %q", ":8080", config.Port)
	}
	if config.MaxMessageSize != 4096 {
		t.Errorf("Expected default max message size 4096, got %d", config.MaxMessageSize)
	}
	if config.DatabasePath != "chat.db" {
		t.Errorf("Expected default database path %q, got %q", "chat.db", config.DatabasePath)
	}
	if config.HistoryLimit != 50 {
		t.Errorf("Expected default history limit 50, got %d", config.HistoryLimit)
	}
	if config.ShutdownTimeout != 10*time.Second {
		t.Errorf("Expected default shutdown timeout 10s, got %v", config.ShutdownTimeout)
	}
}

// TestNewConfigFromEnvDefaults verifies parsing with no variables set.
func TestNewConfigFromEnvDefaults(t *testing.T) {
	config, err := server.NewConfigFromEnv()
	if err != nil {
		t.Fatalf("NewConfigFromEnv failed: %v", err)
	}

	if config.Port != ":8080" {
		t.Errorf("Expected default port %q, got %q", ":8080", config.Port)
	}
	if config.RateLimit.Burst != 10 {
		t.Errorf("Expected default rate limit burst 10, got %d", config.RateLimit.Burst)
	}
	if config.RateLimit.RefillInterval != time.Second {
		t.Errorf("Expected default refill interval 1s, got %v", config.RateLimit.RefillInterval)
	}
}

// TestNewConfigFromEnvOverrides verifies environment variables take effect.
func TestNewConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9999")
	t.Setenv("ALLOWED_ORIGINS", "http://one.example.com,http://two.example.com")
	t.Setenv("MAX_MESSAGE_SIZE", "1024")
	t.Setenv("RATE_LIMIT_BURST", "25")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "250ms")
	t.Setenv("DATABASE_PATH", "/tmp/relay-test.db")
	t.Setenv("HISTORY_LIMIT", "75")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	config, err := server.NewConfigFromEnv()
	if err != nil {
		t.Fatalf("NewConfigFromEnv failed: %v", err)
	}

	if config.Port != ":9999" {
		t.Errorf("Expected port %q, got %q", ":9999", config.Port)
	}
	if len(config.AllowedOrigins) != 2 || config.AllowedOrigins[0] != "http://one.example.com" {
		t.Errorf("Unexpected allowed origins: %v", config.AllowedOrigins)
	}
	if config.MaxMessageSize != 1024 {
		t.Errorf("Expected max message size 1024, got %d", config.MaxMessageSize)
	}
	if config.RateLimit.Burst != 25 {
		t.Errorf("Expected rate limit burst 25, got %d", config.RateLimit.Burst)
	}
	if config.RateLimit.RefillInterval != 250*time.Millisecond {
		t.Errorf("Expected refill interval 250ms, got %v", config.RateLimit.RefillInterval)
	}
	if config.DatabasePath != "/tmp/relay-test.db" {
		t.Errorf("Expected database path override, got %q", config.DatabasePath)
	}
	if config.HistoryLimit != 75 {
		t.Errorf("Expected history limit 75, got %d", config.HistoryLimit)
	}
	if config.ShutdownTimeout != 3*time.Second {
		t.Errorf("Expected shutdown timeout 3s, got %v", config.ShutdownTimeout)
	}
}
