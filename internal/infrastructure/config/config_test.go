package config_test

import (
	"testing"
	"time"

	"github.com/iho/ledgersync/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.SyncMode != config.SyncModeAsync {
		t.Fatalf("expected async sync mode by default, got %s", cfg.SyncMode)
	}

	if cfg.MappingDriver != config.MappingDriverPostgres {
		t.Fatalf("expected postgres mapping driver, got %s", cfg.MappingDriver)
	}

	if cfg.ClearingAccountCode != "499000" {
		t.Fatalf("expected clearing account code 499000, got %s", cfg.ClearingAccountCode)
	}

	if cfg.DefaultCompanyID != 1 || cfg.DefaultCurrencyID != 1 {
		t.Fatalf("expected default ERP ids of 1, got company=%d currency=%d", cfg.DefaultCompanyID, cfg.DefaultCurrencyID)
	}

	if cfg.SyncDrainTimeout != 10*time.Second {
		t.Fatalf("expected drain timeout 10s, got %s", cfg.SyncDrainTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("JWT_SECRET", "top-secret")
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("ERP_URL", "https://erp.example.com")
	t.Setenv("ERP_MAX_RETRIES", "7")
	t.Setenv("SYNC_MODE", "inline")
	t.Setenv("MAPPING_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/mappings.db")
	t.Setenv("DATABASE_RETRIES", "5")
	t.Setenv("REDIS_POOL_SIZE", "32")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}

	if cfg.JWTSecret != "top-secret" || !cfg.AuthEnabled {
		t.Fatalf("expected auth settings to be set, got secret=%s enabled=%v", cfg.JWTSecret, cfg.AuthEnabled)
	}

	if cfg.ERPURL != "https://erp.example.com" || cfg.ERPMaxRetries != 7 {
		t.Fatalf("expected ERP overrides, got url=%s retries=%d", cfg.ERPURL, cfg.ERPMaxRetries)
	}

	if cfg.SyncMode != config.SyncModeInline {
		t.Fatalf("expected inline sync mode, got %s", cfg.SyncMode)
	}

	if cfg.MappingDriver != config.MappingDriverSQLite || cfg.SQLitePath != "/tmp/mappings.db" {
		t.Fatalf("expected sqlite mapping driver, got %s at %s", cfg.MappingDriver, cfg.SQLitePath)
	}

	if cfg.DatabaseRetries != 5 || cfg.RedisPoolSize != 32 {
		t.Fatalf("expected retry and pool overrides, got retries=%d pool=%d", cfg.DatabaseRetries, cfg.RedisPoolSize)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("HTTP_READ_TIMEOUT", "not-a-duration")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestLoadRejectsUnknownSyncMode(t *testing.T) {
	t.Setenv("SYNC_MODE", "eventually")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for unknown sync mode")
	}
}

func TestLoadRejectsUnknownMappingDriver(t *testing.T) {
	t.Setenv("MAPPING_DRIVER", "mysql")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for unknown mapping driver")
	}
}

func TestLoadRejectsAuthWithoutSecret(t *testing.T) {
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("JWT_SECRET", "")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error when auth is enabled without a secret")
	}
}
