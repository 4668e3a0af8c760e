package config

import (
	"testing"
	"time"
)

func TestLoadRequiresTokenSecret(t *testing.T) {
	t.Setenv("AUTH_TOKEN_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without AUTH_TOKEN_SECRET")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_TOKEN_SECRET", "secret")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("AUTH_TOKEN_TTL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 3001 {
		t.Errorf("Server.Port = %d, want 3001", cfg.Server.Port)
	}
	if cfg.Auth.TokenTTL != 168*time.Hour {
		t.Errorf("Auth.TokenTTL = %s, want 168h", cfg.Auth.TokenTTL)
	}
	if cfg.Database.DSN != "" {
		t.Errorf("Database.DSN = %q, want empty", cfg.Database.DSN)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging defaults = %+v", cfg.Logging)
	}
}

func TestLoadRejectsNonPositiveTTL(t *testing.T) {
	t.Setenv("AUTH_TOKEN_SECRET", "secret")
	t.Setenv("AUTH_TOKEN_TTL", "-1h")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for negative AUTH_TOKEN_TTL")
	}
}
