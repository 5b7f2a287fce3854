package config

import (
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_EMAILS", " a@example.com, ,b@example.com ")
	t.Setenv("APP_VERSION_CODE", "7")
	t.Setenv("UPDATE_TIMEOUT", "3s")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if len(cfg.AllowedEmails) != 2 || cfg.AllowedEmails[0] != "a@example.com" || cfg.AllowedEmails[1] != "b@example.com" {
		t.Errorf("AllowedEmails = %v", cfg.AllowedEmails)
	}
	if cfg.AppVersionCode != 7 {
		t.Errorf("AppVersionCode = %d, want 7", cfg.AppVersionCode)
	}
	if cfg.UpdateTimeout != 3*time.Second {
		t.Errorf("UpdateTimeout = %v, want 3s", cfg.UpdateTimeout)
	}
}

func TestLoadFallbacks(t *testing.T) {
	t.Setenv("APP_VERSION_CODE", "not-a-number")
	t.Setenv("UPDATE_TIMEOUT", "soon")

	cfg := Load()

	if cfg.AppVersionCode != 1 {
		t.Errorf("AppVersionCode = %d, want fallback 1", cfg.AppVersionCode)
	}
	if cfg.UpdateTimeout != 10*time.Second {
		t.Errorf("UpdateTimeout = %v, want fallback 10s", cfg.UpdateTimeout)
	}
}
