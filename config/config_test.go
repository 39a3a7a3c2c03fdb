package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ExplicitMissingFile(t *testing.T) {
	t.Setenv("OKUL_AUTH_JWT_SECRET", "test-secret-key-for-unit-testing")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("explicit missing config file should fail to read")
	}
	if cfg != nil {
		t.Fatal("config should be nil on error")
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9090
auth:
  jwt_secret: "a-very-long-secret-value"
booking:
  max_reschedules: 2
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should succeed: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port=9090, got=%d", cfg.Server.Port)
	}
	if cfg.Booking.MaxReschedules != 2 {
		t.Errorf("expected max_reschedules=2, got=%d", cfg.Booking.MaxReschedules)
	}
	if cfg.Pricing.DefaultCurrency != "TRY" {
		t.Errorf("expected default currency TRY, got=%s", cfg.Pricing.DefaultCurrency)
	}
	if cfg.Booking.NumberPrefix != "APT" {
		t.Errorf("expected number prefix APT, got=%s", cfg.Booking.NumberPrefix)
	}
}

func TestValidate_ShortSecret(t *testing.T) {
	cfg := &Config{
		Server:  ServerConfig{Port: 8080},
		Auth:    AuthConfig{JWTSecret: "short"},
		Pricing: PricingConfig{VersionBumpThreshold: 10},
	}
	if err := cfg.Validate(); err == nil {
		t.Error("short secret should fail validation")
	}
}

func TestValidate_BadPort(t *testing.T) {
	cfg := &Config{
		Server:  ServerConfig{Port: 70000},
		Auth:    AuthConfig{JWTSecret: "a-very-long-secret-value"},
		Pricing: PricingConfig{VersionBumpThreshold: 10},
	}
	if err := cfg.Validate(); err == nil {
		t.Error("out of range port should fail validation")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9090
booking:
  timezone: "Europe/Istanbul"
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("OKUL_AUTH_JWT_SECRET", "secret-from-environment")
	t.Setenv("OKUL_SERVER_PORT", "7070")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should succeed: %v", err)
	}
	if cfg.Auth.JWTSecret != "secret-from-environment" {
		t.Errorf("jwt secret not taken from env: %q", cfg.Auth.JWTSecret)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("expected env port 7070, got=%d", cfg.Server.Port)
	}
}

func TestValidate_BadTimezone(t *testing.T) {
	cfg := &Config{
		Server:  ServerConfig{Port: 8080},
		Auth:    AuthConfig{JWTSecret: "a-very-long-secret-value"},
		Booking: BookingConfig{Timezone: "Mars/Olympus"},
		Pricing: PricingConfig{VersionBumpThreshold: 10},
	}
	if err := cfg.Validate(); err == nil {
		t.Error("unknown timezone should fail validation")
	}
}
