package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "dev" {
		t.Fatalf("expected App.Env to be dev, got %q", cfg.App.Env)
	}
	if cfg.API.BaseURL != "https://pharmacy-web-server.onrender.com" {
		t.Fatalf("unexpected default base url %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 15*time.Second {
		t.Fatalf("expected 15s timeout, got %v", cfg.API.Timeout)
	}
	if cfg.API.TokenHeader != "x-access-token" {
		t.Fatalf("unexpected token header %q", cfg.API.TokenHeader)
	}
	if cfg.Session.TokenFile != filepath.Join("/home/tester", ".pharmacyctl/access_token") {
		t.Fatalf("token file not expanded: %q", cfg.Session.TokenFile)
	}
	if cfg.Redis.Enabled() {
		t.Fatalf("redis should be disabled by default")
	}
	if cfg.Locale.CurrencySymbol != "Kz" {
		t.Fatalf("unexpected currency symbol %q", cfg.Locale.CurrencySymbol)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAppEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAppEnv, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_RejectsBadBaseURL(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvAPIBaseURL, "ftp://pharmacy.local")

	if _, err := Load(); err == nil {
		t.Fatal("expected non-http base url to be rejected")
	}
}

func TestLoad_RedisOverrides(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvRedisURL, "redis://localhost:6379/2")
	t.Setenv(EnvAPIMaxUploadMB, "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if !cfg.Redis.Enabled() {
		t.Fatalf("expected redis to be enabled")
	}
	if got := cfg.API.MaxUploadBytes(); got != 2<<20 {
		t.Fatalf("expected 2MiB upload ceiling, got %d", got)
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv("HOME", "/home/tester")
	t.Setenv(EnvAppEnv, "dev")
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
	if prodConfig.IsDev() {
		t.Fatalf("expected IsDev false for %q", prodConfig.Env)
	}
}
