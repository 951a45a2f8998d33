package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RECHARGE_ADMIN_TOKEN", "admin-tok")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "https://api.rechargeapps.com" {
		t.Fatalf("APIURL = %q", cfg.APIURL)
	}
	if cfg.SessionTTL != time.Hour || cfg.RefreshBuffer != 5*time.Minute {
		t.Fatalf("TTL/buffer = %s/%s", cfg.SessionTTL, cfg.RefreshBuffer)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Fatalf("RequestTimeout = %s", cfg.RequestTimeout)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RECHARGE_ADMIN_TOKEN", "admin-tok")
	t.Setenv("RECHARGE_SESSION_TTL", "30m")
	t.Setenv("RECHARGE_SESSION_REFRESH_BUFFER", "2m")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SessionTTL != 30*time.Minute || cfg.RefreshBuffer != 2*time.Minute {
		t.Fatalf("TTL/buffer = %s/%s", cfg.SessionTTL, cfg.RefreshBuffer)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadRequiresSomeCredential(t *testing.T) {
	t.Setenv("RECHARGE_ADMIN_TOKEN", "")
	t.Setenv("RECHARGE_DEFAULT_SESSION_TOKEN", "")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "RECHARGE_ADMIN_TOKEN") {
		t.Fatalf("err = %v, want credential requirement", err)
	}
}

func TestLoadRejectsBufferAboveTTL(t *testing.T) {
	t.Setenv("RECHARGE_ADMIN_TOKEN", "admin-tok")
	t.Setenv("RECHARGE_SESSION_TTL", "5m")
	t.Setenv("RECHARGE_SESSION_REFRESH_BUFFER", "10m")

	if _, err := Load(); err == nil {
		t.Fatal("want error for buffer >= TTL")
	}
}

func TestLoadRejectsUnknownLogLevel(t *testing.T) {
	t.Setenv("RECHARGE_ADMIN_TOKEN", "admin-tok")
	t.Setenv("LOG_LEVEL", "verbose")

	if _, err := Load(); err == nil {
		t.Fatal("want error for unknown log level")
	}
}
