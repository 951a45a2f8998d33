// Package config loads process configuration from the environment. It is
// read once at startup and treated as immutable.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

// Config is the full configuration surface of the server.
type Config struct {
	// APIURL is the Recharge API endpoint.
	APIURL string `env:"RECHARGE_API_URL,default=https://api.rechargeapps.com"`

	// AdminToken is the privileged credential used solely for customer
	// lookup and session minting. When empty, per-customer tools fail at
	// resolution time.
	AdminToken string `env:"RECHARGE_ADMIN_TOKEN"`

	// DefaultToken is the fallback session token for requests that name no
	// customer, usable only while no customer-scoped session is cached.
	DefaultToken string `env:"RECHARGE_DEFAULT_SESSION_TOKEN"`

	// ReturnURL is forwarded with session creation requests.
	ReturnURL string `env:"RECHARGE_SESSION_RETURN_URL"`

	// SessionTTL approximates the server-side session lifetime.
	SessionTTL time.Duration `env:"RECHARGE_SESSION_TTL,default=1h"`

	// RefreshBuffer is subtracted from SessionTTL when testing validity so
	// near-expiry tokens are replaced proactively.
	RefreshBuffer time.Duration `env:"RECHARGE_SESSION_REFRESH_BUFFER,default=5m"`

	// RequestTimeout bounds each upstream API call.
	RequestTimeout time.Duration `env:"RECHARGE_REQUEST_TIMEOUT,default=30s"`

	// SweepInterval is how often expired sessions are swept from memory.
	SweepInterval time.Duration `env:"RECHARGE_SESSION_SWEEP_INTERVAL,default=10m"`

	// MetricsAddr, when set, serves prometheus metrics on that address.
	MetricsAddr string `env:"METRICS_ADDR"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL,default=info"`
}

// Load decodes and validates configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.AdminToken == "" && c.DefaultToken == "" {
		return errors.New("config: at least one of RECHARGE_ADMIN_TOKEN and RECHARGE_DEFAULT_SESSION_TOKEN must be set")
	}
	if c.SessionTTL <= 0 {
		return errors.New("config: RECHARGE_SESSION_TTL must be positive")
	}
	if c.RefreshBuffer < 0 || c.RefreshBuffer >= c.SessionTTL {
		return fmt.Errorf("config: RECHARGE_SESSION_REFRESH_BUFFER must be in [0, %s)", c.SessionTTL)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown LOG_LEVEL %q", c.LogLevel)
	}
	return nil
}
