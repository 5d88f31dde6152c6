// Package config loads and validates app config from env and an optional
// .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// minSigningSecretLen is the minimum server secret length in bytes. HS256
// needs at least key-sized entropy to resist brute force.
const minSigningSecretLen = 32

// Config holds application configuration loaded from the environment.
type Config struct {
	// ListenAddr is the address the HTTP server listens on (e.g. :9000).
	ListenAddr string `mapstructure:"LISTEN_ADDR"`
	// Env is the application environment: "development", "staging", "production".
	Env string `mapstructure:"APP_ENV"`

	// CookieName is the session cookie name.
	CookieName string `mapstructure:"COOKIE_NAME"`
	// CookieDomain is optional; empty means host-only.
	CookieDomain string `mapstructure:"COOKIE_DOMAIN"`
	// LoginRedirect is where logout sends the browser.
	LoginRedirect string `mapstructure:"LOGIN_REDIRECT"`

	// SessionTTL is the sliding session window (default 168h).
	SessionTTL time.Duration `mapstructure:"SESSION_TTL"`
	// SigningSecret signs session credentials; required, at least 32 bytes.
	SigningSecret string `mapstructure:"SIGNING_SECRET"`

	// ProviderBaseURL is the hosted auth provider API root; required.
	ProviderBaseURL string `mapstructure:"PROVIDER_BASE_URL"`
	// ProviderSecret authenticates admin calls to the provider; required.
	ProviderSecret string `mapstructure:"PROVIDER_SECRET"`
	// ProviderTimeout bounds each provider call.
	ProviderTimeout time.Duration `mapstructure:"PROVIDER_TIMEOUT"`

	// RedisURL enables the Redis denylist and the redisstream logout events
	// when set; empty selects the in-memory fallbacks.
	RedisURL string `mapstructure:"REDIS_URL"`
	// StrictRevocation denylists revoked issuers locally so their
	// credentials stop verifying before natural expiry. Off by default to
	// match the stateless-credential model.
	StrictRevocation bool `mapstructure:"STRICT_REVOCATION"`
}

// Production reports whether the app runs in the production environment.
func (c *Config) Production() bool {
	return c.Env == "production" || c.Env == "staging"
}

// Load reads .env (if present), then builds and validates Config from the
// environment. Env vars override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("LISTEN_ADDR", ":9000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("COOKIE_NAME", "token")
	v.SetDefault("COOKIE_DOMAIN", "")
	v.SetDefault("LOGIN_REDIRECT", "/login")
	v.SetDefault("SESSION_TTL", "168h")
	v.SetDefault("SIGNING_SECRET", "")
	v.SetDefault("PROVIDER_BASE_URL", "")
	v.SetDefault("PROVIDER_SECRET", "")
	v.SetDefault("PROVIDER_TIMEOUT", "10s")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("STRICT_REVOCATION", false)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.SigningSecret) < minSigningSecretLen {
		return errors.New("SIGNING_SECRET is required and must be at least 32 bytes")
	}
	if c.ProviderBaseURL == "" {
		return errors.New("PROVIDER_BASE_URL is required")
	}
	if c.ProviderSecret == "" {
		return errors.New("PROVIDER_SECRET is required")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.ProviderTimeout <= 0 {
		return errors.New("PROVIDER_TIMEOUT must be positive")
	}
	return nil
}
