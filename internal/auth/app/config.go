package app

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aussiebroadwan/tabsession/pkg/httpx"
	"github.com/aussiebroadwan/tabsession/pkg/jwtx"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

var ErrConfigRequired = errors.New("required configuration missing")

type Config struct {
	SigningSecret  string        `koanf:"auth_signing_secret"`  // Required outside dev: HS256 secret shared by issuer and gate
	TokenTTL       time.Duration `koanf:"auth_token_ttl"`       // Optional: credential lifetime (default: 24h)
	Issuer         string        `koanf:"auth_issuer"`          // Optional: iss claim (default: tabsession-auth)
	DatabaseFile   string        `koanf:"auth_database_file"`   // Optional: path to SQLite database file (default: ./auth.db)
	PepperFile     string        `koanf:"auth_pepper_file"`     // Optional: path to file containing pepper for password hashing (default: ./pepper)
	BootstrapUsers string        `koanf:"auth_bootstrap_users"` // Optional: email:password:username:Full Name:role;...

	Env                  string        `koanf:"env"`                   // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        `koanf:"log_level"`             // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        `koanf:"log_format"`            // Log format (json, text) (default: json)
	Port                 int           `koanf:"port"`                  // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration `koanf:"shutdown_grace_period"` // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration `koanf:"housekeeping_interval"` // Housekeeping interval (default: 1h)
	LoginLogRetention    time.Duration `koanf:"login_log_retention"`   // Login log retention (default: 720h)

	RateLimit RateLimits `koanf:"rate_limit"`

	// LogOutput overrides where logs go. Not loaded from the environment.
	LogOutput io.Writer `koanf:"-"`
}

// RateLimits are set through RATE_LIMIT_<GROUP>_<FIELD>, for example
// RATE_LIMIT_LOGIN_REQUESTS=10 or RATE_LIMIT_SESSION_WINDOW=30s.
type RateLimits struct {
	Login   httpx.RateLimitConfig `koanf:"login"`
	Session httpx.RateLimitConfig `koanf:"session"`
	Probe   httpx.RateLimitConfig `koanf:"probe"`
}

func defaults() Config {
	return Config{
		TokenTTL:             jwtx.DefaultTokenTTL,
		Issuer:               "tabsession-auth",
		DatabaseFile:         "auth.db",
		PepperFile:           "pepper",
		Env:                  "dev",
		LogLevel:             "info",
		LogFormat:            "json",
		Port:                 8080,
		ShutdownGracePeriod:  10 * time.Second,
		HousekeepingInterval: time.Hour,
		LoginLogRetention:    30 * 24 * time.Hour,
		RateLimit: RateLimits{
			Login:   httpx.LoginLimit,
			Session: httpx.SessionLimit,
			Probe:   httpx.ProbeLimit,
		},
	}
}

// LoadConfig reads the environment over compiled defaults and validates the
// result.
func LoadConfig() (Config, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load env vars: %w", err)
	}

	cfg := defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var rateLimitGroups = []string{"login", "session", "probe"}

// envKey maps an env var name onto a koanf path. Names are flat apart from
// the rate limit groups.
func envKey(name string) string {
	key := strings.ToLower(name)
	for _, group := range rateLimitGroups {
		prefix := "rate_limit_" + group + "_"
		if strings.HasPrefix(key, prefix) {
			return "rate_limit." + group + "." + strings.TrimPrefix(key, prefix)
		}
	}
	return key
}

func (c Config) IsDev() bool { return c.Env == "dev" }

// Validate rejects configurations the service cannot safely run with.
func (c Config) Validate() error {
	if c.SigningSecret == "" && !c.IsDev() {
		return fmt.Errorf("%w: AUTH_SIGNING_SECRET", ErrConfigRequired)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("AUTH_TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	for name, rl := range map[string]httpx.RateLimitConfig{
		"login":   c.RateLimit.Login,
		"session": c.RateLimit.Session,
		"probe":   c.RateLimit.Probe,
	} {
		if !rl.Valid() {
			return fmt.Errorf("rate limit %q: requests, window and burst must be positive", name)
		}
	}
	return nil
}
