// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"rbac-janitor/internal/domain"
)

// IdentityConfig holds the connection settings for the upstream identity
// service used to confirm principal existence.
type IdentityConfig struct {
	BaseURL        string        // identity service base URL (required for reconciliation)
	Token          string        // bearer token for outbound requests
	Timeout        time.Duration // per-request timeout (default 10s)
	RateLimitRPS   float64       // outbound sustained requests per second (0 disables)
	RateLimitBurst int           // outbound burst capacity
}

// Validate checks that the identity configuration is internally consistent.
func (i *IdentityConfig) Validate() error {
	if i.BaseURL == "" {
		return fmt.Errorf("IDENTITY_BASE_URL must be set")
	}
	if i.Timeout <= 0 {
		return fmt.Errorf("IDENTITY_TIMEOUT must be positive")
	}
	return nil
}

// Config holds the configuration for the janitor service.
type Config struct {
	DBPath     string // path to the SQLite tenancy database
	ListenAddr string // HTTP listen address (default ":8080")
	LogLevel   string // log level: debug, info, warn, error (default "info")

	// AuthenticateWithOrgID selects how tenants are identified against the
	// identity service: true queries by org_id, false by account name.
	AuthenticateWithOrgID bool

	// Identity holds the upstream identity service configuration.
	Identity IdentityConfig

	// Job scheduling. Empty cron specs disable the corresponding job.
	ReconcileSchedule string // cron spec for fleet reconciliation
	ExpirySchedule    string // cron spec for the cross-account expiry sweep
	FleetConcurrency  int    // tenants reconciled in parallel (default 4)
	ReconcileOnStart  bool   // run a fleet reconciliation immediately at startup

	// Inbound rate limiting for the admin API.
	RateLimitRPS   float64 // sustained requests per second (default 100)
	RateLimitBurst int     // burst capacity (default 200)

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// AuthMode maps the AUTHENTICATE_WITH_ORG_ID flag to a domain auth mode.
func (c *Config) AuthMode() domain.AuthMode {
	if c.AuthenticateWithOrgID {
		return domain.AuthModeOrgID
	}
	return domain.AuthModeAccountName
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate checks settings that only serving and scheduled jobs need.
// Offline commands (migrate, provision) skip it.
func (c *Config) Validate() error {
	if c.ReconcileSchedule != "" || c.ReconcileOnStart {
		if err := c.Identity.Validate(); err != nil {
			return err
		}
	}
	if c.FleetConcurrency < 1 {
		return fmt.Errorf("FLEET_CONCURRENCY must be at least 1")
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		DBPath:                os.Getenv("DB_PATH"),
		ListenAddr:            os.Getenv("LISTEN_ADDR"),
		LogLevel:              os.Getenv("LOG_LEVEL"),
		AuthenticateWithOrgID: parseBoolEnvDefault("AUTHENTICATE_WITH_ORG_ID", true),
		ReconcileSchedule:     os.Getenv("RECONCILE_SCHEDULE"),
		ExpirySchedule:        os.Getenv("EXPIRY_SCHEDULE"),
		ReconcileOnStart:      parseBoolEnvDefault("RECONCILE_ON_START", false),
	}

	cfg.Identity = IdentityConfig{
		BaseURL: os.Getenv("IDENTITY_BASE_URL"),
		Token:   os.Getenv("IDENTITY_TOKEN"),
	}
	if v := os.Getenv("IDENTITY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid IDENTITY_TIMEOUT %q: %w", v, err)
		}
		cfg.Identity.Timeout = d
	}
	if v := os.Getenv("IDENTITY_RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Identity.RateLimitRPS = f
		}
	}
	if v := os.Getenv("IDENTITY_RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Identity.RateLimitBurst = n
		}
	}

	if v := os.Getenv("FLEET_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid FLEET_CONCURRENCY %q: %w", v, err)
		}
		cfg.FleetConcurrency = n
	}

	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitBurst = n
		}
	}

	// Defaults
	if cfg.DBPath == "" {
		cfg.DBPath = "janitor.sqlite"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Identity.Timeout == 0 {
		cfg.Identity.Timeout = 10 * time.Second
	}
	if cfg.FleetConcurrency == 0 {
		cfg.FleetConcurrency = 4
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 100
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 200
	}

	if cfg.Identity.BaseURL == "" {
		cfg.Warnings = append(cfg.Warnings, "IDENTITY_BASE_URL not set — reconciliation jobs will fail until it is configured")
	}
	if cfg.Identity.BaseURL != "" && cfg.Identity.Token == "" {
		cfg.Warnings = append(cfg.Warnings, "IDENTITY_TOKEN not set — identity requests will be unauthenticated")
	}

	return cfg, nil
}

func parseBoolEnvDefault(key string, defaultVal bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if v == "" {
		return defaultVal
	}
	if v == "0" || v == "false" || v == "no" || v == "off" {
		return false
	}
	if v == "1" || v == "true" || v == "yes" || v == "on" {
		return true
	}
	return defaultVal
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		// Env vars take precedence over the file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
