package cli

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the environment surface in YAML form. Values are
// exported into the environment for keys not already set, so the normal
// env loader sees one merged view.
type fileConfig struct {
	DBPath                string  `yaml:"db_path,omitempty"`
	ListenAddr            string  `yaml:"listen_addr,omitempty"`
	LogLevel              string  `yaml:"log_level,omitempty"`
	AuthenticateWithOrgID *bool   `yaml:"authenticate_with_org_id,omitempty"`
	IdentityBaseURL       string  `yaml:"identity_base_url,omitempty"`
	IdentityToken         string  `yaml:"identity_token,omitempty"`
	IdentityTimeout       string  `yaml:"identity_timeout,omitempty"`
	ReconcileSchedule     string  `yaml:"reconcile_schedule,omitempty"`
	ExpirySchedule        string  `yaml:"expiry_schedule,omitempty"`
	FleetConcurrency      int     `yaml:"fleet_concurrency,omitempty"`
	ReconcileOnStart      *bool   `yaml:"reconcile_on_start,omitempty"`
	RateLimitRPS          float64 `yaml:"rate_limit_rps,omitempty"`
	RateLimitBurst        int     `yaml:"rate_limit_burst,omitempty"`
}

// applyFileConfig reads the YAML file at path and exports its values into
// the environment. A missing path is not an error when it was never set.
func applyFileConfig(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setIfUnset("DB_PATH", fc.DBPath)
	setIfUnset("LISTEN_ADDR", fc.ListenAddr)
	setIfUnset("LOG_LEVEL", fc.LogLevel)
	setIfUnset("IDENTITY_BASE_URL", fc.IdentityBaseURL)
	setIfUnset("IDENTITY_TOKEN", fc.IdentityToken)
	setIfUnset("IDENTITY_TIMEOUT", fc.IdentityTimeout)
	setIfUnset("RECONCILE_SCHEDULE", fc.ReconcileSchedule)
	setIfUnset("EXPIRY_SCHEDULE", fc.ExpirySchedule)
	if fc.AuthenticateWithOrgID != nil {
		setIfUnset("AUTHENTICATE_WITH_ORG_ID", strconv.FormatBool(*fc.AuthenticateWithOrgID))
	}
	if fc.ReconcileOnStart != nil {
		setIfUnset("RECONCILE_ON_START", strconv.FormatBool(*fc.ReconcileOnStart))
	}
	if fc.FleetConcurrency > 0 {
		setIfUnset("FLEET_CONCURRENCY", strconv.Itoa(fc.FleetConcurrency))
	}
	if fc.RateLimitRPS > 0 {
		setIfUnset("RATE_LIMIT_RPS", strconv.FormatFloat(fc.RateLimitRPS, 'f', -1, 64))
	}
	if fc.RateLimitBurst > 0 {
		setIfUnset("RATE_LIMIT_BURST", strconv.Itoa(fc.RateLimitBurst))
	}
	return nil
}

func setIfUnset(key, value string) {
	if value != "" && os.Getenv(key) == "" {
		_ = os.Setenv(key, value)
	}
}
