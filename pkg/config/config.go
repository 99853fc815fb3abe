// Package config loads application configuration from an optional YAML
// file with environment variable overrides. Environment variables use the
// LABOPS_ prefix and win over file values.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Defaults applied before file and environment values
const (
	DefaultListenAddr = ":8080"
	DefaultSLAHours   = 4.0
	DefaultLogLevel   = "info"
)

// ServerConfig configures the HTTP API server
type ServerConfig struct {
	// ListenAddr is the host:port the server binds to
	ListenAddr string `yaml:"listen_addr"`
	// RateLimit is requests per second per server, 0 disables limiting
	RateLimit float64 `yaml:"rate_limit"`
	// MaxBodyBytes caps request body size, 0 uses the server default
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// AlertsConfig configures Teams webhook alerting
type AlertsConfig struct {
	// WebhookURL is the Teams incoming webhook. Empty disables delivery.
	WebhookURL string `yaml:"webhook_url"`
	// DashboardURL is linked from alert cards
	DashboardURL string `yaml:"dashboard_url"`
	// DryRun logs alerts instead of sending them
	DryRun bool `yaml:"dry_run"`
}

// Config is the application configuration tree
type Config struct {
	Server ServerConfig `yaml:"server"`
	Alerts AlertsConfig `yaml:"alerts"`
	// RulesPath points at the quality rules YAML document
	RulesPath string `yaml:"rules_path"`
	// SLAHours is the turnaround SLA used by SLA metrics
	SLAHours float64 `yaml:"sla_hours"`
	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level"`
}

// Default returns a configuration with all defaults applied
func Default() Config {
	return Config{
		Server:   ServerConfig{ListenAddr: DefaultListenAddr},
		SLAHours: DefaultSLAHours,
		LogLevel: DefaultLogLevel,
	}
}

// Load reads configuration from an optional YAML file and applies
// environment overrides. An empty path skips the file entirely.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrapf(err, "read config file %s", path)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "parse config file %s", path)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides fields from LABOPS_ environment variables
func (c *Config) applyEnv() {
	if v := os.Getenv("LABOPS_LISTEN_ADDR"); v != "" {
		c.Server.ListenAddr = v
	}
	if v := os.Getenv("LABOPS_RULES_PATH"); v != "" {
		c.RulesPath = v
	}
	if v := os.Getenv("LABOPS_SLA_HOURS"); v != "" {
		if hours, err := strconv.ParseFloat(v, 64); err == nil {
			c.SLAHours = hours
		}
	}
	if v := os.Getenv("LABOPS_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LABOPS_TEAMS_WEBHOOK_URL"); v != "" {
		c.Alerts.WebhookURL = v
	}
	if v := os.Getenv("LABOPS_ALERTS_DRY_RUN"); v != "" {
		c.Alerts.DryRun = strings.EqualFold(v, "true") || v == "1"
	}
}

// Validate reports configuration values no component can run with
func (c *Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return errors.New("server.listen_addr must not be empty")
	}
	if c.SLAHours <= 0 {
		return errors.Errorf("sla_hours must be positive, got %v", c.SLAHours)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return errors.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}
