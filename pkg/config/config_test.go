package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("defaults without file", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, DefaultListenAddr, cfg.Server.ListenAddr)
		assert.Equal(t, DefaultSLAHours, cfg.SLAHours)
		assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	})

	t.Run("file values override defaults", func(t *testing.T) {
		path := writeConfigFile(t, `
server:
  listen_addr: ":9090"
  rate_limit: 50
rules_path: rules/lab.yaml
sla_hours: 6
log_level: debug
alerts:
  webhook_url: https://example.test/hook
  dry_run: true
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, ":9090", cfg.Server.ListenAddr)
		assert.Equal(t, 50.0, cfg.Server.RateLimit)
		assert.Equal(t, "rules/lab.yaml", cfg.RulesPath)
		assert.Equal(t, 6.0, cfg.SLAHours)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "https://example.test/hook", cfg.Alerts.WebhookURL)
		assert.True(t, cfg.Alerts.DryRun)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		path := writeConfigFile(t, "sla_hours: 6\n")
		t.Setenv("LABOPS_SLA_HOURS", "8")
		t.Setenv("LABOPS_LISTEN_ADDR", ":7070")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 8.0, cfg.SLAHours)
		assert.Equal(t, ":7070", cfg.Server.ListenAddr)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml is an error", func(t *testing.T) {
		path := writeConfigFile(t, "server: [not a map")
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	t.Run("rejects non-positive sla hours", func(t *testing.T) {
		cfg := Default()
		cfg.SLAHours = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects unknown log level", func(t *testing.T) {
		cfg := Default()
		cfg.LogLevel = "verbose"
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects empty listen addr", func(t *testing.T) {
		cfg := Default()
		cfg.Server.ListenAddr = ""
		assert.Error(t, cfg.Validate())
	})
}
