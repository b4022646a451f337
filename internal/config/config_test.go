package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bissquit/incident-drill/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "9090", cfg.Server.MetricsPort)
	assert.Equal(t, 1000, cfg.Sessions.MaxSessions)
	assert.Equal(t, 2*time.Hour, cfg.Sessions.IdleTTL)
	assert.Equal(t, domain.DefaultPolicy(), cfg.Policy.Domain())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "8081"
log:
  level: debug
  format: text
sessions:
  idle_ttl: 30m
policy:
  auc_red: 0.45
  contain_target: 2h
cors:
  allowed_origins:
    - https://lab.example.com
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, "9090", cfg.Server.MetricsPort, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 30*time.Minute, cfg.Sessions.IdleTTL)
	assert.InDelta(t, 0.45, cfg.Policy.AUCRed, 1e-9)
	assert.InDelta(t, 0.60, cfg.Policy.AUCYellow, 1e-9)
	assert.Equal(t, 2*time.Hour, cfg.Policy.ContainTarget)
	assert.Equal(t, []string{"https://lab.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "8081"
`)
	t.Setenv("DRILL_SERVER__PORT", "8082")
	t.Setenv("DRILL_SESSIONS__MAX_SESSIONS", "5")
	t.Setenv("DRILL_RATE_LIMIT__RPS", "0")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "8082", cfg.Server.Port)
	assert.Equal(t, 5, cfg.Sessions.MaxSessions)
	assert.Zero(t, cfg.RateLimit.RPS)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoad_InvalidPolicy(t *testing.T) {
	path := writeConfig(t, `
policy:
  auc_red: 0.7
  auc_yellow: 0.6
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "policy")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{
			name:   "same ports",
			mutate: func(c *Config) { c.Server.MetricsPort = c.Server.Port },
			errMsg: "must differ",
		},
		{
			name:   "unknown log level",
			mutate: func(c *Config) { c.Log.Level = "trace" },
			errMsg: "log.level",
		},
		{
			name:   "unknown log format",
			mutate: func(c *Config) { c.Log.Format = "xml" },
			errMsg: "log.format",
		},
		{
			name:   "no sessions",
			mutate: func(c *Config) { c.Sessions.MaxSessions = 0 },
			errMsg: "max_sessions",
		},
		{
			name:   "zero ttl",
			mutate: func(c *Config) { c.Sessions.IdleTTL = 0 },
			errMsg: "idle_ttl",
		},
		{
			name:   "burst missing",
			mutate: func(c *Config) { c.RateLimit.Burst = 0 },
			errMsg: "burst",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	t.Run("defaults are valid", func(t *testing.T) {
		cfg := Default()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("rate limit disabled without burst", func(t *testing.T) {
		cfg := Default()
		cfg.RateLimit = RateLimitConfig{}
		assert.NoError(t, cfg.Validate())
	})
}

func TestLoad_ExampleMatchesDefaults(t *testing.T) {
	cfg, err := Load("../../config.example.yaml")
	require.NoError(t, err)

	assert.Equal(t, Default(), *cfg)
}
