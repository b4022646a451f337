// Package config loads application configuration from defaults, an optional
// YAML file and DRILL_ environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bissquit/incident-drill/internal/domain"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables read by Load.
// Nested keys are separated by a double underscore, e.g. DRILL_SERVER__PORT.
const EnvPrefix = "DRILL_"

// Config is the application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Log       LogConfig       `koanf:"log"`
	Sessions  SessionsConfig  `koanf:"sessions"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	CORS      CORSConfig      `koanf:"cors"`
	Policy    PolicyConfig    `koanf:"policy"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              string        `koanf:"port"`
	MetricsPort       string        `koanf:"metrics_port"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// SessionsConfig bounds the in-memory session store.
type SessionsConfig struct {
	MaxSessions int           `koanf:"max_sessions"`
	IdleTTL     time.Duration `koanf:"idle_ttl"`
}

// RateLimitConfig limits session creation. RPS of zero disables the limiter.
type RateLimitConfig struct {
	RPS   float64 `koanf:"rps"`
	Burst int     `koanf:"burst"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// PolicyConfig mirrors domain.Policy.
type PolicyConfig struct {
	ModelTier                    int           `koanf:"model_tier"`
	AUCRed                       float64       `koanf:"auc_red"`
	AUCYellow                    float64       `koanf:"auc_yellow"`
	RollingWindowDaysCurrent     int           `koanf:"rolling_window_days_current"`
	RollingWindowDaysRecommended int           `koanf:"rolling_window_days_recommended"`
	ContainTarget                time.Duration `koanf:"contain_target"`
	PSIStableMax                 float64       `koanf:"psi_stable_max"`
	PSIWatchMax                  float64       `koanf:"psi_watch_max"`
}

// Domain converts the configured thresholds to a domain.Policy.
func (p PolicyConfig) Domain() domain.Policy {
	return domain.Policy{
		ModelTier:                    p.ModelTier,
		AUCRed:                       p.AUCRed,
		AUCYellow:                    p.AUCYellow,
		RollingWindowDaysCurrent:     p.RollingWindowDaysCurrent,
		RollingWindowDaysRecommended: p.RollingWindowDaysRecommended,
		ContainTarget:                p.ContainTarget,
		PSIStableMax:                 p.PSIStableMax,
		PSIWatchMax:                  p.PSIWatchMax,
	}
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	policy := domain.DefaultPolicy()
	return Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              "8080",
			MetricsPort:       "9090",
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Sessions: SessionsConfig{
			MaxSessions: 1000,
			IdleTTL:     2 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			RPS:   5,
			Burst: 20,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Policy: PolicyConfig{
			ModelTier:                    policy.ModelTier,
			AUCRed:                       policy.AUCRed,
			AUCYellow:                    policy.AUCYellow,
			RollingWindowDaysCurrent:     policy.RollingWindowDaysCurrent,
			RollingWindowDaysRecommended: policy.RollingWindowDaysRecommended,
			ContainTarget:                policy.ContainTarget,
			PSIStableMax:                 policy.PSIStableMax,
			PSIWatchMax:                  policy.PSIWatchMax,
		},
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and environment variables are used.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DRILL_SESSIONS__IDLE_TTL -> sessions.idle_ttl
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// Validate checks settings that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port is required"))
	}
	if c.Server.MetricsPort == "" {
		errs = append(errs, errors.New("server.metrics_port is required"))
	}
	if c.Server.Port != "" && c.Server.Port == c.Server.MetricsPort {
		errs = append(errs, errors.New("server.port and server.metrics_port must differ"))
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of json, text", c.Log.Format))
	}

	if c.Sessions.MaxSessions <= 0 {
		errs = append(errs, errors.New("sessions.max_sessions must be positive"))
	}
	if c.Sessions.IdleTTL <= 0 {
		errs = append(errs, errors.New("sessions.idle_ttl must be positive"))
	}

	if c.RateLimit.RPS < 0 {
		errs = append(errs, errors.New("rate_limit.rps must not be negative"))
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("rate_limit.burst must be positive when rate limiting is enabled"))
	}

	if err := c.Policy.Domain().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("policy: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
