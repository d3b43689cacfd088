// Package config provides application configuration with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.cardflow/config.yaml)
//  3. Default values
//
// The Anthropic API key is read from ANTHROPIC_API_KEY by the SDK itself,
// not via Viper; its presence is checked at startup in cmd.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrInvalidModelName indicates the model name is empty.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidMaxTokens indicates the max tokens value is out of range.
	ErrInvalidMaxTokens = errors.New("invalid max tokens")

	// ErrInvalidMaxSteps indicates the tool-call step budget is out of range.
	ErrInvalidMaxSteps = errors.New("invalid max steps")

	// ErrInvalidTurnTimeout indicates the turn timeout is out of range.
	ErrInvalidTurnTimeout = errors.New("invalid turn timeout")

	// ErrInvalidAddr indicates the listen address cannot be parsed.
	ErrInvalidAddr = errors.New("invalid listen address")
)

const (
	// DefaultModel is the model used when none is configured.
	DefaultModel = "claude-sonnet-4-20250514"

	// DefaultMaxSteps bounds sequential tool-call round trips in one turn.
	// Matches the step budget the product was tuned with.
	DefaultMaxSteps = 3

	// DefaultTurnTimeout is the wall-clock ceiling for a whole turn.
	DefaultTurnTimeout = 60 * time.Second

	// MaxAllowedSteps is the absolute ceiling for the step budget.
	MaxAllowedSteps = 10
)

// Config stores application configuration.
type Config struct {
	// Model selection
	Model     string `mapstructure:"model" json:"model"`
	MaxTokens int    `mapstructure:"max_tokens" json:"max_tokens"`

	// Turn execution
	MaxSteps        int `mapstructure:"max_steps" json:"max_steps"`
	TurnTimeoutSecs int `mapstructure:"turn_timeout_secs" json:"turn_timeout_secs"`

	// Rate limiting (requests/sec sustained, burst)
	RateLimit float64 `mapstructure:"rate_limit" json:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst" json:"rate_burst"`

	// Server (serve mode)
	Addr string `mapstructure:"addr" json:"addr"`

	// Client (chat mode)
	ServerURL string `mapstructure:"server_url" json:"server_url"`

	// Logging
	LogJSON bool `mapstructure:"log_json" json:"log_json"`
}

// TurnTimeout returns the configured turn ceiling as a duration.
func (c *Config) TurnTimeout() time.Duration {
	return time.Duration(c.TurnTimeoutSecs) * time.Second
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".cardflow")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is not an error; defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("model", DefaultModel)
	v.SetDefault("max_tokens", 4096)
	v.SetDefault("max_steps", DefaultMaxSteps)
	v.SetDefault("turn_timeout_secs", int(DefaultTurnTimeout/time.Second))
	v.SetDefault("rate_limit", 10.0)
	v.SetDefault("rate_burst", 30)
	v.SetDefault("addr", "127.0.0.1:3400")
	v.SetDefault("server_url", "http://127.0.0.1:3400")
	v.SetDefault("log_json", false)
}

// bindEnvVariables binds environment overrides explicitly.
// NOTE: ANTHROPIC_API_KEY is read directly by the Anthropic SDK, not via Viper.
func bindEnvVariables(v *viper.Viper) {
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("model", "CARDFLOW_MODEL")
	mustBind("max_tokens", "CARDFLOW_MAX_TOKENS")
	mustBind("max_steps", "CARDFLOW_MAX_STEPS")
	mustBind("turn_timeout_secs", "CARDFLOW_TURN_TIMEOUT_SECS")
	mustBind("rate_limit", "CARDFLOW_RATE_LIMIT")
	mustBind("rate_burst", "CARDFLOW_RATE_BURST")
	mustBind("addr", "CARDFLOW_ADDR")
	mustBind("server_url", "CARDFLOW_SERVER_URL")
	mustBind("log_json", "CARDFLOW_LOG_JSON")
}

// Validate checks configuration values and fails fast with a sentinel error.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("%w: model must not be empty", ErrInvalidModelName)
	}
	if c.MaxTokens < 256 || c.MaxTokens > 64000 {
		return fmt.Errorf("%w: %d (want 256..64000)", ErrInvalidMaxTokens, c.MaxTokens)
	}
	if c.MaxSteps < 1 || c.MaxSteps > MaxAllowedSteps {
		return fmt.Errorf("%w: %d (want 1..%d)", ErrInvalidMaxSteps, c.MaxSteps, MaxAllowedSteps)
	}
	if c.TurnTimeoutSecs < 5 || c.TurnTimeoutSecs > 600 {
		return fmt.Errorf("%w: %ds (want 5..600)", ErrInvalidTurnTimeout, c.TurnTimeoutSecs)
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidAddr, c.Addr, err)
	}
	return nil
}
