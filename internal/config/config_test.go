package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Model:           DefaultModel,
		MaxTokens:       4096,
		MaxSteps:        DefaultMaxSteps,
		TurnTimeoutSecs: 60,
		RateLimit:       10,
		RateBurst:       30,
		Addr:            "127.0.0.1:3400",
		ServerURL:       "http://127.0.0.1:3400",
	}
}

func TestLoadDefaults(t *testing.T) {
	// Isolated HOME so no user config.yaml leaks in.
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CARDFLOW_MODEL", "")
	t.Setenv("CARDFLOW_MAX_STEPS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, 4096, cfg.MaxTokens)
	assert.Equal(t, DefaultMaxSteps, cfg.MaxSteps)
	assert.Equal(t, DefaultTurnTimeout, cfg.TurnTimeout())
	assert.Equal(t, "127.0.0.1:3400", cfg.Addr)
	assert.Equal(t, "http://127.0.0.1:3400", cfg.ServerURL)
	assert.False(t, cfg.LogJSON)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CARDFLOW_MODEL", "claude-opus-4-20250514")
	t.Setenv("CARDFLOW_MAX_TOKENS", "8192")
	t.Setenv("CARDFLOW_MAX_STEPS", "5")
	t.Setenv("CARDFLOW_RATE_LIMIT", "2.5")
	t.Setenv("CARDFLOW_RATE_BURST", "5")
	t.Setenv("CARDFLOW_ADDR", "0.0.0.0:8080")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "claude-opus-4-20250514", cfg.Model)
	assert.Equal(t, 8192, cfg.MaxTokens)
	assert.Equal(t, 5, cfg.MaxSteps)
	assert.Equal(t, 2.5, cfg.RateLimit)
	assert.Equal(t, 5, cfg.RateBurst)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid", func(*Config) {}, nil},
		{"empty model", func(c *Config) { c.Model = "" }, ErrInvalidModelName},
		{"max tokens too small", func(c *Config) { c.MaxTokens = 100 }, ErrInvalidMaxTokens},
		{"max tokens too large", func(c *Config) { c.MaxTokens = 100000 }, ErrInvalidMaxTokens},
		{"zero steps", func(c *Config) { c.MaxSteps = 0 }, ErrInvalidMaxSteps},
		{"steps above ceiling", func(c *Config) { c.MaxSteps = MaxAllowedSteps + 1 }, ErrInvalidMaxSteps},
		{"timeout too short", func(c *Config) { c.TurnTimeoutSecs = 1 }, ErrInvalidTurnTimeout},
		{"timeout too long", func(c *Config) { c.TurnTimeoutSecs = 3600 }, ErrInvalidTurnTimeout},
		{"addr without port", func(c *Config) { c.Addr = "localhost" }, ErrInvalidAddr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTurnTimeout(t *testing.T) {
	t.Parallel()

	cfg := &Config{TurnTimeoutSecs: 90}
	assert.Equal(t, 90*time.Second, cfg.TurnTimeout())
}
