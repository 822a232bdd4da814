package astraea

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, 500*time.Millisecond, cfg.SettleDelay)
	require.Equal(t, 300*time.Millisecond, cfg.PollInterval)
	require.Equal(t, 30*time.Second, cfg.FetchTimeout)
	require.Equal(t, time.Minute, cfg.OperationTimeout)
	require.NoError(t, cfg.Validate())
}

func TestApplyDefaults(t *testing.T) {
	t.Run("applies defaults to empty config", func(t *testing.T) {
		cfg := Config{}
		ApplyDefaults(&cfg)

		require.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("preserves custom values", func(t *testing.T) {
		cfg := Config{
			SettleDelay:      time.Second,
			PollInterval:     100 * time.Millisecond,
			FetchTimeout:     5 * time.Second,
			OperationTimeout: 10 * time.Second,
		}
		ApplyDefaults(&cfg)

		require.Equal(t, time.Second, cfg.SettleDelay)
		require.Equal(t, 100*time.Millisecond, cfg.PollInterval)
		require.Equal(t, 5*time.Second, cfg.FetchTimeout)
		require.Equal(t, 10*time.Second, cfg.OperationTimeout)
	})

	t.Run("nil is a no-op", func(t *testing.T) {
		ApplyDefaults(nil)
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(*Config) {}, false},
		{"zero settle delay valid", func(c *Config) { c.SettleDelay = 0 }, false},
		{"negative settle delay", func(c *Config) { c.SettleDelay = -time.Second }, true},
		{"zero poll interval", func(c *Config) { c.PollInterval = 0 }, true},
		{"negative fetch timeout", func(c *Config) { c.FetchTimeout = -1 }, true},
		{"negative operation timeout", func(c *Config) { c.OperationTimeout = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestConfig_YAMLRoundTrip(t *testing.T) {
	yamlConfig := `
settleDelay: 750ms
pollInterval: 250ms
fetchTimeout: 10s
operationTimeout: 45s
`

	var cfg Config
	err := yaml.Unmarshal([]byte(yamlConfig), &cfg)
	require.NoError(t, err)

	require.Equal(t, 750*time.Millisecond, cfg.SettleDelay)
	require.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	require.Equal(t, 10*time.Second, cfg.FetchTimeout)
	require.Equal(t, 45*time.Second, cfg.OperationTimeout)
	require.NoError(t, cfg.Validate())
}
