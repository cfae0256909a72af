package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, "./build", cfg.OutDir)
	assert.Equal(t, "warn", cfg.Resolve)
	assert.Nil(t, cfg.Log.Timestamps)
}

func TestConfig_WithDefaults(t *testing.T) {
	t.Run("fills empty fields", func(t *testing.T) {
		cfg := (&Config{}).WithDefaults()
		assert.Equal(t, DefaultOutDir, cfg.OutDir)
		assert.Equal(t, DefaultResolve, cfg.Resolve)
	})

	t.Run("keeps set fields", func(t *testing.T) {
		orig := &Config{OutDir: "/tmp/out", Resolve: "strict"}
		cfg := orig.WithDefaults()
		assert.Equal(t, "/tmp/out", cfg.OutDir)
		assert.Equal(t, "strict", cfg.Resolve)
	})

	t.Run("does not modify receiver", func(t *testing.T) {
		orig := &Config{}
		_ = orig.WithDefaults()
		assert.Empty(t, orig.OutDir)
	})
}

func TestValidator(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	yes := true

	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{name: "empty", cfg: &Config{}},
		{name: "defaults", cfg: DefaultConfig()},
		{name: "strict with timestamps", cfg: &Config{OutDir: "out", Resolve: "strict", Log: LogConfig{Timestamps: &yes}}},
		{name: "unknown resolve policy", cfg: &Config{Resolve: "loose"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.cfg, "config.yaml")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
