package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/glorpus-work/taskfetch/pkg/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Empty(t, cfg.Sources)
	assert.Equal(t, DefaultConnectTimeout, cfg.Settings.ConnectTimeout)
	assert.Equal(t, DefaultTimeout, cfg.Settings.Timeout)
	assert.Equal(t, "info", cfg.Settings.LogLevel)
	assert.NotEmpty(t, cfg.Settings.CacheDir)
}

func TestLoadConfig(t *testing.T) {
	content := `
sources:
  - name: primary
    url: https://primary.example:8140
    enabled: true
  - name: fallback
    url: https://fallback.example:8140
    enabled: false
settings:
  cache_dir: /var/cache/taskfetch
  connect_timeout: 5s
  timeout: 60s
  log_level: debug
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Len(t, cfg.Sources, 2)
	assert.Equal(t, "primary", cfg.Sources[0].Name)
	assert.True(t, cfg.Sources[0].Enabled)
	assert.Equal(t, "/var/cache/taskfetch", cfg.Settings.CacheDir)
	assert.Equal(t, 5*time.Second, cfg.Settings.ConnectTimeout)
	assert.Equal(t, time.Minute, cfg.Settings.Timeout)
	assert.Equal(t, "debug", cfg.Settings.LogLevel)
}

func TestLoadConfig_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, cfg.Settings.Timeout)
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrEmptyConfigPath)
}

func TestLoadConfig_ParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sources: {not: [valid"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrConfigParse)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name: "negative timeout",
			mutate: func(c *Config) {
				c.Settings.Timeout = -time.Second
			},
			wantErr: true,
		},
		{
			name: "source without name",
			mutate: func(c *Config) {
				c.Sources = append(c.Sources, &SourceConfig{URL: "https://x.example"})
			},
			wantErr: true,
		},
		{
			name: "source without url",
			mutate: func(c *Config) {
				c.Sources = append(c.Sources, &SourceConfig{Name: "x"})
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, pkgerrors.ErrConfigValidation)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestEnabledSources(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sources = []*SourceConfig{
		{Name: "a", URL: "https://a.example", Enabled: true},
		{Name: "b", URL: "https://b.example", Enabled: false},
		{Name: "c", URL: "https://c.example", Enabled: true},
	}

	assert.Equal(t, []string{"https://a.example", "https://c.example"}, cfg.EnabledSources())
}

func TestSaveAndReloadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Sources = []*SourceConfig{{Name: "primary", URL: "https://primary.example", Enabled: true}}
	cfg.Settings.CacheDir = "/tmp/cache"
	require.NoError(t, cfg.SaveConfig(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	require.Len(t, loaded.Sources, 1)
	assert.Equal(t, "primary", loaded.Sources[0].Name)
	assert.Equal(t, "/tmp/cache", loaded.Settings.CacheDir)
}
