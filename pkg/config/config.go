// Package config provides configuration management for the taskfetch agent
// tooling. It handles loading and validating the source endpoint list,
// timeouts and cache location from a YAML file, with sensible defaults when
// no file is present.
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/taskfetch/pkg/errors"
	"github.com/glorpus-work/taskfetch/pkg/fsutil"
)

// Config represents the application configuration.
type Config struct {
	// Candidate payload sources, in trial order.
	Sources []*SourceConfig `yaml:"sources"`

	// General settings
	Settings Settings `yaml:"settings"`
}

// SourceConfig represents a single payload source endpoint.
type SourceConfig struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

// Settings represents general application settings.
type Settings struct {
	// Cache settings
	CacheDir string `yaml:"cache_dir,omitempty"`

	// Network settings
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	Timeout        time.Duration `yaml:"timeout"`

	// Output settings
	LogLevel string `yaml:"log_level"` // error, warn, info, debug
}

// settingsYAML mirrors Settings on the wire; durations are Go duration
// strings ("10s", "2m") rather than raw nanosecond counts.
type settingsYAML struct {
	CacheDir       string `yaml:"cache_dir,omitempty"`
	ConnectTimeout string `yaml:"connect_timeout,omitempty"`
	Timeout        string `yaml:"timeout,omitempty"`
	LogLevel       string `yaml:"log_level,omitempty"`
}

// UnmarshalYAML decodes settings, leaving fields the file omits untouched so
// defaults survive a partial config.
func (s *Settings) UnmarshalYAML(node *yaml.Node) error {
	var raw settingsYAML
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.CacheDir != "" {
		s.CacheDir = raw.CacheDir
	}
	if raw.LogLevel != "" {
		s.LogLevel = raw.LogLevel
	}
	if raw.ConnectTimeout != "" {
		d, err := time.ParseDuration(raw.ConnectTimeout)
		if err != nil {
			return errors.Wrapf(errors.ErrConfigParse, "invalid connect_timeout %q", raw.ConnectTimeout)
		}
		s.ConnectTimeout = d
	}
	if raw.Timeout != "" {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return errors.Wrapf(errors.ErrConfigParse, "invalid timeout %q", raw.Timeout)
		}
		s.Timeout = d
	}
	return nil
}

// MarshalYAML encodes durations as duration strings.
func (s Settings) MarshalYAML() (interface{}, error) {
	return settingsYAML{
		CacheDir:       s.CacheDir,
		ConnectTimeout: s.ConnectTimeout.String(),
		Timeout:        s.Timeout.String(),
		LogLevel:       s.LogLevel,
	}, nil
}

// Default configuration values.
const (
	// DefaultConnectTimeout bounds connection establishment per source.
	DefaultConnectTimeout = 10 * time.Second

	// DefaultTimeout bounds one whole download attempt per source.
	DefaultTimeout = 2 * time.Minute
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = "."
	}

	return &Config{
		Sources: []*SourceConfig{},
		Settings: Settings{
			CacheDir:       filepath.Join(cacheDir, "taskfetch", "payloads"),
			ConnectTimeout: DefaultConnectTimeout,
			Timeout:        DefaultTimeout,
			LogLevel:       "info",
		},
	}
}

// LoadConfig loads configuration from a YAML file, applying defaults for
// anything the file leaves unset. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", path)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(errors.ErrConfigParse, "%s: %v", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes the configuration to a YAML file.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}
	if err := fsutil.EnsureFileDir(path); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	return os.WriteFile(path, data, fsutil.FileModeSecure)
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Settings.ConnectTimeout < 0 {
		return errors.Wrap(errors.ErrConfigValidation, "connect_timeout cannot be negative")
	}
	if c.Settings.Timeout < 0 {
		return errors.Wrap(errors.ErrConfigValidation, "timeout cannot be negative")
	}
	for i, src := range c.Sources {
		if src.Name == "" {
			return errors.Wrapf(errors.ErrConfigValidation, "source %d has no name", i)
		}
		if src.URL == "" {
			return errors.Wrapf(errors.ErrConfigValidation, "source '%s' has no url", src.Name)
		}
	}
	return nil
}

// EnabledSources returns the base URLs of all enabled sources, preserving
// the configured order.
func (c *Config) EnabledSources() []string {
	urls := make([]string, 0, len(c.Sources))
	for _, src := range c.Sources {
		if src.Enabled {
			urls = append(urls, src.URL)
		}
	}
	return urls
}

// GetDefaultConfigPath returns the default config file location.
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user config directory")
	}
	return filepath.Join(configDir, "taskfetch", "config.yaml"), nil
}
