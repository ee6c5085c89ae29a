package cli

import (
	"fmt"
	"strings"

	"github.com/glorpus-work/taskfetch/pkg/cache"
	"github.com/glorpus-work/taskfetch/pkg/config"
	"github.com/glorpus-work/taskfetch/pkg/download"
	taskhttp "github.com/glorpus-work/taskfetch/pkg/http"
)

// These variables will be set by the main package
var (
	ConfigPath *string
	Verbose    *bool
)

// loadConfig loads the configuration from the --config flag or the default
// location.
func loadConfig() (*config.Config, error) {
	configPath := ""
	if ConfigPath != nil {
		configPath = *ConfigPath
	}

	if configPath == "" {
		defaultPath, err := config.GetDefaultConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get default config path: %w", err)
		}
		configPath = defaultPath
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if Verbose != nil && *Verbose {
		cfg.Settings.LogLevel = "debug"
	}
	return cfg, nil
}

// newCacheManager wires the transport, downloader and cache installer from
// the configuration. cacheDir overrides the configured cache directory when
// non-empty.
func newCacheManager(cfg *config.Config, cacheDir string) (*cache.Manager, error) {
	if cacheDir == "" {
		cacheDir = cfg.Settings.CacheDir
	}
	transport := taskhttp.NewClient(cfg.Settings.ConnectTimeout, cfg.Settings.Timeout, "taskfetch/"+Version)
	dl := download.NewManager(transport)
	return cache.NewManager(dl, cacheDir)
}

// cacheManagerFromConfig is the common load-config-then-build path used by
// commands that only need the cache manager.
func cacheManagerFromConfig(cacheDir string) (*cache.Manager, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return newCacheManager(cfg, cacheDir)
}

// parseParams turns repeated key=value flags into a parameter map.
func parseParams(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", pair)
		}
		params[key] = value
	}
	return params, nil
}
