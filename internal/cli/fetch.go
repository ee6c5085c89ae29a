package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/taskfetch/internal/logger"
	"github.com/glorpus-work/taskfetch/pkg/extract"
	"github.com/glorpus-work/taskfetch/pkg/model"
)

// NewFetchCmd creates the fetch command.
func NewFetchCmd() *cobra.Command {
	var (
		sha256       string
		uriPath      string
		params       []string
		dest         string
		cacheDir     string
		extractTo    string
		manifestPath string
		sources      []string
	)

	cmd := &cobra.Command{
		Use:   "fetch [FILENAME]",
		Short: "Fetch a task payload into the local cache",
		Long: `Fetch a payload from the first configured source that serves it, verify its
SHA-256 and install it into the cache. Already-cached payloads with a matching
digest are returned without any network access.

With --manifest, every file listed in the manifest is fetched instead of a
single FILENAME.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if manifestPath != "" {
				return runFetchManifest(cmd, manifestPath, cacheDir, sources)
			}
			if len(args) != 1 {
				return fmt.Errorf("either FILENAME or --manifest is required")
			}
			return runFetchFile(cmd, args[0], sha256, uriPath, params, dest, cacheDir, extractTo, sources)
		},
	}

	cmd.Flags().StringVar(&sha256, "sha256", "", "Expected SHA-256 of the payload (64 lowercase hex chars)")
	cmd.Flags().StringVar(&uriPath, "path", "", "Request path on the source (defaults to /FILENAME)")
	cmd.Flags().StringArrayVar(&params, "param", nil, "Query parameter as key=value (repeatable)")
	cmd.Flags().StringVar(&dest, "dest", "", "Destination path (defaults to CACHE_DIR/FILENAME)")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Payload cache directory (defaults to config)")
	cmd.Flags().StringVar(&extractTo, "extract-to", "", "Unpack the fetched archive payload into this directory")
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "Fetch every file listed in this manifest")
	cmd.Flags().StringArrayVar(&sources, "source", nil, "Source base URL, overrides config (repeatable, tried in order)")

	return cmd
}

func runFetchFile(cmd *cobra.Command, filename, sha256, uriPath string, rawParams []string, dest, cacheDir, extractTo string, sourceOverride []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger.InitLogger(cfg.Settings.LogLevel)

	if sha256 == "" {
		return fmt.Errorf("--sha256 is required")
	}
	params, err := parseParams(rawParams)
	if err != nil {
		return err
	}
	if uriPath == "" {
		uriPath = "/" + filename
	}

	mgr, err := newCacheManager(cfg, cacheDir)
	if err != nil {
		return err
	}
	sources := sourceOverride
	if len(sources) == 0 {
		sources = cfg.EnabledSources()
	}
	if dest == "" {
		dest = filepath.Join(mgr.Dir(), filepath.Base(filename))
	}

	spec := model.FileSpec{
		Filename: filename,
		Sha256:   sha256,
		URI:      model.SourceURI{Path: uriPath, Params: params},
	}

	installed, err := mgr.EnsureCached(cmd.Context(), sources, dest, spec)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), installed)

	if extractTo != "" {
		if err := extract.Extract(cmd.Context(), installed, extractTo); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "extracted to %s\n", extractTo)
	}
	return nil
}

func runFetchManifest(cmd *cobra.Command, manifestPath, cacheDir string, sourceOverride []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger.InitLogger(cfg.Settings.LogLevel)

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("failed to read manifest %s: %w", manifestPath, err)
	}
	var manifest model.Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return fmt.Errorf("failed to parse manifest %s: %w", manifestPath, err)
	}
	if err := manifest.Validate(); err != nil {
		return err
	}
	if err := manifest.CheckAgentVersion(Version); err != nil {
		return err
	}

	mgr, err := newCacheManager(cfg, cacheDir)
	if err != nil {
		return err
	}
	sources := sourceOverride
	if len(sources) == 0 {
		sources = cfg.EnabledSources()
	}

	installed, err := mgr.EnsureManifest(cmd.Context(), sources, manifest)
	if err != nil {
		return err
	}
	for _, file := range manifest.Files {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", file.Filename, installed[file.Filename])
	}
	return nil
}
