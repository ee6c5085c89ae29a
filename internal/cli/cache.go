package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCacheCmd creates the cache command with its subcommands.
func NewCacheCmd() *cobra.Command {
	var cacheDir string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the payload cache",
	}
	cmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "Payload cache directory (defaults to config)")

	info := &cobra.Command{
		Use:   "info",
		Short: "Show cache directory, file count and total size",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := cacheManagerFromConfig(cacheDir)
			if err != nil {
				return err
			}
			info, err := mgr.GetInfo()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Directory: %s\n", info.Directory)
			fmt.Fprintf(cmd.OutOrStdout(), "Files: %d\n", info.Files)
			fmt.Fprintf(cmd.OutOrStdout(), "Total size: %d bytes\n", info.TotalSize)
			return nil
		},
	}

	clean := &cobra.Command{
		Use:   "clean",
		Short: "Remove all cached payloads",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := cacheManagerFromConfig(cacheDir)
			if err != nil {
				return err
			}
			freed, err := mgr.Clean()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Freed %d bytes\n", freed)
			return nil
		},
	}

	cmd.AddCommand(info, clean)
	return cmd
}
