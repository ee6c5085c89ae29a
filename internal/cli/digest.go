package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/taskfetch/pkg/digest"
)

// NewDigestCmd creates the digest command.
func NewDigestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "digest FILE",
		Short: "Print the SHA-256 digest of a local file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sum, err := digest.SHA256File(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sum)
			return nil
		},
	}
}
