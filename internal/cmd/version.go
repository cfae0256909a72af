package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cosbuild/composer/internal/cmdtypes"
	"github.com/cosbuild/composer/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd(_ *cmdtypes.GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show composer version information.

Displays:
  - composer version, commit, and build date
  - Go and CUE SDK versions`,
		RunE: runVersion,
	}
}

func runVersion(cmd *cobra.Command, _ []string) error {
	info := version.Get()

	fmt.Fprintln(cmd.OutOrStdout(), info.String())

	return nil
}
