// Package cmdutil provides shared command utilities for the composing
// commands. It centralizes flag group management, pipeline orchestration
// and output formatting helpers.
package cmdutil

import (
	"github.com/spf13/cobra"
)

// ComposeFlags holds flags common to commands that run the pipeline
// (build, inspect, diff, vet).
type ComposeFlags struct {
	Resolve string
}

// AddTo registers the compose flags on the given cobra command.
func (f *ComposeFlags) AddTo(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Resolve, "resolve", "",
		"Policy for unresolved virtual-resource references: warn, strict (env: COMPOSER_RESOLVE)")
}

// OutputFlags holds flags for commands that write generated files (build).
type OutputFlags struct {
	OutDir string
}

// AddTo registers the output flags on the given cobra command.
func (f *OutputFlags) AddTo(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.OutDir, "out-dir", "",
		"Directory for generated initargs.c files (env: COMPOSER_OUT_DIR, default: ./build)")
}

// ResolveSystemPath returns the system specification path from command
// args, defaulting to system.toml in the current directory.
func ResolveSystemPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "system.toml"
}
