package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cosbuild/composer/internal/cmdtypes"
	"github.com/cosbuild/composer/internal/cmdutil"
	"github.com/cosbuild/composer/internal/output"
)

// NewVetCmd creates the vet command.
func NewVetCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	var cf cmdutil.ComposeFlags

	c := &cobra.Command{
		Use:   "vet [system]",
		Short: "Validate a system specification",
		Long: `Validate a system specification without writing any files.

Checks the specification against its schema, every cross-component
invariant, and that configuration can be generated for every component.

Examples:
  composer vet system.toml
  composer vet system.cue --resolve strict`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runVet(c, args, cfg, &cf)
		},
	}

	cf.AddTo(c)

	return c
}

func runVet(c *cobra.Command, args []string, cfg *cmdtypes.GlobalConfig, cf *cmdutil.ComposeFlags) error {
	ctx := c.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	systemPath := cmdutil.ResolveSystemPath(args)
	result, resolved, err := cmdutil.Compose(ctx, cmdutil.ComposeOpts{
		SystemPath: systemPath,
		Flags:      *cf,
		Config:     cfg,
	})
	if err != nil {
		return err
	}

	w := c.OutOrStdout()
	if cfg.Verbose {
		for _, f := range result.Files {
			fmt.Fprintln(w, output.FormatComponentLine(f.Component.ID.String(), f.Component.Name, output.StatusValid))
		}
	}
	fmt.Fprintln(w, output.FormatVetCheck("System specification valid", systemPath))
	fmt.Fprintln(w, output.FormatVetCheck("Invariants hold", fmt.Sprintf("%d components", len(result.Files))))
	fmt.Fprintln(w, output.FormatVetCheck("Configuration generated", "resolve="+resolved.Resolve.String()))
	return nil
}
