package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cosbuild/composer/internal/cmdtypes"
	"github.com/cosbuild/composer/internal/cmdutil"
	"github.com/cosbuild/composer/internal/diff"
	oerrors "github.com/cosbuild/composer/internal/errors"
	"github.com/cosbuild/composer/internal/output"
)

// NewDiffCmd creates the diff command.
func NewDiffCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	var cf cmdutil.ComposeFlags

	c := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Compare the generated configuration of two systems",
		Long: `Compose two system specifications in memory and show, per component,
what the generated configuration gains or loses.

Components are matched by variable name.

Examples:
  # Compare a change before committing it
  composer diff system.toml system.next.toml`,
		Args: cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return runDiff(c, args, cfg, &cf)
		},
	}

	cf.AddTo(c)

	return c
}

func runDiff(c *cobra.Command, args []string, cfg *cmdtypes.GlobalConfig, cf *cmdutil.ComposeFlags) error {
	ctx := c.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	resolved, err := cmdutil.ResolveCommand(cmdutil.ComposeOpts{Flags: *cf, Config: cfg})
	if err != nil {
		return err
	}

	result, err := diff.Systems(ctx, args[0], args[1], diff.Options{
		Resolve:  resolved.Resolve,
		UseColor: output.IsTTY(),
	})
	if err != nil {
		cmdutil.PrintComposeError("diff failed", err)
		return &cmdtypes.ExitError{Code: oerrors.ExitCodeFromError(err), Err: err, Printed: true}
	}

	fmt.Fprint(c.OutOrStdout(), output.RenderDiff(result.Added, result.Removed, result.Modified, output.GetStyles()))
	return nil
}
