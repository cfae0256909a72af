package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cosbuild/composer/internal/cmdtypes"
	"github.com/cosbuild/composer/internal/cmdutil"
	"github.com/cosbuild/composer/internal/config"
	"github.com/cosbuild/composer/internal/output"
	"github.com/cosbuild/composer/internal/pipeline"
)

// NewBuildCmd creates the build command.
func NewBuildCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	var (
		cf        cmdutil.ComposeFlags
		of        cmdutil.OutputFlags
		watchFlag bool
	)

	c := &cobra.Command{
		Use:   "build [system]",
		Short: "Generate initargs.c for every component",
		Long: `Compose a system specification and write one initargs.c per component.

Files are written to <out-dir>/<component>/initargs.c. Files whose content
is unchanged are left untouched. Nothing is written if any cross-component
invariant is violated.

Arguments:
  system    Path to a .toml or .cue system specification (default: system.toml)

Examples:
  # Build system.toml into ./build
  composer build

  # Build into a custom directory and fail on unresolved references
  composer build sys.cue --out-dir ./out --resolve strict

  # Rebuild whenever the specification changes
  composer build --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runBuild(c, args, cfg, &cf, &of, watchFlag)
		},
	}

	cf.AddTo(c)
	of.AddTo(c)
	c.Flags().BoolVarP(&watchFlag, "watch", "w", false,
		"Rebuild when the system specification changes")

	return c
}

func runBuild(c *cobra.Command, args []string, cfg *cmdtypes.GlobalConfig, cf *cmdutil.ComposeFlags, of *cmdutil.OutputFlags, watch bool) error {
	ctx := c.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	opts := cmdutil.ComposeOpts{
		SystemPath: cmdutil.ResolveSystemPath(args),
		Flags:      *cf,
		Output:     of,
		Config:     cfg,
	}

	err := buildOnce(ctx, c.OutOrStdout(), opts)
	if !watch {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	output.Info("watching for changes", "system", opts.SystemPath)
	return pipeline.Watch(ctx, opts.SystemPath, pipeline.DefaultDebounce, func() {
		// Failures are already reported; keep watching.
		_ = buildOnce(ctx, c.OutOrStdout(), opts)
	})
}

func buildOnce(ctx context.Context, w io.Writer, opts cmdutil.ComposeOpts) error {
	result, resolved, err := cmdutil.Compose(ctx, opts)
	if err != nil {
		return err
	}

	outDir := config.ExpandTilde(resolved.OutDir)
	cmdutil.WriteFileResults(w, result, outDir)

	counts := cmdutil.StatusCounts(result)
	output.Info(fmt.Sprintf("wrote %d components to %s", len(result.Files), outDir),
		output.StatusCreated, counts[output.StatusCreated],
		output.StatusUpdated, counts[output.StatusUpdated],
		output.StatusUnchanged, counts[output.StatusUnchanged],
	)
	return nil
}
