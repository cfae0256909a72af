package cmdutil

import (
	"context"
	"fmt"

	"github.com/cosbuild/composer/internal/cmdtypes"
	"github.com/cosbuild/composer/internal/config"
	oerrors "github.com/cosbuild/composer/internal/errors"
	"github.com/cosbuild/composer/internal/output"
	"github.com/cosbuild/composer/internal/pipeline"
)

// ComposeOpts holds the inputs for Compose.
type ComposeOpts struct {
	// SystemPath is the system specification to compose.
	SystemPath string
	// Flags are the command's compose flags.
	Flags ComposeFlags
	// Output is set by commands that write files. Nil composes in memory.
	Output *OutputFlags
	// Config is the global configuration.
	Config *cmdtypes.GlobalConfig
}

// ResolveCommand resolves the command-local flags against env, the config
// file and the defaults.
func ResolveCommand(opts ComposeOpts) (*config.Resolved, error) {
	if opts.Config == nil {
		return nil, &oerrors.ExitError{Code: oerrors.ExitGeneralError, Err: fmt.Errorf("configuration not loaded")}
	}

	ro := config.ResolveOptions{ResolveFlag: opts.Flags.Resolve}
	if opts.Output != nil {
		ro.OutDirFlag = opts.Output.OutDir
	}

	resolved, err := config.Resolve(ro, opts.Config.Config)
	if err != nil {
		return nil, &oerrors.ExitError{Code: oerrors.ExitCodeFromError(err), Err: fmt.Errorf("resolving config: %w", err)}
	}
	config.LogResolvedValues(resolved.Values)
	return resolved, nil
}

// Compose runs the pipeline shared by build, inspect, diff and vet.
//
// On failure it prints the error and returns an *ExitError with the
// appropriate exit code and Printed set.
func Compose(ctx context.Context, opts ComposeOpts) (*pipeline.Result, *config.Resolved, error) {
	resolved, err := ResolveCommand(opts)
	if err != nil {
		return nil, nil, err
	}

	po := pipeline.Options{
		SystemPath: opts.SystemPath,
		Resolve:    resolved.Resolve,
	}
	if opts.Output != nil {
		po.OutDir = config.ExpandTilde(resolved.OutDir)
	}

	output.Debug("composing system",
		"system", po.SystemPath,
		"out-dir", po.OutDir,
		"resolve", po.Resolve,
	)

	var result *pipeline.Result
	err = output.RunWithSpinner(ctx, func() error {
		var runErr error
		result, runErr = pipeline.New().Run(ctx, po)
		return runErr
	}, output.WithTitle(fmt.Sprintf("Composing %s", po.SystemPath)))
	if err != nil {
		PrintComposeError("compose failed", err)
		return nil, resolved, &oerrors.ExitError{Code: oerrors.ExitCodeFromError(err), Err: err, Printed: true}
	}

	return result, resolved, nil
}
