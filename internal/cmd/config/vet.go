package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cosbuild/composer/internal/cmdtypes"
	"github.com/cosbuild/composer/internal/config"
	oerrors "github.com/cosbuild/composer/internal/errors"
	"github.com/cosbuild/composer/internal/output"
)

// NewConfigVetCmd creates the config vet command.
func NewConfigVetCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "vet",
		Short: "Validate the composer configuration file",
		Long: `Validate the composer configuration file against the embedded schema.

The command validates ~/.composer/config.yaml by default.
Use --config flag to specify a different location.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return runVet(c, cfg)
		},
	}
}

func runVet(c *cobra.Command, cfg *cmdtypes.GlobalConfig) error {
	path, err := configFilePath(cfg)
	if err != nil {
		return fmt.Errorf("getting config file path: %w", err)
	}

	exists, err := config.ConfigFileExists(path)
	if err != nil {
		return fmt.Errorf("checking config file: %w", err)
	}
	if !exists {
		return &cmdtypes.ExitError{
			Code: cmdtypes.ExitNotFound,
			Err:  oerrors.NewNotFoundError(fmt.Sprintf("config file not found: %s", path), path, "run 'composer config init' to create one"),
		}
	}

	validator, err := config.NewValidator()
	if err != nil {
		return fmt.Errorf("creating validator: %w", err)
	}

	if err := validator.ValidateFile(path); err != nil {
		fmt.Fprintln(c.ErrOrStderr(), "Error: config validation failed")
		fmt.Fprintf(c.ErrOrStderr(), "  File: %s\n\n", path)
		fmt.Fprintln(c.ErrOrStderr(), err)
		return &cmdtypes.ExitError{Code: oerrors.ExitCodeFromError(err), Err: err, Printed: true}
	}

	fmt.Fprintln(c.OutOrStdout(), output.FormatVetCheck("Config file valid", path))
	return nil
}
