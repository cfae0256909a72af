// Package cmd provides CLI command implementations.
package cmd

import (
	"github.com/spf13/cobra"

	configcmd "github.com/cosbuild/composer/internal/cmd/config"
	"github.com/cosbuild/composer/internal/cmdtypes"
	"github.com/cosbuild/composer/internal/config"
	"github.com/cosbuild/composer/internal/output"
	"github.com/cosbuild/composer/internal/version"
)

// NewRootCmd creates the root command for the composer CLI.
func NewRootCmd() *cobra.Command {
	var (
		configFlag     string
		verboseFlag    bool
		timestampsFlag bool
	)

	// Populated by PersistentPreRunE before any subcommand runs.
	cfg := &cmdtypes.GlobalConfig{}

	rootCmd := &cobra.Command{
		Use:   "composer",
		Short: "Static boot-configuration composer",
		Long: `composer turns a system specification into the boot-time configuration
of every component: capability tables, scheduler hierarchies, address-space
groups and virtual-resource assignments, emitted as one initargs.c per
component.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var timestamps *bool
			if cmd.Flags().Changed("timestamps") {
				timestamps = output.BoolPtr(timestampsFlag)
			}
			return initializeGlobals(cfg, configFlag, verboseFlag, timestamps)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to config file (env: COMPOSER_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&timestampsFlag, "timestamps", true, "Show timestamps in log output (env: COMPOSER_LOG_TIMESTAMPS)")

	rootCmd.AddCommand(
		NewBuildCmd(cfg),
		NewInspectCmd(cfg),
		NewDiffCmd(cfg),
		NewVetCmd(cfg),
		configcmd.NewConfigCmd(cfg),
		NewVersionCmd(cfg),
	)

	return rootCmd
}

// initializeGlobals loads the config file, resolves the global values and
// sets up logging.
func initializeGlobals(cfg *cmdtypes.GlobalConfig, configFlag string, verbose bool, timestamps *bool) error {
	pathResult, err := config.ResolveConfigPath(config.ResolveConfigPathOptions{FlagValue: configFlag})
	if err != nil {
		return err
	}

	loaded, loadErr := config.NewLoader().Load(pathResult.ConfigPath)
	if loadErr != nil {
		// Commands that do not need the file still work.
		loaded = &config.Config{}
	}

	resolved, err := config.Resolve(config.ResolveOptions{TimestampsFlag: timestamps}, loaded)
	if err != nil {
		return cmdtypes.NewExitError(err)
	}

	output.SetupLogging(output.LogConfig{
		Verbose:    verbose,
		Timestamps: resolved.Timestamps,
	})

	if loadErr != nil {
		output.Warn("ignoring unreadable config file", "path", pathResult.ConfigPath, "error", loadErr)
	}

	cfg.Config = loaded
	cfg.ConfigPath = pathResult.ConfigPath
	cfg.Resolved = resolved
	cfg.Verbose = verbose

	info := version.Get()
	output.Debug("composer started",
		"version", info.Version,
		"config", pathResult.ConfigPath,
		"config_source", pathResult.Source,
	)
	config.LogResolvedValues(resolved.Values)

	return nil
}
