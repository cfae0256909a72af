// Package config provides CLI command implementations for the config command group.
package config

import (
	"github.com/spf13/cobra"

	"github.com/cosbuild/composer/internal/cmdtypes"
	"github.com/cosbuild/composer/internal/config"
)

// NewConfigCmd creates the config command group.
func NewConfigCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  `Configuration management for composer.`,
	}

	c.AddCommand(NewConfigInitCmd(cfg))
	c.AddCommand(NewConfigVetCmd(cfg))

	return c
}

// configFilePath returns the resolved config path, falling back to the
// default when the root command did not run.
func configFilePath(cfg *cmdtypes.GlobalConfig) (string, error) {
	path := ""
	if cfg != nil {
		path = cfg.ConfigPath
	}
	if path == "" {
		var err error
		path, err = config.GetConfigFile()
		if err != nil {
			return "", err
		}
	}
	return config.ExpandTilde(path), nil
}
