// Package config provides configuration loading and management.
package config

// Default values applied when no flag, environment variable or config file
// sets a key.
const (
	DefaultOutDir  = "./build"
	DefaultResolve = "warn"
)

// LogConfig contains logging-related settings.
type LogConfig struct {
	// Timestamps controls whether timestamps are shown in log output.
	// Default: true. Override with --timestamps flag.
	Timestamps *bool `mapstructure:"timestamps" json:"timestamps,omitempty" yaml:"timestamps,omitempty"`
}

// Config represents the composer configuration.
// Loaded from ~/.composer/config.yaml, validated against embedded CUE schema.
type Config struct {
	// OutDir is the directory generated initargs.c files are written under,
	// one subdirectory per component.
	// Env: COMPOSER_OUT_DIR, Default: ./build
	OutDir string `mapstructure:"outDir" json:"outDir,omitempty" yaml:"outDir,omitempty"`

	// Resolve is the policy for virtual-resource references that name no
	// registered instance: "warn" drops them, "strict" fails the build.
	// Env: COMPOSER_RESOLVE, Default: warn
	Resolve string `mapstructure:"resolve" json:"resolve,omitempty" yaml:"resolve,omitempty"`

	// Log contains logging-related settings.
	Log LogConfig `mapstructure:"log" json:"log,omitempty" yaml:"log,omitempty"`
}

// DefaultConfig returns a Config with all default values populated.
// Used by `composer config init` to generate the initial config file.
func DefaultConfig() *Config {
	return &Config{
		OutDir:  DefaultOutDir,
		Resolve: DefaultResolve,
	}
}

// WithDefaults returns a copy with unset fields filled from DefaultConfig.
func (c *Config) WithDefaults() *Config {
	out := *c
	def := DefaultConfig()
	if out.OutDir == "" {
		out.OutDir = def.OutDir
	}
	if out.Resolve == "" {
		out.Resolve = def.Resolve
	}
	return &out
}
