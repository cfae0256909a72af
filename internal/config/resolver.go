package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	oerrors "github.com/cosbuild/composer/internal/errors"
	"github.com/cosbuild/composer/internal/output"
	"github.com/cosbuild/composer/internal/resources"
)

// ConfigSource indicates where a configuration value came from.
type ConfigSource string

const (
	// SourceFlag indicates value came from command-line flag.
	SourceFlag ConfigSource = "flag"
	// SourceEnv indicates value came from environment variable.
	SourceEnv ConfigSource = "env"
	// SourceConfig indicates value came from config file.
	SourceConfig ConfigSource = "config"
	// SourceDefault indicates value is the built-in default.
	SourceDefault ConfigSource = "default"
)

// ResolvedValue records the winning value of one key and the values it
// shadowed.
type ResolvedValue struct {
	Key      string
	Value    any
	Source   ConfigSource
	Shadowed map[ConfigSource]any
}

// ResolveConfigPathOptions contains options for config path resolution.
type ResolveConfigPathOptions struct {
	// FlagValue is the --config flag value (empty if not set).
	FlagValue string
}

// ResolveConfigPathResult contains the resolved config path and its source.
type ResolveConfigPathResult struct {
	// ConfigPath is the resolved config file path.
	ConfigPath string
	// Source indicates where the config path came from.
	Source ConfigSource
	// Shadowed contains values that were overridden by higher precedence.
	Shadowed map[ConfigSource]string
}

// ResolveConfigPath resolves the config file path using precedence:
// (1) --config flag, (2) COMPOSER_CONFIG env, (3) ~/.composer/config.yaml
func ResolveConfigPath(opts ResolveConfigPathOptions) (ResolveConfigPathResult, error) {
	result := ResolveConfigPathResult{
		Shadowed: make(map[ConfigSource]string),
	}

	envValue := os.Getenv(EnvConfig)

	paths, err := DefaultPaths()
	if err != nil {
		return result, err
	}
	defaultPath := paths.ConfigFile

	switch {
	case opts.FlagValue != "":
		result.ConfigPath = opts.FlagValue
		result.Source = SourceFlag
		if envValue != "" {
			result.Shadowed[SourceEnv] = envValue
		}
		result.Shadowed[SourceDefault] = defaultPath
	case envValue != "":
		result.ConfigPath = envValue
		result.Source = SourceEnv
		result.Shadowed[SourceDefault] = defaultPath
	default:
		result.ConfigPath = defaultPath
		result.Source = SourceDefault
	}

	return result, nil
}

// ResolveOptions carries the flag values taking part in resolution. Empty
// strings and nil pointers mean the flag was not given.
type ResolveOptions struct {
	OutDirFlag     string
	ResolveFlag    string
	TimestampsFlag *bool
}

// Resolved is the effective configuration of one invocation.
type Resolved struct {
	OutDir     string
	Resolve    resources.ResolvePolicy
	Timestamps *bool

	// Values records how every key was resolved.
	Values []ResolvedValue
}

// Resolve applies flag > env > config > default precedence to every key.
func Resolve(opts ResolveOptions, cfg *Config) (*Resolved, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	outDir := resolveString("outDir", opts.OutDirFlag, os.Getenv(EnvOutDir), cfg.OutDir, DefaultOutDir)
	policy := resolveString("resolve", opts.ResolveFlag, os.Getenv(EnvResolve), cfg.Resolve, DefaultResolve)

	parsed, err := resources.ParseResolvePolicy(policy.Value.(string))
	if err != nil {
		return nil, oerrors.NewValidationError(err.Error(), string(policy.Source), "resolve", "use warn or strict")
	}

	timestamps, err := resolveTimestamps(opts.TimestampsFlag, cfg.Log.Timestamps)
	if err != nil {
		return nil, err
	}

	return &Resolved{
		OutDir:     outDir.Value.(string),
		Resolve:    parsed,
		Timestamps: timestampsValue(timestamps),
		Values:     []ResolvedValue{outDir, policy, timestamps},
	}, nil
}

func resolveString(key, flag, env, configValue, def string) ResolvedValue {
	rv := ResolvedValue{Key: key, Shadowed: make(map[ConfigSource]any)}

	candidates := []struct {
		source ConfigSource
		value  string
	}{
		{SourceFlag, flag},
		{SourceEnv, env},
		{SourceConfig, configValue},
		{SourceDefault, def},
	}

	for _, c := range candidates {
		if c.value == "" {
			continue
		}
		if rv.Source == "" {
			rv.Value = c.value
			rv.Source = c.source
			continue
		}
		rv.Shadowed[c.source] = c.value
	}

	return rv
}

func resolveTimestamps(flag, configValue *bool) (ResolvedValue, error) {
	rv := ResolvedValue{Key: "log.timestamps", Shadowed: make(map[ConfigSource]any)}

	var env *bool
	if raw := os.Getenv(EnvTimestamps); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return rv, oerrors.NewValidationError(
				fmt.Sprintf("%s=%q is not a boolean", EnvTimestamps, raw),
				string(SourceEnv), "log.timestamps", "use true or false",
			)
		}
		env = &b
	}

	for _, c := range []struct {
		source ConfigSource
		value  *bool
	}{
		{SourceFlag, flag},
		{SourceEnv, env},
		{SourceConfig, configValue},
	} {
		if c.value == nil {
			continue
		}
		if rv.Source == "" {
			rv.Value = *c.value
			rv.Source = c.source
			continue
		}
		rv.Shadowed[c.source] = *c.value
	}

	if rv.Source == "" {
		rv.Value = true
		rv.Source = SourceDefault
	}
	return rv, nil
}

// timestampsValue returns nil for the default so the logger applies its own.
func timestampsValue(rv ResolvedValue) *bool {
	if rv.Source == SourceDefault {
		return nil
	}
	b := rv.Value.(bool)
	return &b
}

// LogResolvedValues logs configuration resolution at DEBUG level.
func LogResolvedValues(values []ResolvedValue) {
	for _, v := range values {
		output.Debug("config value resolved",
			"key", v.Key,
			"value", v.Value,
			"source", v.Source,
		)

		sources := make([]string, 0, len(v.Shadowed))
		for s := range v.Shadowed {
			sources = append(sources, string(s))
		}
		sort.Strings(sources)

		for _, s := range sources {
			output.Debug("  shadowed by higher precedence",
				"key", v.Key,
				"shadowed_source", s,
				"shadowed_value", v.Shadowed[ConfigSource(s)],
			)
		}
	}
}
