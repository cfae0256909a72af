package config

import (
	"os"
	"path/filepath"
)

// Environment variables read by composer.
const (
	EnvConfig     = "COMPOSER_CONFIG"
	EnvOutDir     = "COMPOSER_OUT_DIR"
	EnvResolve    = "COMPOSER_RESOLVE"
	EnvTimestamps = "COMPOSER_LOG_TIMESTAMPS"
)

// Paths contains standard filesystem paths for composer.
type Paths struct {
	// ConfigFile is the path to the config file (~/.composer/config.yaml).
	ConfigFile string

	// HomeDir is the composer home directory (~/.composer).
	HomeDir string
}

// DefaultPaths returns the default paths for composer.
func DefaultPaths() (*Paths, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	home := filepath.Join(homeDir, ".composer")

	return &Paths{
		ConfigFile: filepath.Join(home, "config.yaml"),
		HomeDir:    home,
	}, nil
}

// GetConfigFile returns the config file path.
// If COMPOSER_CONFIG is set, it takes precedence.
func GetConfigFile() (string, error) {
	if envPath := os.Getenv(EnvConfig); envPath != "" {
		return envPath, nil
	}

	paths, err := DefaultPaths()
	if err != nil {
		return "", err
	}

	return paths.ConfigFile, nil
}

// ExpandTilde expands a leading ~ or ~/ to the user's home directory.
// Other paths, including ~username forms, are returned unchanged.
func ExpandTilde(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if len(path) == 1 {
		return homeDir
	}

	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	return path
}
