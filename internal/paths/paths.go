// Package paths resolves the configuration and data directories.
package paths

import (
	"os"
	"path/filepath"
)

// Working-directory-relative defaults.
const (
	DefaultConfigDirName = ".contextref"
	DefaultDataDirName   = ".contextref-db"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "CONTEXTREF_CONFIG_DIR"
	EnvDataDir   = "CONTEXTREF_DATA_DIR"
)

// getwd can be overridden in tests.
var getwd = os.Getwd

// ResolveConfigDir returns the configuration directory:
// flag > CONTEXTREF_CONFIG_DIR > ./.contextref.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return underCWD(DefaultConfigDirName)
}

// ResolveDataDir returns the data directory:
// flag > config file value > CONTEXTREF_DATA_DIR > ./.contextref-db.
func ResolveDataDir(flag, configValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configValue != "" {
		return filepath.Abs(configValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	return underCWD(DefaultDataDirName)
}

func underCWD(name string) (string, error) {
	cwd, err := getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, name), nil
}
