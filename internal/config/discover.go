package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvConfig names the environment variable that points at a config file.
const EnvConfig = "MEDIACAT_CONFIG"

// ErrNoConfig is returned by Discover when no search location holds a config file.
var ErrNoConfig = errors.New("no config file found")

// DefaultPath returns the per-user config path, $XDG_CONFIG_HOME/mediacat/config.toml.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "mediacat.toml"
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "mediacat", "config.toml")
}

// SearchPaths lists the locations Discover checks when MEDIACAT_CONFIG is unset:
// ./mediacat.toml next to the catalog being worked on, the per-user path, then
// the system-wide /etc/mediacat/config.toml.
func SearchPaths() []string {
	return []string{
		"mediacat.toml",
		DefaultPath(),
		"/etc/mediacat/config.toml",
	}
}

// Discover returns the config file to load.
// MEDIACAT_CONFIG, when set, must name an existing file; otherwise the first
// regular file in SearchPaths wins. Without one it returns ErrNoConfig.
func Discover() (string, error) {
	if envPath := os.Getenv(EnvConfig); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("%s=%s: %w", EnvConfig, envPath, err)
		}
		return envPath, nil
	}

	paths := SearchPaths()
	for _, p := range paths {
		if fi, err := os.Stat(p); err == nil && fi.Mode().IsRegular() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w, checked: %s", ErrNoConfig, strings.Join(paths, ", "))
}
