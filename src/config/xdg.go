package config

import (
	"os"
	"path/filepath"
)

const appName = "solvetrends"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appName, "config.toml")
}

// DefaultHistoryPath returns the default path of the run ledger database.
func DefaultHistoryPath() string {
	return filepath.Join(XDGDataHome(), appName, "runs.db")
}

// DefaultWorkDir returns the directory holding the server's working copy of the solve log and charts.
func DefaultWorkDir() string {
	return filepath.Join(XDGDataHome(), appName, "work")
}
