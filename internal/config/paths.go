package config

import (
	"os"
	"path/filepath"
)

const appDirName = ".geonotes"

// DataDir returns the base data directory for GeoNotes.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, appDirName), nil
}

// ConfigPath returns the path to the TOML configuration file.
func ConfigPath() (string, error) {
	return dataPath("config.toml")
}

// StateDBPath returns the path to the bbolt database holding the session and
// UI state.
func StateDBPath() (string, error) {
	return dataPath("state.db")
}

// HistoryPath returns the path to the shell history file.
func HistoryPath() (string, error) {
	return dataPath("shell_history")
}

// UILogPath returns the path to the terminal UI log file.
func UILogPath() (string, error) {
	return dataPath("ui.log")
}

func dataPath(name string) (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, name), nil
}
