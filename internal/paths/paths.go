package paths

import (
	"os"
	"path/filepath"
)

// GetConfigDir returns $XDG_CONFIG_HOME/chordd, defaulting to ~/.config/chordd
func GetConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(ExpandPath(dir), "chordd")
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".chordd"
	}
	return filepath.Join(homeDir, ".config", "chordd")
}

// GetStateDir returns $XDG_STATE_HOME/chordd, defaulting to ~/.local/state/chordd
func GetStateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(ExpandPath(dir), "chordd")
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".chordd"
	}
	return filepath.Join(homeDir, ".local", "state", "chordd")
}

// GetConfigPath returns $CHORDD_CONFIG or the config.yaml in the config dir
func GetConfigPath() string {
	if path := os.Getenv("CHORDD_CONFIG"); path != "" {
		return ExpandPath(path)
	}
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// GetTablePath returns the default location of the binding table, in the temp dir
func GetTablePath() string {
	return filepath.Join(os.TempDir(), "chordd.fst")
}

// GetJournalPath returns the default spawn journal database
func GetJournalPath() string {
	return filepath.Join(GetStateDir(), "journal.db")
}

// GetLogDir returns the directory debug logs are written to
func GetLogDir() string {
	return filepath.Join(GetStateDir(), "logs")
}

// ExpandPath expands ~ to home directory
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			if len(path) == 1 {
				return homeDir
			}
			return filepath.Join(homeDir, path[1:])
		}
	}
	return path
}
