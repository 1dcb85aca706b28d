package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/renato0307/chordd/internal/config"
	"github.com/renato0307/chordd/internal/logging"
	"github.com/renato0307/chordd/internal/paths"
)

// DefaultMaxLogFiles is the default of --max-log-files
const DefaultMaxLogFiles = 100

// CLI represents the command-line interface structure
type CLI struct {
	Version     kong.VersionFlag `help:"Show version information"`
	Config      string           `help:"Path to config.yaml (overrides $CHORDD_CONFIG)" short:"c" type:"path"`
	Debug       bool             `help:"Enable debug logging to file" short:"d"`
	DebugFile   string           `help:"Custom path for debug log file (disables automatic cleanup)"`
	MaxLogFiles int              `help:"Maximum number of log files to keep (0 = unlimited)" default:"100"`

	Run      RunCmd      `cmd:"" help:"Grab the configured chords and run their commands (default)" default:"withargs"`
	Build    BuildCmd    `cmd:"build" help:"Write the binding table without grabbing keys"`
	Bindings BindingsCmd `cmd:"bindings" help:"List the configured bindings"`
	History  HistoryCmd  `cmd:"history" help:"Show recently spawned commands"`
}

// AfterApply initializes logging after CLI parsing
func (c *CLI) AfterApply() error {
	logFilePath, err := logging.Initialize(c.Debug, c.DebugFile, c.MaxLogFiles)
	if err != nil {
		return err
	}

	// Spawned commands inherit these, so a chordd started from a binding logs to the same file
	if c.Debug || c.DebugFile != "" {
		os.Setenv("CHORDD_DEBUG", "1")
		if logFilePath != "" {
			os.Setenv("CHORDD_DEBUG_FILE", logFilePath)
		}
	}
	if c.MaxLogFiles != DefaultMaxLogFiles {
		os.Setenv("CHORDD_MAX_LOG_FILES", fmt.Sprintf("%d", c.MaxLogFiles))
	}
	return nil
}

// configPath resolves --config > $CHORDD_CONFIG > default location
func (c *CLI) configPath() string {
	if c.Config != "" {
		return c.Config
	}
	return paths.GetConfigPath()
}

// LoadConfig reads the configuration file
func (c *CLI) LoadConfig() (*config.Config, error) {
	path := c.configPath()
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logging.Logger.Info("Configuration loaded", "path", path, "bindings", len(cfg.Bindings))
	return cfg, nil
}

// LoadConfigOrDefaults is LoadConfig, falling back to defaults when no file exists
func (c *CLI) LoadConfigOrDefaults() (*config.Config, error) {
	cfg, err := c.LoadConfig()
	if errors.Is(err, config.ErrConfigNotFound) {
		logging.Logger.Debug("No configuration file, using defaults", "path", c.configPath())
		return config.Defaults(), nil
	}
	return cfg, err
}
