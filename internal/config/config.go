// Package config loads the chordd YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/renato0307/chordd/internal/dispatch"
	"github.com/renato0307/chordd/internal/domain"
	"github.com/renato0307/chordd/internal/paths"
)

// ErrConfigNotFound is returned by Load when the file does not exist
var ErrConfigNotFound = errors.New("config file not found")

const (
	DefaultSweepEvery    = dispatch.DefaultSweepEvery
	DefaultSweepInterval = 5 * time.Second
)

// Config is the structure of config.yaml
type Config struct {
	Aliases  map[string]string `yaml:"aliases,omitempty"`
	Bindings []Binding         `yaml:"bindings"`
	Journal  JournalConfig     `yaml:"journal"`
	Locks    LocksConfig       `yaml:"locks"`
	Repeat   string            `yaml:"repeat,omitempty"`
	Sweep    SweepConfig       `yaml:"sweep"`
	Table    string            `yaml:"table,omitempty"`
}

// LocksConfig names the modifiers that stand for num-lock and caps-lock.
// Empty keeps the default, "none" disables the variant.
type LocksConfig struct {
	Caps string `yaml:"caps,omitempty"`
	Num  string `yaml:"num,omitempty"`
}

// SweepConfig controls how often finished children are collected
type SweepConfig struct {
	Every    int           `yaml:"every,omitempty"`
	Interval time.Duration `yaml:"interval,omitempty"`
}

// JournalConfig controls the spawn journal
type JournalConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Path    string `yaml:"path,omitempty"`
}

// Binding maps a chord pattern to a command. Exactly one of Exec or Shell is set.
type Binding struct {
	Args    []string `yaml:"args,omitempty"`
	Exec    string   `yaml:"exec,omitempty"`
	Pattern string   `yaml:"pattern"`
	Shell   string   `yaml:"shell,omitempty"`
}

// Defaults returns a configuration with every optional field filled in
func Defaults() *Config {
	enabled := true
	return &Config{
		Journal: JournalConfig{Enabled: &enabled, Path: paths.GetJournalPath()},
		Repeat:  string(dispatch.RepeatEvery),
		Sweep:   SweepConfig{Every: DefaultSweepEvery, Interval: DefaultSweepInterval},
		Table:   paths.GetTablePath(),
	}
}

// Load reads the file at path over the defaults
func Load(path string) (*Config, error) {
	path = paths.ExpandPath(path)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills fields an explicit zero in the file would otherwise clear
func (c *Config) applyDefaults() {
	d := Defaults()
	if c.Table == "" {
		c.Table = d.Table
	}
	c.Table = paths.ExpandPath(c.Table)
	if c.Repeat == "" {
		c.Repeat = d.Repeat
	}
	if c.Sweep.Every == 0 {
		c.Sweep.Every = d.Sweep.Every
	}
	if c.Sweep.Interval == 0 {
		c.Sweep.Interval = d.Sweep.Interval
	}
	if c.Journal.Enabled == nil {
		c.Journal.Enabled = d.Journal.Enabled
	}
	if c.Journal.Path == "" {
		c.Journal.Path = d.Journal.Path
	}
	c.Journal.Path = paths.ExpandPath(c.Journal.Path)
}

// JournalEnabled reports whether spawns are journaled
func (c *Config) JournalEnabled() bool {
	return c.Journal.Enabled == nil || *c.Journal.Enabled
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if _, err := dispatch.ParseRepeatPolicy(c.Repeat); err != nil {
		return err
	}
	if c.Sweep.Every < 0 {
		return fmt.Errorf("sweep.every must not be negative, got %d", c.Sweep.Every)
	}
	if c.Sweep.Interval < 0 {
		return fmt.Errorf("sweep.interval must not be negative, got %s", c.Sweep.Interval)
	}

	parser, err := c.Parser()
	if err != nil {
		return err
	}
	if _, err := c.LockMasks(); err != nil {
		return err
	}

	for i, b := range c.Bindings {
		if _, err := parser.Parse(b.Pattern); err != nil {
			return fmt.Errorf("binding %d: %w", i+1, err)
		}
		if _, err := b.Command(); err != nil {
			return fmt.Errorf("binding %d (%s): %w", i+1, b.Pattern, err)
		}
	}
	return nil
}

// Parser returns a pattern parser with the default aliases plus the configured ones
func (c *Config) Parser() (*domain.Parser, error) {
	aliases := domain.DefaultAliases()
	custom, err := domain.ParseAliases(c.Aliases)
	if err != nil {
		return nil, err
	}
	for name, mask := range custom {
		aliases[name] = mask
	}
	return domain.NewParser(aliases, nil), nil
}

// LockMasks resolves the lock modifier names
func (c *Config) LockMasks() (domain.Locks, error) {
	locks := domain.DefaultLocks()
	parser, err := c.Parser()
	if err != nil {
		return locks, err
	}

	resolve := func(field, name string, fallback domain.Modifier) (domain.Modifier, error) {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "":
			return fallback, nil
		case "none":
			return 0, nil
		}
		m, ok := parser.Modifier(name)
		if !ok {
			return 0, fmt.Errorf("%w: locks.%s %q", domain.ErrUnknownModifier, field, name)
		}
		return m, nil
	}

	if locks.Num, err = resolve("num", c.Locks.Num, locks.Num); err != nil {
		return locks, err
	}
	if locks.Caps, err = resolve("caps", c.Locks.Caps, locks.Caps); err != nil {
		return locks, err
	}
	return locks, nil
}

// Command builds the command descriptor for the binding
func (b Binding) Command() (domain.Command, error) {
	hasExec := strings.TrimSpace(b.Exec) != ""
	hasShell := strings.TrimSpace(b.Shell) != ""

	switch {
	case hasExec && hasShell:
		return domain.Command{}, errors.New("exec and shell are mutually exclusive")
	case hasShell:
		if len(b.Args) > 0 {
			return domain.Command{}, errors.New("args only apply to exec")
		}
		return domain.ShellScript(b.Shell).Command()
	case hasExec && len(b.Args) > 0:
		return domain.Exec(paths.ExpandPath(b.Exec), b.Args...).Command()
	case hasExec:
		cmd, err := domain.CommandLine(b.Exec).Command()
		if err != nil {
			return domain.Command{}, err
		}
		cmd.Path = paths.ExpandPath(cmd.Path)
		return cmd, nil
	default:
		return domain.Command{}, fmt.Errorf("%w: set exec or shell", domain.ErrEmptyCommand)
	}
}
