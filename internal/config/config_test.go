package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renato0307/chordd/internal/domain"
)

const sampleConfig = `
table: /tmp/test-chordd.fst
repeat: once
aliases:
  hyper: mod3
locks:
  num: numlock
  caps: lock
sweep:
  every: 4
  interval: 2s
journal:
  enabled: false
bindings:
  - pattern: "super + e"
    exec: alacritty --class term
  - pattern: "super + a"
    shell: "firefox | logger"
  - pattern: "hyper + c"
    exec: bspc
    args: [node, -c]
`

func TestParse_SampleConfig(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/test-chordd.fst", cfg.Table)
	assert.Equal(t, "once", cfg.Repeat)
	assert.Equal(t, 4, cfg.Sweep.Every)
	assert.Equal(t, 2*time.Second, cfg.Sweep.Interval)
	assert.False(t, cfg.JournalEnabled())
	require.Len(t, cfg.Bindings, 3)

	cmd, err := cfg.Bindings[0].Command()
	require.NoError(t, err)
	assert.Equal(t, "alacritty", cmd.Path)
	assert.Equal(t, []string{"--class", "term"}, cmd.Args)

	cmd, err = cfg.Bindings[1].Command()
	require.NoError(t, err)
	assert.Equal(t, "sh", cmd.Path)
	assert.Equal(t, []string{"-c", "firefox | logger"}, cmd.Args)

	cmd, err = cfg.Bindings[2].Command()
	require.NoError(t, err)
	assert.Equal(t, "bspc", cmd.Path)
	assert.Equal(t, []string{"node", "-c"}, cmd.Args)

	parser, err := cfg.Parser()
	require.NoError(t, err)
	chord, err := parser.Parse("hyper + c")
	require.NoError(t, err)
	assert.Equal(t, domain.Mod3, chord.Modifiers)
}

func TestParse_Defaults(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/state")
	cfg, err := Parse([]byte("bindings: []\n"))
	require.NoError(t, err)

	assert.Equal(t, "every", cfg.Repeat)
	assert.Equal(t, DefaultSweepEvery, cfg.Sweep.Every)
	assert.Equal(t, DefaultSweepInterval, cfg.Sweep.Interval)
	assert.True(t, cfg.JournalEnabled())
	assert.Equal(t, filepath.Join("/state", "chordd", "journal.db"), cfg.Journal.Path)
	assert.Equal(t, filepath.Join(os.TempDir(), "chordd.fst"), cfg.Table)

	locks, err := cfg.LockMasks()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultLocks(), locks)
}

func TestBindingCommand_ExpandsHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	tests := []struct {
		name    string
		binding Binding
		path    string
		args    []string
	}{
		{"command line", Binding{Exec: "~/bin/x --flag"}, "/home/tester/bin/x", []string{"--flag"}},
		{"exec with args", Binding{Exec: "~/bin/x", Args: []string{"--flag"}}, "/home/tester/bin/x", []string{"--flag"}},
		{"plain name", Binding{Exec: "rofi -show run"}, "rofi", []string{"-show", "run"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := tt.binding.Command()
			require.NoError(t, err)
			assert.Equal(t, tt.path, cmd.Path)
			assert.Equal(t, tt.args, cmd.Args)
		})
	}
}

func TestLockMasks(t *testing.T) {
	tests := []struct {
		name    string
		locks   LocksConfig
		want    domain.Locks
		wantErr bool
	}{
		{"defaults", LocksConfig{}, domain.Locks{Num: domain.Mod2, Caps: domain.ModLock}, false},
		{"disabled", LocksConfig{Num: "none", Caps: "none"}, domain.Locks{}, false},
		{"alias", LocksConfig{Num: "mod3", Caps: "lock"}, domain.Locks{Num: domain.Mod3, Caps: domain.ModLock}, false},
		{"unknown", LocksConfig{Num: "scroll"}, domain.Locks{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.Locks = tt.locks
			got, err := cfg.LockMasks()
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrUnknownModifier)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown repeat", "repeat: sometimes\n"},
		{"negative sweep", "sweep: {every: -1}\n"},
		{"unknown alias target", "aliases: {hyper: mod9}\n"},
		{"exec and shell", "bindings: [{pattern: super + e, exec: a, shell: b}]\n"},
		{"no command", "bindings: [{pattern: super + e}]\n"},
		{"args with shell", "bindings: [{pattern: super + e, shell: b, args: [x]}]\n"},
		{"unknown key", "bindings: [{pattern: super + nosuchkey, exec: a}]\n"},
		{"empty pattern", "bindings: [{pattern: '', exec: a}]\n"},
		{"bad yaml", "bindings: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, ErrConfigNotFound)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Bindings, 3)
}
