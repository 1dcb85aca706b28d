package harness

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestEnvironment is an isolated set of XDG and temp directories for one test
type TestEnvironment struct {
	Root     string
	extraEnv map[string]string
	tb       testing.TB
}

// NewTestEnvironment creates an environment rooted in a test temp dir
func NewTestEnvironment(tb testing.TB) *TestEnvironment {
	tb.Helper()

	root := tb.TempDir()
	for _, dir := range []string{"config/chordd", "state/chordd", "tmp"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			tb.Fatalf("Failed to create %s: %v", dir, err)
		}
	}

	return &TestEnvironment{
		Root:     root,
		extraEnv: make(map[string]string),
		tb:       tb,
	}
}

// Environ returns the process environment with CHORDD_* and X variables replaced
func (e *TestEnvironment) Environ() []string {
	overrides := map[string]string{
		"CHORDD_DEBUG":    "",
		"DISPLAY":         "",
		"TMPDIR":          e.TablesDir(),
		"XDG_CONFIG_HOME": filepath.Join(e.Root, "config"),
		"XDG_STATE_HOME":  filepath.Join(e.Root, "state"),
	}
	for k, v := range e.extraEnv {
		overrides[k] = v
	}

	env := make([]string, 0, len(os.Environ())+len(overrides))
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "CHORDD_") {
			continue
		}
		if _, ok := overrides[key]; ok {
			continue
		}
		env = append(env, kv)
	}
	for k, v := range overrides {
		env = append(env, k+"="+v)
	}
	return env
}

// ConfigPath returns the default config.yaml location of the environment
func (e *TestEnvironment) ConfigPath() string {
	return filepath.Join(e.Root, "config", "chordd", "config.yaml")
}

// JournalPath returns the default spawn journal location of the environment
func (e *TestEnvironment) JournalPath() string {
	return filepath.Join(e.Root, "state", "chordd", "journal.db")
}

// TablesDir is the TMPDIR of the environment, where the default table is written
func (e *TestEnvironment) TablesDir() string {
	return filepath.Join(e.Root, "tmp")
}

// WriteConfig writes config.yaml to the default location
func (e *TestEnvironment) WriteConfig(content string) {
	e.tb.Helper()
	if err := os.WriteFile(e.ConfigPath(), []byte(content), 0644); err != nil {
		e.tb.Fatalf("Failed to write config: %v", err)
	}
}

// SetEnv sets an additional environment variable
func (e *TestEnvironment) SetEnv(key, value string) {
	e.extraEnv[key] = value
}
