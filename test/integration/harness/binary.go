package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// DefaultTimeout bounds every chordd invocation
const DefaultTimeout = 30 * time.Second

var (
	build struct {
		once sync.Once
		path string
		err  error
	}
)

// CommandResult is the outcome of one chordd invocation
type CommandResult struct {
	ExitCode int
	Stderr   string
	Stdout   string
}

// BuildBinary compiles ./cmd into a temp dir, once per test binary
func BuildBinary() (string, error) {
	build.once.Do(func() {
		root, err := moduleRoot()
		if err != nil {
			build.err = fmt.Errorf("locating module root: %w", err)
			return
		}
		dir, err := os.MkdirTemp("", "chordd-integration-*")
		if err != nil {
			build.err = err
			return
		}
		build.path = filepath.Join(dir, "chordd")

		gobuild := exec.Command("go", "build", "-o", build.path, "./cmd")
		gobuild.Dir = root
		gobuild.Stdout = os.Stdout
		gobuild.Stderr = os.Stderr
		build.err = gobuild.Run()
	})
	return build.path, build.err
}

// CleanupBinary removes the directory created by BuildBinary
func CleanupBinary() {
	if build.path == "" {
		return
	}
	if err := os.RemoveAll(filepath.Dir(build.path)); err != nil {
		log.Printf("Warning: failed to remove %s: %v", filepath.Dir(build.path), err)
	}
}

// RunCommand runs chordd with args inside env
func RunCommand(tb testing.TB, env *TestEnvironment, args ...string) CommandResult {
	tb.Helper()
	return RunCommandWithTimeout(tb, env, DefaultTimeout, args...)
}

// RunCommandWithTimeout runs chordd and kills it after timeout. A timed out or
// unstartable command reports exit code -1.
func RunCommandWithTimeout(tb testing.TB, env *TestEnvironment, timeout time.Duration, args ...string) CommandResult {
	tb.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	chordd := exec.CommandContext(ctx, build.path, args...)
	chordd.Env = env.Environ()
	chordd.Stdout = &stdout
	chordd.Stderr = &stderr
	chordd.WaitDelay = time.Second

	result := CommandResult{ExitCode: -1}
	err := chordd.Run()

	var exitErr *exec.ExitError
	switch {
	case ctx.Err() != nil:
		tb.Logf("chordd %v timed out after %v", args, timeout)
	case err == nil:
		result.ExitCode = 0
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		tb.Logf("chordd %v failed to run: %v", args, err)
	}

	result.Stdout = stdout.String()
	result.Stderr = stderr.String()
	return result
}

func moduleRoot() (string, error) {
	out, err := exec.Command("go", "list", "-m", "-f", "{{.Dir}}").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
