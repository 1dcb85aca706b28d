package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/renato0307/chordd/internal/paths"
)

// Logger is the public logger instance accessible from all packages
var Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Initialize sets up the logger and returns the log file path when logging to a file.
//
// In debug mode a JSON log is written to a new file in the state directory
// (or to debugFile). Otherwise warnings and errors go to stderr, so spawn
// failures stay visible while the daemon runs.
func Initialize(debug bool, debugFile string, maxLogFiles int) (string, error) {
	inherited := os.Getenv("CHORDD_DEBUG") == "1"
	debug = debug || inherited
	if debugFile == "" {
		debugFile = os.Getenv("CHORDD_DEBUG_FILE")
	}
	// The env value only applies while the flag is at its default
	if env := os.Getenv("CHORDD_MAX_LOG_FILES"); env != "" && maxLogFiles == 100 {
		if parsed, err := strconv.Atoi(env); err == nil {
			maxLogFiles = parsed
		}
	}

	if !debug && debugFile == "" {
		Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		return "", nil
	}

	path, err := openPath(debugFile, maxLogFiles)
	if err != nil {
		return "", err
	}
	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create log file: %w", err)
	}
	Logger = slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// Children started with an inherited setting log quietly into the parent's file
	if !inherited {
		Logger.Info("Debug logging initialized", "log_file", path)
		fmt.Printf("Debug mode enabled. Logs: %s\n", path)
	}
	return path, nil
}

// openPath picks the log file: debugFile as given, or a fresh uuid-named file
// in the log directory after rotating old ones
func openPath(debugFile string, maxLogFiles int) (string, error) {
	if debugFile != "" {
		path := paths.ExpandPath(debugFile)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return "", fmt.Errorf("failed to create log directory: %w", err)
		}
		return path, nil
	}

	logDir := paths.GetLogDir()
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}
	if maxLogFiles > 0 {
		if err := rotateLogs(logDir, maxLogFiles); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: log rotation failed: %v\n", err)
		}
	}
	return filepath.Join(logDir, uuid.NewString()+".log"), nil
}

// rotateLogs deletes the oldest *.log files so that, with the file about to be
// created, at most maxLogFiles remain
func rotateLogs(logDir string, maxLogFiles int) error {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return fmt.Errorf("failed to read log directory: %w", err)
	}

	type logFile struct {
		name    string
		modTime time.Time
	}
	var logs []logFile
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".log" {
			continue
		}
		if info, err := entry.Info(); err == nil {
			logs = append(logs, logFile{name: entry.Name(), modTime: info.ModTime()})
		}
	}

	excess := len(logs) - maxLogFiles + 1
	if excess <= 0 {
		return nil
	}

	slices.SortFunc(logs, func(a, b logFile) int { return a.modTime.Compare(b.modTime) })
	for _, lf := range logs[:excess] {
		if err := os.Remove(filepath.Join(logDir, lf.name)); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to delete old log file %s: %v\n", lf.name, err)
		}
	}
	return nil
}
