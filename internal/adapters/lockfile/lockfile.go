// Package lockfile keeps a single daemon per binding table.
package lockfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/renato0307/chordd/internal/domain"
	"github.com/renato0307/chordd/internal/logging"
)

// Lock is an exclusive advisory lock on a file that records the holder's pid
type Lock struct {
	file *os.File
	path string
}

// PathFor returns the lock file guarding a binding table
func PathFor(tablePath string) string {
	return tablePath + ".lock"
}

// Acquire takes the lock without waiting. It fails with domain.ErrAlreadyRunning
// when another process holds it.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	if err := tryLock(file); err != nil {
		file.Close()
		if holder := readHolder(path); holder != 0 {
			return nil, fmt.Errorf("%w (pid %d)", domain.ErrAlreadyRunning, holder)
		}
		return nil, domain.ErrAlreadyRunning
	}

	if err := file.Truncate(0); err == nil {
		file.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0)
	}

	logging.Logger.Debug("Lock acquired", "path", path)
	return &Lock{file: file, path: path}, nil
}

// Release drops the lock and removes the file
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	os.Remove(l.path)
	err := unlock(l.file)
	if cerr := l.file.Close(); err == nil {
		err = cerr
	}
	l.file = nil
	return err
}

func readHolder(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	pid, _ := strconv.Atoi(strings.TrimSpace(string(data)))
	return pid
}
