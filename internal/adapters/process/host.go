package process

import (
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/renato0307/chordd/internal/domain"
	"github.com/renato0307/chordd/internal/logging"
	"github.com/renato0307/chordd/internal/ports"
)

// OSHost implements ProcessHost with os/exec and non-blocking wait4
type OSHost struct {
	mu       sync.Mutex
	children map[int]*exec.Cmd
}

// Compile-time interface verification
var _ ports.ProcessHost = (*OSHost)(nil)

// NewOSHost creates a new process host
func NewOSHost() *OSHost {
	return &OSHost{children: make(map[int]*exec.Cmd)}
}

// Spawn starts cmd in its own process group with all standard streams on the
// null device. It returns as soon as the child is started.
func (h *OSHost) Spawn(cmd domain.Command) (int, error) {
	if cmd.Kind != domain.CommandProcess {
		return 0, fmt.Errorf("cannot spawn %s command %q", cmd.Kind, cmd.Name)
	}

	c := exec.Command(cmd.Path, cmd.Args...)
	// nil streams are connected to os.DevNull by os/exec
	c.Stdin, c.Stdout, c.Stderr = nil, nil, nil
	// a terminal ^C aimed at the daemon must not reach the children
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := c.Start(); err != nil {
		return 0, fmt.Errorf("failed to start %s: %w", cmd.Path, err)
	}

	pid := c.Process.Pid
	h.mu.Lock()
	h.children[pid] = c
	h.mu.Unlock()
	return pid, nil
}

// TryReap collects the child's exit status if it has exited, without blocking
func (h *OSHost) TryReap(pid int) (domain.ExitStatus, bool, error) {
	var ws unix.WaitStatus
	for {
		wpid, err := unix.Wait4(pid, &ws, unix.WNOHANG, nil)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			h.forget(pid)
			return domain.ExitStatus{}, false, fmt.Errorf("wait4 %d: %w", pid, err)
		}
		if wpid == 0 {
			return domain.ExitStatus{}, false, nil
		}
		break
	}

	h.forget(pid)
	status := domain.ExitStatus{PID: pid, Code: ws.ExitStatus()}
	if ws.Signaled() {
		status.Signaled = true
		status.Code = 128 + int(ws.Signal())
	}
	return status, true, nil
}

// Running returns the number of children started and not yet reaped
func (h *OSHost) Running() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.children)
}

func (h *OSHost) forget(pid int) {
	h.mu.Lock()
	c, ok := h.children[pid]
	delete(h.children, pid)
	h.mu.Unlock()
	if ok {
		// the status was collected by wait4, release the handle without waiting
		if err := c.Process.Release(); err != nil {
			logging.Logger.Debug("Failed to release process handle", "pid", pid, "error", err)
		}
	}
}
