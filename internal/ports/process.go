package ports

import "github.com/renato0307/chordd/internal/domain"

// ProcessHost starts child processes and collects their exit status without blocking
type ProcessHost interface {
	// Spawn starts the command and returns its pid
	Spawn(cmd domain.Command) (int, error)
	// TryReap reports whether the child exited, collecting its status if so
	TryReap(pid int) (domain.ExitStatus, bool, error)
}
