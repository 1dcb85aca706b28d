package domain

import "time"

// SpawnRecord describes one dispatched command, as kept by the spawn journal
type SpawnRecord struct {
	ExecutionID string
	Chord       string
	Command     string
	PID         int
	Error       string
	ExitCode    *int
	SpawnedAt   time.Time
	ExitedAt    *time.Time
}

// ExitStatus is the outcome of a reaped child
type ExitStatus struct {
	PID      int
	Code     int
	Signaled bool
}
