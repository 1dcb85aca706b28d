// Package dispatch turns key presses into command launches.
//
// A Dispatcher runs on the daemon's single event goroutine: lookups and
// spawns are synchronous and never wait on a child. Children are reaped with
// non-blocking waits, once right after spawn and then on every sweep.
package dispatch

import (
	"fmt"
	"time"

	"github.com/renato0307/chordd/internal/domain"
	"github.com/renato0307/chordd/internal/logging"
	"github.com/renato0307/chordd/internal/ports"
)

// DefaultSweepEvery is how many dispatches may pass between reap sweeps
const DefaultSweepEvery = 16

// Table is the read side of the binding map
type Table interface {
	Lookup(chord domain.Chord) (uint64, bool)
	Command(index uint64) (domain.Command, bool)
}

// RepeatPolicy decides what a press does while a binding is still held
type RepeatPolicy string

const (
	// RepeatEvery dispatches on every press, auto-repeat included
	RepeatEvery RepeatPolicy = "every"
	// RepeatOnce dispatches once per press-until-all-released
	RepeatOnce RepeatPolicy = "once"
)

// ParseRepeatPolicy validates a policy name; empty means RepeatEvery
func ParseRepeatPolicy(s string) (RepeatPolicy, error) {
	switch RepeatPolicy(s) {
	case "", RepeatEvery:
		return RepeatEvery, nil
	case RepeatOnce:
		return RepeatOnce, nil
	}
	return "", fmt.Errorf("unknown repeat policy %q (want %q or %q)", s, RepeatEvery, RepeatOnce)
}

// Options configures a Dispatcher
type Options struct {
	Repeat      RepeatPolicy
	SweepEvery  int
	Journal     ports.SpawnJournal
	ExecutionID string
}

// Dispatcher looks up chords and launches the bound commands
type Dispatcher struct {
	table       Table
	host        ports.ProcessHost
	journal     ports.SpawnJournal
	executionID string
	repeat      RepeatPolicy
	sweepEvery  int

	sinceSweep int
	pending    []int

	// held and latched implement RepeatOnce
	held    map[uint64]struct{}
	latched bool
}

// New creates a dispatcher
func New(table Table, host ports.ProcessHost, opts Options) *Dispatcher {
	if opts.Repeat == "" {
		opts.Repeat = RepeatEvery
	}
	if opts.SweepEvery <= 0 {
		opts.SweepEvery = DefaultSweepEvery
	}
	return &Dispatcher{
		table:       table,
		host:        host,
		journal:     opts.Journal,
		executionID: opts.ExecutionID,
		repeat:      opts.Repeat,
		sweepEvery:  opts.SweepEvery,
		held:        make(map[uint64]struct{}),
	}
}

// HandleEvent feeds one key event through the repeat policy
func (d *Dispatcher) HandleEvent(ev domain.KeyEvent) {
	switch ev.Kind {
	case domain.KeyPress:
		d.held[ev.Chord.Symbol] = struct{}{}
		if d.repeat == RepeatOnce && d.latched {
			logging.Logger.Debug("Suppressed repeated press", "chord", ev.Chord.String())
			return
		}
		if d.Execute(ev.Chord) && d.repeat == RepeatOnce {
			d.latched = true
		}
	case domain.KeyRelease:
		delete(d.held, ev.Chord.Symbol)
		if len(d.held) == 0 {
			d.latched = false
		}
	}
}

// Execute runs the command bound to chord and reports whether one matched.
// Failures to launch are logged, never returned.
func (d *Dispatcher) Execute(chord domain.Chord) bool {
	index, ok := d.table.Lookup(chord)
	if !ok {
		logging.Logger.Debug("Unmatched combination", "chord", chord.String())
		return false
	}
	cmd, ok := d.table.Command(index)
	if !ok {
		return false
	}

	switch cmd.Kind {
	case domain.CommandCallback:
		d.call(chord, cmd)
	default:
		d.spawn(chord, cmd)
	}

	d.sinceSweep++
	if d.sinceSweep >= d.sweepEvery {
		d.Sweep()
	}
	return true
}

func (d *Dispatcher) call(chord domain.Chord, cmd domain.Command) {
	defer func() {
		if r := recover(); r != nil {
			logging.Logger.Error("Callback panicked", "chord", chord.String(), "command", cmd.Name, "panic", fmt.Sprint(r))
		}
	}()
	if err := cmd.Func(); err != nil {
		logging.Logger.Error("Callback failed", "chord", chord.String(), "command", cmd.Name, "error", err)
		return
	}
	logging.Logger.Info("Ran callback", "chord", chord.String(), "command", cmd.Name)
}

func (d *Dispatcher) spawn(chord domain.Chord, cmd domain.Command) {
	rec := domain.SpawnRecord{
		ExecutionID: d.executionID,
		Chord:       chord.String(),
		Command:     cmd.String(),
		SpawnedAt:   time.Now().UTC(),
	}

	pid, err := d.host.Spawn(cmd)
	if err != nil {
		logging.Logger.Error("Unable to spawn command", "chord", chord.String(), "command", cmd.String(), "error", err)
		rec.Error = err.Error()
		d.recordSpawn(rec)
		return
	}

	rec.PID = pid
	logging.Logger.Info("Spawned command", "chord", chord.String(), "command", cmd.String(), "pid", pid)
	d.recordSpawn(rec)

	// Most launchers fork and exit at once, so try before tracking
	if !d.reap(pid) {
		d.pending = append(d.pending, pid)
	}
}

// reap reports whether pid no longer needs tracking
func (d *Dispatcher) reap(pid int) bool {
	status, done, err := d.host.TryReap(pid)
	if err != nil {
		logging.Logger.Warn("Unable to reap child", "pid", pid, "error", err)
		return true
	}
	if !done {
		return false
	}
	logging.Logger.Debug("Reaped child", "pid", pid, "code", status.Code, "signaled", status.Signaled)
	if d.journal != nil {
		d.journal.RecordExit(status)
	}
	return true
}

// Sweep collects every child that exited since the last sweep
func (d *Dispatcher) Sweep() {
	d.sinceSweep = 0
	if len(d.pending) == 0 {
		return
	}
	alive := d.pending[:0]
	for _, pid := range d.pending {
		if !d.reap(pid) {
			alive = append(alive, pid)
		}
	}
	d.pending = alive
}

// Pending returns the number of children not reaped yet
func (d *Dispatcher) Pending() int {
	return len(d.pending)
}

func (d *Dispatcher) recordSpawn(rec domain.SpawnRecord) {
	if d.journal != nil {
		d.journal.RecordSpawn(rec)
	}
}
