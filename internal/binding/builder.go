// Package binding builds and reads the persisted chord -> command index map.
//
// The map is a vellum finite state transducer keyed by the 12-byte chord
// encoding. It is written once at startup and read through a read-only mmap
// for the lifetime of the daemon.
package binding

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/blevesearch/vellum"

	"github.com/renato0307/chordd/internal/domain"
	"github.com/renato0307/chordd/internal/logging"
	"github.com/renato0307/chordd/internal/ports"
)

type entry struct {
	key   domain.ChordKey
	index uint64
}

// Builder accumulates bindings and serializes them into a Table
type Builder struct {
	parser   *domain.Parser
	locks    domain.Locks
	grabber  ports.Grabber
	commands []domain.Command
	entries  []entry
}

// BuilderOption configures a Builder
type BuilderOption func(*Builder)

// WithParser sets the pattern parser (aliases and symbol resolver)
func WithParser(p *domain.Parser) BuilderOption {
	return func(b *Builder) { b.parser = p }
}

// WithLocks sets the num-lock and caps-lock masks folded into every binding
func WithLocks(locks domain.Locks) BuilderOption {
	return func(b *Builder) { b.locks = locks }
}

// WithGrabber makes Bind grab every lock variant of the chord
func WithGrabber(g ports.Grabber) BuilderOption {
	return func(b *Builder) { b.grabber = g }
}

// NewBuilder creates an empty builder. Without options it uses the default
// parser, the default lock masks and grabs nothing.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{locks: domain.DefaultLocks()}
	for _, opt := range opts {
		opt(b)
	}
	if b.parser == nil {
		b.parser = domain.NewParser(nil, nil)
	}
	return b
}

// Bind registers pattern -> spec. All four lock variants are grabbed before
// anything is committed; when a grab fails the call returns a *domain.GrabError
// and the builder is unchanged. Grabs already granted for this call stay held
// until the grab session is released, so callers treat the error as fatal.
func (b *Builder) Bind(pattern string, spec domain.CommandSpec) error {
	chord, err := b.parser.Parse(pattern)
	if err != nil {
		return err
	}
	cmd, err := spec.Command()
	if err != nil {
		return fmt.Errorf("binding %q: %w", pattern, err)
	}

	variants := uniqueVariants(chord.LockVariants(b.locks))
	if b.grabber != nil {
		for _, v := range variants {
			if err := b.grabber.Grab(v); err != nil {
				var grabErr *domain.GrabError
				if errors.As(err, &grabErr) {
					return err
				}
				return &domain.GrabError{Chord: v, Err: err}
			}
		}
	}

	index := uint64(len(b.commands))
	b.commands = append(b.commands, cmd)
	for _, v := range variants {
		b.entries = append(b.entries, entry{key: v.Key(), index: index})
	}

	logging.Logger.Info("Mapped binding", "pattern", pattern, "chord", chord.String(), "command", cmd.String(), "index", index)
	return nil
}

// Len returns the number of registered commands
func (b *Builder) Len() int {
	return len(b.commands)
}

// Finish writes the table to path, replacing any existing file, and opens it
func (b *Builder) Finish(path string) (*Table, error) {
	logging.Logger.Info("Building binding table", "path", path, "commands", len(b.commands), "entries", len(b.entries))

	b.commands = slices.Clip(b.commands)
	entries, err := sortEntries(b.entries)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create table file: %w", err)
	}
	if err := writeFST(f, entries); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to sync table file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close table file: %w", err)
	}

	table, err := OpenTable(path, b.commands)
	if err != nil {
		return nil, err
	}
	logging.Logger.Info("Binding table ready", "path", path, "keys", len(entries))
	return table, nil
}

// sortEntries orders entries by key bytes and drops exact duplicates.
// The same key bound to two different commands is an error.
func sortEntries(in []entry) ([]entry, error) {
	entries := slices.Clone(in)
	slices.SortFunc(entries, func(a, b entry) int {
		if c := bytes.Compare(a.key[:], b.key[:]); c != 0 {
			return c
		}
		switch {
		case a.index < b.index:
			return -1
		case a.index > b.index:
			return 1
		}
		return 0
	})

	out := entries[:0]
	for _, e := range entries {
		if n := len(out); n > 0 && out[n-1].key == e.key {
			if out[n-1].index == e.index {
				continue
			}
			chord, _ := domain.DecodeChord(e.key[:])
			return nil, fmt.Errorf("%w: %s (commands %d and %d)", domain.ErrDuplicatePattern, chord, out[n-1].index, e.index)
		}
		out = append(out, e)
	}
	return out, nil
}

func writeFST(w io.Writer, entries []entry) error {
	bw := bufio.NewWriter(w)
	fb, err := vellum.New(bw, nil)
	if err != nil {
		return fmt.Errorf("failed to start table builder: %w", err)
	}
	for _, e := range entries {
		if err := fb.Insert(e.key[:], e.index); err != nil {
			return fmt.Errorf("failed to insert %x: %w", e.key, err)
		}
	}
	if err := fb.Close(); err != nil {
		return fmt.Errorf("failed to finish table: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	return nil
}

func uniqueVariants(variants [4]domain.Chord) []domain.Chord {
	out := make([]domain.Chord, 0, len(variants))
	for _, v := range variants {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
