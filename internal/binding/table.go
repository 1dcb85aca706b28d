package binding

import (
	"errors"
	"fmt"
	"sync"

	"github.com/blevesearch/vellum"

	"github.com/renato0307/chordd/internal/domain"
	"github.com/renato0307/chordd/internal/logging"
)

// Table is the read side of the binding map. It is immutable and safe to
// query without locking once opened.
type Table struct {
	fst       *vellum.FST
	commands  []domain.Command
	closeOnce sync.Once
	closeErr  error
}

// Entry is one key of the table
type Entry struct {
	Chord domain.Chord
	Index uint64
}

// OpenTable maps an existing table file read-only. The file stays open until Close.
func OpenTable(path string, commands []domain.Command) (*Table, error) {
	fst, err := vellum.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open table %s: %w", path, err)
	}
	return &Table{fst: fst, commands: commands}, nil
}

// Lookup returns the command index bound to chord. A miss is the normal outcome
// for keys that are not bound. Indices outside the command list are treated as
// misses so a foreign or corrupted file cannot index past the commands.
func (t *Table) Lookup(chord domain.Chord) (uint64, bool) {
	key := chord.Key()
	index, ok, err := t.fst.Get(key[:])
	if err != nil {
		logging.Logger.Warn("Table lookup failed", "chord", chord.String(), "error", err)
		return 0, false
	}
	if !ok {
		return 0, false
	}
	if index >= uint64(len(t.commands)) {
		logging.Logger.Warn("Table index out of range", "chord", chord.String(), "index", index, "commands", len(t.commands))
		return 0, false
	}
	return index, true
}

// Command returns the descriptor at index
func (t *Table) Command(index uint64) (domain.Command, bool) {
	if index >= uint64(len(t.commands)) {
		return domain.Command{}, false
	}
	return t.commands[index], true
}

// CommandCount returns the number of command descriptors
func (t *Table) CommandCount() int {
	return len(t.commands)
}

// Len returns the number of keys stored in the table
func (t *Table) Len() int {
	return t.fst.Len()
}

// Entries lists every key in byte order
func (t *Table) Entries() ([]Entry, error) {
	var entries []Entry
	itr, err := t.fst.Iterator(nil, nil)
	for err == nil {
		key, index := itr.Current()
		chord, derr := domain.DecodeChord(key)
		if derr != nil {
			return nil, derr
		}
		entries = append(entries, Entry{Chord: chord, Index: index})
		err = itr.Next()
	}
	if !errors.Is(err, vellum.ErrIteratorDone) {
		return nil, fmt.Errorf("failed to iterate table: %w", err)
	}
	return entries, nil
}

// Close unmaps the table and closes its file
func (t *Table) Close() error {
	t.closeOnce.Do(func() {
		t.closeErr = t.fst.Close()
	})
	return t.closeErr
}
