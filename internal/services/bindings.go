package services

import (
	"fmt"

	"github.com/renato0307/chordd/internal/binding"
	"github.com/renato0307/chordd/internal/config"
	"github.com/renato0307/chordd/internal/domain"
	"github.com/renato0307/chordd/internal/logging"
	"github.com/renato0307/chordd/internal/ports"
)

// BindingRow describes one configured binding
type BindingRow struct {
	Chord   domain.Chord
	Command string
	Index   uint64
	Pattern string
}

// BindingService turns the configured bindings into a lookup table
type BindingService struct {
	grabber ports.Grabber
}

// NewBindingService creates a BindingService. A nil grabber builds the table without grabbing keys.
func NewBindingService(grabber ports.Grabber) *BindingService {
	return &BindingService{grabber: grabber}
}

// BuildTable registers every binding of cfg and writes the table to path
func (s *BindingService) BuildTable(cfg *config.Config, path string) (*binding.Table, error) {
	parser, err := cfg.Parser()
	if err != nil {
		return nil, err
	}
	locks, err := cfg.LockMasks()
	if err != nil {
		return nil, err
	}

	opts := []binding.BuilderOption{binding.WithParser(parser), binding.WithLocks(locks)}
	if s.grabber != nil {
		opts = append(opts, binding.WithGrabber(s.grabber))
	}
	builder := binding.NewBuilder(opts...)

	for i, b := range cfg.Bindings {
		cmd, err := b.Command()
		if err != nil {
			return nil, fmt.Errorf("binding %d (%s): %w", i+1, b.Pattern, err)
		}
		if err := builder.Bind(b.Pattern, cmd); err != nil {
			return nil, fmt.Errorf("binding %d (%s): %w", i+1, b.Pattern, err)
		}
	}

	table, err := builder.Finish(path)
	if err != nil {
		return nil, err
	}

	logging.Logger.Info("Binding table built",
		"path", path,
		"bindings", table.CommandCount(),
		"keys", table.Len())
	return table, nil
}

// Describe lists the configured bindings in command index order
func (s *BindingService) Describe(cfg *config.Config) ([]BindingRow, error) {
	parser, err := cfg.Parser()
	if err != nil {
		return nil, err
	}

	rows := make([]BindingRow, 0, len(cfg.Bindings))
	for i, b := range cfg.Bindings {
		chord, err := parser.Parse(b.Pattern)
		if err != nil {
			return nil, fmt.Errorf("binding %d: %w", i+1, err)
		}
		cmd, err := b.Command()
		if err != nil {
			return nil, fmt.Errorf("binding %d (%s): %w", i+1, b.Pattern, err)
		}
		rows = append(rows, BindingRow{
			Chord:   chord,
			Command: cmd.String(),
			Index:   uint64(i),
			Pattern: b.Pattern,
		})
	}
	return rows, nil
}
