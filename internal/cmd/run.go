package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/renato0307/chordd/internal/adapters/lockfile"
	"github.com/renato0307/chordd/internal/adapters/process"
	"github.com/renato0307/chordd/internal/adapters/x11"
	"github.com/renato0307/chordd/internal/config"
	"github.com/renato0307/chordd/internal/dispatch"
	"github.com/renato0307/chordd/internal/logging"
	"github.com/renato0307/chordd/internal/ports"
	"github.com/renato0307/chordd/internal/services"
)

// RunCmd grabs the configured chords and dispatches their commands until interrupted
type RunCmd struct {
	Repeat        string        `help:"Dispatch on every press of a held chord or once until release (every, once)" env:"CHORDD_REPEAT" placeholder:"every|once"`
	SweepEvery    int           `help:"Collect finished children after this many dispatched events"`
	SweepInterval time.Duration `help:"Interval between periodic collections of finished children"`
	Table         string        `help:"Output path for the binding table" short:"f" env:"CHORDD_TABLE" type:"path"`
}

// apply overrides the configuration with the flags that were set
func (r *RunCmd) apply(cfg *config.Config) error {
	if r.Table != "" {
		cfg.Table = r.Table
	}
	if r.Repeat != "" {
		cfg.Repeat = r.Repeat
	}
	if r.SweepEvery > 0 {
		cfg.Sweep.Every = r.SweepEvery
	}
	if r.SweepInterval > 0 {
		cfg.Sweep.Interval = r.SweepInterval
	}
	return cfg.Validate()
}

// Run executes the daemon
func (r *RunCmd) Run(cli *CLI) error {
	cfg, err := cli.LoadConfig()
	if err != nil {
		return err
	}
	if err := r.apply(cfg); err != nil {
		return err
	}
	policy, err := dispatch.ParseRepeatPolicy(cfg.Repeat)
	if err != nil {
		return err
	}

	executionID := uuid.New().String()
	os.Setenv("CHORDD_EXECUTION_ID", executionID)
	logging.Logger.Info("Starting chordd", "execution_id", executionID, "table", cfg.Table, "repeat", policy)

	lock, err := lockfile.Acquire(lockfile.PathFor(cfg.Table))
	if err != nil {
		return err
	}
	defer lock.Release()

	keyboard, err := x11.NewKeyboard()
	if err != nil {
		return fmt.Errorf("failed to open keyboard: %w", err)
	}
	defer keyboard.Close()

	session, err := keyboard.Acquire()
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Release(); err != nil {
			logging.Logger.Warn("Failed to release grabs", "error", err)
		}
	}()

	table, err := services.NewBindingService(session).BuildTable(cfg, cfg.Table)
	if err != nil {
		return err
	}
	defer table.Close()

	var journal ports.SpawnJournal
	writer := openJournal(cfg, executionID)
	if writer != nil {
		defer writer.Close()
		journal = writer
	}

	dispatcher := dispatch.New(table, process.NewOSHost(), dispatch.Options{
		ExecutionID: executionID,
		Journal:     journal,
		Repeat:      policy,
		SweepEvery:  cfg.Sweep.Every,
	})
	daemon := services.NewDaemon(keyboard, dispatcher, cfg.Sweep.Interval)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The journal outlives the daemon so the final sweep's exits are written
	journalCtx, stopJournal := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer stopJournal()
		return daemon.Run(gctx)
	})
	if writer != nil {
		g.Go(func() error {
			return writer.Run(journalCtx)
		})
	} else {
		stopJournal()
	}

	fmt.Printf("chordd: %d bindings grabbed, table at %s\n", table.CommandCount(), cfg.Table)
	err = g.Wait()
	logging.Logger.Info("chordd stopped", "pending_children", dispatcher.Pending(), "error", err)
	return err
}
