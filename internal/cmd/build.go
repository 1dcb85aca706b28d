package cmd

import (
	"fmt"

	"github.com/renato0307/chordd/internal/adapters/lockfile"
	"github.com/renato0307/chordd/internal/services"
)

// BuildCmd writes the binding table from the configuration without grabbing keys
type BuildCmd struct {
	Table string `help:"Output path for the binding table" short:"f" env:"CHORDD_TABLE" type:"path"`
}

// Run executes the build command
func (b *BuildCmd) Run(cli *CLI) error {
	cfg, err := cli.LoadConfig()
	if err != nil {
		return err
	}
	if b.Table != "" {
		cfg.Table = b.Table
	}

	// A running daemon maps the table; rewriting it underneath would break lookups
	lock, err := lockfile.Acquire(lockfile.PathFor(cfg.Table))
	if err != nil {
		return err
	}
	defer lock.Release()

	table, err := services.NewBindingService(nil).BuildTable(cfg, cfg.Table)
	if err != nil {
		return err
	}
	defer table.Close()

	fmt.Printf("Wrote %d bindings (%d keys) to %s\n", table.CommandCount(), table.Len(), cfg.Table)
	return nil
}
