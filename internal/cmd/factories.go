package cmd

import (
	"github.com/renato0307/chordd/internal/adapters/storage"
	"github.com/renato0307/chordd/internal/config"
	"github.com/renato0307/chordd/internal/logging"
)

// openJournal opens the spawn journal when enabled. A journal that cannot be
// opened is logged and skipped; dispatch works without it.
func openJournal(cfg *config.Config, executionID string) *storage.SQLiteJournal {
	if !cfg.JournalEnabled() {
		logging.Logger.Debug("Spawn journal disabled")
		return nil
	}
	journal, err := storage.NewSQLiteJournal(cfg.Journal.Path, executionID)
	if err != nil {
		logging.Logger.Warn("Spawn journal unavailable", "path", cfg.Journal.Path, "error", err)
		return nil
	}
	return journal
}
