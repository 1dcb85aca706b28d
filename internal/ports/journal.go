package ports

import (
	"context"

	"github.com/renato0307/chordd/internal/domain"
)

// SpawnJournal keeps a history of dispatched commands.
// RecordSpawn and RecordExit must not block the caller.
type SpawnJournal interface {
	RecordSpawn(rec domain.SpawnRecord)
	RecordExit(status domain.ExitStatus)
}

// SpawnHistory reads the journal back
type SpawnHistory interface {
	Recent(ctx context.Context, limit int) ([]domain.SpawnRecord, error)
}
