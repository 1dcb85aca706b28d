package integration_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renato0307/chordd/internal/adapters/storage"
	"github.com/renato0307/chordd/internal/domain"
	"github.com/renato0307/chordd/test/integration/harness"
)

func TestHistory_Empty(t *testing.T) {
	env := harness.NewTestEnvironment(t)

	result := harness.RunCommand(t, env, "history")
	harness.AssertSuccess(t, result)
	harness.AssertStdoutContains(t, result, "No spawns recorded.")
}

func TestHistory_ShowsJournal(t *testing.T) {
	env := harness.NewTestEnvironment(t)

	journal, err := storage.NewSQLiteJournal(env.JournalPath(), "run-1")
	require.NoError(t, err)
	journal.RecordSpawn(domain.SpawnRecord{ExecutionID: "run-1", Chord: "mod4+e", Command: "alacritty", PID: 4242, SpawnedAt: time.Now().UTC()})
	journal.RecordSpawn(domain.SpawnRecord{ExecutionID: "run-1", Chord: "mod4+x", Command: "/nonexistent", Error: "no such file", SpawnedAt: time.Now().UTC()})
	journal.RecordExit(domain.ExitStatus{PID: 4242, Code: 0})
	journal.Flush()
	require.NoError(t, journal.Close())

	result := harness.RunCommand(t, env, "history")
	harness.AssertSuccess(t, result)
	harness.AssertStdoutContains(t, result, "alacritty")
	harness.AssertStdoutContains(t, result, "failed: no such file")

	result = harness.RunCommand(t, env, "history", "--format", "json", "--limit", "1")
	harness.AssertSuccess(t, result)
	var rows []struct {
		Chord string `json:"chord"`
		Error string `json:"error"`
	}
	harness.AssertValidJSON(t, result, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, "mod4+x", rows[0].Chord)
	assert.Equal(t, "no such file", rows[0].Error)
}
