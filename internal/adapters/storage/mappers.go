package storage

import "github.com/renato0307/chordd/internal/domain"

func spawnToModel(rec domain.SpawnRecord) SpawnModel {
	return SpawnModel{
		Chord:       rec.Chord,
		Command:     rec.Command,
		Error:       rec.Error,
		ExecutionID: rec.ExecutionID,
		ExitCode:    rec.ExitCode,
		ExitedAt:    rec.ExitedAt,
		PID:         rec.PID,
		SpawnedAt:   rec.SpawnedAt,
	}
}

func spawnToDomain(m SpawnModel) domain.SpawnRecord {
	return domain.SpawnRecord{
		Chord:       m.Chord,
		Command:     m.Command,
		Error:       m.Error,
		ExecutionID: m.ExecutionID,
		ExitCode:    m.ExitCode,
		ExitedAt:    m.ExitedAt,
		PID:         m.PID,
		SpawnedAt:   m.SpawnedAt,
	}
}
