package storage

import "time"

// SpawnModel is the GORM model for the spawns table
type SpawnModel struct {
	Chord       string     `gorm:"not null"`
	Command     string     `gorm:"not null"`
	Error       string     `gorm:"not null;default:''"`
	ExecutionID string     `gorm:"not null;index:idx_spawn_execution"`
	ExitCode    *int       `gorm:"default:null"`
	ExitedAt    *time.Time `gorm:"default:null"`
	ID          uint       `gorm:"primaryKey"`
	PID         int        `gorm:"column:pid;not null;default:0;index:idx_spawn_pid"`
	SpawnedAt   time.Time  `gorm:"not null;index:idx_spawned_at"`
}

// TableName specifies the table name for GORM
func (SpawnModel) TableName() string { return "spawns" }
