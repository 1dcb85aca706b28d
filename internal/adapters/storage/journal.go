package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/renato0307/chordd/internal/domain"
	"github.com/renato0307/chordd/internal/logging"
	"github.com/renato0307/chordd/internal/paths"
	"github.com/renato0307/chordd/internal/ports"
)

// queueSize bounds the records waiting for the writer; beyond it records are dropped
const queueSize = 256

// SQLiteJournal implements ports.SpawnJournal and ports.SpawnHistory using GORM.
// Records are queued and written by Run so the dispatcher never waits on disk.
type SQLiteJournal struct {
	db          *gorm.DB
	executionID string
	ops         chan journalOp
	dropped     atomic.Int64
}

type journalOp struct {
	spawn *domain.SpawnRecord
	exit  *domain.ExitStatus
	at    time.Time
}

// Verify interface compliance at compile time
var (
	_ ports.SpawnJournal = (*SQLiteJournal)(nil)
	_ ports.SpawnHistory = (*SQLiteJournal)(nil)
)

// gormLogger wraps the chordd logger for GORM
type gormLogger struct {
	level logger.LogLevel
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &gormLogger{level: level}
}

func (l *gormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Info {
		logging.Logger.Info(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Warn {
		logging.Logger.Warn(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Error {
		logging.Logger.Error(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level < logger.Info {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logging.Logger.Error("gorm query error", "error", err, "duration", elapsed, "sql", sql, "rows", rows)
	} else if elapsed > 200*time.Millisecond {
		logging.Logger.Warn("slow query", "duration", elapsed, "sql", sql, "rows", rows)
	} else {
		logging.Logger.Debug("gorm query", "duration", elapsed, "sql", sql, "rows", rows)
	}
}

func newGormLogger() logger.Interface {
	if os.Getenv("CHORDD_DEBUG") == "1" {
		return (&gormLogger{}).LogMode(logger.Info)
	}
	return (&gormLogger{}).LogMode(logger.Silent)
}

// NewSQLiteJournal opens (or creates) the journal database
func NewSQLiteJournal(dbPath, executionID string) (*SQLiteJournal, error) {
	dbPath = paths.ExpandPath(dbPath)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		PrepareStmt: false,
		NowFunc:     func() time.Time { return time.Now().UTC() },
		Logger:      newGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	// Several daemons (or a history command) may share the file
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")
	db.Exec("PRAGMA synchronous=NORMAL")

	if err := db.AutoMigrate(&SpawnModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate spawns schema: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return &SQLiteJournal{
		db:          db,
		executionID: executionID,
		ops:         make(chan journalOp, queueSize),
	}, nil
}

// RecordSpawn queues a spawn record
func (j *SQLiteJournal) RecordSpawn(rec domain.SpawnRecord) {
	j.enqueue(journalOp{spawn: &rec, at: time.Now().UTC()})
}

// RecordExit queues the exit status of a child spawned by this execution
func (j *SQLiteJournal) RecordExit(status domain.ExitStatus) {
	j.enqueue(journalOp{exit: &status, at: time.Now().UTC()})
}

func (j *SQLiteJournal) enqueue(op journalOp) {
	select {
	case j.ops <- op:
	default:
		n := j.dropped.Add(1)
		logging.Logger.Warn("Journal queue full, dropping record", "dropped_total", n)
	}
}

// Dropped returns how many records were discarded because the queue was full
func (j *SQLiteJournal) Dropped() int64 {
	return j.dropped.Load()
}

// Run writes queued records until ctx is cancelled, then flushes what is left
func (j *SQLiteJournal) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			j.Flush()
			return nil
		case op := <-j.ops:
			j.apply(op)
		}
	}
}

// Flush writes every queued record
func (j *SQLiteJournal) Flush() {
	for {
		select {
		case op := <-j.ops:
			j.apply(op)
		default:
			return
		}
	}
}

func (j *SQLiteJournal) apply(op journalOp) {
	switch {
	case op.spawn != nil:
		model := spawnToModel(*op.spawn)
		if err := j.db.Create(&model).Error; err != nil {
			logging.Logger.Error("Failed to record spawn", "pid", op.spawn.PID, "error", err)
		}
	case op.exit != nil:
		err := j.db.Model(&SpawnModel{}).
			Where("execution_id = ? AND pid = ? AND exited_at IS NULL", j.executionID, op.exit.PID).
			Updates(map[string]any{"exit_code": op.exit.Code, "exited_at": op.at}).Error
		if err != nil {
			logging.Logger.Error("Failed to record exit", "pid", op.exit.PID, "error", err)
		}
	}
}

// Recent returns the latest spawn records, newest first
func (j *SQLiteJournal) Recent(ctx context.Context, limit int) ([]domain.SpawnRecord, error) {
	var models []SpawnModel
	if err := j.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list spawns: %w", err)
	}
	records := make([]domain.SpawnRecord, len(models))
	for i, m := range models {
		records[i] = spawnToDomain(m)
	}
	return records, nil
}

// Close closes the database connection
func (j *SQLiteJournal) Close() error {
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
