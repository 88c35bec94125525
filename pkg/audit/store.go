// pkg/audit/store.go
package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Finding is one persisted triage decision: why a record was flagged and
// which conflict group it belongs to.
type Finding struct {
	RecordKey     string `db:"record_key"`
	Status        string `db:"status"`
	Reason        string `db:"reason"`
	Detail        string `db:"detail"`
	ConflictGroup string `db:"conflict_group"`
}

// Discard is a reference row dropped while collapsing a 1:N join. Discards
// are persisted so no parcel silently disappears from the audit trail.
type Discard struct {
	RecordKey string `db:"record_key"`
	Commodity string `db:"commodity"`
	Detail    string `db:"detail"`
}

// Store persists run history, triage findings, and join discards to a
// local SQLite database.
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// Open opens (or creates) the audit database at path and ensures the
// tracking tables exist.
func Open(path string, logger *zap.Logger) (*Store, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	store, err := NewStore(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewStore creates a Store on an existing connection and ensures the
// tracking tables exist.
func NewStore(db *sqlx.DB, logger *zap.Logger) (*Store, error) {
	if db == nil {
		return nil, errors.New("database connection cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	store := &Store{
		db:     db,
		logger: logger,
	}

	if err := store.setupTables(); err != nil {
		return nil, fmt.Errorf("failed to setup audit tables: %w", err)
	}

	return store, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// setupTables ensures the run, finding, and discard tracking tables exist
func (s *Store) setupTables() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	createTableSQL := `
		CREATE TABLE IF NOT EXISTS triage_runs (
			id TEXT PRIMARY KEY,
			tool TEXT NOT NULL,
			started_at TIMESTAMP NOT NULL,
			completed_at TIMESTAMP,
			row_count INTEGER NOT NULL DEFAULT 0,
			error_count INTEGER NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS triage_findings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			record_key TEXT NOT NULL,
			status TEXT NOT NULL,
			reason TEXT NOT NULL,
			detail TEXT,
			conflict_group TEXT,
			recorded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS join_discards (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			record_key TEXT NOT NULL,
			commodity TEXT,
			detail TEXT,
			recorded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	_, err := s.db.ExecContext(ctx, createTableSQL)
	if err != nil {
		return fmt.Errorf("failed to create tracking tables: %w", err)
	}

	s.logger.Info("Ensured audit tables exist")
	return nil
}

// BeginRun records the start of a tool run and returns its run ID.
func (s *Store) BeginRun(tool string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	runID := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO triage_runs (id, tool, started_at) VALUES (?, ?, ?)`,
		runID, tool, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to record run start: %w", err)
	}

	s.logger.Info("Started audit run",
		zap.String("run_id", runID),
		zap.String("tool", tool))
	return runID, nil
}

// CompleteRun closes out a run with its final counters.
func (s *Store) CompleteRun(runID string, rowCount, errorCount int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`UPDATE triage_runs SET completed_at = ?, row_count = ?, error_count = ? WHERE id = ?`,
		time.Now().UTC(), rowCount, errorCount, runID)
	if err != nil {
		return fmt.Errorf("failed to record run completion: %w", err)
	}
	return nil
}

// RecordFindings batch inserts triage findings for a run inside one
// transaction.
func (s *Store) RecordFindings(runID string, findings []Finding) error {
	if len(findings) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("Failed to rollback transaction",
					zap.Error(rbErr),
					zap.Error(err))
			}
		}
	}()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO triage_findings
		(run_id, record_key, status, reason, detail, conflict_group)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, f := range findings {
		_, err = stmt.ExecContext(ctx,
			runID, f.RecordKey, f.Status, f.Reason, f.Detail, f.ConflictGroup)
		if err != nil {
			return fmt.Errorf("failed to insert finding: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Recorded triage findings",
		zap.String("run_id", runID),
		zap.Int("count", len(findings)))
	return nil
}

// RecordDiscards batch inserts collapse discards for a run inside one
// transaction.
func (s *Store) RecordDiscards(runID string, discards []Discard) error {
	if len(discards) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("Failed to rollback transaction",
					zap.Error(rbErr),
					zap.Error(err))
			}
		}
	}()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO join_discards (run_id, record_key, commodity, detail)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, d := range discards {
		_, err = stmt.ExecContext(ctx, runID, d.RecordKey, d.Commodity, d.Detail)
		if err != nil {
			return fmt.Errorf("failed to insert discard: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Recorded join discards",
		zap.String("run_id", runID),
		zap.Int("count", len(discards)))
	return nil
}

// FindingCount returns the number of findings stored for a run.
func (s *Store) FindingCount(runID string) (int, error) {
	var count int
	err := s.db.Get(&count,
		`SELECT COUNT(*) FROM triage_findings WHERE run_id = ?`, runID)
	if err != nil {
		return 0, fmt.Errorf("failed to count findings: %w", err)
	}
	return count, nil
}
