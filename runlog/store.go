// Package runlog persists training runs and their per-epoch metrics to a
// SQLite database, giving experiments a queryable history.
package runlog

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-based persistence for training runs
type Store struct {
	db *sql.DB
}

// Run is one recorded training run.
type Run struct {
	ID         string
	Model      string
	Config     string
	Status     string
	StartedAt  time.Time
	FinishedAt time.Time
	Epochs     int
}

// Run statuses
const (
	StatusRunning  = "running"
	StatusFinished = "finished"
)

// Open creates or opens a run log database at path.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=10000&_journal_mode=WAL&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Writes are serialized by SQLite anyway, keep the pool small
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		model       TEXT NOT NULL,
		config      TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL,
		started_at  TIMESTAMP NOT NULL,
		finished_at TIMESTAMP,
		epochs      INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS epoch_metrics (
		run_id TEXT NOT NULL REFERENCES runs(id),
		epoch  INTEGER NOT NULL,
		name   TEXT NOT NULL,
		value  REAL NOT NULL,
		PRIMARY KEY (run_id, epoch, name)
	);
	CREATE INDEX IF NOT EXISTS idx_epoch_metrics_run ON epoch_metrics(run_id, name, epoch);
	`
	_, err := s.db.Exec(schema)
	return err
}

// StartRun records the beginning of a training run and returns its ID.
func (s *Store) StartRun(model, configJSON string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO runs (id, model, config, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		id, model, configJSON, StatusRunning, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to record run start: %w", err)
	}
	return id, nil
}

// RecordEpoch stores one epoch's metric values for a run.
func (s *Store) RecordEpoch(runID string, epoch int, logs map[string]float64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for name, value := range logs {
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO epoch_metrics (run_id, epoch, name, value) VALUES (?, ?, ?, ?)`,
			runID, epoch, name, value,
		); err != nil {
			return fmt.Errorf("failed to record metric %s: %w", name, err)
		}
	}

	return tx.Commit()
}

// FinishRun marks a run complete with its final epoch count.
func (s *Store) FinishRun(runID string, epochs int) error {
	result, err := s.db.Exec(
		`UPDATE runs SET status = ?, finished_at = ?, epochs = ? WHERE id = ?`,
		StatusFinished, time.Now().UTC(), epochs, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to record run finish: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// GetRun fetches one run by ID.
func (s *Store) GetRun(runID string) (*Run, error) {
	row := s.db.QueryRow(
		`SELECT id, model, config, status, started_at, COALESCE(finished_at, started_at), epochs
		 FROM runs WHERE id = ?`, runID)

	var run Run
	if err := row.Scan(&run.ID, &run.Model, &run.Config, &run.Status,
		&run.StartedAt, &run.FinishedAt, &run.Epochs); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run %s not found", runID)
		}
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	return &run, nil
}

// ListRuns returns all recorded runs, most recent first.
func (s *Store) ListRuns() ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, model, config, status, started_at, COALESCE(finished_at, started_at), epochs
		 FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Model, &run.Config, &run.Status,
			&run.StartedAt, &run.FinishedAt, &run.Epochs); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// EpochSeries returns the per-epoch series of one metric for a run, in epoch
// order.
func (s *Store) EpochSeries(runID, metric string) ([]float64, error) {
	rows, err := s.db.Query(
		`SELECT value FROM epoch_metrics WHERE run_id = ? AND name = ? ORDER BY epoch`,
		runID, metric)
	if err != nil {
		return nil, fmt.Errorf("failed to load metric series: %w", err)
	}
	defer rows.Close()

	var series []float64
	for rows.Next() {
		var value float64
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("failed to scan metric value: %w", err)
		}
		series = append(series, value)
	}
	return series, rows.Err()
}
