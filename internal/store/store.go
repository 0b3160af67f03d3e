// Package store keeps a history of filter runs in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Run is one execution of the composite filter over one input
type Run struct {
	ID              int64
	InputPath       string
	OutputPath      string
	Threshold       float64
	PixelType       string
	OutputPixelType string
	Width           int
	Height          int
	Duration        time.Duration
	Metrics         map[string]float64
	CreatedAt       time.Time
}

// Store wraps the history database
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		input_path TEXT NOT NULL,
		output_path TEXT,
		threshold REAL NOT NULL,
		pixel_type TEXT NOT NULL,
		output_pixel_type TEXT NOT NULL,
		width INTEGER,
		height INTEGER,
		duration_ms INTEGER,
		metrics TEXT,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_input_path ON runs(input_path);
	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);`

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating runs table: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun inserts run and returns its id
func (s *Store) RecordRun(ctx context.Context, run Run) (int64, error) {
	metrics, err := json.Marshal(run.Metrics)
	if err != nil {
		return 0, fmt.Errorf("error encoding metrics: %w", err)
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	res, err := s.db.ExecContext(ctx, `
	INSERT INTO runs (
		input_path, output_path, threshold, pixel_type, output_pixel_type,
		width, height, duration_ms, metrics, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.InputPath,
		run.OutputPath,
		run.Threshold,
		run.PixelType,
		run.OutputPixelType,
		run.Width,
		run.Height,
		run.Duration.Milliseconds(),
		string(metrics),
		run.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("error inserting run: %w", err)
	}

	return res.LastInsertId()
}

// ListRuns returns up to limit runs, newest first
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, selectRunsSQL+` ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// RunsForInput returns every run recorded for inputPath, newest first
func (s *Store) RunsForInput(ctx context.Context, inputPath string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, selectRunsSQL+` WHERE input_path = ? ORDER BY id DESC`, inputPath)
	if err != nil {
		return nil, fmt.Errorf("error querying runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

const selectRunsSQL = `
	SELECT id, input_path, output_path, threshold, pixel_type, output_pixel_type,
		width, height, duration_ms, metrics, created_at
	FROM runs`

func scanRuns(rows *sql.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		var (
			run        Run
			durationMs int64
			metrics    string
			createdAt  string
		)
		if err := rows.Scan(
			&run.ID,
			&run.InputPath,
			&run.OutputPath,
			&run.Threshold,
			&run.PixelType,
			&run.OutputPixelType,
			&run.Width,
			&run.Height,
			&durationMs,
			&metrics,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning run: %w", err)
		}

		run.Duration = time.Duration(durationMs) * time.Millisecond
		if metrics != "" {
			if err := json.Unmarshal([]byte(metrics), &run.Metrics); err != nil {
				return nil, fmt.Errorf("error decoding metrics for run %d: %w", run.ID, err)
			}
		}
		created, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("error parsing created_at for run %d: %w", run.ID, err)
		}
		run.CreatedAt = created

		runs = append(runs, run)
	}

	return runs, rows.Err()
}
