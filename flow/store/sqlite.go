package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists workflow state in a single-file SQLite database.
//
// Designed for single-host deployments and development: zero setup,
// durable across restarts, WAL mode for concurrent readers.
//
// Schema:
//   - session_steps:       per-node execution history
//   - session_checkpoints: named snapshots
//
// Type parameter S must be JSON-serializable.
type SQLiteStore[S any] struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
	path   string
}

// NewSQLiteStore opens (or creates) the database at path and runs the
// schema migration. Use ":memory:" for an ephemeral database.
func NewSQLiteStore[S any](path string) (*SQLiteStore[S], error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	// SQLite allows a single writer; keep one pooled connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	s := &SQLiteStore[S]{db: db, path: path}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore[S]) createTables(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS session_steps (
			run_id     TEXT NOT NULL,
			step       INTEGER NOT NULL,
			node_id    TEXT NOT NULL,
			state      TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (run_id, step)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_session_steps_run
			ON session_steps (run_id, step DESC)`,
		`CREATE TABLE IF NOT EXISTS session_checkpoints (
			checkpoint_id TEXT PRIMARY KEY,
			state         TEXT NOT NULL,
			step          INTEGER NOT NULL,
			created_at    TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveStep persists one execution step. Re-saving the same (run, step)
// replaces the stored state.
func (s *SQLiteStore[S]) SaveStep(ctx context.Context, runID string, step int, nodeID string, state S) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("store is closed")
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO session_steps (run_id, step, node_id, state)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (run_id, step) DO UPDATE SET node_id = excluded.node_id, state = excluded.state`,
		runID, step, nodeID, string(data))
	if err != nil {
		return fmt.Errorf("failed to save step: %w", err)
	}
	return nil
}

// LoadLatest returns the highest-numbered step for the run.
func (s *SQLiteStore[S]) LoadLatest(ctx context.Context, runID string) (S, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var zero S
	if s.closed {
		return zero, 0, fmt.Errorf("store is closed")
	}

	var (
		step int
		data string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT step, state
		FROM session_steps
		WHERE run_id = ?
		ORDER BY step DESC
		LIMIT 1`, runID).Scan(&step, &data)
	if err == sql.ErrNoRows {
		return zero, 0, ErrNotFound
	}
	if err != nil {
		return zero, 0, fmt.Errorf("failed to load latest step: %w", err)
	}

	var state S
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return zero, 0, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return state, step, nil
}

// SaveCheckpoint stores a named snapshot, overwriting any existing one.
func (s *SQLiteStore[S]) SaveCheckpoint(ctx context.Context, cpID string, state S, step int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("store is closed")
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO session_checkpoints (checkpoint_id, state, step)
		VALUES (?, ?, ?)
		ON CONFLICT (checkpoint_id) DO UPDATE SET state = excluded.state, step = excluded.step`,
		cpID, string(data), step)
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint returns a named snapshot.
func (s *SQLiteStore[S]) LoadCheckpoint(ctx context.Context, cpID string) (S, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var zero S
	if s.closed {
		return zero, 0, fmt.Errorf("store is closed")
	}

	var (
		data string
		step int
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT state, step
		FROM session_checkpoints
		WHERE checkpoint_id = ?`, cpID).Scan(&data, &step)
	if err == sql.ErrNoRows {
		return zero, 0, ErrNotFound
	}
	if err != nil {
		return zero, 0, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	var state S
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return zero, 0, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return state, step, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore[S]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
