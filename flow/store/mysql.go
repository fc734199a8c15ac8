package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLStore persists workflow state in MySQL/MariaDB.
//
// Use it when sessions must survive across hosts, e.g. a fleet of web
// frontends sharing one training backend. Connection pooling and
// upsert semantics match the SQLite implementation.
//
// DSN format (github.com/go-sql-driver/mysql):
//
//	user:password@tcp(localhost:3306)/reviewkata?parseTime=true
//
// Credentials should come from the environment, never source code.
type MySQLStore[S any] struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewMySQLStore opens a pooled connection, verifies it with a ping and
// runs the schema migration.
func NewMySQLStore[S any](dsn string) (*MySQLStore[S], error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	s := &MySQLStore[S]{db: db}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (s *MySQLStore[S]) createTables(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS session_steps (
			run_id     VARCHAR(128) NOT NULL,
			step       INT NOT NULL,
			node_id    VARCHAR(128) NOT NULL,
			state      JSON NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (run_id, step),
			INDEX idx_session_steps_run (run_id, step DESC)
		)`,
		`CREATE TABLE IF NOT EXISTS session_checkpoints (
			checkpoint_id VARCHAR(128) PRIMARY KEY,
			state         JSON NOT NULL,
			step          INT NOT NULL,
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

// SaveStep persists one execution step, replacing any previous state
// stored for the same (run, step).
func (s *MySQLStore[S]) SaveStep(ctx context.Context, runID string, step int, nodeID string, state S) error {
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
		ON DUPLICATE KEY UPDATE node_id = VALUES(node_id), state = VALUES(state)`,
		runID, step, nodeID, string(data))
	if err != nil {
		return fmt.Errorf("failed to save step: %w", err)
	}
	return nil
}

// LoadLatest returns the highest-numbered step for the run.
func (s *MySQLStore[S]) LoadLatest(ctx context.Context, runID string) (S, int, error) {
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
func (s *MySQLStore[S]) SaveCheckpoint(ctx context.Context, cpID string, state S, step int) error {
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
		ON DUPLICATE KEY UPDATE state = VALUES(state), step = VALUES(step)`,
		cpID, string(data), step)
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint returns a named snapshot.
func (s *MySQLStore[S]) LoadCheckpoint(ctx context.Context, cpID string) (S, int, error) {
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

// Close releases the connection pool.
func (s *MySQLStore[S]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
