package store

import (
	"context"
	"sync"
)

// MemStore is an in-memory Store implementation.
//
// Suitable for tests and single-process sessions where persistence
// across restarts is not required. Thread-safe.
type MemStore[S any] struct {
	mu          sync.RWMutex
	steps       map[string][]StepRecord[S]
	checkpoints map[string]Checkpoint[S]
}

// NewMemStore creates an empty in-memory store.
func NewMemStore[S any]() *MemStore[S] {
	return &MemStore[S]{
		steps:       make(map[string][]StepRecord[S]),
		checkpoints: make(map[string]Checkpoint[S]),
	}
}

// SaveStep records the step. Re-saving the same (run, step) replaces
// the stored state, matching the SQL-backed stores.
func (m *MemStore[S]) SaveStep(_ context.Context, runID string, step int, nodeID string, state S) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record := StepRecord[S]{Step: step, NodeID: nodeID, State: state}
	for i, existing := range m.steps[runID] {
		if existing.Step == step {
			m.steps[runID][i] = record
			return nil
		}
	}
	m.steps[runID] = append(m.steps[runID], record)
	return nil
}

// LoadLatest returns the record with the highest step number.
func (m *MemStore[S]) LoadLatest(_ context.Context, runID string) (S, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := m.steps[runID]
	if len(records) == 0 {
		var zero S
		return zero, 0, ErrNotFound
	}

	latest := records[0]
	for _, record := range records[1:] {
		if record.Step > latest.Step {
			latest = record
		}
	}
	return latest.State, latest.Step, nil
}

// SaveCheckpoint stores a named snapshot, overwriting any existing one.
func (m *MemStore[S]) SaveCheckpoint(_ context.Context, cpID string, state S, step int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.checkpoints[cpID] = Checkpoint[S]{ID: cpID, State: state, Step: step}
	return nil
}

// LoadCheckpoint returns a named snapshot.
func (m *MemStore[S]) LoadCheckpoint(_ context.Context, cpID string) (S, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cp, ok := m.checkpoints[cpID]
	if !ok {
		var zero S
		return zero, 0, ErrNotFound
	}
	return cp.State, cp.Step, nil
}
