// Package store provides persistence for training workflow state.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a run ID or checkpoint ID does not exist.
var ErrNotFound = errors.New("not found")

// Store persists workflow state at node boundaries.
//
// The trainer saves the full state after every node, so a suspended
// session (awaiting a learner review) can be rehydrated in the same
// process or another one. Named checkpoints additionally let a host
// snapshot a session at an interesting point and branch from it.
//
// Implementations: MemStore (tests, single process), SQLiteStore
// (single-file persistence), MySQLStore (shared deployments).
//
// Type parameter S is the state type; it must be JSON-serializable.
type Store[S any] interface {
	// SaveStep persists the state produced by one node execution.
	// step is 1-indexed and unique within a run.
	SaveStep(ctx context.Context, runID string, step int, nodeID string, state S) error

	// LoadLatest returns the most recent state saved for runID, or
	// ErrNotFound if the run has no persisted steps.
	LoadLatest(ctx context.Context, runID string) (state S, step int, err error)

	// SaveCheckpoint snapshots a state under a caller-chosen label.
	// An existing checkpoint with the same label is overwritten.
	SaveCheckpoint(ctx context.Context, cpID string, state S, step int) error

	// LoadCheckpoint returns a previously saved checkpoint, or
	// ErrNotFound if the label is unknown.
	LoadCheckpoint(ctx context.Context, cpID string) (state S, step int, err error)
}

// StepRecord is one persisted execution step.
type StepRecord[S any] struct {
	// Step is the 1-indexed step number.
	Step int `json:"step"`

	// NodeID names the node that produced this state.
	NodeID string `json:"node_id"`

	// State is the workflow state after the node completed.
	State S `json:"state"`
}

// Checkpoint is a named state snapshot.
type Checkpoint[S any] struct {
	ID    string `json:"id"`
	State S      `json:"state"`
	Step  int    `json:"step"`
}
