package flow

import (
	"context"
	"sync"
	"time"

	"github.com/reviewkata/reviewkata-go/flow/emit"
	"github.com/reviewkata/reviewkata-go/flow/store"
)

// Outcome reports how a run ended.
type Outcome int

const (
	// OutcomeCompleted means a node returned a terminal route.
	OutcomeCompleted Outcome = iota

	// OutcomeSuspended means a node suspended the run; the state is
	// persisted and the run can be resumed later.
	OutcomeSuspended
)

// Reducer merges a node's partial state update into the current state.
// It must be deterministic.
type Reducer[S any] func(prev, delta S) S

// Options configures engine execution. Zero values are valid.
type Options struct {
	// MaxSteps bounds a single Run to prevent runaway loops.
	// 0 disables the bound.
	MaxSteps int

	// DefaultNodeTimeout applies to nodes without a per-node override.
	// 0 means unlimited.
	DefaultNodeTimeout time.Duration

	// Metrics, when set, records step latencies and errors.
	Metrics *Metrics
}

// Engine executes a workflow graph one node at a time.
//
// The engine is deliberately sequential: the trainer's contract is
// single-threaded execution per workflow instance, with parallelism
// only across instances. Each step runs a node to completion, merges
// its delta, persists the state and resolves the next hop from the
// node's explicit route or the first matching edge.
//
// Cancellation is honored at node boundaries only: an in-flight node
// finishes (or times out) before ctx.Err() is observed.
type Engine[S any] struct {
	mu sync.RWMutex

	reducer   Reducer[S]
	nodes     map[string]Node[S]
	timeouts  map[string]time.Duration
	edges     []Edge[S]
	startNode string
	store     store.Store[S]
	emitter   emit.Emitter
	opts      Options
}

// New creates an Engine. The reducer and store are required for Run;
// emitter may be nil. Validation happens on Run, not construction.
func New[S any](reducer Reducer[S], st store.Store[S], emitter emit.Emitter, opts Options) *Engine[S] {
	return &Engine[S]{
		reducer:  reducer,
		nodes:    make(map[string]Node[S]),
		timeouts: make(map[string]time.Duration),
		edges:    make([]Edge[S], 0),
		store:    st,
		emitter:  emitter,
		opts:     opts,
	}
}

// Add registers a node under a unique ID.
func (e *Engine[S]) Add(nodeID string, node Node[S]) error {
	if nodeID == "" {
		return &EngineError{Message: "node ID cannot be empty"}
	}
	if node == nil {
		return &EngineError{Message: "node cannot be nil"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.nodes[nodeID]; exists {
		return &EngineError{Message: "duplicate node ID: " + nodeID, Code: "DUPLICATE_NODE"}
	}
	e.nodes[nodeID] = node
	return nil
}

// SetNodeTimeout overrides the default timeout for one node.
func (e *Engine[S]) SetNodeTimeout(nodeID string, d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.timeouts[nodeID] = d
}

// StartAt sets the entry node for Run. The node must already be added.
func (e *Engine[S]) StartAt(nodeID string) error {
	if nodeID == "" {
		return &EngineError{Message: "start node ID cannot be empty"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.nodes[nodeID]; !exists {
		return &EngineError{Message: "start node does not exist: " + nodeID, Code: "NODE_NOT_FOUND"}
	}
	e.startNode = nodeID
	return nil
}

// Connect adds an edge. A nil predicate makes it unconditional. Node
// existence is validated lazily to allow flexible construction order.
func (e *Engine[S]) Connect(from, to string, predicate Predicate[S]) error {
	if from == "" {
		return &EngineError{Message: "from node ID cannot be empty"}
	}
	if to == "" {
		return &EngineError{Message: "to node ID cannot be empty"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.edges = append(e.edges, Edge[S]{From: from, To: to, When: predicate})
	return nil
}

// Run executes from the configured start node until a node stops,
// suspends, errors, or the step bound is hit.
func (e *Engine[S]) Run(ctx context.Context, runID string, initial S) (S, Outcome, error) {
	e.mu.RLock()
	start := e.startNode
	e.mu.RUnlock()

	var zero S
	if start == "" {
		return zero, OutcomeCompleted, &EngineError{
			Message: "start node not set (call StartAt before Run)",
			Code:    "NO_START_NODE",
		}
	}
	return e.RunFrom(ctx, runID, start, initial)
}

// RunFrom executes starting at an explicit node. Used to resume a
// suspended run at the node derived from its persisted state.
func (e *Engine[S]) RunFrom(ctx context.Context, runID, startNode string, initial S) (S, Outcome, error) {
	var zero S

	if e.reducer == nil {
		return zero, OutcomeCompleted, &EngineError{Message: "reducer is required", Code: "MISSING_REDUCER"}
	}
	if e.store == nil {
		return zero, OutcomeCompleted, &EngineError{Message: "store is required", Code: "MISSING_STORE"}
	}
	if startNode == "" {
		return zero, OutcomeCompleted, &EngineError{Message: "start node not specified", Code: "NO_START_NODE"}
	}

	e.mu.RLock()
	_, exists := e.nodes[startNode]
	e.mu.RUnlock()
	if !exists {
		return zero, OutcomeCompleted, &EngineError{Message: "start node does not exist: " + startNode, Code: "NODE_NOT_FOUND"}
	}

	// Continue step numbering from any prior segment of this run so
	// that suspension/resume does not overwrite history.
	step := 0
	if _, lastStep, err := e.store.LoadLatest(ctx, runID); err == nil {
		step = lastStep
	}

	currentState := initial
	currentNode := startNode

	for {
		step++

		if e.opts.MaxSteps > 0 && step > e.opts.MaxSteps {
			return zero, OutcomeCompleted, ErrMaxStepsExceeded
		}

		// Cancellation takes effect at node boundaries only.
		select {
		case <-ctx.Done():
			return zero, OutcomeCompleted, ctx.Err()
		default:
		}

		e.mu.RLock()
		nodeImpl, exists := e.nodes[currentNode]
		override := e.timeouts[currentNode]
		e.mu.RUnlock()
		if !exists {
			return zero, OutcomeCompleted, &EngineError{
				Message: "node not found during execution: " + currentNode,
				Code:    "NODE_NOT_FOUND",
			}
		}

		started := time.Now()
		result, timeoutErr := runNodeWithTimeout(ctx, nodeImpl, currentNode, currentState, override, e.opts.DefaultNodeTimeout)
		elapsed := time.Since(started)

		if e.opts.Metrics != nil {
			status := "success"
			if result.Err != nil || timeoutErr != nil {
				status = "error"
			}
			e.opts.Metrics.ObserveStep(currentNode, status, elapsed)
		}

		if timeoutErr != nil {
			return zero, OutcomeCompleted, timeoutErr
		}
		if result.Err != nil {
			return zero, OutcomeCompleted, &NodeError{
				Message: result.Err.Error(),
				Code:    "NODE_EXECUTION_FAILED",
				NodeID:  currentNode,
				Cause:   result.Err,
			}
		}

		currentState = e.reducer(currentState, result.Delta)

		// Persist a snapshot, not the live value: later nodes mutate
		// shared slices and must not rewrite stored history.
		snapshot, err := DeepCopy(currentState)
		if err != nil {
			return zero, OutcomeCompleted, &EngineError{
				Message: "failed to snapshot state: " + err.Error(),
				Code:    "STORE_ERROR",
			}
		}
		if err := e.store.SaveStep(ctx, runID, step, currentNode, snapshot); err != nil {
			return zero, OutcomeCompleted, &EngineError{
				Message: "failed to save step: " + err.Error(),
				Code:    "STORE_ERROR",
			}
		}

		e.emitEvent(emit.Event{
			RunID:  runID,
			Step:   step,
			NodeID: currentNode,
			Msg:    "node_complete",
			Meta:   map[string]interface{}{"duration_ms": elapsed.Milliseconds()},
		})

		switch {
		case result.Route.Terminal:
			return currentState, OutcomeCompleted, nil

		case result.Route.Suspended:
			if e.opts.Metrics != nil {
				e.opts.Metrics.IncSuspension()
			}
			e.emitEvent(emit.Event{
				RunID:  runID,
				NodeID: currentNode,
				Msg:    "run_suspended",
			})
			return currentState, OutcomeSuspended, nil

		case result.Route.To != "":
			currentNode = result.Route.To

		default:
			nextNode := e.evaluateEdges(currentNode, currentState)
			if nextNode == "" {
				return zero, OutcomeCompleted, &EngineError{
					Message: ErrNoRoute.Error() + ": " + currentNode,
					Code:    "NO_ROUTE",
				}
			}
			currentNode = nextNode
		}
	}
}

// evaluateEdges returns the destination of the first matching edge out
// of fromNode, or "" when none match.
func (e *Engine[S]) evaluateEdges(fromNode string, state S) string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, edge := range e.edges {
		if edge.From != fromNode {
			continue
		}
		if edge.When == nil || edge.When(state) {
			return edge.To
		}
	}
	return ""
}

// SaveCheckpoint snapshots the latest persisted state of a run under a
// caller-chosen label.
func (e *Engine[S]) SaveCheckpoint(ctx context.Context, runID, cpID string) error {
	latestState, latestStep, err := e.store.LoadLatest(ctx, runID)
	if err != nil {
		return &EngineError{
			Message: "cannot create checkpoint: run state not found: " + err.Error(),
			Code:    "RUN_NOT_FOUND",
		}
	}

	if err := e.store.SaveCheckpoint(ctx, cpID, latestState, latestStep); err != nil {
		return &EngineError{
			Message: "failed to save checkpoint: " + err.Error(),
			Code:    "CHECKPOINT_SAVE_FAILED",
		}
	}

	e.emitEvent(emit.Event{
		RunID: runID,
		Step:  latestStep,
		Msg:   "checkpoint_saved",
		Meta:  map[string]interface{}{"checkpoint_id": cpID},
	})
	return nil
}

// ResumeFrom loads a checkpoint and continues execution under a new run
// ID, starting at the given node.
func (e *Engine[S]) ResumeFrom(ctx context.Context, cpID, newRunID, startNode string) (S, Outcome, error) {
	var zero S

	checkpointState, checkpointStep, err := e.store.LoadCheckpoint(ctx, cpID)
	if err != nil {
		return zero, OutcomeCompleted, &EngineError{
			Message: "cannot resume: checkpoint not found: " + err.Error(),
			Code:    "CHECKPOINT_NOT_FOUND",
		}
	}

	e.emitEvent(emit.Event{
		RunID:  newRunID,
		NodeID: startNode,
		Msg:    "resuming_from_checkpoint",
		Meta: map[string]interface{}{
			"checkpoint_id":   cpID,
			"checkpoint_step": checkpointStep,
		},
	})

	return e.RunFrom(ctx, newRunID, startNode, checkpointState)
}

func (e *Engine[S]) emitEvent(event emit.Event) {
	if e.emitter != nil {
		e.emitter.Emit(event)
	}
}
