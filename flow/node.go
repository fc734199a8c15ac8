package flow

import "context"

// Node is one processing unit in a workflow graph. It receives the
// current state, performs its work (model calls, catalog reads, pure
// transforms) and returns a NodeResult describing the state update and
// where execution goes next.
type Node[S any] interface {
	Run(ctx context.Context, state S) NodeResult[S]
}

// NodeResult is the output of one node execution.
type NodeResult[S any] struct {
	// Delta is the partial state update, merged into the current
	// state by the engine's reducer.
	Delta S

	// Route decides the next hop: Goto, Stop or Suspend.
	Route Next

	// Err is an engine-level failure. Domain failures (model errors,
	// invalid reviews) belong in the state, not here; a non-nil Err
	// aborts the run.
	Err error
}

// Next selects the next step after a node completes.
//
// Exactly one of the three modes applies:
//   - To: continue at the named node
//   - Terminal: the workflow is finished
//   - Suspended: stop advancing but keep the run resumable; used by
//     the review node while it waits for a learner submission
type Next struct {
	To        string `json:"to,omitempty"`
	Terminal  bool   `json:"terminal,omitempty"`
	Suspended bool   `json:"suspended,omitempty"`
}

// Stop returns a terminal route.
func Stop() Next {
	return Next{Terminal: true}
}

// Goto routes to the named node.
func Goto(nodeID string) Next {
	return Next{To: nodeID}
}

// Suspend halts the run without terminating it. The engine returns the
// current state with OutcomeSuspended; the caller resumes later by
// running again from a node derived from that state.
func Suspend() Next {
	return Next{Suspended: true}
}

// NodeFunc adapts a plain function to the Node interface.
type NodeFunc[S any] func(ctx context.Context, state S) NodeResult[S]

// Run implements Node.
func (f NodeFunc[S]) Run(ctx context.Context, state S) NodeResult[S] {
	return f(ctx, state)
}
