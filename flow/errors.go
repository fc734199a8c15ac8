package flow

import "errors"

// ErrMaxStepsExceeded indicates the run hit the MaxSteps bound without
// reaching a terminal or suspended node.
var ErrMaxStepsExceeded = errors.New("execution exceeded maximum steps limit")

// ErrNoRoute indicates a node finished without an explicit route and no
// edge predicate matched the state.
var ErrNoRoute = errors.New("no valid route from node")

// EngineError is a structured engine failure.
type EngineError struct {
	Message string
	Code    string
}

func (e *EngineError) Error() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}

// NodeError wraps a failure raised while executing a specific node.
type NodeError struct {
	Message string
	Code    string
	NodeID  string
	Cause   error
}

func (e *NodeError) Error() string {
	if e.NodeID != "" {
		return "node " + e.NodeID + ": " + e.Message
	}
	return e.Message
}

func (e *NodeError) Unwrap() error {
	return e.Cause
}
