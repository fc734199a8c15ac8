// Package emit provides pluggable observability for workflow execution.
package emit

// Event is a single observability record produced while a training
// workflow advances.
//
// Events describe node execution, suspension, resumption, model
// invocations and catalog telemetry. They are delivered to an Emitter
// which may log, buffer, trace or discard them.
type Event struct {
	// RunID identifies the workflow instance that produced the event.
	RunID string

	// Step is the sequential engine step (1-indexed). Zero for
	// run-level events such as suspension or cancellation.
	Step int

	// NodeID names the workflow node involved, if any.
	NodeID string

	// Msg is a short machine-oriented description, e.g. "node_complete",
	// "run_suspended", "usage_record_dropped".
	Msg string

	// Meta carries additional structured fields. Common keys:
	//   "duration_ms"  node execution time
	//   "error"        error text
	//   "role"         model role for invocation events
	//   "attempt"      evaluation attempt number
	Meta map[string]interface{}
}
