package emit

// Emitter receives observability events from workflow execution.
//
// Implementations must be safe for concurrent use (distinct workflow
// instances share one emitter) and must never block or panic: a slow or
// failing observability backend must not stall a training session.
type Emitter interface {
	// Emit delivers one event. Errors are handled internally;
	// the engine never observes emission failures.
	Emit(event Event)
}
