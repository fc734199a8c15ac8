package emit

// NullEmitter discards all events.
//
// Use it when observability output is not wanted, e.g. in benchmarks or
// when a host process wires its own emitter later.
type NullEmitter struct{}

// NewNullEmitter returns an emitter that drops every event.
func NewNullEmitter() *NullEmitter {
	return &NullEmitter{}
}

// Emit discards the event.
func (n *NullEmitter) Emit(Event) {}
