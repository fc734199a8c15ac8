package flow

import (
	"encoding/json"
	"fmt"
)

// DeepCopy clones a state value through a JSON round trip.
//
// Works for any state with exported, JSON-serializable fields, which
// the trainer's state guarantees (the same representation is used for
// persistence). Unexported fields and non-JSON types are not copied.
func DeepCopy[S any](state S) (S, error) {
	var zero S

	data, err := json.Marshal(state)
	if err != nil {
		return zero, fmt.Errorf("failed to marshal state: %w", err)
	}

	var copied S
	if err := json.Unmarshal(data, &copied); err != nil {
		return zero, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return copied, nil
}
