package model

import (
	"context"
	"sync"
)

// Mock is a test Client that replays scripted responses.
//
// Each Invoke returns the next entry in Responses; when all responses
// are consumed the last one repeats. If Err is set it is returned
// instead. Every call is recorded in Calls.
//
// Example:
//
//	mock := &model.Mock{Responses: []string{"first", "second"}}
//	out, _ := mock.Invoke(ctx, "prompt") // "first"
//	out, _ = mock.Invoke(ctx, "prompt")  // "second"
type Mock struct {
	// Responses is the ordered script of replies.
	Responses []string

	// Errs, when non-empty, is consumed in lockstep with calls: call N
	// fails with Errs[N] when that entry is non-nil. Shorter than the
	// call count means later calls succeed.
	Errs []error

	// Err, if set, is returned by every Invoke. Overrides Errs.
	Err error

	// Calls records every prompt received.
	Calls []string

	mu    sync.Mutex
	index int
}

// Invoke implements Client.
func (m *Mock) Invoke(ctx context.Context, prompt string) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	call := len(m.Calls)
	m.Calls = append(m.Calls, prompt)

	if m.Err != nil {
		return "", m.Err
	}
	if call < len(m.Errs) && m.Errs[call] != nil {
		return "", m.Errs[call]
	}
	if len(m.Responses) == 0 {
		return "", nil
	}

	response := m.Responses[m.index]
	if m.index < len(m.Responses)-1 {
		m.index++
	}
	return response, nil
}

// CallCount returns how many times Invoke was called.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
