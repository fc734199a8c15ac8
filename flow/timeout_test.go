package flow

import (
	"context"
	"testing"
	"time"

	"github.com/reviewkata/reviewkata-go/flow/store"
)

func TestNodeTimeout(t *testing.T) {
	t.Run("override beats default", func(t *testing.T) {
		if got := nodeTimeout(time.Second, time.Minute); got != time.Second {
			t.Errorf("nodeTimeout = %v, want 1s", got)
		}
	})

	t.Run("default applies without override", func(t *testing.T) {
		if got := nodeTimeout(0, time.Minute); got != time.Minute {
			t.Errorf("nodeTimeout = %v, want 1m", got)
		}
	})

	t.Run("zero means unlimited", func(t *testing.T) {
		if got := nodeTimeout(0, 0); got != 0 {
			t.Errorf("nodeTimeout = %v, want 0", got)
		}
	})
}

func TestEngineNodeTimeout(t *testing.T) {
	e := New(testReducer, store.NewMemStore[testState](), nil, Options{MaxSteps: 10})

	_ = e.Add("slow", NodeFunc[testState](func(ctx context.Context, s testState) NodeResult[testState] {
		select {
		case <-time.After(time.Second):
		case <-ctx.Done():
		}
		return NodeResult[testState]{Route: Stop()}
	}))
	e.SetNodeTimeout("slow", 10*time.Millisecond)
	_ = e.StartAt("slow")

	_, _, err := e.Run(context.Background(), "run-timeout", testState{})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	engineErr, ok := err.(*EngineError)
	if !ok || engineErr.Code != "NODE_TIMEOUT" {
		t.Fatalf("err = %v, want NODE_TIMEOUT EngineError", err)
	}
}
