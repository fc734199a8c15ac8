package emit

import (
	"sync"
	"testing"
)

func TestBufferedEmitterStoresEvents(t *testing.T) {
	t.Run("stores events in order", func(t *testing.T) {
		emitter := NewBufferedEmitter()
		emitter.Emit(Event{RunID: "wf-1", Step: 1, NodeID: "generate_code", Msg: "node_complete"})
		emitter.Emit(Event{RunID: "wf-1", Step: 2, NodeID: "evaluate_code", Msg: "node_complete"})

		history := emitter.History("wf-1")
		if len(history) != 2 {
			t.Fatalf("expected 2 events, got %d", len(history))
		}
		if history[0].NodeID != "generate_code" || history[1].NodeID != "evaluate_code" {
			t.Errorf("history = %+v", history)
		}
	})

	t.Run("isolates runs", func(t *testing.T) {
		emitter := NewBufferedEmitter()
		emitter.Emit(Event{RunID: "wf-1", Msg: "a"})
		emitter.Emit(Event{RunID: "wf-2", Msg: "b"})
		emitter.Emit(Event{RunID: "wf-1", Msg: "c"})

		if got := len(emitter.History("wf-1")); got != 2 {
			t.Errorf("wf-1 events = %d, want 2", got)
		}
		if got := len(emitter.History("wf-2")); got != 1 {
			t.Errorf("wf-2 events = %d, want 1", got)
		}
	})

	t.Run("unknown run yields empty slice", func(t *testing.T) {
		emitter := NewBufferedEmitter()
		history := emitter.History("nope")
		if history == nil || len(history) != 0 {
			t.Errorf("history = %v, want empty slice", history)
		}
	})

	t.Run("history is a copy", func(t *testing.T) {
		emitter := NewBufferedEmitter()
		emitter.Emit(Event{RunID: "wf-1", Msg: "original"})

		history := emitter.History("wf-1")
		history[0].Msg = "mutated"

		if emitter.History("wf-1")[0].Msg != "original" {
			t.Error("mutating the returned slice must not affect stored events")
		}
	})
}

func TestBufferedEmitterHistoryWithFilter(t *testing.T) {
	emitter := NewBufferedEmitter()
	events := []Event{
		{RunID: "wf-1", Step: 1, NodeID: "generate_code", Msg: "node_complete"},
		{RunID: "wf-1", Step: 2, NodeID: "evaluate_code", Msg: "node_complete"},
		{RunID: "wf-1", Step: 3, NodeID: "review_code", Msg: "run_suspended"},
		{RunID: "wf-1", Step: 4, NodeID: "review_code", Msg: "node_complete"},
	}
	for _, ev := range events {
		emitter.Emit(ev)
	}

	t.Run("by node", func(t *testing.T) {
		got := emitter.HistoryWithFilter("wf-1", HistoryFilter{NodeID: "review_code"})
		if len(got) != 2 {
			t.Fatalf("got %d events, want 2", len(got))
		}
	})

	t.Run("by message", func(t *testing.T) {
		got := emitter.HistoryWithFilter("wf-1", HistoryFilter{Msg: "run_suspended"})
		if len(got) != 1 || got[0].Step != 3 {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("by step range", func(t *testing.T) {
		lo, hi := 2, 3
		got := emitter.HistoryWithFilter("wf-1", HistoryFilter{MinStep: &lo, MaxStep: &hi})
		if len(got) != 2 || got[0].Step != 2 || got[1].Step != 3 {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("combined filters AND together", func(t *testing.T) {
		lo := 4
		got := emitter.HistoryWithFilter("wf-1", HistoryFilter{
			NodeID:  "review_code",
			Msg:     "node_complete",
			MinStep: &lo,
		})
		if len(got) != 1 || got[0].Step != 4 {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("empty filter matches everything", func(t *testing.T) {
		if got := emitter.HistoryWithFilter("wf-1", HistoryFilter{}); len(got) != 4 {
			t.Fatalf("got %d events, want 4", len(got))
		}
	})
}

func TestBufferedEmitterClear(t *testing.T) {
	emitter := NewBufferedEmitter()
	emitter.Emit(Event{RunID: "wf-1", Msg: "a"})
	emitter.Emit(Event{RunID: "wf-2", Msg: "b"})

	emitter.Clear("wf-1")
	if len(emitter.History("wf-1")) != 0 {
		t.Error("wf-1 should be empty after Clear")
	}
	if len(emitter.History("wf-2")) != 1 {
		t.Error("wf-2 must be untouched")
	}

	emitter.ClearAll()
	if len(emitter.History("wf-2")) != 0 {
		t.Error("ClearAll should drop everything")
	}
}

func TestBufferedEmitterConcurrency(t *testing.T) {
	emitter := NewBufferedEmitter()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				emitter.Emit(Event{RunID: "wf-1", Step: j, Msg: "tick"})
				emitter.History("wf-1")
			}
		}()
	}
	wg.Wait()

	if got := len(emitter.History("wf-1")); got != 1000 {
		t.Errorf("events = %d, want 1000", got)
	}
}

func TestEmitterContracts(_ *testing.T) {
	var _ Emitter = NewBufferedEmitter()
	var _ Emitter = NewLogEmitter(nil, false)
	var _ Emitter = NewNullEmitter()
}
