package store

import (
	"context"
	"errors"
	"testing"
)

type sessionState struct {
	Step  string `json:"step"`
	Count int    `json:"count"`
}

func TestMemStore(t *testing.T) {
	ctx := context.Background()

	t.Run("save and load latest", func(t *testing.T) {
		st := NewMemStore[sessionState]()

		if err := st.SaveStep(ctx, "run-1", 1, "generate", sessionState{Step: "generate", Count: 1}); err != nil {
			t.Fatal(err)
		}
		if err := st.SaveStep(ctx, "run-1", 2, "evaluate", sessionState{Step: "evaluate", Count: 2}); err != nil {
			t.Fatal(err)
		}

		state, step, err := st.LoadLatest(ctx, "run-1")
		if err != nil {
			t.Fatal(err)
		}
		if step != 2 || state.Step != "evaluate" {
			t.Errorf("got step %d state %+v, want step 2 evaluate", step, state)
		}
	})

	t.Run("unknown run", func(t *testing.T) {
		st := NewMemStore[sessionState]()
		_, _, err := st.LoadLatest(ctx, "missing")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("resave replaces a step", func(t *testing.T) {
		st := NewMemStore[sessionState]()
		_ = st.SaveStep(ctx, "run-2", 1, "generate", sessionState{Count: 1})
		_ = st.SaveStep(ctx, "run-2", 1, "generate", sessionState{Count: 9})

		state, _, err := st.LoadLatest(ctx, "run-2")
		if err != nil {
			t.Fatal(err)
		}
		if state.Count != 9 {
			t.Errorf("Count = %d, want 9", state.Count)
		}
	})

	t.Run("checkpoints", func(t *testing.T) {
		st := NewMemStore[sessionState]()
		if err := st.SaveCheckpoint(ctx, "cp-1", sessionState{Step: "review", Count: 3}, 7); err != nil {
			t.Fatal(err)
		}

		state, step, err := st.LoadCheckpoint(ctx, "cp-1")
		if err != nil {
			t.Fatal(err)
		}
		if step != 7 || state.Step != "review" {
			t.Errorf("got step %d state %+v", step, state)
		}

		if _, _, err := st.LoadCheckpoint(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()

	st, err := NewSQLiteStore[sessionState](":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer st.Close()

	t.Run("round trip", func(t *testing.T) {
		if err := st.SaveStep(ctx, "run-1", 1, "generate", sessionState{Step: "generate", Count: 1}); err != nil {
			t.Fatal(err)
		}
		if err := st.SaveStep(ctx, "run-1", 2, "evaluate", sessionState{Step: "evaluate", Count: 2}); err != nil {
			t.Fatal(err)
		}

		state, step, err := st.LoadLatest(ctx, "run-1")
		if err != nil {
			t.Fatal(err)
		}
		if step != 2 || state.Step != "evaluate" || state.Count != 2 {
			t.Errorf("got step %d state %+v", step, state)
		}
	})

	t.Run("upsert on conflict", func(t *testing.T) {
		_ = st.SaveStep(ctx, "run-2", 1, "generate", sessionState{Count: 1})
		if err := st.SaveStep(ctx, "run-2", 1, "generate", sessionState{Count: 5}); err != nil {
			t.Fatal(err)
		}
		state, _, err := st.LoadLatest(ctx, "run-2")
		if err != nil {
			t.Fatal(err)
		}
		if state.Count != 5 {
			t.Errorf("Count = %d, want 5", state.Count)
		}
	})

	t.Run("missing run", func(t *testing.T) {
		if _, _, err := st.LoadLatest(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("checkpoint round trip", func(t *testing.T) {
		if err := st.SaveCheckpoint(ctx, "cp-1", sessionState{Step: "review", Count: 4}, 9); err != nil {
			t.Fatal(err)
		}
		state, step, err := st.LoadCheckpoint(ctx, "cp-1")
		if err != nil {
			t.Fatal(err)
		}
		if step != 9 || state.Count != 4 {
			t.Errorf("got step %d state %+v", step, state)
		}
	})
}
