package workflow

import (
	"testing"

	"github.com/reviewkata/reviewkata-go/review"
)

func TestRegenerateOrReview(t *testing.T) {
	base := State{
		Phase:                 PhaseFull,
		MaxEvaluationAttempts: 3,
	}

	t.Run("exhausted attempts always win", func(t *testing.T) {
		s := base
		s.EvaluationAttempts = 3
		// Even with a result demanding regeneration.
		s.Evaluation = &review.EvaluationResult{Missing: []string{"A"}}
		if got := regenerateOrReview(s); got != NodeReviewCode {
			t.Errorf("got %s, want review_code", got)
		}
	})

	t.Run("valid beats phase and missing", func(t *testing.T) {
		s := base
		s.EvaluationAttempts = 1
		s.Phase = PhaseGeneration
		s.Evaluation = &review.EvaluationResult{Valid: true}
		if got := regenerateOrReview(s); got != NodeReviewCode {
			t.Errorf("got %s, want review_code", got)
		}
	})

	t.Run("generation phase exits before the retry rule", func(t *testing.T) {
		s := base
		s.Phase = PhaseGeneration
		s.EvaluationAttempts = 1
		s.Evaluation = &review.EvaluationResult{Missing: []string{"A"}}
		if got := regenerateOrReview(s); got != NodeReviewCode {
			t.Errorf("got %s, want review_code", got)
		}
	})

	t.Run("missing defects under the bound regenerate", func(t *testing.T) {
		s := base
		s.EvaluationAttempts = 1
		s.Evaluation = &review.EvaluationResult{Missing: []string{"A"}}
		if got := regenerateOrReview(s); got != NodeRegenerateCode {
			t.Errorf("got %s, want regenerate_code", got)
		}
	})

	t.Run("default is review", func(t *testing.T) {
		s := base
		s.EvaluationAttempts = 1
		s.Evaluation = &review.EvaluationResult{}
		if got := regenerateOrReview(s); got != NodeReviewCode {
			t.Errorf("got %s, want review_code", got)
		}
	})
}

func TestContinueOrReport(t *testing.T) {
	analyzed := func(identified, total int) State {
		a := &review.ReviewAnalysis{IdentifiedCount: identified, TotalProblems: total}
		return State{
			Phase:         PhaseFull,
			MaxIterations: 3,
			ReviewHistory: []review.Attempt{{Iteration: 1, Analysis: a}},
		}
	}

	t.Run("iteration bound always wins", func(t *testing.T) {
		s := analyzed(2, 2)
		s.CurrentIteration = 4
		s.ReviewSufficient = true
		if got := continueOrReport(s); got != NodeReport {
			t.Errorf("got %s, want report", got)
		}
	})

	t.Run("sufficiency beats all-identified recheck", func(t *testing.T) {
		s := analyzed(1, 2)
		s.CurrentIteration = 2
		s.ReviewSufficient = true
		if got := continueOrReport(s); got != NodeReport {
			t.Errorf("got %s, want report", got)
		}
	})

	t.Run("generation phase reports defensively", func(t *testing.T) {
		s := analyzed(0, 2)
		s.CurrentIteration = 2
		s.Phase = PhaseGeneration
		if got := continueOrReport(s); got != NodeReport {
			t.Errorf("got %s, want report", got)
		}
	})

	t.Run("all identified reports even without the flag", func(t *testing.T) {
		s := analyzed(2, 2)
		s.CurrentIteration = 2
		if got := continueOrReport(s); got != NodeReport {
			t.Errorf("got %s, want report", got)
		}
	})

	t.Run("insufficient review continues within the bound", func(t *testing.T) {
		s := analyzed(1, 2)
		s.CurrentIteration = 2
		if got := continueOrReport(s); got != NodeReviewCode {
			t.Errorf("got %s, want review_code", got)
		}
	})

	t.Run("zero problems never count as all identified", func(t *testing.T) {
		s := analyzed(0, 0)
		s.CurrentIteration = 2
		if got := continueOrReport(s); got != NodeReviewCode {
			t.Errorf("got %s, want review_code", got)
		}
	})
}
