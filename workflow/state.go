// Package workflow drives a training session through its graph: code
// generation and bounded evaluation retries, suspension while a
// learner writes a review, grading iterations and the final report.
package workflow

import (
	"github.com/reviewkata/reviewkata-go/catalog"
	"github.com/reviewkata/reviewkata-go/prompt"
	"github.com/reviewkata/reviewkata-go/review"
)

// Phase selects which halves of the session run.
type Phase string

const (
	// PhaseGeneration runs generation and evaluation only.
	PhaseGeneration Phase = "generation"

	// PhaseReview runs the review loop over an existing artifact.
	PhaseReview Phase = "review"

	// PhaseFull runs both loops end to end.
	PhaseFull Phase = "full"
)

// Step names the position of a session inside the graph. Serialized as
// lowercase strings.
type Step string

const (
	StepGenerate   Step = "generate"
	StepEvaluate   Step = "evaluate"
	StepRegenerate Step = "regenerate"
	StepReview     Step = "review"
	StepAnalyze    Step = "analyze"
	StepReport     Step = "report"
	StepComplete   Step = "complete"
)

// ErrCancelled is the terminal error value a cancelled session carries.
const ErrCancelled = "cancelled"

// State is the complete, serializable session state. Every node is a
// State to State transform; the engine persists the state at each node
// boundary, so a session survives process restarts at any of them.
type State struct {
	WorkflowID string `json:"workflow_id"`

	Phase       Phase          `json:"phase"`
	CurrentStep Step           `json:"current_step"`
	Locale      catalog.Locale `json:"locale"`

	Selection  catalog.Selection  `json:"selection"`
	Length     prompt.Length      `json:"length"`
	Difficulty catalog.Difficulty `json:"difficulty"`
	Domain     string             `json:"domain,omitempty"`

	Artifact              *review.CodeArtifact     `json:"code_artifact,omitempty"`
	Evaluation            *review.EvaluationResult `json:"evaluation_result,omitempty"`
	EvaluationAttempts    int                      `json:"evaluation_attempts"`
	MaxEvaluationAttempts int                      `json:"max_evaluation_attempts"`
	FeedbackPrompt        string                   `json:"feedback_prompt,omitempty"`

	ReviewHistory    []review.Attempt `json:"review_history"`
	PendingReview    string           `json:"pending_review,omitempty"`
	CurrentIteration int              `json:"current_iteration"`
	MaxIterations    int              `json:"max_iterations"`
	ReviewSufficient bool             `json:"review_sufficient"`

	Report  *review.ComparisonReport `json:"comparison_report,omitempty"`
	Summary string                   `json:"summary,omitempty"`
	Error   string                   `json:"error,omitempty"`
}

// Terminal reports whether the session has stopped for good.
func (s State) Terminal() bool {
	return s.CurrentStep == StepComplete || s.Error != ""
}

// Suspended reports whether the session awaits a learner review.
func (s State) Suspended() bool {
	return !s.Terminal() && s.CurrentStep == StepReview && s.PendingReview == ""
}

// LatestAttempt returns the most recent review attempt, or nil.
func (s *State) LatestAttempt() *review.Attempt {
	if len(s.ReviewHistory) == 0 {
		return nil
	}
	return &s.ReviewHistory[len(s.ReviewHistory)-1]
}

// LatestAnalysis returns the most recent attached analysis, or nil.
func (s *State) LatestAnalysis() *review.ReviewAnalysis {
	for i := len(s.ReviewHistory) - 1; i >= 0; i-- {
		if s.ReviewHistory[i].Analysis != nil {
			return s.ReviewHistory[i].Analysis
		}
	}
	return nil
}

// fail moves the state to its terminal error form.
func (s State) fail(msg string) State {
	s.Error = msg
	s.CurrentStep = StepComplete
	return s
}

// StatusView is the derived projection returned by Engine.Status.
type StatusView struct {
	Step               Step  `json:"step"`
	Phase              Phase `json:"phase"`
	HasArtifact        bool  `json:"has_artifact"`
	EvaluationAttempts int   `json:"evaluation_attempts"`
	CurrentIteration   int   `json:"current_iteration"`
	ReviewSufficient   bool  `json:"review_sufficient"`
	HasError           bool  `json:"has_error"`
}
