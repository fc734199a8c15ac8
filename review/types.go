// Package review implements the model-backed training components:
// code generation, artifact evaluation, review grading and final
// reporting. Each component composes a prompt, invokes one model role
// and normalizes the parsed response against the artifact's manifest.
package review

import (
	"strings"

	"github.com/reviewkata/reviewkata-go/catalog"
)

// CodeArtifact is one generated source file with its defect manifest.
// Artifacts are replaced wholesale on regeneration, never mutated.
type CodeArtifact struct {
	Annotated     string               `json:"annotated"`
	Clean         string               `json:"clean"`
	Manifest      []catalog.DefectInfo `json:"manifest"`
	ExpectedCount int                  `json:"expected_count"`
	Domain        string               `json:"domain"`
}

// ManifestNames returns the defect display names in manifest order.
func (a CodeArtifact) ManifestNames() []string {
	names := make([]string, len(a.Manifest))
	for i, d := range a.Manifest {
		names[i] = d.Name
	}
	return names
}

// EvaluationResult is the verdict on whether an artifact realizes its
// manifest. Found and Missing partition the manifest names.
type EvaluationResult struct {
	Found    []string `json:"found_errors"`
	Missing  []string `json:"missing_errors"`
	Valid    bool     `json:"valid"`
	Feedback string   `json:"feedback,omitempty"`
}

// IdentifiedProblem is one defect the learner found, with the model's
// justification for counting it.
type IdentifiedProblem struct {
	Problem       string `json:"problem"`
	Justification string `json:"justification,omitempty"`
}

// MissedProblem is one defect the learner missed, with a nudging hint.
type MissedProblem struct {
	Problem string `json:"problem"`
	Hint    string `json:"hint,omitempty"`
}

// ReviewAnalysis is a graded learner review.
type ReviewAnalysis struct {
	Identified      []IdentifiedProblem `json:"identified_problems"`
	Missed          []MissedProblem     `json:"missed_problems"`
	IdentifiedCount int                 `json:"identified_count"`
	TotalProblems   int                 `json:"total_problems"`
	Accuracy        float64             `json:"accuracy"`
	Sufficient      bool                `json:"review_sufficient"`
	FormatInvalid   bool                `json:"format_invalid,omitempty"`
}

// IdentifiedNames returns the identified defect names.
func (a ReviewAnalysis) IdentifiedNames() []string {
	names := make([]string, len(a.Identified))
	for i, p := range a.Identified {
		names[i] = p.Problem
	}
	return names
}

// MissedNames returns the missed defect names.
func (a ReviewAnalysis) MissedNames() []string {
	names := make([]string, len(a.Missed))
	for i, p := range a.Missed {
		names[i] = p.Problem
	}
	return names
}

// Attempt is one learner submission in the review history. Analysis is
// attached once by the grader and never overwritten.
type Attempt struct {
	Iteration  int             `json:"iteration_number"`
	ReviewText string          `json:"review_text"`
	Analysis   *ReviewAnalysis `json:"analysis,omitempty"`
	Guidance   string          `json:"guidance,omitempty"`
}

// PerformanceSummary is the counts section of the final report.
type PerformanceSummary struct {
	IdentifiedCount int     `json:"identified_count"`
	TotalProblems   int     `json:"total_problems"`
	Accuracy        float64 `json:"accuracy"`
	IterationsUsed  int     `json:"iterations_used"`
}

// FeedbackItem is one per-defect comment in the final report.
type FeedbackItem struct {
	Problem string `json:"problem"`
	Comment string `json:"comment"`
}

// ComparisonReport is the final educational report.
type ComparisonReport struct {
	PerformanceSummary  PerformanceSummary `json:"performance_summary"`
	CorrectlyIdentified []string           `json:"correctly_identified"`
	MissedProblems      []string           `json:"missed_problems"`
	ImprovementTips     []string           `json:"improvement_tips"`
	LanguageGuidance    []string           `json:"language_specific_guidance"`
	Encouragement       string             `json:"encouragement"`
	DetailedFeedback    []FeedbackItem     `json:"detailed_feedback"`
}

// matchName compares defect names the way the normalizers do:
// case-insensitive after trimming.
func matchName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// containsName reports whether names contains target under matchName.
func containsName(names []string, target string) bool {
	for _, n := range names {
		if matchName(n, target) {
			return true
		}
	}
	return false
}
