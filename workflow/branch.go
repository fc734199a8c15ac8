package workflow

// Node IDs of the session graph.
const (
	NodeGenerateCode   = "generate_code"
	NodeEvaluateCode   = "evaluate_code"
	NodeRegenerateCode = "regenerate_code"
	NodeReviewCode     = "review_code"
	NodeAnalyzeReview  = "analyze_review"
	NodeReport         = "generate_comparison_report"
	NodeSummary        = "generate_summary"
)

// regenerateOrReview decides where execution goes after evaluate_code.
// Rules are ordered; the first match wins. The hard attempt bound
// always comes first so an exhausted session can never loop, whatever
// the evaluation said.
func regenerateOrReview(s State) string {
	switch {
	case s.EvaluationAttempts >= s.MaxEvaluationAttempts:
		return NodeReviewCode
	case s.Evaluation != nil && s.Evaluation.Valid:
		return NodeReviewCode
	case s.Phase == PhaseGeneration && s.Evaluation != nil:
		return NodeReviewCode
	case s.Evaluation != nil && len(s.Evaluation.Missing) > 0 && s.EvaluationAttempts < s.MaxEvaluationAttempts:
		return NodeRegenerateCode
	default:
		return NodeReviewCode
	}
}

// continueOrReport decides where execution goes after analyze_review.
// Rules are ordered; the iteration bound always beats sufficiency,
// which beats the all-identified recheck.
func continueOrReport(s State) string {
	switch {
	case s.CurrentIteration > s.MaxIterations:
		return NodeReport
	case s.ReviewSufficient:
		return NodeReport
	case s.Phase == PhaseGeneration:
		return NodeReport
	case allIdentified(s):
		return NodeReport
	case s.CurrentIteration <= s.MaxIterations && (s.Phase == PhaseReview || s.Phase == PhaseFull):
		return NodeReviewCode
	default:
		return NodeReport
	}
}

// allIdentified reports whether the latest analysis found every
// manifest defect. analyze_review sets ReviewSufficient from the same
// condition; this recheck keeps the branch safe even if a caller
// resumes a hand-edited state.
func allIdentified(s State) bool {
	latest := s.LatestAnalysis()
	return latest != nil && latest.TotalProblems > 0 && latest.IdentifiedCount >= latest.TotalProblems
}
