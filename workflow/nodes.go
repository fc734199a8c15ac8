package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/reviewkata/reviewkata-go/flow"
	"github.com/reviewkata/reviewkata-go/review"
)

// nodes bundles the model-backed components the graph calls into.
type nodes struct {
	generator *review.Generator
	evaluator *review.Evaluator
	grader    *review.Grader
	reporter  *review.Reporter
}

func result(s State, route flow.Next) flow.NodeResult[State] {
	return flow.NodeResult[State]{Delta: s, Route: route}
}

// generateCode resolves the defect selection and produces the first
// artifact. Model failures here terminate the session; there is no
// automatic retry on initial generation.
func (n *nodes) generateCode(ctx context.Context, s State) flow.NodeResult[State] {
	s.CurrentStep = StepGenerate

	artifact, err := n.generator.Generate(ctx, s.Selection, s.Length, s.Difficulty, s.Locale, s.Domain)
	if err != nil {
		return result(s.fail("generation failed: "+err.Error()), flow.Stop())
	}

	s.Artifact = &artifact
	s.Domain = artifact.Domain
	return result(s, flow.Goto(NodeEvaluateCode))
}

// evaluateCode verifies the artifact against its manifest. The attempt
// counter increments here, exactly once per invocation and before the
// outgoing branch is evaluated.
func (n *nodes) evaluateCode(ctx context.Context, s State) flow.NodeResult[State] {
	s.CurrentStep = StepEvaluate

	if s.Artifact == nil {
		return result(s.fail("evaluation requires an artifact"), flow.Stop())
	}

	res := n.evaluator.Evaluate(ctx, *s.Artifact, s.Locale)
	s.Evaluation = &res
	s.EvaluationAttempts++

	if !res.Valid {
		s.FeedbackPrompt = review.BuildRegenerationFeedback(*s.Artifact, res, s.Locale)
	}
	return result(s, flow.Next{})
}

// regenerateCode replaces the artifact using the feedback prompt the
// prior evaluation stored. It never touches the attempt counter.
func (n *nodes) regenerateCode(ctx context.Context, s State) flow.NodeResult[State] {
	s.CurrentStep = StepRegenerate

	// The branch should never send an exhausted session here, but a
	// resumed or hand-edited state might arrive that way.
	if s.EvaluationAttempts >= s.MaxEvaluationAttempts {
		return result(s, flow.Goto(NodeReviewCode))
	}
	if s.Artifact == nil {
		return result(s.fail("regeneration requires an artifact"), flow.Stop())
	}

	artifact, err := n.generator.Regenerate(ctx, *s.Artifact, s.FeedbackPrompt)
	if err != nil {
		return result(s.fail("regeneration failed: "+err.Error()), flow.Stop())
	}

	s.Artifact = &artifact
	return result(s, flow.Goto(NodeEvaluateCode))
}

// reviewCode is the suspension point. Without a pending submission the
// session halts here; with one, the submission becomes a new attempt
// and control moves on to analysis.
func (n *nodes) reviewCode(_ context.Context, s State) flow.NodeResult[State] {
	s.CurrentStep = StepReview

	if strings.TrimSpace(s.PendingReview) == "" {
		return result(s, flow.Suspend())
	}

	s.ReviewHistory = append(s.ReviewHistory, review.Attempt{
		Iteration:  s.CurrentIteration,
		ReviewText: s.PendingReview,
	})
	s.PendingReview = ""
	s.CurrentStep = StepAnalyze
	return result(s, flow.Goto(NodeAnalyzeReview))
}

// analyzeReview grades the latest attempt. The iteration counter
// increments here, exactly once and after the analysis is attached.
// Guidance is produced only when the session will loop back for
// another attempt.
func (n *nodes) analyzeReview(ctx context.Context, s State) flow.NodeResult[State] {
	s.CurrentStep = StepAnalyze

	attempt := s.LatestAttempt()
	if attempt == nil || s.Artifact == nil {
		return result(s.fail("no review attempt to analyze"), flow.Stop())
	}

	analysis, err := n.grader.AnalyzeReview(ctx, *s.Artifact, attempt.ReviewText, s.Locale)
	if err != nil {
		return result(s.fail("review analysis failed: "+err.Error()), flow.Stop())
	}

	if attempt.Analysis == nil {
		attempt.Analysis = &analysis
	}
	// allIdentified covers restored states whose stored analysis found
	// everything but whose flag was lost, so the branch and the flag can
	// never disagree on the way to the report.
	if analysis.Sufficient || allIdentified(s) {
		s.ReviewSufficient = true
	}
	s.CurrentIteration++

	if continueOrReport(s) == NodeReviewCode {
		attempt.Guidance = n.grader.GenerateGuidance(ctx, *s.Artifact, attempt.ReviewText, analysis, attempt.Iteration, s.MaxIterations, s.Locale)
	}
	return result(s, flow.Next{})
}

// generateReport produces the final comparison report. The reporter
// never fails; a session with no graded attempt gets a report built
// from an all-missed analysis.
func (n *nodes) generateReport(ctx context.Context, s State) flow.NodeResult[State] {
	s.CurrentStep = StepReport

	if s.Artifact == nil {
		return result(s.fail("report requires an artifact"), flow.Stop())
	}

	analysis := s.LatestAnalysis()
	if analysis == nil {
		a := emptyAnalysis(*s.Artifact)
		analysis = &a
	}

	rep := n.reporter.BuildComparisonReport(ctx, *s.Artifact, *analysis, s.ReviewHistory, s.Locale)
	s.Report = &rep
	return result(s, flow.Goto(NodeSummary))
}

// generateSummary finalizes the session.
func (n *nodes) generateSummary(_ context.Context, s State) flow.NodeResult[State] {
	s.CurrentStep = StepComplete
	s.Summary = composeSummary(s)
	return result(s, flow.Stop())
}

func emptyAnalysis(artifact review.CodeArtifact) review.ReviewAnalysis {
	missed := make([]review.MissedProblem, len(artifact.Manifest))
	for i, d := range artifact.Manifest {
		missed[i] = review.MissedProblem{Problem: d.Name}
	}
	accuracy := 100.0
	if len(artifact.Manifest) > 0 {
		accuracy = 0
	}
	return review.ReviewAnalysis{
		Missed:        missed,
		TotalProblems: len(artifact.Manifest),
		Accuracy:      accuracy,
	}
}

func composeSummary(s State) string {
	var identified, total int
	var accuracy float64
	switch {
	case s.Report != nil:
		identified = s.Report.PerformanceSummary.IdentifiedCount
		total = s.Report.PerformanceSummary.TotalProblems
		accuracy = s.Report.PerformanceSummary.Accuracy
	case s.LatestAnalysis() != nil:
		a := s.LatestAnalysis()
		identified, total, accuracy = a.IdentifiedCount, a.TotalProblems, a.Accuracy
	default:
		return "Session finished without a graded review."
	}
	return fmt.Sprintf("Identified %d of %d defects (%.1f%%) across %d review attempt(s).",
		identified, total, accuracy, len(s.ReviewHistory))
}
