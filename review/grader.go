package review

import (
	"context"
	"regexp"
	"strings"

	"github.com/reviewkata/reviewkata-go/catalog"
	"github.com/reviewkata/reviewkata-go/model"
	"github.com/reviewkata/reviewkata-go/parse"
	"github.com/reviewkata/reviewkata-go/prompt"
)

// reviewLineRef matches one positional finding in a learner review,
// e.g. "Line 12:" or "行 12：".
var reviewLineRef = regexp.MustCompile(`(Line|行)\s*\d+\s*[:：]`)

// HasLineReferences reports whether the review text contains at least
// one positional finding.
func HasLineReferences(reviewText string) bool {
	return reviewLineRef.MatchString(reviewText)
}

// Grader compares learner reviews to the ground-truth manifest, via
// the review model role.
type Grader struct {
	Model model.Client
}

// NewGrader builds a Grader over the review client.
func NewGrader(client model.Client) *Grader {
	return &Grader{Model: client}
}

// AnalyzeReview grades one learner submission. Reviews without a
// single line reference are rejected locally with FormatInvalid set;
// the model is not consulted.
//
// Counts are reconciled against the manifest after parsing: the model
// judges which defects were identified, the grader owns the arithmetic.
func (g *Grader) AnalyzeReview(ctx context.Context, artifact CodeArtifact, reviewText string, locale catalog.Locale) (ReviewAnalysis, error) {
	trimmed := strings.TrimSpace(reviewText)
	if trimmed == "" || !HasLineReferences(trimmed) {
		return formatInvalidAnalysis(artifact), nil
	}

	p := prompt.ReviewAnalysis(artifact.Clean, artifact.Manifest, trimmed, locale)
	response, err := g.Model.Invoke(ctx, p)
	if err != nil {
		return ReviewAnalysis{}, err
	}

	parsed := parse.ParseAnalysis(response)
	return reconcile(artifact, parsed), nil
}

// reconcile derives the canonical counts from the manifest and the
// model's identified list. Admission is manifest-driven: each manifest
// defect counts at most once no matter how often the model repeats it,
// with the first matching entry supplying the justification, so
// Identified and Missed always partition the manifest.
func reconcile(artifact CodeArtifact, parsed parse.Analysis) ReviewAnalysis {
	manifest := artifact.ManifestNames()

	var identified []IdentifiedProblem
	for _, name := range manifest {
		for _, p := range parsed.IdentifiedProblems {
			if matchName(p.Problem, name) {
				identified = append(identified, IdentifiedProblem{
					Problem:       p.Problem,
					Justification: p.Justification,
				})
				break
			}
		}
	}

	identifiedNames := make([]string, len(identified))
	for i, p := range identified {
		identifiedNames[i] = p.Problem
	}

	hints := make(map[string]string, len(parsed.MissedProblems))
	for _, p := range parsed.MissedProblems {
		hints[strings.ToLower(strings.TrimSpace(p.Problem))] = p.Hint
	}

	var missed []MissedProblem
	for _, name := range manifest {
		if !containsName(identifiedNames, name) {
			missed = append(missed, MissedProblem{
				Problem: name,
				Hint:    hints[strings.ToLower(strings.TrimSpace(name))],
			})
		}
	}

	total := len(manifest)
	count := len(identified)
	accuracy := 100.0
	if total > 0 {
		accuracy = float64(count) / float64(total) * 100
	}

	return ReviewAnalysis{
		Identified:      identified,
		Missed:          missed,
		IdentifiedCount: count,
		TotalProblems:   total,
		Accuracy:        accuracy,
		Sufficient:      total > 0 && count == total,
	}
}

func formatInvalidAnalysis(artifact CodeArtifact) ReviewAnalysis {
	manifest := artifact.ManifestNames()
	missed := make([]MissedProblem, len(manifest))
	for i, name := range manifest {
		missed[i] = MissedProblem{Problem: name}
	}
	accuracy := 100.0
	if len(manifest) > 0 {
		accuracy = 0
	}
	return ReviewAnalysis{
		Missed:        missed,
		TotalProblems: len(manifest),
		Accuracy:      accuracy,
		FormatInvalid: true,
	}
}

// sentenceEnd marks sentence boundaries in both supported locales.
var sentenceEnd = regexp.MustCompile(`[^.!?。！？]*[.!?。！？]`)

// trimSentences keeps at most max sentences of text.
func trimSentences(text string, max int) string {
	text = strings.TrimSpace(text)
	sentences := sentenceEnd.FindAllString(text, -1)
	if len(sentences) == 0 || len(sentences) <= max {
		return text
	}
	return strings.TrimSpace(strings.Join(sentences[:max], ""))
}

// GenerateGuidance produces at most four sentences of targeted
// feedback after an insufficient iteration. Failures yield an empty
// string; guidance is advisory and never blocks the session.
func (g *Grader) GenerateGuidance(ctx context.Context, artifact CodeArtifact, reviewText string, analysis ReviewAnalysis, iteration, maxIterations int, locale catalog.Locale) string {
	p := prompt.Guidance(artifact.Clean, artifact.Manifest, reviewText, analysis.MissedNames(), iteration, maxIterations, locale)
	response, err := g.Model.Invoke(ctx, p)
	if err != nil {
		return ""
	}
	return trimSentences(response, 4)
}
