package review

import (
	"context"
	"fmt"

	"github.com/reviewkata/reviewkata-go/catalog"
	"github.com/reviewkata/reviewkata-go/model"
	"github.com/reviewkata/reviewkata-go/parse"
	"github.com/reviewkata/reviewkata-go/prompt"
)

// Evaluator verifies that an artifact realizes its manifest, via the
// review model role.
type Evaluator struct {
	Model model.Client
}

// NewEvaluator builds an Evaluator over the review client.
func NewEvaluator(client model.Client) *Evaluator {
	return &Evaluator{Model: client}
}

// Evaluate asks the model whether the annotated variant contains every
// manifest defect and normalizes the verdict so that Found and Missing
// always partition the manifest.
//
// Evaluate never returns an error: a model failure or unusable parse
// yields a missing-everything result, which drives the engine onto its
// bounded regeneration path instead of aborting the session.
func (e *Evaluator) Evaluate(ctx context.Context, artifact CodeArtifact, locale catalog.Locale) EvaluationResult {
	p := prompt.Evaluation(artifact.Annotated, artifact.Manifest, locale)

	response, err := e.Model.Invoke(ctx, p)
	if err != nil {
		return missingAll(artifact, fmt.Sprintf("evaluation failed: %v", err))
	}

	verdict := parse.ParseVerdict(response)
	if verdict.Error != "" && len(verdict.FoundErrors) == 0 && !verdict.Valid {
		return missingAll(artifact, "evaluation parse failed")
	}
	return normalize(artifact, verdict)
}

// normalize reconciles a raw verdict against the manifest: found is
// clipped to manifest names and missing is recomputed as the
// complement, so the partition invariant holds regardless of what the
// model returned.
func normalize(artifact CodeArtifact, verdict parse.Verdict) EvaluationResult {
	manifest := artifact.ManifestNames()

	var found []string
	for _, name := range manifest {
		if containsName(verdict.FoundErrors, name) {
			found = append(found, name)
		}
	}
	// A valid verdict with no usable found list means everything.
	if verdict.Valid && len(verdict.FoundErrors) == 0 {
		found = manifest
	}

	var missing []string
	for _, name := range manifest {
		if !containsName(found, name) {
			missing = append(missing, name)
		}
	}

	return EvaluationResult{
		Found:    found,
		Missing:  missing,
		Valid:    len(missing) == 0,
		Feedback: verdict.Feedback,
	}
}

func missingAll(artifact CodeArtifact, feedback string) EvaluationResult {
	return EvaluationResult{
		Missing:  artifact.ManifestNames(),
		Valid:    len(artifact.Manifest) == 0,
		Feedback: feedback,
	}
}

// BuildRegenerationFeedback composes the retry prompt for the
// generative role from a failed evaluation. The engine stores it in
// state and hands it to Generator.Regenerate on the next turn.
func BuildRegenerationFeedback(artifact CodeArtifact, eval EvaluationResult, locale catalog.Locale) string {
	return prompt.Regeneration(artifact.Annotated, artifact.Domain, eval.Missing, eval.Found, artifact.Manifest, locale)
}
