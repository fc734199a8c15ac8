package review

import (
	"context"
	"fmt"

	"github.com/reviewkata/reviewkata-go/catalog"
	"github.com/reviewkata/reviewkata-go/model"
	"github.com/reviewkata/reviewkata-go/parse"
	"github.com/reviewkata/reviewkata-go/prompt"
)

// Reporter produces the final comparison report via the summary model
// role. It never returns an error: any failure falls back to a
// deterministic report assembled from the analysis counts.
type Reporter struct {
	Model model.Client
}

// NewReporter builds a Reporter over the summary client.
func NewReporter(client model.Client) *Reporter {
	return &Reporter{Model: client}
}

// BuildComparisonReport composes the report prompt from the latest
// analysis and the review history, invokes the summary model and
// decodes the result. The performance summary is always recomputed
// locally so its counts agree with the analysis regardless of what the
// model returned.
func (r *Reporter) BuildComparisonReport(ctx context.Context, artifact CodeArtifact, analysis ReviewAnalysis, history []Attempt, locale catalog.Locale) ComparisonReport {
	summary := PerformanceSummary{
		IdentifiedCount: analysis.IdentifiedCount,
		TotalProblems:   analysis.TotalProblems,
		Accuracy:        analysis.Accuracy,
		IterationsUsed:  len(history),
	}

	p := prompt.ComparisonReport(
		artifact.Manifest,
		analysis.IdentifiedNames(), analysis.MissedNames(),
		summary.IdentifiedCount, summary.TotalProblems, summary.IterationsUsed,
		summary.Accuracy, locale)

	response, err := r.Model.Invoke(ctx, p)
	if err != nil {
		return fallbackReport(summary, analysis, locale)
	}

	parsed := parse.ParseReport(response)
	if parsed.Error != "" {
		return fallbackReport(summary, analysis, locale)
	}

	report := ComparisonReport{
		PerformanceSummary:  summary,
		CorrectlyIdentified: parsed.CorrectlyIdentified,
		MissedProblems:      parsed.MissedProblems,
		ImprovementTips:     parsed.ImprovementTips,
		LanguageGuidance:    parsed.LanguageGuidance,
		Encouragement:       parsed.Encouragement,
	}
	if len(report.CorrectlyIdentified) == 0 {
		report.CorrectlyIdentified = analysis.IdentifiedNames()
	}
	if len(report.MissedProblems) == 0 {
		report.MissedProblems = analysis.MissedNames()
	}
	for _, item := range parsed.DetailedFeedback {
		report.DetailedFeedback = append(report.DetailedFeedback, FeedbackItem{
			Problem: item.Problem,
			Comment: item.Comment,
		})
	}
	return report
}

// fallbackReport is the deterministic report used when the summary
// model is unavailable or its output cannot be decoded.
func fallbackReport(summary PerformanceSummary, analysis ReviewAnalysis, locale catalog.Locale) ComparisonReport {
	tip := "Read the code line by line and check every boundary condition before moving on."
	guidance := "Pay attention to Java-specific pitfalls such as == on objects, unclosed resources and integer division."
	encouragement := fmt.Sprintf("You identified %d of %d defects. Keep practicing and your reviews will sharpen.",
		summary.IdentifiedCount, summary.TotalProblems)
	if locale == catalog.LocaleZH {
		tip = "逐行閱讀程式碼，先確認每個邊界條件再往下看。"
		guidance = "留意 Java 常見陷阱，例如用 == 比較物件、未關閉資源與整數除法。"
		encouragement = fmt.Sprintf("你找出了 %d 個缺陷（共 %d 個）。持續練習，你的審查會越來越敏銳。",
			summary.IdentifiedCount, summary.TotalProblems)
	}

	return ComparisonReport{
		PerformanceSummary:  summary,
		CorrectlyIdentified: analysis.IdentifiedNames(),
		MissedProblems:      analysis.MissedNames(),
		ImprovementTips:     []string{tip},
		LanguageGuidance:    []string{guidance},
		Encouragement:       encouragement,
	}
}
