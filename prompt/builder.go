// Package prompt assembles model prompts for code generation,
// evaluation, review grading and reporting. Builders are pure
// functions: no I/O, deterministic for a given input and locale.
package prompt

import (
	"fmt"
	"strings"

	"github.com/reviewkata/reviewkata-go/catalog"
)

// Length buckets steer the size of generated code.
type Length string

const (
	LengthShort  Length = "short"
	LengthMedium Length = "medium"
	LengthLong   Length = "long"
)

// structure describes the size hints one length bucket translates to.
type structure struct {
	classes string
	methods string
	loc     string
}

var structures = map[Length]structure{
	LengthShort:  {classes: "1 class", methods: "1-2 methods", loc: "15-30 lines"},
	LengthMedium: {classes: "1 class", methods: "3-5 methods", loc: "40-80 lines"},
	LengthLong:   {classes: "1-2 classes", methods: "4-8 methods", loc: "100-150 lines"},
}

// structureFor resolves a bucket, defaulting unknown values to medium.
func structureFor(length Length) structure {
	if s, ok := structures[length]; ok {
		return s
	}
	return structures[LengthMedium]
}

// Sufficiency thresholds quoted inside the review-analysis prompt.
// They guide the model's judgement; the engine itself acts only on the
// review_sufficient flag the model returns.
const (
	MeaningfulScore = 0.6
	AccuracyScore   = 0.7
)

// localePreamble prefixes every prompt with the response-language rule.
func localePreamble(locale catalog.Locale) string {
	if locale == catalog.LocaleZH {
		return "你是一位資深的程式碼審查教育專家。請使用繁體中文回覆。\n\n"
	}
	return "You are an expert code review educator. Respond in English.\n\n"
}

// defectList renders the defect manifest as a numbered block.
func defectList(defects []catalog.DefectInfo) string {
	var sb strings.Builder
	for i, d := range defects {
		fmt.Fprintf(&sb, "%d. %s", i+1, d.Name)
		if d.Description != "" {
			fmt.Fprintf(&sb, " - %s", d.Description)
		}
		if d.Guide != "" {
			fmt.Fprintf(&sb, "\n   Implementation guide: %s", d.Guide)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func nameList(names []string) string {
	var sb strings.Builder
	for i, n := range names {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, n)
	}
	return sb.String()
}

// CodeGeneration builds the prompt that produces the two code
// variants: an annotated one with ERROR markers, then a clean one.
func CodeGeneration(defects []catalog.DefectInfo, length Length, difficulty catalog.Difficulty, domain string, locale catalog.Locale) string {
	s := structureFor(length)

	var sb strings.Builder
	sb.WriteString(localePreamble(locale))
	fmt.Fprintf(&sb, "Generate a Java program for the domain %q containing exactly %d intentional defects.\n\n", domain, len(defects))
	fmt.Fprintf(&sb, "Structure: %s, %s, approximately %s of code. Difficulty level: %s.\n\n", s.classes, s.methods, s.loc, difficulty)
	sb.WriteString("Defects to inject:\n")
	sb.WriteString(defectList(defects))
	sb.WriteString("\nRules:\n")
	sb.WriteString("- Inject every listed defect exactly once; do not add other defects.\n")
	sb.WriteString("- The code must look plausible and compile apart from the intentional defects.\n")
	fmt.Fprintf(&sb, "- Mark each defect site with a comment of the form: // ERROR N: <defect name> (N from 1 to %d).\n\n", len(defects))
	sb.WriteString("Output exactly two fenced code blocks:\n")
	sb.WriteString("1. The annotated version with the ERROR marker comments.\n")
	sb.WriteString("2. The identical code with every ERROR marker comment removed.\n")
	return sb.String()
}

// Evaluation builds the verdict prompt over the annotated variant.
// The code is line-numbered so the model can point at exact sites.
func Evaluation(annotatedCode string, defects []catalog.DefectInfo, locale catalog.Locale) string {
	var sb strings.Builder
	sb.WriteString(localePreamble(locale))
	fmt.Fprintf(&sb, "Verify that the following code contains all %d requested defects.\n\n", len(defects))
	sb.WriteString("Requested defects:\n")
	sb.WriteString(defectList(defects))
	sb.WriteString("\nCode (line-numbered):\n```java\n")
	sb.WriteString(NumberLines(annotatedCode))
	sb.WriteString("\n```\n\n")
	sb.WriteString("Respond with a single JSON object, no surrounding prose:\n")
	sb.WriteString("{\n")
	sb.WriteString("  \"found_errors\": [\"<defect name>\", ...],\n")
	sb.WriteString("  \"missing_errors\": [\"<defect name>\", ...],\n")
	sb.WriteString("  \"valid\": true/false,\n")
	sb.WriteString("  \"feedback\": \"<short explanation>\"\n")
	sb.WriteString("}\n")
	sb.WriteString("valid must be true only when missing_errors is empty.\n")
	return sb.String()
}

// Regeneration builds the retry prompt after a failed evaluation: the
// model must keep the defects already present and add the missing ones.
func Regeneration(currentCode, domain string, missing, found []string, all []catalog.DefectInfo, locale catalog.Locale) string {
	var sb strings.Builder
	sb.WriteString(localePreamble(locale))
	fmt.Fprintf(&sb, "The following Java code for domain %q was supposed to contain %d intentional defects, but some are missing.\n\n", domain, len(all))
	sb.WriteString("Current code:\n```java\n")
	sb.WriteString(currentCode)
	sb.WriteString("\n```\n\n")
	if len(found) > 0 {
		sb.WriteString("Defects already present (keep them exactly as they are):\n")
		sb.WriteString(nameList(found))
		sb.WriteByte('\n')
	}
	sb.WriteString("Defects that are missing and must be injected:\n")
	sb.WriteString(nameList(missing))
	sb.WriteString("\nFull requested defect list for reference:\n")
	sb.WriteString(defectList(all))
	sb.WriteString("\nRewrite the code so every requested defect is present. ")
	sb.WriteString("Mark each defect site with // ERROR N: <defect name>.\n\n")
	sb.WriteString("Output exactly two fenced code blocks: the annotated version, then the clean version with markers removed.\n")
	return sb.String()
}

// ReviewAnalysis builds the grading prompt comparing a learner review
// against the ground-truth defect list.
func ReviewAnalysis(cleanCode string, defects []catalog.DefectInfo, reviewText string, locale catalog.Locale) string {
	var sb strings.Builder
	sb.WriteString(localePreamble(locale))
	sb.WriteString("A learner reviewed the following code. Grade the review against the known defect list.\n\n")
	sb.WriteString("Code (line-numbered):\n```java\n")
	sb.WriteString(NumberLines(cleanCode))
	sb.WriteString("\n```\n\n")
	sb.WriteString("Known defects (ground truth):\n")
	sb.WriteString(defectList(defects))
	sb.WriteString("\nLearner review:\n\"\"\"\n")
	sb.WriteString(reviewText)
	sb.WriteString("\n\"\"\"\n\n")
	fmt.Fprintf(&sb, "A finding counts as identified only when the review describes the defect meaningfully (relevance at least %.1f) and points near the right location (accuracy at least %.1f).\n\n", MeaningfulScore, AccuracyScore)
	sb.WriteString("Respond with a single JSON object, no surrounding prose:\n")
	sb.WriteString("{\n")
	sb.WriteString("  \"identified_problems\": [{\"problem\": \"<defect name>\", \"justification\": \"<why it counts>\"}],\n")
	sb.WriteString("  \"missed_problems\": [{\"problem\": \"<defect name>\", \"hint\": \"<nudge without revealing the answer>\"}],\n")
	sb.WriteString("  \"identified_count\": <int>,\n")
	sb.WriteString("  \"total_problems\": <int>,\n")
	sb.WriteString("  \"identified_percentage\": <float>,\n")
	sb.WriteString("  \"review_sufficient\": true/false\n")
	sb.WriteString("}\n")
	sb.WriteString("review_sufficient must be true only when every known defect was identified.\n")
	return sb.String()
}

// Guidance builds the targeted-feedback prompt after an insufficient
// review iteration.
func Guidance(cleanCode string, defects []catalog.DefectInfo, reviewText string, missed []string, iteration, maxIterations int, locale catalog.Locale) string {
	var sb strings.Builder
	sb.WriteString(localePreamble(locale))
	fmt.Fprintf(&sb, "A learner is on review attempt %d of %d and has not yet found every defect.\n\n", iteration, maxIterations)
	sb.WriteString("Code (line-numbered):\n```java\n")
	sb.WriteString(NumberLines(cleanCode))
	sb.WriteString("\n```\n\n")
	sb.WriteString("Their review so far:\n\"\"\"\n")
	sb.WriteString(reviewText)
	sb.WriteString("\n\"\"\"\n\n")
	if len(missed) > 0 {
		sb.WriteString("Defects they have not found yet:\n")
		sb.WriteString(nameList(missed))
		sb.WriteByte('\n')
	}
	sb.WriteString("Write at most 4 sentences of guidance that steer the learner toward the missed defects without naming them or their line numbers directly.\n")
	return sb.String()
}

// ComparisonReport builds the final-report prompt.
func ComparisonReport(defects []catalog.DefectInfo, identified, missed []string, identifiedCount, totalProblems, iterations int, accuracy float64, locale catalog.Locale) string {
	var sb strings.Builder
	sb.WriteString(localePreamble(locale))
	sb.WriteString("Produce the final educational report for a completed code-review training session.\n\n")
	sb.WriteString("Seeded defects:\n")
	sb.WriteString(defectList(defects))
	fmt.Fprintf(&sb, "\nSession results: %d of %d defects identified (%.1f%%) across %d review attempt(s).\n", identifiedCount, totalProblems, accuracy, iterations)
	if len(identified) > 0 {
		sb.WriteString("\nCorrectly identified:\n")
		sb.WriteString(nameList(identified))
	}
	if len(missed) > 0 {
		sb.WriteString("\nMissed:\n")
		sb.WriteString(nameList(missed))
	}
	sb.WriteString("\nRespond with a single JSON object, no surrounding prose:\n")
	sb.WriteString("{\n")
	sb.WriteString("  \"performance_summary\": {\"identified_count\": <int>, \"total_problems\": <int>, \"accuracy\": <float>, \"iterations_used\": <int>},\n")
	sb.WriteString("  \"correctly_identified\": [\"<defect name>\", ...],\n")
	sb.WriteString("  \"missed_problems\": [\"<defect name>\", ...],\n")
	sb.WriteString("  \"improvement_tips\": [\"<tip>\", ...],\n")
	sb.WriteString("  \"language_specific_guidance\": [\"<guidance>\", ...],\n")
	sb.WriteString("  \"encouragement\": \"<short motivational note>\",\n")
	sb.WriteString("  \"detailed_feedback\": [{\"problem\": \"<defect name>\", \"comment\": \"<feedback>\"}]\n")
	sb.WriteString("}\n")
	return sb.String()
}
