package parse

import (
	"encoding/json"
	"regexp"
	"strconv"
)

// Verdict is a decoded evaluation response.
type Verdict struct {
	FoundErrors   []string `json:"found_errors"`
	MissingErrors []string `json:"missing_errors"`
	Valid         bool     `json:"valid"`
	Feedback      string   `json:"feedback,omitempty"`
	Error         string   `json:"error,omitempty"`
}

// Problem is one entry in an analysis problem list.
type Problem struct {
	Problem       string `json:"problem"`
	Justification string `json:"justification,omitempty"`
	Hint          string `json:"hint,omitempty"`
}

// Analysis is a decoded review-analysis response.
type Analysis struct {
	IdentifiedProblems   []Problem `json:"identified_problems"`
	MissedProblems       []Problem `json:"missed_problems"`
	IdentifiedCount      int       `json:"identified_count"`
	TotalProblems        int       `json:"total_problems"`
	IdentifiedPercentage float64   `json:"identified_percentage"`
	ReviewSufficient     bool      `json:"review_sufficient"`
	Error                string    `json:"error,omitempty"`
}

// ReportSummary is the counts section of a comparison report.
type ReportSummary struct {
	IdentifiedCount int     `json:"identified_count"`
	TotalProblems   int     `json:"total_problems"`
	Accuracy        float64 `json:"accuracy"`
	IterationsUsed  int     `json:"iterations_used"`
}

// FeedbackItem is one detailed-feedback entry in a report.
type FeedbackItem struct {
	Problem string `json:"problem"`
	Comment string `json:"comment"`
}

// Report is a decoded comparison-report response.
type Report struct {
	PerformanceSummary  ReportSummary  `json:"performance_summary"`
	CorrectlyIdentified []string       `json:"correctly_identified"`
	MissedProblems      []string       `json:"missed_problems"`
	ImprovementTips     []string       `json:"improvement_tips"`
	LanguageGuidance    []string       `json:"language_specific_guidance"`
	Encouragement       string         `json:"encouragement"`
	DetailedFeedback    []FeedbackItem `json:"detailed_feedback"`
	Error               string         `json:"error,omitempty"`
}

// ParseVerdict decodes an evaluation response. It never fails: when no
// JSON can be recovered it falls back to regex extraction, and finally
// to a zeroed verdict carrying the raw text.
func ParseVerdict(raw string) Verdict {
	if data, ok := extractObject(raw); ok {
		if f, ok := decodeFields(data); ok {
			return Verdict{
				FoundErrors:   f.strSlice("found_errors", "找到的錯誤"),
				MissingErrors: f.strSlice("missing_errors", "遺漏的錯誤"),
				Valid:         f.boolean("valid", "有效"),
				Feedback:      f.str("feedback", "回饋"),
			}
		}
	}

	if v, ok := regexVerdict(raw); ok {
		return v
	}
	return Verdict{Error: truncateRaw(raw)}
}

// ParseAnalysis decodes a review-analysis response with the same
// layered fallbacks as ParseVerdict.
func ParseAnalysis(raw string) Analysis {
	if data, ok := extractObject(raw); ok {
		if f, ok := decodeFields(data); ok {
			a := Analysis{
				IdentifiedProblems: problemSlice(f, "identified_problems", "已識別問題"),
				MissedProblems:     problemSlice(f, "missed_problems", "遺漏問題"),
				ReviewSufficient:   f.boolean("review_sufficient", "審查充分"),
			}
			a.IdentifiedCount, _ = f.integer("identified_count", "已識別數量")
			a.TotalProblems, _ = f.integer("total_problems", "問題總數")
			a.IdentifiedPercentage, _ = f.float("identified_percentage", "識別百分比")
			return a
		}
	}

	if a, ok := regexAnalysis(raw); ok {
		return a
	}
	return Analysis{Error: truncateRaw(raw)}
}

// ParseReport decodes a comparison-report response. Unlike the other
// parsers it has no regex layer; the report generator synthesizes its
// own fallback when Error is set.
func ParseReport(raw string) Report {
	data, ok := extractObject(raw)
	if !ok {
		return Report{Error: truncateRaw(raw)}
	}
	f, ok := decodeFields(data)
	if !ok {
		return Report{Error: truncateRaw(raw)}
	}

	r := Report{
		CorrectlyIdentified: f.strSlice("correctly_identified", "正確識別"),
		MissedProblems:      f.strSlice("missed_problems", "遺漏問題"),
		ImprovementTips:     f.strSlice("improvement_tips", "改進建議"),
		LanguageGuidance:    f.strSlice("language_specific_guidance", "語言特定指導"),
		Encouragement:       f.str("encouragement", "鼓勵"),
	}
	if v, ok := f.get("performance_summary", "表現摘要"); ok {
		if sf, ok := decodeFields(string(v)); ok {
			r.PerformanceSummary.IdentifiedCount, _ = sf.integer("identified_count", "已識別數量")
			r.PerformanceSummary.TotalProblems, _ = sf.integer("total_problems", "問題總數")
			r.PerformanceSummary.Accuracy, _ = sf.float("accuracy", "準確率")
			r.PerformanceSummary.IterationsUsed, _ = sf.integer("iterations_used", "使用迭代數")
		}
	}
	if v, ok := f.get("detailed_feedback", "詳細回饋"); ok {
		var items []FeedbackItem
		if json.Unmarshal(v, &items) == nil {
			r.DetailedFeedback = items
		}
	}
	return r
}

// problemSlice decodes a problem list, accepting both object entries
// and bare strings.
func problemSlice(f fields, aliases ...string) []Problem {
	v, ok := f.get(aliases...)
	if !ok {
		return nil
	}

	var objs []Problem
	if json.Unmarshal(v, &objs) == nil && len(objs) > 0 && objs[0].Problem != "" {
		return objs
	}

	var plain []string
	if json.Unmarshal(v, &plain) == nil {
		out := make([]Problem, 0, len(plain))
		for _, p := range plain {
			out = append(out, Problem{Problem: p})
		}
		return out
	}

	// Mixed or locale-keyed entries.
	var rawItems []json.RawMessage
	if json.Unmarshal(v, &rawItems) != nil {
		return nil
	}
	var out []Problem
	for _, item := range rawItems {
		var s string
		if json.Unmarshal(item, &s) == nil {
			out = append(out, Problem{Problem: s})
			continue
		}
		if of, ok := decodeFields(string(item)); ok {
			out = append(out, Problem{
				Problem:       of.str("problem", "問題"),
				Justification: of.str("justification", "理由"),
				Hint:          of.str("hint", "提示"),
			})
		}
	}
	return out
}

var (
	validRe      = regexp.MustCompile(`"?valid"?\s*[:：]\s*(true|false)`)
	sufficientRe = regexp.MustCompile(`"?review_sufficient"?\s*[:：]\s*(true|false)`)
	identCountRe = regexp.MustCompile(`"?identified_count"?\s*[:：]\s*(\d+)`)
	totalRe      = regexp.MustCompile(`"?total_problems"?\s*[:：]\s*(\d+)`)
	percentageRe = regexp.MustCompile(`"?identified_percentage"?\s*[:：]\s*([0-9.]+)`)
)

// regexVerdict salvages the validity flag from malformed output.
func regexVerdict(raw string) (Verdict, bool) {
	m := validRe.FindStringSubmatch(raw)
	if m == nil {
		return Verdict{}, false
	}
	return Verdict{Valid: m[1] == "true", Error: truncateRaw(raw)}, true
}

// regexAnalysis salvages counts and the sufficiency flag.
func regexAnalysis(raw string) (Analysis, bool) {
	a := Analysis{Error: truncateRaw(raw)}
	found := false

	if m := sufficientRe.FindStringSubmatch(raw); m != nil {
		a.ReviewSufficient = m[1] == "true"
		found = true
	}
	if m := identCountRe.FindStringSubmatch(raw); m != nil {
		a.IdentifiedCount, _ = strconv.Atoi(m[1])
		found = true
	}
	if m := totalRe.FindStringSubmatch(raw); m != nil {
		a.TotalProblems, _ = strconv.Atoi(m[1])
		found = true
	}
	if m := percentageRe.FindStringSubmatch(raw); m != nil {
		a.IdentifiedPercentage, _ = strconv.ParseFloat(m[1], 64)
		found = true
	}
	return a, found
}
