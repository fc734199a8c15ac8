package parse

import (
	"strings"
	"testing"
)

func TestParseVerdict(t *testing.T) {
	t.Run("strict json", func(t *testing.T) {
		v := ParseVerdict(`{"found_errors": ["A"], "missing_errors": ["B"], "valid": false, "feedback": "B absent"}`)
		if len(v.FoundErrors) != 1 || v.FoundErrors[0] != "A" {
			t.Errorf("found = %v", v.FoundErrors)
		}
		if len(v.MissingErrors) != 1 || v.Valid {
			t.Errorf("verdict = %+v", v)
		}
		if v.Feedback != "B absent" {
			t.Errorf("feedback = %q", v.Feedback)
		}
	})

	t.Run("json wrapped in prose", func(t *testing.T) {
		raw := "Sure! Here is my verdict:\n\n{\"found_errors\": [\"A\"], \"missing_errors\": [], \"valid\": true}\n\nLet me know."
		v := ParseVerdict(raw)
		if !v.Valid || len(v.FoundErrors) != 1 {
			t.Errorf("verdict = %+v", v)
		}
	})

	t.Run("trailing commas repaired", func(t *testing.T) {
		v := ParseVerdict(`{"found_errors": ["A",], "missing_errors": [], "valid": true,}`)
		if !v.Valid || len(v.FoundErrors) != 1 {
			t.Errorf("verdict = %+v", v)
		}
	})

	t.Run("unquoted keys repaired", func(t *testing.T) {
		v := ParseVerdict(`{found_errors: ["A"], missing_errors: [], valid: true}`)
		if !v.Valid {
			t.Errorf("verdict = %+v", v)
		}
	})

	t.Run("chinese keys accepted", func(t *testing.T) {
		v := ParseVerdict(`{"找到的錯誤": ["A"], "遺漏的錯誤": [], "有效": true}`)
		if !v.Valid || len(v.FoundErrors) != 1 {
			t.Errorf("verdict = %+v", v)
		}
	})

	t.Run("regex fallback finds the flag", func(t *testing.T) {
		v := ParseVerdict(`The code is valid: true, everything found {broken json`)
		if !v.Valid {
			t.Errorf("verdict = %+v", v)
		}
		if v.Error == "" {
			t.Error("fallback should carry the raw text")
		}
	})

	t.Run("garbage yields minimal object", func(t *testing.T) {
		v := ParseVerdict("complete nonsense")
		if v.Valid || v.Error == "" {
			t.Errorf("verdict = %+v", v)
		}
	})

	t.Run("raw text is truncated", func(t *testing.T) {
		v := ParseVerdict(strings.Repeat("x", 2000))
		if len(v.Error) != 500 {
			t.Errorf("error length = %d, want 500", len(v.Error))
		}
	})
}

func TestParseAnalysis(t *testing.T) {
	t.Run("object entries", func(t *testing.T) {
		a := ParseAnalysis(`{
			"identified_problems": [{"problem": "A", "justification": "line 3"}],
			"missed_problems": [{"problem": "B", "hint": "look at the loop"}],
			"identified_count": 1,
			"total_problems": 2,
			"identified_percentage": 50.0,
			"review_sufficient": false
		}`)
		if len(a.IdentifiedProblems) != 1 || a.IdentifiedProblems[0].Justification != "line 3" {
			t.Errorf("identified = %+v", a.IdentifiedProblems)
		}
		if len(a.MissedProblems) != 1 || a.MissedProblems[0].Hint != "look at the loop" {
			t.Errorf("missed = %+v", a.MissedProblems)
		}
		if a.IdentifiedCount != 1 || a.TotalProblems != 2 || a.IdentifiedPercentage != 50.0 {
			t.Errorf("counts = %+v", a)
		}
	})

	t.Run("bare string entries", func(t *testing.T) {
		a := ParseAnalysis(`{"identified_problems": ["A", "B"], "missed_problems": [], "identified_count": 2, "total_problems": 2, "review_sufficient": true}`)
		if len(a.IdentifiedProblems) != 2 || a.IdentifiedProblems[1].Problem != "B" {
			t.Errorf("identified = %+v", a.IdentifiedProblems)
		}
		if !a.ReviewSufficient {
			t.Error("sufficient should be true")
		}
	})

	t.Run("chinese keys", func(t *testing.T) {
		a := ParseAnalysis(`{"已識別問題": [{"問題": "A"}], "遺漏問題": [], "已識別數量": 1, "問題總數": 1, "審查充分": true}`)
		if len(a.IdentifiedProblems) != 1 || a.IdentifiedProblems[0].Problem != "A" {
			t.Errorf("identified = %+v", a.IdentifiedProblems)
		}
		if !a.ReviewSufficient || a.IdentifiedCount != 1 {
			t.Errorf("analysis = %+v", a)
		}
	})

	t.Run("regex fallback salvages counts", func(t *testing.T) {
		a := ParseAnalysis(`prose... identified_count: 2 and total_problems: 3, review_sufficient: false {bad`)
		if a.IdentifiedCount != 2 || a.TotalProblems != 3 {
			t.Errorf("counts = %+v", a)
		}
		if a.Error == "" {
			t.Error("fallback should carry the raw text")
		}
	})

	t.Run("garbage yields minimal object", func(t *testing.T) {
		a := ParseAnalysis("nothing useful here")
		if a.IdentifiedCount != 0 || a.Error == "" {
			t.Errorf("analysis = %+v", a)
		}
	})
}

func TestParseReport(t *testing.T) {
	t.Run("full report", func(t *testing.T) {
		r := ParseReport(`{
			"performance_summary": {"identified_count": 1, "total_problems": 2, "accuracy": 50.0, "iterations_used": 2},
			"correctly_identified": ["A"],
			"missed_problems": ["B"],
			"improvement_tips": ["read more carefully"],
			"language_specific_guidance": ["watch integer division"],
			"encouragement": "keep going",
			"detailed_feedback": [{"problem": "A", "comment": "well spotted"}]
		}`)
		if r.Error != "" {
			t.Fatalf("unexpected error: %q", r.Error)
		}
		if r.PerformanceSummary.Accuracy != 50.0 || r.PerformanceSummary.IterationsUsed != 2 {
			t.Errorf("summary = %+v", r.PerformanceSummary)
		}
		if len(r.DetailedFeedback) != 1 || r.DetailedFeedback[0].Comment != "well spotted" {
			t.Errorf("feedback = %+v", r.DetailedFeedback)
		}
	})

	t.Run("unparseable report flags error", func(t *testing.T) {
		r := ParseReport("no json at all")
		if r.Error == "" {
			t.Error("expected the raw text in Error")
		}
	})
}

func TestFirstObject(t *testing.T) {
	t.Run("nested braces", func(t *testing.T) {
		got, ok := firstObject(`prefix {"a": {"b": 1}} suffix`)
		if !ok || got != `{"a": {"b": 1}}` {
			t.Errorf("got %q ok=%v", got, ok)
		}
	})

	t.Run("braces inside strings ignored", func(t *testing.T) {
		got, ok := firstObject(`{"a": "}{"}`)
		if !ok || got != `{"a": "}{"}` {
			t.Errorf("got %q ok=%v", got, ok)
		}
	})

	t.Run("unbalanced input", func(t *testing.T) {
		if _, ok := firstObject(`{"a": 1`); ok {
			t.Error("unbalanced object should not match")
		}
	})
}
