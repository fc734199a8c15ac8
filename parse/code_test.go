package parse

import (
	"strings"
	"testing"
)

const annotatedJava = `public class A {
    // ERROR 1: Off-by-one loop bound
    for (int i = 0; i <= n; i++) {
    // ERROR 2: Integer division truncation
    double avg = sum / n;
}`

const cleanJava = `public class A {
    for (int i = 0; i <= n; i++) {
    double avg = sum / n;
}`

func TestExtractCodeVariants(t *testing.T) {
	t.Run("two fenced blocks", func(t *testing.T) {
		response := "Here you go:\n\n```java\n" + annotatedJava + "\n```\n\nAnd clean:\n\n```java\n" + cleanJava + "\n```\n"
		annotated, clean := ExtractCodeVariants(response)
		if annotated != annotatedJava {
			t.Errorf("annotated = %q", annotated)
		}
		if clean != cleanJava {
			t.Errorf("clean = %q", clean)
		}
	})

	t.Run("unlabeled fences", func(t *testing.T) {
		response := "```\nfirst\n```\n```\nsecond\n```"
		annotated, clean := ExtractCodeVariants(response)
		if annotated != "first" || clean != "second" {
			t.Errorf("got %q / %q", annotated, clean)
		}
	})

	t.Run("single block serves as both, markers stripped for clean", func(t *testing.T) {
		response := "```java\n" + annotatedJava + "\n```"
		annotated, clean := ExtractCodeVariants(response)
		if annotated != annotatedJava {
			t.Errorf("annotated = %q", annotated)
		}
		if clean != cleanJava {
			t.Errorf("clean = %q", clean)
		}
	})

	t.Run("no fences treats whole response as annotated", func(t *testing.T) {
		annotated, clean := ExtractCodeVariants(annotatedJava)
		if annotated != annotatedJava {
			t.Errorf("annotated = %q", annotated)
		}
		if strings.Contains(clean, "ERROR") {
			t.Errorf("clean still carries markers: %q", clean)
		}
	})
}

func TestStripMarkers(t *testing.T) {
	t.Run("removes only marker lines", func(t *testing.T) {
		got := StripMarkers(annotatedJava)
		if got != cleanJava {
			t.Errorf("got %q, want %q", got, cleanJava)
		}
	})

	t.Run("line counts drop by marker count", func(t *testing.T) {
		before := len(strings.Split(annotatedJava, "\n"))
		after := len(strings.Split(StripMarkers(annotatedJava), "\n"))
		if before-after != 2 {
			t.Errorf("stripped %d lines, want 2", before-after)
		}
	})

	t.Run("non-marker ERROR mentions survive", func(t *testing.T) {
		code := "// ERROR handling below\nthrow new Error();"
		if got := StripMarkers(code); got != code {
			t.Errorf("got %q", got)
		}
	})
}

func TestHasMarkers(t *testing.T) {
	if !HasMarkers(annotatedJava) {
		t.Error("annotated code should report markers")
	}
	if HasMarkers(cleanJava) {
		t.Error("clean code should not report markers")
	}
}
