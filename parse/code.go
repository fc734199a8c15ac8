// Package parse extracts structured artifacts from free-form model
// output. All entry points degrade instead of failing: code extraction
// always yields two variants and JSON decoding always yields a
// well-formed object, possibly with an error field describing what
// went wrong.
package parse

import (
	"regexp"
	"strings"
)

var (
	fencedBlock = regexp.MustCompile("(?s)```[a-zA-Z0-9]*[ \t]*\n(.*?)```")
	markerLine  = regexp.MustCompile(`^\s*//\s*ERROR\s+\d+\s*:`)
)

// ExtractCodeVariants pulls the annotated and clean code variants out
// of a generation response. With two or more fenced blocks, the first
// is annotated and the second clean. With exactly one, it serves as
// both. With none, the whole response is the annotated variant and the
// clean one is derived by stripping marker lines.
func ExtractCodeVariants(response string) (annotated, clean string) {
	matches := fencedBlock.FindAllStringSubmatch(response, -1)

	switch {
	case len(matches) >= 2:
		annotated = strings.TrimRight(matches[0][1], "\n")
		clean = strings.TrimRight(matches[1][1], "\n")
	case len(matches) == 1:
		annotated = strings.TrimRight(matches[0][1], "\n")
		clean = annotated
	default:
		annotated = strings.TrimSpace(response)
		clean = StripMarkers(annotated)
	}
	if clean == annotated && HasMarkers(annotated) {
		clean = StripMarkers(annotated)
	}
	return annotated, clean
}

// StripMarkers removes every whole line that is an ERROR marker
// comment, yielding the clean variant.
func StripMarkers(annotated string) string {
	lines := strings.Split(annotated, "\n")
	out := lines[:0]
	for _, line := range lines {
		if markerLine.MatchString(line) {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// HasMarkers reports whether any line carries an ERROR marker.
func HasMarkers(code string) bool {
	for _, line := range strings.Split(code, "\n") {
		if markerLine.MatchString(line) {
			return true
		}
	}
	return false
}
