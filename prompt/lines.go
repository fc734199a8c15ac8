package prompt

import (
	"fmt"
	"regexp"
	"strings"
)

// NumberLines prefixes each line with a 1-based, right-aligned line
// number so reviewers and models can reference exact positions:
//
//	 1 | public class Account {
//	 2 |     private int balance;
//	...
//	10 | }
//
// The number column is as wide as the final line number.
func NumberLines(code string) string {
	lines := strings.Split(code, "\n")
	width := len(fmt.Sprintf("%d", len(lines)))

	var sb strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&sb, "%*d | %s", width, i+1, line)
		if i < len(lines)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

var lineNumberPrefix = regexp.MustCompile(`^\s*\d+\s\|\s?`)

// StripLineNumbers undoes NumberLines. Lines without the prefix pass
// through unchanged, so it is safe on mixed input.
func StripLineNumbers(code string) string {
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		lines[i] = lineNumberPrefix.ReplaceAllString(line, "")
	}
	return strings.Join(lines, "\n")
}
