package parse

import (
	"encoding/json"
	"regexp"
	"strings"
)

// rawTruncateLen bounds how much of an unparseable response survives
// in the fallback object's error field.
const rawTruncateLen = 500

// extractObject recovers a decodable JSON object from a model
// response, in layers:
//
//  1. strict parse of the trimmed response
//  2. repair of common defects (trailing commas, unquoted keys) when
//     the response at least looks like an object
//  3. brace-matched extraction of the first {...} substring, repaired
//     if needed
//
// Returns false when no layer produced valid JSON; callers then fall
// back to regex field extraction.
func extractObject(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if json.Valid([]byte(trimmed)) && strings.HasPrefix(trimmed, "{") {
		return trimmed, true
	}

	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		if repaired := repairJSON(trimmed); json.Valid([]byte(repaired)) {
			return repaired, true
		}
	}

	if candidate, ok := firstObject(trimmed); ok {
		if json.Valid([]byte(candidate)) {
			return candidate, true
		}
		if repaired := repairJSON(candidate); json.Valid([]byte(repaired)) {
			return repaired, true
		}
	}
	return "", false
}

var (
	trailingComma = regexp.MustCompile(`,\s*([}\]])`)
	unquotedKey   = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
)

// repairJSON fixes the two defects models most often produce.
func repairJSON(s string) string {
	s = trailingComma.ReplaceAllString(s, "$1")
	s = unquotedKey.ReplaceAllString(s, `$1"$2":`)
	return s
}

// firstObject scans for the first balanced {...} region, respecting
// string literals and escapes.
func firstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// truncateRaw shortens raw text for embedding in fallback objects.
func truncateRaw(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) > rawTruncateLen {
		return raw[:rawTruncateLen]
	}
	return raw
}

// fields is a decoded JSON object with locale-aware key lookup: the
// analysis and report payloads may carry either English or Chinese
// keys for the same semantic field.
type fields map[string]json.RawMessage

func decodeFields(data string) (fields, bool) {
	var f fields
	if err := json.Unmarshal([]byte(data), &f); err != nil {
		return nil, false
	}
	return f, true
}

// get returns the raw value for the first present alias.
func (f fields) get(aliases ...string) (json.RawMessage, bool) {
	for _, key := range aliases {
		if v, ok := f[key]; ok {
			return v, true
		}
	}
	return nil, false
}

func (f fields) str(aliases ...string) string {
	if v, ok := f.get(aliases...); ok {
		var s string
		if json.Unmarshal(v, &s) == nil {
			return s
		}
	}
	return ""
}

func (f fields) boolean(aliases ...string) bool {
	if v, ok := f.get(aliases...); ok {
		var b bool
		if json.Unmarshal(v, &b) == nil {
			return b
		}
	}
	return false
}

func (f fields) integer(aliases ...string) (int, bool) {
	if v, ok := f.get(aliases...); ok {
		var n int
		if json.Unmarshal(v, &n) == nil {
			return n, true
		}
		var fl float64
		if json.Unmarshal(v, &fl) == nil {
			return int(fl), true
		}
	}
	return 0, false
}

func (f fields) float(aliases ...string) (float64, bool) {
	if v, ok := f.get(aliases...); ok {
		var fl float64
		if json.Unmarshal(v, &fl) == nil {
			return fl, true
		}
	}
	return 0, false
}

// strSlice decodes a list of strings, tolerating entries that are
// objects with a name-like field.
func (f fields) strSlice(aliases ...string) []string {
	v, ok := f.get(aliases...)
	if !ok {
		return nil
	}

	var plain []string
	if json.Unmarshal(v, &plain) == nil {
		return plain
	}

	var objs []map[string]json.RawMessage
	if json.Unmarshal(v, &objs) == nil {
		var out []string
		for _, o := range objs {
			for _, key := range []string{"problem", "name", "問題", "名稱"} {
				if raw, ok := o[key]; ok {
					var s string
					if json.Unmarshal(raw, &s) == nil {
						out = append(out, s)
						break
					}
				}
			}
		}
		return out
	}
	return nil
}
