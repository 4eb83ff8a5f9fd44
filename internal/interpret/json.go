// Package interpret parses free-form provider replies into structured
// outcomes. Both parsers are state-free and never fail: malformed output
// degrades to heuristic results carrying a confidence value and rationale.
package interpret

import "encoding/json"

// maxJSONDepth bounds the nesting the candidate scanner accepts.
const maxJSONDepth = 4

// ExtractJSON scans the text for balanced brace-delimited objects and returns
// the first candidate that parses as a JSON object. It returns "" when no
// candidate parses.
func ExtractJSON(text string) string {
	for _, candidate := range jsonCandidates(text) {
		var parsed map[string]any
		if json.Unmarshal([]byte(candidate), &parsed) == nil {
			return candidate
		}
	}
	return ""
}

// jsonCandidates collects balanced top-level {...} spans by walking the text
// once, tracking brace depth and skipping string literals. Spans nested deeper
// than maxJSONDepth are discarded.
func jsonCandidates(text string) []string {
	var candidates []string

	depth := 0
	start := -1
	tooDeep := false
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		ch := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
				tooDeep = false
			}
			depth++
			if depth > maxJSONDepth {
				tooDeep = true
			}
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				if !tooDeep {
					candidates = append(candidates, text[start:i+1])
				}
				start = -1
			}
		}
	}
	return candidates
}
