package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Only fences labeled json count as stage one. Unlabeled fences are plain
// text whose object, if any, the balanced scan below picks up.
var fencedJSONRe = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")

// ExtractJSON pulls a JSON object out of free-form model output. A fenced
// ```json block wins; otherwise the first balanced top-level object is used.
// The returned bytes are verified to be valid JSON.
func ExtractJSON(text string) (json.RawMessage, error) {
	if m := fencedJSONRe.FindStringSubmatch(text); m != nil {
		if raw, ok := validJSON(m[1]); ok {
			return raw, nil
		}
	}
	for offset := 0; offset < len(text); {
		span, next := balancedObject(text[offset:])
		if span != "" {
			if raw, ok := validJSON(span); ok {
				return raw, nil
			}
		}
		if next <= 0 {
			break
		}
		offset += next
	}
	return nil, fmt.Errorf("llm.ExtractJSON: no JSON object found in %d chars of output", len(text))
}

func validJSON(s string) (json.RawMessage, bool) {
	var v json.RawMessage
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	return v, true
}

// balancedObject finds the first balanced {...} span, tracking string
// literals so braces inside values do not break the balance count. It returns
// the span (empty when the text holds no closed object) and the offset to
// resume scanning from when the span turns out not to be valid JSON.
func balancedObject(text string) (string, int) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", len(text)
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], start + 1
			}
		}
	}
	// Unclosed object: resume past this opening brace.
	return "", start + 1
}
