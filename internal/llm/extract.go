package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Hidden-reasoning delimiters accepted before (or around) the JSON
// payload: <think>, <thought>, <reasoning>, case-insensitive.
var (
	reasoningBlock = regexp.MustCompile(`(?is)<\s*(think|thought|reasoning)\s*>.*?<\s*/\s*(think|thought|reasoning)\s*>`)
	reasoningFirst = regexp.MustCompile(`(?is)<\s*(think|thought|reasoning)\s*>(.*?)<\s*/\s*(think|thought|reasoning)\s*>`)
)

// StripReasoning removes every paired hidden-reasoning block,
// repeatedly, so nested or repeated blocks all disappear.
func StripReasoning(text string) string {
	out := strings.TrimSpace(text)
	for {
		next := reasoningBlock.ReplaceAllString(out, "")
		if next == out {
			return strings.TrimSpace(out)
		}
		out = next
	}
}

// ExtractThink returns the inner text of the first hidden-reasoning
// block, or "" when none is present. Non-destructive; used only for
// trace logging.
func ExtractThink(text string) string {
	m := reasoningFirst.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[2])
}

// ExtractJSONObject strips hidden reasoning and parses the remainder as a
// JSON object. On failure it scans for the LAST balanced top-level {...}
// block with a small brace scanner (not a full parser) and tries that.
func ExtractJSONObject(text string) (map[string]any, bool) {
	cleaned := StripReasoning(text)
	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned), &obj); err == nil && obj != nil {
		return obj, true
	}
	candidate := lastBalancedObject(cleaned)
	if candidate == "" {
		return nil, false
	}
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// lastBalancedObject returns the last top-level balanced {...} substring,
// or "". Braces inside strings are rare in practice for planner replies;
// the scanner tracks string state to stay safe anyway.
func lastBalancedObject(s string) string {
	depth := 0
	start := -1
	last := ""
	inString := false
	escaped := false
	for i, ch := range s {
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
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start != -1 {
					last = s[start : i+1]
					start = -1
				}
			}
		}
	}
	return last
}
