package llm

import (
	"encoding/json"
	"strings"
)

// CleanJSONBlock removes markdown code block wrappers from JSON responses.
// Models often wrap JSON in ```json ... ``` blocks even when told not to.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	// skip a language tag on the fence line
	if idx := strings.Index(text, "\n"); idx >= 0 {
		first := text[:idx]
		if len(first) < 20 && !strings.ContainsAny(first, " {[") {
			text = text[idx+1:]
		}
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// ParseArray decodes model output expected to be a JSON array. When the text
// is not valid JSON as a whole, the span between the first '[' and the last
// ']' is tried. ok is false when neither yields an array.
func ParseArray(text string) (elems []json.RawMessage, ok bool) {
	text = CleanJSONBlock(text)
	if err := json.Unmarshal([]byte(text), &elems); err == nil {
		return elems, true
	}

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, false
	}
	elems = nil
	if err := json.Unmarshal([]byte(text[start:end+1]), &elems); err != nil {
		return nil, false
	}
	return elems, true
}

// ParseObject decodes model output expected to be a JSON object, recovering
// the span between the first '{' and the last '}' when needed.
func ParseObject(text string) (fields map[string]json.RawMessage, ok bool) {
	text = CleanJSONBlock(text)
	if err := json.Unmarshal([]byte(text), &fields); err == nil && fields != nil {
		return fields, true
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	fields = nil
	if err := json.Unmarshal([]byte(text[start:end+1]), &fields); err != nil || fields == nil {
		return nil, false
	}
	return fields, true
}
