package chunker

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Flatten converts the loosely-shaped payloads produced by upstream file
// parsers into the single flat-text form the chunker accepts.
//
// Shapes handled:
//   - string: returned as-is
//   - map: rendered as "key: value" lines in key order
//   - list: elements flattened recursively, one per line
//   - Q&A records (question/answer or prompt/response keys) are rendered as
//     "Q: ... A: ..." so the pair survives as one retrievable unit
//
// Anything else is rendered with its default string form.
func Flatten(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []any:
		lines := make([]string, 0, len(val))
		for _, item := range val {
			if line := strings.TrimSpace(Flatten(item)); line != "" {
				lines = append(lines, line)
			}
		}
		return strings.Join(lines, "\n")
	case map[string]any:
		if qa, ok := flattenQA(val); ok {
			return qa
		}
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines := make([]string, 0, len(keys))
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("%s: %s", k, Flatten(val[k])))
		}
		return strings.Join(lines, "\n")
	default:
		return fmt.Sprintf("%v", val)
	}
}

// FlattenJSON decodes raw JSON and flattens it. Non-JSON input is treated as
// plain text.
func FlattenJSON(data []byte) string {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return string(data)
	}
	return Flatten(v)
}

// flattenQA renders a record carrying an explicit question/answer (or
// prompt/response) pair. The rendered form is what the vector tier's answer
// extraction looks for at query time.
func flattenQA(m map[string]any) (string, bool) {
	q, qok := stringField(m, "question", "prompt")
	a, aok := stringField(m, "answer", "response")
	if !qok || !aok {
		return "", false
	}
	return fmt.Sprintf("Q: %s A: %s", strings.TrimSpace(q), strings.TrimSpace(a)), true
}

func stringField(m map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return s, true
			}
		}
	}
	return "", false
}
