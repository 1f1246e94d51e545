package usecase

import (
	"encoding/json"
	"strings"
)

// ExtractContent pulls the reply text out of an upstream body. It probes
// choices[0].message.content, choices[0].text, content, response and text in
// that order. A non-empty string wins; an array wins and yields the
// concatenated text fields of its parts. Returns "" when nothing matches.
func ExtractContent(raw json.RawMessage) string {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}

	var choice, message map[string]any
	if choices, ok := body["choices"].([]any); ok && len(choices) > 0 {
		choice, _ = choices[0].(map[string]any)
		message, _ = choice["message"].(map[string]any)
	}

	for _, candidate := range []any{
		message["content"],
		choice["text"],
		body["content"],
		body["response"],
		body["text"],
	} {
		if s, ok := contentText(candidate); ok {
			return s
		}
	}
	return ""
}

func contentText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, t != ""
	case []any:
		var b strings.Builder
		for _, part := range t {
			p, ok := part.(map[string]any)
			if !ok {
				continue
			}
			if s, ok := p["text"].(string); ok {
				b.WriteString(s)
			}
		}
		return b.String(), true
	}
	return "", false
}
