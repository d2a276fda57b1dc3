package creative

import (
	"encoding/json"
	"strings"
)

// ParseResponse turns the model's JSON into texts per platform. The payload
// must be an object keyed by platform whose values are string arrays (a bare
// string counts as one text). A top-level array is accepted only when a single
// platform was requested. Every platform needs at least variants non-blank
// texts; extra texts are dropped.
func ParseResponse(text string, platforms []string, variants int) (map[string][]string, error) {
	clean := stripFence(text)
	if clean == "" {
		return nil, formatErr(text, "empty response")
	}

	dec := json.NewDecoder(strings.NewReader(clean))
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, formatErr(text, "not valid JSON: %v", err)
	}
	if dec.More() {
		return nil, formatErr(text, "trailing data after JSON value")
	}

	var byPlatform map[string]any
	switch v := payload.(type) {
	case map[string]any:
		byPlatform = v
	case []any:
		if len(platforms) != 1 {
			return nil, formatErr(text, "got a JSON array but %d platforms were requested", len(platforms))
		}
		byPlatform = map[string]any{platforms[0]: v}
	default:
		return nil, formatErr(text, "expected a JSON object, got %T", payload)
	}

	out := make(map[string][]string, len(platforms))
	for _, platform := range platforms {
		value, ok := lookupKey(byPlatform, platform)
		if !ok {
			return nil, formatErr(text, "platform %q missing from response", platform)
		}
		texts, ok := collectTexts(value)
		if !ok {
			return nil, formatErr(text, "platform %q: expected an array of strings", platform)
		}
		if len(texts) < variants {
			return nil, formatErr(text, "platform %q: want %d texts, got %d", platform, variants, len(texts))
		}
		out[platform] = texts[:variants]
	}
	return out, nil
}

func lookupKey(m map[string]any, key string) (any, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(strings.TrimSpace(k), key) {
			return v, true
		}
	}
	return nil, false
}

func collectTexts(v any) ([]string, bool) {
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}, true
		}
		return nil, true
	case []any:
		out := make([]string, 0, len(t))
		for _, el := range t {
			s, ok := el.(string)
			if !ok {
				return nil, false
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimLeft(s, "`")
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
