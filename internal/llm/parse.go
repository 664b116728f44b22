package llm

import (
	"encoding/json"
	"strings"
)

// StripFences removes a surrounding markdown code fence from a model
// response, including an optional language tag on the opening fence.
func StripFences(response string) string {
	s := strings.TrimSpace(response)
	idx := strings.Index(s, "```")
	if idx == -1 {
		return s
	}
	end := strings.LastIndex(s, "```")
	if end <= idx {
		return s
	}
	inner := s[idx+3 : end]
	if nl := strings.Index(inner, "\n"); nl != -1 {
		tag := strings.TrimSpace(inner[:nl])
		if tag != "" && !strings.ContainsAny(tag, " {[") && len(tag) < 20 {
			inner = inner[nl+1:]
		}
	}
	return strings.TrimSpace(inner)
}

// DecodeLoose parses a model response as a JSON object. Malformed payloads
// degrade to an empty map rather than an error, so callers get an empty
// plan/analysis instead of a crash.
func DecodeLoose(response string) map[string]interface{} {
	s := StripFences(response)

	// Tolerate leading prose before the object.
	if idx := strings.Index(s, "{"); idx > 0 {
		s = s[idx:]
	}

	var out map[string]interface{}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return map[string]interface{}{}
	}
	return out
}

// DecodeInto parses a model response into the given struct. Malformed
// payloads leave the target at its zero value and are not an error.
func DecodeInto(response string, target interface{}) {
	s := StripFences(response)
	if idx := strings.Index(s, "{"); idx > 0 {
		s = s[idx:]
	}
	_ = json.Unmarshal([]byte(s), target)
}
