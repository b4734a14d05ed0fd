// Package resolver extracts a human-readable reply from the arbitrary
// JSON envelopes returned by conversational backends.
package resolver

import (
	"encoding/json"
	"strings"
)

// extractor pulls one candidate string out of a decoded JSON object.
// Extractors are tried in order; the first non-blank result wins, so new
// payload shapes are added to the list rather than branched into code.
type extractor func(obj map[string]any) string

var extractors = []extractor{
	stringField("answer"),
	stringField("response"),
	stringField("output"),
	joinedArray("outputs"),
	joinedArray("sourceParts"),
	stringField("rendered"),
	stringField("text"),
	stringField("data"),
	firstChoiceContent,
}

// Resolve returns a display string for a decoded JSON value. It never
// fails: when no known shape matches, the whole payload is returned as
// pretty-printed JSON.
func Resolve(payload any) string {
	if s, ok := payload.(string); ok {
		return s
	}
	if obj, ok := payload.(map[string]any); ok {
		for _, extract := range extractors {
			if s := extract(obj); strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	pretty, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return ""
	}
	return string(pretty)
}

// ResolveBytes decodes a raw response body and resolves it. Bodies that
// are not valid JSON are returned verbatim.
func ResolveBytes(body []byte) string {
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return string(body)
	}
	return Resolve(payload)
}

func stringField(key string) extractor {
	return func(obj map[string]any) string {
		s, _ := obj[key].(string)
		return s
	}
}

// joinedArray joins the string elements of an array field with newlines.
// Non-string elements are skipped.
func joinedArray(key string) extractor {
	return func(obj map[string]any) string {
		arr, ok := obj[key].([]any)
		if !ok {
			return ""
		}
		parts := make([]string, 0, len(arr))
		for _, item := range arr {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n")
	}
}

// firstChoiceContent handles OpenAI-style envelopes:
// choices[0].message.content.
func firstChoiceContent(obj map[string]any) string {
	choices, ok := obj["choices"].([]any)
	if !ok || len(choices) == 0 {
		return ""
	}
	first, ok := choices[0].(map[string]any)
	if !ok {
		return ""
	}
	message, ok := first["message"].(map[string]any)
	if !ok {
		return ""
	}
	content, _ := message["content"].(string)
	return content
}
