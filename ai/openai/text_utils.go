package openai

import (
	"regexp"
	"strings"
)

// bareKey matches an object key whose opening quote was dropped by the model,
// e.g. `, education":`.
var bareKey = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)":`)

// stripCodeFences removes markdown code fences wrapped around a model response.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// quoteBareKeys restores missing opening quotes on object keys.
func quoteBareKeys(s string) string {
	return bareKey.ReplaceAllString(s, `$1"$2":`)
}

// token returns the bearer token for the API.
// Local OpenAI-compatible services accept any token, so "none" is used when no key is configured.
func token(apiKey string) string {
	if apiKey == "" {
		return "none"
	}
	return apiKey
}
