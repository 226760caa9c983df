package httpengine

import "strings"

// rateLimitPhrases are matched case-insensitively against response
// body fields to detect body-level rate limiting (as opposed to an
// HTTP 429 status).
var rateLimitPhrases = []string{
	"rate limit",
	"max calls per sec",
	"max calls per second",
	"too many requests",
}

func containsRateLimitPhrase(s string) bool {
	lower := strings.ToLower(s)
	for _, phrase := range rateLimitPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// isRateLimited inspects message, result, error.message, and
// error.data for the rate-limit phrase set, matching the fields the
// original implementation checks.
func isRateLimited(payload any) bool {
	obj, ok := payload.(map[string]any)
	if !ok {
		return false
	}
	if s, ok := stringField(obj, "message"); ok && containsRateLimitPhrase(s) {
		return true
	}
	if s, ok := stringField(obj, "result"); ok && containsRateLimitPhrase(s) {
		return true
	}
	if errObj, ok := obj["error"].(map[string]any); ok {
		if s, ok := stringField(errObj, "message"); ok && containsRateLimitPhrase(s) {
			return true
		}
		if s, ok := stringField(errObj, "data"); ok && containsRateLimitPhrase(s) {
			return true
		}
	}
	return false
}

func stringField(obj map[string]any, key string) (string, bool) {
	v, ok := obj[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
