package logbuf

import "strings"

const redactedValue = "[REDACTED]"

var sensitiveSubstrings = []string{"token", "api_key", "apikey", "secret", "credential", "password"}

func isSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	if key == "authorization" {
		return true
	}
	for _, pattern := range sensitiveSubstrings {
		if strings.Contains(key, pattern) {
			return true
		}
	}
	return false
}

// redact returns a copy of details with sensitive values replaced. Nested
// objects are walked.
func redact(details map[string]any) map[string]any {
	if len(details) == 0 {
		return nil
	}
	out := make(map[string]any, len(details))
	for k, v := range details {
		if isSensitiveKey(k) {
			out[k] = redactedValue
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			out[k] = redact(nested)
			continue
		}
		out[k] = v
	}
	return out
}
