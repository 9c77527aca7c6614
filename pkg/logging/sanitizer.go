package logging

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MaxPromptLogLength is the maximum number of characters of user text to log
	MaxPromptLogLength = 100
	// RedactedText is the replacement text for sensitive data
	RedactedText = "[REDACTED]"
)

var (
	// Pattern to match bearer tokens in error strings and headers
	bearerPattern = regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9\-_.~+/]+=*`)

	// Pattern to match API keys passed as query parameters or header dumps
	// Matches: apikey=xxx, api_key: xxx, x-api-key=xxx (20+ chars)
	apiKeyPattern = regexp.MustCompile(`(?i)((?:x-)?api[_-]?key|apikey|key)(\s*[=:]\s*)[A-Za-z0-9\-_]{20,}`)

	// Pattern to match AWS access key IDs
	awsAccessKeyPattern = regexp.MustCompile(`\b(AKIA|ASIA)[A-Z0-9]{16}\b`)
)

// SanitizeError sanitizes error messages that might contain credentials.
// Use this before logging any error from model or retrieval calls.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeText(err.Error())
}

// SanitizeText removes credential-shaped substrings.
func SanitizeText(s string) string {
	sanitized := bearerPattern.ReplaceAllString(s, "Bearer "+RedactedText)
	sanitized = apiKeyPattern.ReplaceAllString(sanitized, "${1}${2}"+RedactedText)
	sanitized = awsAccessKeyPattern.ReplaceAllString(sanitized, RedactedText)
	return sanitized
}

// RedactSecrets replaces every occurrence of the given secret values.
// Empty and very short values are skipped so common words are not redacted.
func RedactSecrets(s string, secrets ...string) string {
	for _, secret := range secrets {
		if len(secret) < 8 {
			continue
		}
		s = strings.ReplaceAll(s, secret, RedactedText)
	}
	return s
}

// TruncateString truncates s to maxLen characters and adds an ellipsis if needed.
// It never splits a multi-byte character.
func TruncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}

// Preview truncates user text for log fields.
func Preview(s string) string {
	return TruncateString(strings.ReplaceAll(s, "\n", " "), MaxPromptLogLength)
}
