package redact

import (
	"regexp"
	"strings"
)

const placeholder = "[REDACTED]"

// minValueLen keeps Values from scrubbing short strings that are likely to
// occur by accident.
const minValueLen = 8

// secretPatterns are regex heuristics for common secret types.
var secretPatterns = []*regexp.Regexp{
	// Generic API keys (long hex/base64 strings after common key patterns)
	regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?([A-Za-z0-9/+=_-]{20,})["']?`),
	// Google API keys (Gemini)
	regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`),
	// Query-string keys in request URLs
	regexp.MustCompile(`([?&]key=)[A-Za-z0-9_-]{20,}`),
	// AWS access key IDs
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	// Generic secrets/tokens/passwords in assignments
	regexp.MustCompile(`(?i)(secret|token|password|passwd|credential)\s*[:=]\s*["']([^"']{8,})["']`),
	// Bearer tokens
	regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`),
	// x-api-key / x-goog-api-key headers
	regexp.MustCompile(`(?i)(x-(goog-)?api-key)\s*:\s*\S{16,}`),
	// JWTs (three base64 segments separated by dots)
	regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`),
	// Anthropic API keys
	regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`),
	// OpenAI API keys, including project keys
	regexp.MustCompile(`sk-(proj-)?[A-Za-z0-9_-]{20,}`),
}

// Secrets replaces detected secrets in text with [REDACTED].
func Secrets(text string) string {
	result := text
	for _, pat := range secretPatterns {
		result = pat.ReplaceAllString(result, placeholder)
	}
	return result
}

// Values replaces every occurrence of the given literal values, typically
// the credential in use, and then applies Secrets. Values shorter than
// eight bytes are ignored.
func Values(text string, values ...string) string {
	for _, v := range values {
		if len(v) < minValueLen {
			continue
		}
		text = strings.ReplaceAll(text, v, placeholder)
	}
	return Secrets(text)
}
