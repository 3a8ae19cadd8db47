// Package sanitize masks secret values in text bound for external
// systems. Evidence excerpts quote the offending thread content, so a
// credential-leak card would otherwise re-leak the credential into the
// ticket tracker.
package sanitize

import (
	"regexp"
)

var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(api[_-]?key|secret|token|password|passwd)\s*[=:]\s*\S+`),
	regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`),
	regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._~+/-]+=*`),
	regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
	regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
}

// Redact masks secret-shaped substrings with [REDACTED]. Key names in
// key=value matches survive so the ticket still says what leaked.
func Redact(text string) string {
	out := text
	for i, p := range secretPatterns {
		if i == 0 {
			out = p.ReplaceAllString(out, "$1=[REDACTED]")
			continue
		}
		out = p.ReplaceAllString(out, "[REDACTED]")
	}
	return out
}
