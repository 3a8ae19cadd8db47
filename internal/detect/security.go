package detect

import (
	"fmt"
	"regexp"

	"github.com/jmoretti/threadtriage/internal/gate"
	"github.com/jmoretti/threadtriage/internal/thread"
)

// scanScope selects which turns a security rule inspects.
type scanScope int

const (
	scopeAllTurns scanScope = iota
	scopeAssistant
)

// securityRule is one row of the leak rule table. Each rule contributes
// at most one issue per thread, keyed by its signature.
type securityRule struct {
	signature string
	title     string
	scope     scanScope
	pattern   *regexp.Regexp
}

var securityRules = []securityRule{
	{
		signature: "internal-field-leak",
		title:     "Internal evaluator fields exposed in conversation",
		scope:     scopeAllTurns,
		pattern: regexp.MustCompile(
			`(?i)\b(?:__[a-z0-9_]+|_internal[a-z0-9_]*|eval(?:uator)?_(?:score|metric|feedback|result|run)[a-z0-9_]*)\b`),
	},
	{
		signature: "sql-leak",
		title:     "Raw SQL text in assistant response",
		scope:     scopeAssistant,
		pattern: regexp.MustCompile(
			`(?i)\b(?:SELECT\s+[\w*,.\s]+\s+FROM\s+\w+|INSERT\s+INTO\s+\w+|UPDATE\s+\w+\s+SET\b|DELETE\s+FROM\s+\w+|DROP\s+TABLE\s+\w+)`),
	},
	{
		signature: "internal-endpoint-leak",
		title:     "Internal endpoint URL in assistant response",
		scope:     scopeAssistant,
		pattern: regexp.MustCompile(
			`https?://(?:localhost|127\.0\.0\.1|10\.\d{1,3}\.\d{1,3}\.\d{1,3}|172\.(?:1[6-9]|2\d|3[01])\.\d{1,3}\.\d{1,3}|192\.168\.\d{1,3}\.\d{1,3}|[a-zA-Z0-9-]+\.(?:internal|local|svc\.cluster\.local))(?::\d+)?\S*`),
	},
	{
		signature: "system-prompt-leak",
		title:     "System-level instructions in assistant response",
		scope:     scopeAssistant,
		pattern: regexp.MustCompile(
			`(?is)(?:<system>|\bsystem prompt\b|\byou are an? (?:ai|assistant|helpful))`),
	},
	{
		signature: "credential-leak",
		title:     "Credential-like token in assistant response",
		scope:     scopeAssistant,
		pattern: regexp.MustCompile(
			`(?i)(?:\b(?:api[_-]?key|secret|token|password|passwd)\b\s*[:=]\s*\S+|\bAKIA[0-9A-Z]{16}\b|\bBearer\s+[A-Za-z0-9._~+/-]{16,}\b)`),
	},
	{
		signature: "pii-leak",
		title:     "Personally identifying data in assistant response",
		scope:     scopeAssistant,
		pattern: regexp.MustCompile(
			`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b|\b\d{3}-\d{2}-\d{4}\b`),
	},
}

// securityDetector scans conversation content for leaked implementation
// artifacts. Every finding is CRITICAL.
type securityDetector struct{}

func (d *securityDetector) Category() Category { return CategorySecurity }

func (d *securityDetector) Detect(s *thread.Summary, _ gate.Decision) []Issue {
	if len(s.Turns) == 0 {
		return nil
	}

	var issues []Issue
	for _, rule := range securityRules {
		match, turnIdx := rule.match(s.Turns)
		if match == "" {
			continue
		}
		issues = append(issues, sourced(s, Issue{
			Category:  CategorySecurity,
			Priority:  Critical,
			Title:     rule.title,
			Evidence:  fmt.Sprintf("turn %d: %q", turnIdx, truncate(match, 160)),
			Signature: rule.signature,
		}))
	}
	return issues
}

// match returns the first matched span and its turn index, or "".
func (r securityRule) match(turns []thread.Turn) (string, int) {
	for i, t := range turns {
		if r.scope == scopeAssistant && t.Role != "assistant" {
			continue
		}
		if m := r.pattern.FindString(t.Text); m != "" {
			return m, i
		}
	}
	return "", 0
}
