package detect

import (
	"fmt"
	"strings"

	"github.com/jmoretti/threadtriage/internal/gate"
	"github.com/jmoretti/threadtriage/internal/thread"
)

// irreversibleKeywords mark actions a user cannot take back.
var irreversibleKeywords = []string{
	"delete", "drop table", "drop database", "rm -rf", "truncate",
	"overwrite", "purge", "wipe", "force push", "hard reset",
}

// confirmationCues mark an assistant turn as asking before acting.
var confirmationCues = []string{
	"are you sure", "confirm", "do you want", "should i proceed",
	"proceed?", "is that ok", "before i ",
}

// jargonLexicon is the fixed vocabulary for the density check. The
// density threshold itself is configurable.
var jargonLexicon = map[string]bool{
	"idempotent": true, "mutex": true, "refactor": true, "daemon": true,
	"heuristic": true, "serialization": true, "deserialization": true,
	"polymorphism": true, "memoization": true, "instantiate": true,
	"monad": true, "coroutine": true, "middleware": true, "orm": true,
	"semaphore": true, "vtable": true, "thunk": true,
}

// uxDetector applies heuristic experience checks: destructive actions
// taken without confirmation, and jargon-dense responses. MEDIUM only.
type uxDetector struct {
	cfg Config
}

func (d *uxDetector) Category() Category { return CategoryUX }

func (d *uxDetector) Detect(s *thread.Summary, _ gate.Decision) []Issue {
	if len(s.Turns) == 0 {
		return nil
	}

	var issues []Issue
	if iss, ok := d.detectUnconfirmedAction(s); ok {
		issues = append(issues, sourced(s, iss))
	}
	if iss, ok := d.detectJargon(s); ok {
		issues = append(issues, sourced(s, iss))
	}
	return issues
}

// detectUnconfirmedAction fires when an assistant turn mentions an
// irreversible action and no earlier assistant turn asked for
// confirmation.
func (d *uxDetector) detectUnconfirmedAction(s *thread.Summary) (Issue, bool) {
	confirmed := false
	for _, t := range s.Turns {
		if t.Role != "assistant" {
			continue
		}
		lower := strings.ToLower(t.Text)

		if !confirmed {
			if kw := matchKeyword(lower, irreversibleKeywords); kw != "" {
				return Issue{
					Category:  CategoryUX,
					Priority:  Medium,
					Title:     "Irreversible action without confirmation step",
					Evidence:  fmt.Sprintf("action keyword %q with no preceding confirmation", kw),
					Signature: "unconfirmed-destructive-action",
				}, true
			}
		}
		if matchKeyword(lower, confirmationCues) != "" {
			confirmed = true
		}
	}
	return Issue{}, false
}

// detectJargon fires when the jargon share of assistant text exceeds
// the configured density.
func (d *uxDetector) detectJargon(s *thread.Summary) (Issue, bool) {
	words := strings.Fields(strings.ToLower(s.AssistantText()))
	if len(words) == 0 {
		return Issue{}, false
	}

	jargon := 0
	for _, w := range words {
		w = strings.Trim(w, ".,!?;:\"'()")
		if jargonLexicon[w] {
			jargon++
		}
	}

	density := float64(jargon) / float64(len(words))
	if density <= d.cfg.JargonDensity {
		return Issue{}, false
	}
	return Issue{
		Category:  CategoryUX,
		Priority:  Medium,
		Title:     "Jargon-dense assistant responses",
		Evidence:  fmt.Sprintf("jargon density %.0f%% over %d words", density*100, len(words)),
		Signature: "jargon-density",
	}, true
}

func matchKeyword(lower string, keywords []string) string {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return kw
		}
	}
	return ""
}
