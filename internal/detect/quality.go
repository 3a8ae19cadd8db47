package detect

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jmoretti/threadtriage/internal/gate"
	"github.com/jmoretti/threadtriage/internal/thread"
)

// stackTracePattern matches stack-trace-like or internal-identifier
// content surfaced in assistant text.
var stackTracePattern = regexp.MustCompile(
	`(?m)Traceback \(most recent call last\)|^\s+at .+\(.+:\d+\)|panic: .+|goroutine \d+ \[|\w+Exception(?::| at )|0x[0-9a-f]{10,}`)

// negationTokens mark a sentence as asserting the negative of a fact.
var negationTokens = []string{
	" not ", " no ", " never ", " cannot ", " can't ", " isn't ",
	" doesn't ", " won't ", " wasn't ", " don't ",
}

// qualityDetector checks response completeness, internal consistency,
// and error hygiene. Findings are HIGH.
type qualityDetector struct{}

func (d *qualityDetector) Category() Category { return CategoryQuality }

func (d *qualityDetector) Detect(s *thread.Summary, _ gate.Decision) []Issue {
	var issues []Issue

	if iss, ok := d.detectIncomplete(s); ok {
		issues = append(issues, sourced(s, iss))
	}
	if iss, ok := d.detectContradiction(s); ok {
		issues = append(issues, sourced(s, iss))
	}
	if iss, ok := d.detectLeakyError(s); ok {
		issues = append(issues, sourced(s, iss))
	}

	return issues
}

// detectIncomplete fires when the final response does not address every
// explicit sub-question of the final user turn.
func (d *qualityDetector) detectIncomplete(s *thread.Summary) (Issue, bool) {
	question := s.FinalUserTurn()
	answer := s.FinalAssistantTurn()
	if question == "" || answer == "" {
		return Issue{}, false // cannot evaluate; skip this rule only
	}

	subs := subQuestions(question)
	if len(subs) == 0 {
		return Issue{}, false
	}

	answerWords := significantWords(answer)
	var unaddressed []string
	for _, q := range subs {
		qWords := significantWords(q)
		if len(qWords) == 0 {
			continue // nothing to anchor the check on
		}
		needed := 2
		if len(qWords) < needed {
			needed = len(qWords)
		}
		if wordOverlap(qWords, answerWords) < needed {
			unaddressed = append(unaddressed, q)
		}
	}

	if len(unaddressed) == 0 {
		return Issue{}, false
	}
	return Issue{
		Category:  CategoryQuality,
		Priority:  High,
		Title:     "Response does not address all sub-questions",
		Evidence:  fmt.Sprintf("%d of %d sub-questions unaddressed, e.g. %q", len(unaddressed), len(subs), truncate(unaddressed[0], 120)),
		Signature: "incomplete-response",
	}, true
}

// detectContradiction fires when two assistant turns state opposite
// things about the same fact: sentences sharing three or more
// significant words where exactly one side is negated.
func (d *qualityDetector) detectContradiction(s *thread.Summary) (Issue, bool) {
	turns := s.AssistantTurns()
	if len(turns) < 2 {
		return Issue{}, false
	}

	type stmt struct {
		text    string
		words   []string
		negated bool
	}
	var stmts []stmt
	for _, t := range turns {
		for _, sent := range sentences(t.Text) {
			stmts = append(stmts, stmt{
				text:    sent,
				words:   significantWords(sent),
				negated: isNegated(sent),
			})
		}
	}

	for i := 0; i < len(stmts); i++ {
		for j := i + 1; j < len(stmts); j++ {
			if stmts[i].negated == stmts[j].negated {
				continue
			}
			if wordOverlap(stmts[i].words, stmts[j].words) >= 3 {
				return Issue{
					Category:  CategoryQuality,
					Priority:  High,
					Title:     "Contradictory statements across assistant turns",
					Evidence:  fmt.Sprintf("%q vs %q", truncate(stmts[i].text, 100), truncate(stmts[j].text, 100)),
					Signature: "contradiction",
				}, true
			}
		}
	}
	return Issue{}, false
}

// detectLeakyError fires when an error shown to the user carries
// stack-trace or internal-identifier content.
func (d *qualityDetector) detectLeakyError(s *thread.Summary) (Issue, bool) {
	for _, t := range s.AssistantTurns() {
		if m := stackTracePattern.FindString(t.Text); m != "" {
			return Issue{
				Category:  CategoryQuality,
				Priority:  High,
				Title:     "Stack-trace content surfaced to the user",
				Evidence:  fmt.Sprintf("%q", truncate(m, 160)),
				Signature: "leaky-error",
			}, true
		}
	}
	return Issue{}, false
}

// subQuestions splits a user turn into its explicit '?'-terminated
// sub-questions.
func subQuestions(text string) []string {
	var subs []string
	for _, s := range sentences(text) {
		if strings.HasSuffix(s, "?") {
			subs = append(subs, s)
		}
	}
	return subs
}

func isNegated(sentence string) bool {
	lower := " " + strings.ToLower(sentence) + " "
	for _, tok := range negationTokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}
