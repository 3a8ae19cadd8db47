package card

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jmoretti/threadtriage/internal/detect"
	"github.com/jmoretti/threadtriage/internal/solution"
	"github.com/jmoretti/threadtriage/internal/thread"
)

// Build turns a batch's issues into numbered, ticket-ready cards.
// Only CRITICAL and HIGH issues survive; cards are stably sorted with
// CRITICAL strictly before HIGH, ties kept in detection order, and
// numbered 1..N for user-facing selection.
//
// evals supplies the upstream evaluator outputs per thread ID; nil is
// fine.
func Build(issues []detect.Issue, evals map[string][]thread.Evaluation) []IssueCard {
	var kept []detect.Issue
	for _, iss := range issues {
		if iss.Priority.Actionable() {
			kept = append(kept, iss)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Priority > kept[j].Priority
	})

	cards := make([]IssueCard, 0, len(kept))
	for i, iss := range kept {
		cards = append(cards, fromIssue(i+1, iss, evals[iss.ThreadID]))
	}
	return cards
}

func fromIssue(number int, iss detect.Issue, evals []thread.Evaluation) IssueCard {
	if evals == nil {
		evals = []thread.Evaluation{} // serialize as [], never null
	}

	details := iss.Evidence
	if iss.AffectedStep != "" {
		details = fmt.Sprintf("%s\nAffected step: %s", details, iss.AffectedStep)
	}

	component := iss.AffectedStep
	if component == "" {
		component = strings.ToLower(string(normalizeCategory(iss.Category))) + " pipeline"
	}

	return IssueCard{
		Number:             number,
		Title:              fmt.Sprintf("[%s] %s", iss.Priority, truncateTitle(iss.Title, 80)),
		Priority:           iss.Priority.String(),
		Category:           string(normalizeCategory(iss.Category)),
		Status:             StatusBacklog,
		Details:            details,
		Description:        fmt.Sprintf("%s issue detected in thread %q.", normalizeCategory(iss.Category), iss.ThreadName),
		Recommendation:     solution.Recommend(iss),
		PotentialSolutions: solution.Synthesize(iss),
		AffectedCode: AffectedCode{
			Component:  component,
			Suggestion: solution.Recommend(iss),
		},
		Sources: Sources{
			ThreadID:    iss.ThreadID,
			ThreadName:  iss.ThreadName,
			RunID:       iss.RunID,
			ExternalURL: iss.ExternalURL,
		},
		EvaluationResults: evals,
	}
}

// normalizeCategory maps internal detection categories onto the
// external card vocabulary; UX folds into QUALITY.
func normalizeCategory(c detect.Category) detect.Category {
	if c == detect.CategoryUX {
		return detect.CategoryQuality
	}
	return c
}

// Patterns surfaces cross-thread notes: the same category and rule
// signature recurring across two or more distinct threads of a batch.
// Output is sorted by count descending, then signature.
func Patterns(issues []detect.Issue) []Pattern {
	type key struct {
		cat detect.Category
		sig string
	}
	byKey := make(map[key][]string)
	seen := make(map[key]map[string]bool)

	for _, iss := range issues {
		k := key{iss.Category, iss.Signature}
		if seen[k] == nil {
			seen[k] = make(map[string]bool)
		}
		if seen[k][iss.ThreadID] {
			continue
		}
		seen[k][iss.ThreadID] = true
		byKey[k] = append(byKey[k], iss.ThreadID)
	}

	var patterns []Pattern
	for k, ids := range byKey {
		if len(ids) < 2 {
			continue
		}
		sort.Strings(ids)
		patterns = append(patterns, Pattern{
			Category:  k.cat,
			Signature: k.sig,
			ThreadIDs: ids,
			Count:     len(ids),
		})
	}

	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Count != patterns[j].Count {
			return patterns[i].Count > patterns[j].Count
		}
		return patterns[i].Signature < patterns[j].Signature
	})
	return patterns
}

func truncateTitle(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
