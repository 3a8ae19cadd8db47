package detect

import (
	"fmt"

	"github.com/jmoretti/threadtriage/internal/gate"
	"github.com/jmoretti/threadtriage/internal/thread"
)

// bugDetector reports execution failures: a thread that ended in error
// or failure status, and individual steps that carry errors.
type bugDetector struct{}

func (d *bugDetector) Category() Category { return CategoryBug }

func (d *bugDetector) Detect(s *thread.Summary, dec gate.Decision) []Issue {
	var issues []Issue

	// The bug reason tag makes this category mandatory for the thread.
	if dec.Has(gate.ReasonBug) {
		evidence := fmt.Sprintf("thread status %q", s.Status)
		affected := ""
		if step, ok := firstErroredStep(s); ok {
			evidence = fmt.Sprintf("thread status %q; step %q failed: %s", s.Status, step.Name, truncate(step.Error, 120))
			affected = step.Name
		}
		issues = append(issues, sourced(s, Issue{
			Category:     CategoryBug,
			Priority:     High,
			Title:        fmt.Sprintf("Thread ended with status %q", s.Status),
			Evidence:     evidence,
			AffectedStep: affected,
			Signature:    "thread-status-" + s.Status,
		}))
		return issues
	}

	// A step error inside an otherwise successful thread still counts.
	if step, ok := firstErroredStep(s); ok {
		issues = append(issues, sourced(s, Issue{
			Category:     CategoryBug,
			Priority:     High,
			Title:        fmt.Sprintf("Step %q reported an error", step.Name),
			Evidence:     fmt.Sprintf("step %q: %s", step.Name, truncate(step.Error, 160)),
			AffectedStep: step.Name,
			Signature:    "step-error",
		}))
	}

	return issues
}

func firstErroredStep(s *thread.Summary) (thread.Step, bool) {
	for _, st := range s.Steps {
		if st.Error != "" {
			return st, true
		}
	}
	return thread.Step{}, false
}
