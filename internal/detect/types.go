// Package detect implements the ordered category scan that turns a
// thread summary into candidate issues.
package detect

import (
	"github.com/jmoretti/threadtriage/internal/gate"
	"github.com/jmoretti/threadtriage/internal/thread"
)

// Category classifies a detected issue. UX is internal to detection and
// folds into QUALITY at the card boundary.
type Category string

const (
	CategorySecurity     Category = "SECURITY"
	CategoryQuality      Category = "QUALITY"
	CategoryBug          Category = "BUG"
	CategoryPerformance  Category = "PERFORMANCE"
	CategoryOptimization Category = "OPTIMIZATION"
	CategoryUX           Category = "UX"
)

// Priority orders issues by urgency.
type Priority int

const (
	Low Priority = iota
	Medium
	High
	Critical
)

func (p Priority) String() string {
	switch p {
	case Critical:
		return "CRITICAL"
	case High:
		return "HIGH"
	case Medium:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// Actionable reports whether issues of this priority become cards.
func (p Priority) Actionable() bool {
	return p >= High
}

// Issue is one detected problem, pre-normalization. Issues are emitted
// once and never mutated.
type Issue struct {
	Category Category
	Priority Priority
	Title    string

	// Evidence quotes the specific data that justified detection:
	// a metric value, matched text span, or step name.
	Evidence string

	// AffectedStep references a Step by name when one is implicated.
	AffectedStep string

	// Signature identifies the rule that fired, scoped by category.
	// Used for cross-thread pattern detection.
	Signature string

	// Source thread references, carried through to the card builder.
	ThreadID    string
	ThreadName  string
	RunID       string
	ExternalURL string
}

// Detector is one capability in the category scan. Detect inspects an
// immutable thread summary and returns zero or more issues; a detector
// that cannot evaluate (missing fields) returns nothing rather than
// failing the scan.
type Detector interface {
	Category() Category
	Detect(s *thread.Summary, dec gate.Decision) []Issue
}

// Config holds the tunable detection thresholds.
type Config struct {
	SlowThreadSeconds float64 // > escalates performance to HIGH
	SlowStepMS        int     // > escalates performance to HIGH
	HighTokenTotal    int     // > enables optimization detection
	JargonDensity     float64 // > flags jargon-heavy assistant text
}

// DefaultConfig returns the standard detection thresholds.
func DefaultConfig() Config {
	return Config{
		SlowThreadSeconds: 30,
		SlowStepMS:        10_000,
		HighTokenTotal:    50_000,
		JargonDensity:     0.25,
	}
}

func sourced(s *thread.Summary, iss Issue) Issue {
	iss.ThreadID = s.ThreadID
	iss.ThreadName = s.ThreadName
	iss.RunID = s.RunID
	iss.ExternalURL = s.ExternalURL
	return iss
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
