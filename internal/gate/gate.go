// Package gate implements the depth pre-check that decides how much
// scanning effort a thread receives before any content inspection runs.
package gate

import "github.com/jmoretti/threadtriage/internal/thread"

// Depth is the inspection depth for a thread.
type Depth int

const (
	// Light restricts scanning to security and quality checks.
	Light Depth = iota
	// Full enables every category.
	Full
)

func (d Depth) String() string {
	if d == Full {
		return "FULL"
	}
	return "LIGHT"
}

// Reason tags which signal seeded a Full classification. The scanner
// treats tagged categories as mandatory regardless of further matching.
type Reason string

const (
	ReasonPerformance  Reason = "performance"  // duration over threshold
	ReasonOptimization Reason = "optimization" // token total over threshold
	ReasonBug          Reason = "bug"          // error or failure status
)

// Thresholds hold the gate trigger values. All comparisons are strict
// greater-than; a thread sitting exactly on a threshold stays Light.
type Thresholds struct {
	SlowThreadSeconds float64
	HighTokenTotal    int
}

// DefaultThresholds returns the standard gate thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SlowThreadSeconds: 30,
		HighTokenTotal:    50_000,
	}
}

// Decision is the gate output: the depth plus the reasons that seeded it.
type Decision struct {
	Depth   Depth
	Reasons []Reason
}

// Has reports whether the decision carries the given reason tag.
func (d Decision) Has(r Reason) bool {
	for _, have := range d.Reasons {
		if have == r {
			return true
		}
	}
	return false
}

// Classify decides inspection depth from a thread's summary statistics.
// Pure function: it inspects duration, token total and status only.
func Classify(s *thread.Summary, t Thresholds) Decision {
	var reasons []Reason

	if s.DurationSeconds > t.SlowThreadSeconds {
		reasons = append(reasons, ReasonPerformance)
	}
	if s.TokenUsage.Total > t.HighTokenTotal {
		reasons = append(reasons, ReasonOptimization)
	}
	if s.Status == thread.StatusError || s.Status == thread.StatusFailure || s.Status == "failed" {
		reasons = append(reasons, ReasonBug)
	}

	if len(reasons) == 0 {
		return Decision{Depth: Light}
	}
	return Decision{Depth: Full, Reasons: reasons}
}
