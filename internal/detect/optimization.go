package detect

import (
	"fmt"

	"github.com/jmoretti/threadtriage/internal/gate"
	"github.com/jmoretti/threadtriage/internal/thread"
)

// optimizationDetector flags excessive token consumption. Only
// evaluated when the token total is over threshold; never names an
// affected step.
type optimizationDetector struct {
	cfg Config
}

func (d *optimizationDetector) Category() Category { return CategoryOptimization }

func (d *optimizationDetector) Detect(s *thread.Summary, dec gate.Decision) []Issue {
	if s.TokenUsage.Total <= d.cfg.HighTokenTotal && !dec.Has(gate.ReasonOptimization) {
		return nil
	}

	// Token usage is always quoted literally, even when the breakdown
	// does not add up.
	evidence := s.TokenUsage.Quote()
	if !s.TokenUsage.Consistent() {
		evidence += " (breakdown does not sum to total)"
	}

	return []Issue{sourced(s, Issue{
		Category:  CategoryOptimization,
		Priority:  Medium,
		Title:     fmt.Sprintf("High token consumption (%d total)", s.TokenUsage.Total),
		Evidence:  evidence,
		Signature: "token-usage-high",
	})}
}
