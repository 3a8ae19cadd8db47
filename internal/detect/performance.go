package detect

import (
	"fmt"

	"github.com/jmoretti/threadtriage/internal/gate"
	"github.com/jmoretti/threadtriage/internal/thread"
)

// performanceDetector flags slow threads and slow steps. HIGH when the
// thread or any step exceeds its primary threshold; MEDIUM when either
// is past half the threshold (approaching). Comparisons are strict >.
type performanceDetector struct {
	cfg Config
}

func (d *performanceDetector) Category() Category { return CategoryPerformance }

func (d *performanceDetector) Detect(s *thread.Summary, dec gate.Decision) []Issue {
	slowest, hasSteps := s.SlowestStep()

	slowThread := s.DurationSeconds > d.cfg.SlowThreadSeconds
	slowStep := hasSteps && slowest.DurationMS > d.cfg.SlowStepMS

	priority := Medium
	fires := false
	switch {
	case slowThread || slowStep || dec.Has(gate.ReasonPerformance):
		priority = High
		fires = true
	case s.DurationSeconds > d.cfg.SlowThreadSeconds/2,
		hasSteps && slowest.DurationMS > d.cfg.SlowStepMS/2:
		fires = true
	}
	if !fires {
		return nil
	}

	evidence := fmt.Sprintf("duration %.1fs", s.DurationSeconds)
	affected := ""
	if hasSteps {
		evidence = fmt.Sprintf("duration %.1fs; slowest step %q at %dms", s.DurationSeconds, slowest.Name, slowest.DurationMS)
		affected = slowest.Name
	}

	return []Issue{sourced(s, Issue{
		Category:     CategoryPerformance,
		Priority:     priority,
		Title:        "Slow thread execution",
		Evidence:     evidence,
		AffectedStep: affected,
		Signature:    "slow-execution",
	})}
}
