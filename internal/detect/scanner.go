package detect

import (
	"github.com/jmoretti/threadtriage/internal/gate"
	"github.com/jmoretti/threadtriage/internal/thread"
)

// lightCategories are the only categories scanned at Light depth.
var lightCategories = map[Category]bool{
	CategorySecurity: true,
	CategoryQuality:  true,
}

// Scanner walks a fixed, ordered detector registry. Order is
// SECURITY, QUALITY, BUG, PERFORMANCE, OPTIMIZATION, UX; this drives
// the short-circuit rule and the tie-break order of the card builder,
// not the final output ordering.
type Scanner struct {
	detectors []Detector
}

// NewScanner builds the standard detector registry.
func NewScanner(cfg Config) *Scanner {
	return &Scanner{detectors: []Detector{
		&securityDetector{},
		&qualityDetector{},
		&bugDetector{},
		&performanceDetector{cfg: cfg},
		&optimizationDetector{cfg: cfg},
		&uxDetector{cfg: cfg},
	}}
}

// Scan runs every applicable detector over one thread. Pure: scanning
// the same summary twice yields an identical issue sequence.
//
// If any SECURITY issue fires, UX detection is skipped for this thread
// only; all other categories still run.
func (sc *Scanner) Scan(s *thread.Summary, dec gate.Decision) []Issue {
	var issues []Issue
	securityFound := false

	for _, d := range sc.detectors {
		cat := d.Category()
		if dec.Depth == gate.Light && !lightCategories[cat] {
			continue
		}
		if cat == CategoryUX && securityFound {
			continue
		}

		found := d.Detect(s, dec)
		if cat == CategorySecurity && len(found) > 0 {
			securityFound = true
		}
		issues = append(issues, found...)
	}

	return issues
}
