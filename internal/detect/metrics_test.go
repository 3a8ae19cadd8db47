package detect

import (
	"strings"
	"testing"

	"github.com/jmoretti/threadtriage/internal/gate"
	"github.com/jmoretti/threadtriage/internal/thread"
)

func TestPerformance_SlowStepEscalatesToHigh(t *testing.T) {
	d := &performanceDetector{cfg: DefaultConfig()}
	s := &thread.Summary{
		ThreadID: "t-1", DurationSeconds: 12,
		Steps: []thread.Step{{Name: "embed", DurationMS: 11_000}, {Name: "render", DurationMS: 200}},
	}
	issues := d.Detect(s, gate.Decision{Depth: gate.Full})
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(issues))
	}
	if issues[0].Priority != High {
		t.Errorf("priority = %s, want HIGH", issues[0].Priority)
	}
	if issues[0].AffectedStep != "embed" {
		t.Errorf("affected step = %q, want embed", issues[0].AffectedStep)
	}
}

func TestPerformance_StepExactly10000DoesNotEscalate(t *testing.T) {
	d := &performanceDetector{cfg: DefaultConfig()}
	s := &thread.Summary{
		ThreadID: "t-1", DurationSeconds: 5,
		Steps: []thread.Step{{Name: "embed", DurationMS: 10_000}},
	}
	issues := d.Detect(s, gate.Decision{Depth: gate.Full})
	// 10000ms is past the approach threshold but not the strict > limit.
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(issues))
	}
	if issues[0].Priority != Medium {
		t.Errorf("priority = %s, want MEDIUM at exact boundary", issues[0].Priority)
	}
}

func TestPerformance_FastThreadSilent(t *testing.T) {
	d := &performanceDetector{cfg: DefaultConfig()}
	s := &thread.Summary{ThreadID: "t-1", DurationSeconds: 3,
		Steps: []thread.Step{{Name: "lookup", DurationMS: 900}}}
	if issues := d.Detect(s, gate.Decision{}); len(issues) != 0 {
		t.Errorf("expected no issues, got %+v", issues)
	}
}

func TestPerformance_GateTagMandatesIssue(t *testing.T) {
	// The reason tag forces an issue even when steps are missing.
	d := &performanceDetector{cfg: DefaultConfig()}
	s := &thread.Summary{ThreadID: "t-1", DurationSeconds: 31}
	dec := gate.Decision{Depth: gate.Full, Reasons: []gate.Reason{gate.ReasonPerformance}}
	issues := d.Detect(s, dec)
	if len(issues) != 1 || issues[0].Priority != High {
		t.Fatalf("expected one HIGH issue, got %+v", issues)
	}
	if issues[0].AffectedStep != "" {
		t.Errorf("no step data, affected step should be empty, got %q", issues[0].AffectedStep)
	}
}

func TestOptimization_OverThreshold(t *testing.T) {
	d := &optimizationDetector{cfg: DefaultConfig()}
	s := &thread.Summary{
		ThreadID:   "t-1",
		TokenUsage: thread.TokenUsage{Total: 62_000, Prompt: 50_000, Completion: 12_000},
		Steps:      []thread.Step{{Name: "retrieve", DurationMS: 100}},
	}
	issues := d.Detect(s, gate.Decision{Depth: gate.Full, Reasons: []gate.Reason{gate.ReasonOptimization}})
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(issues))
	}
	iss := issues[0]
	if iss.Priority != Medium {
		t.Errorf("priority = %s, want MEDIUM", iss.Priority)
	}
	if iss.AffectedStep != "" {
		t.Error("optimization issues never name an affected step")
	}
}

func TestOptimization_ExactBoundarySilent(t *testing.T) {
	d := &optimizationDetector{cfg: DefaultConfig()}
	s := &thread.Summary{ThreadID: "t-1", TokenUsage: thread.TokenUsage{Total: 50_000, Prompt: 40_000, Completion: 10_000}}
	if issues := d.Detect(s, gate.Decision{Depth: gate.Full}); len(issues) != 0 {
		t.Errorf("expected silence at exactly 50000, got %+v", issues)
	}
}

func TestOptimization_QuotesInconsistentUsageLiterally(t *testing.T) {
	d := &optimizationDetector{cfg: DefaultConfig()}
	s := &thread.Summary{
		ThreadID:   "t-1",
		TokenUsage: thread.TokenUsage{Total: 70_000, Prompt: 10_000, Completion: 10_000},
	}
	issues := d.Detect(s, gate.Decision{Depth: gate.Full})
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(issues))
	}
	ev := issues[0].Evidence
	if !strings.Contains(ev, "total=70000 prompt=10000 completion=10000") {
		t.Errorf("evidence must quote raw usage verbatim, got %q", ev)
	}
	if !strings.Contains(ev, "does not sum") {
		t.Errorf("evidence should note the mismatch without reconciling, got %q", ev)
	}
}

func TestBug_StatusTag(t *testing.T) {
	d := &bugDetector{}
	s := &thread.Summary{
		ThreadID: "t-1", Status: thread.StatusError,
		Steps: []thread.Step{{Name: "call_api", DurationMS: 50, Error: "connection refused"}},
	}
	dec := gate.Decision{Depth: gate.Full, Reasons: []gate.Reason{gate.ReasonBug}}
	issues := d.Detect(s, dec)
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(issues))
	}
	iss := issues[0]
	if iss.AffectedStep != "call_api" {
		t.Errorf("affected step = %q, want call_api", iss.AffectedStep)
	}
	if !strings.Contains(iss.Evidence, "connection refused") {
		t.Errorf("evidence must reference the error, got %q", iss.Evidence)
	}
}

func TestBug_StepErrorInSuccessfulThread(t *testing.T) {
	d := &bugDetector{}
	s := &thread.Summary{
		ThreadID: "t-1", Status: thread.StatusSuccess,
		Steps: []thread.Step{{Name: "retry_push", DurationMS: 80, Error: "409 conflict"}},
	}
	issues := d.Detect(s, gate.Decision{Depth: gate.Full})
	if len(issues) != 1 || issues[0].Signature != "step-error" {
		t.Fatalf("expected step-error issue, got %+v", issues)
	}
}

func TestBug_CleanThreadSilent(t *testing.T) {
	d := &bugDetector{}
	s := &thread.Summary{ThreadID: "t-1", Status: thread.StatusSuccess,
		Steps: []thread.Step{{Name: "ok", DurationMS: 10}}}
	if issues := d.Detect(s, gate.Decision{}); len(issues) != 0 {
		t.Errorf("expected no issues, got %+v", issues)
	}
}

func TestUX_UnconfirmedDestructiveAction(t *testing.T) {
	d := &uxDetector{cfg: DefaultConfig()}
	s := &thread.Summary{ThreadID: "t-1", Turns: []thread.Turn{
		userTurn("clean up old data"),
		assistantTurn("Done. I ran truncate on the events table."),
	}}
	issues := d.Detect(s, gate.Decision{})
	if findSignature(issues, "unconfirmed-destructive-action") == nil {
		t.Fatalf("expected unconfirmed-destructive-action, got %+v", issues)
	}
}

func TestUX_ConfirmedActionOk(t *testing.T) {
	d := &uxDetector{cfg: DefaultConfig()}
	s := &thread.Summary{ThreadID: "t-1", Turns: []thread.Turn{
		userTurn("clean up old data"),
		assistantTurn("This will remove rows permanently. Are you sure you want to proceed?"),
		userTurn("yes"),
		assistantTurn("Running truncate on the events table now."),
	}}
	issues := d.Detect(s, gate.Decision{})
	if findSignature(issues, "unconfirmed-destructive-action") != nil {
		t.Errorf("a preceding confirmation must suppress the finding, got %+v", issues)
	}
}

func TestUX_JargonDensity(t *testing.T) {
	d := &uxDetector{cfg: DefaultConfig()}
	s := &thread.Summary{ThreadID: "t-1", Turns: []thread.Turn{
		assistantTurn("idempotent mutex semaphore coroutine achieves memoization heuristic"),
	}}
	issues := d.Detect(s, gate.Decision{})
	iss := findSignature(issues, "jargon-density")
	if iss == nil {
		t.Fatalf("expected jargon-density, got %+v", issues)
	}
	if iss.Priority != Medium {
		t.Errorf("priority = %s, want MEDIUM", iss.Priority)
	}
}

func TestUX_PlainLanguageOk(t *testing.T) {
	d := &uxDetector{cfg: DefaultConfig()}
	s := &thread.Summary{ThreadID: "t-1", Turns: []thread.Turn{
		assistantTurn("I updated the settings file and the change takes effect on the next start."),
	}}
	if issues := d.Detect(s, gate.Decision{}); len(issues) != 0 {
		t.Errorf("expected no issues, got %+v", issues)
	}
}
