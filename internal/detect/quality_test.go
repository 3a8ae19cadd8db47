package detect

import (
	"testing"

	"github.com/jmoretti/threadtriage/internal/gate"
	"github.com/jmoretti/threadtriage/internal/thread"
)

func detectQuality(t *testing.T, turns ...thread.Turn) []Issue {
	t.Helper()
	d := &qualityDetector{}
	return d.Detect(&thread.Summary{ThreadID: "t-1", Turns: turns}, gate.Decision{})
}

func TestQuality_UnaddressedSubQuestion(t *testing.T) {
	issues := detectQuality(t,
		userTurn("How do I configure authentication? And what about rotating credentials afterwards?"),
		assistantTurn("You configure authentication by setting the auth section of the settings file."),
	)
	iss := findSignature(issues, "incomplete-response")
	if iss == nil {
		t.Fatalf("expected incomplete-response, got %+v", issues)
	}
	if iss.Priority != High {
		t.Errorf("priority = %s, want HIGH", iss.Priority)
	}
}

func TestQuality_AllSubQuestionsAddressed(t *testing.T) {
	issues := detectQuality(t,
		userTurn("How do I configure authentication? And what about rotating credentials?"),
		assistantTurn("You configure authentication in settings. Rotating credentials works through the rotate command."),
	)
	if findSignature(issues, "incomplete-response") != nil {
		t.Errorf("expected no incompleteness issue, got %+v", issues)
	}
}

func TestQuality_NoQuestionNoIssue(t *testing.T) {
	issues := detectQuality(t,
		userTurn("thanks, looks good"),
		assistantTurn("Glad to help."),
	)
	if findSignature(issues, "incomplete-response") != nil {
		t.Error("statements without sub-questions must not fire")
	}
}

func TestQuality_MissingTurnsSkipsSilently(t *testing.T) {
	d := &qualityDetector{}
	issues := d.Detect(&thread.Summary{ThreadID: "t-1"}, gate.Decision{})
	if len(issues) != 0 {
		t.Errorf("expected no issues without turns, got %+v", issues)
	}
}

func TestQuality_Contradiction(t *testing.T) {
	issues := detectQuality(t,
		assistantTurn("The cache layer supports concurrent writes safely."),
		userTurn("are you sure?"),
		assistantTurn("The cache layer does not support concurrent writes."),
	)
	iss := findSignature(issues, "contradiction")
	if iss == nil {
		t.Fatalf("expected contradiction, got %+v", issues)
	}
}

func TestQuality_NoContradictionOnConsistentTurns(t *testing.T) {
	issues := detectQuality(t,
		assistantTurn("The export job runs nightly at two."),
		assistantTurn("The export job writes parquet files."),
	)
	if findSignature(issues, "contradiction") != nil {
		t.Errorf("expected no contradiction, got %+v", issues)
	}
}

func TestQuality_LeakyError_Traceback(t *testing.T) {
	issues := detectQuality(t,
		assistantTurn("Something failed:\nTraceback (most recent call last)\n  File \"svc.py\", line 10"),
	)
	if findSignature(issues, "leaky-error") == nil {
		t.Fatalf("expected leaky-error, got %+v", issues)
	}
}

func TestQuality_LeakyError_Panic(t *testing.T) {
	issues := detectQuality(t,
		assistantTurn("the run stopped with panic: runtime error: index out of range"),
	)
	if findSignature(issues, "leaky-error") == nil {
		t.Fatalf("expected leaky-error, got %+v", issues)
	}
}

func TestQuality_PlainErrorMessageOk(t *testing.T) {
	issues := detectQuality(t,
		userTurn("did it work?"),
		assistantTurn("The import did not finish because the file was empty. Nothing to retry."),
	)
	if findSignature(issues, "leaky-error") != nil {
		t.Error("a user-friendly error must not count as leaky")
	}
}

func TestSubQuestions(t *testing.T) {
	subs := subQuestions("First part is a statement. What is the limit? And how do I raise it?")
	if len(subs) != 2 {
		t.Fatalf("expected 2 sub-questions, got %d: %v", len(subs), subs)
	}
}
