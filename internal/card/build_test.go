package card

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jmoretti/threadtriage/internal/detect"
	"github.com/jmoretti/threadtriage/internal/thread"
)

func issue(cat detect.Category, prio detect.Priority, threadID, sig string) detect.Issue {
	return detect.Issue{
		Category:   cat,
		Priority:   prio,
		Title:      string(cat) + " finding",
		Evidence:   "evidence for " + sig,
		Signature:  sig,
		ThreadID:   threadID,
		ThreadName: "thread " + threadID,
	}
}

func TestBuild_FiltersMediumAndLow(t *testing.T) {
	issues := []detect.Issue{
		issue(detect.CategorySecurity, detect.Critical, "t-1", "sql-leak"),
		issue(detect.CategoryOptimization, detect.Medium, "t-1", "token-usage-high"),
		issue(detect.CategoryUX, detect.Medium, "t-1", "jargon-density"),
		issue(detect.CategoryQuality, detect.High, "t-2", "contradiction"),
		issue(detect.CategoryPerformance, detect.Low, "t-2", "slow-execution"),
	}
	cards := Build(issues, nil)
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(cards))
	}
	for _, c := range cards {
		if c.Priority != "CRITICAL" && c.Priority != "HIGH" {
			t.Errorf("card %d has priority %s", c.Number, c.Priority)
		}
	}
}

func TestBuild_SortsCriticalFirstStable(t *testing.T) {
	issues := []detect.Issue{
		issue(detect.CategoryQuality, detect.High, "t-1", "incomplete-response"),
		issue(detect.CategoryBug, detect.High, "t-1", "step-error"),
		issue(detect.CategorySecurity, detect.Critical, "t-2", "pii-leak"),
		issue(detect.CategorySecurity, detect.Critical, "t-3", "sql-leak"),
	}
	cards := Build(issues, nil)

	var got []string
	for _, c := range cards {
		got = append(got, c.Priority+"/"+c.Sources.ThreadID)
	}
	want := []string{"CRITICAL/t-2", "CRITICAL/t-3", "HIGH/t-1", "HIGH/t-1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sort order (-want +got):\n%s", diff)
	}

	// Numbering follows final sort order, 1..N.
	for i, c := range cards {
		if c.Number != i+1 {
			t.Errorf("card %d numbered %d", i, c.Number)
		}
	}
	// Detection order preserved within a tier.
	if cards[2].Category != "QUALITY" || cards[3].Category != "BUG" {
		t.Errorf("tie-break lost detection order: %s then %s", cards[2].Category, cards[3].Category)
	}
}

func TestBuild_CardShape(t *testing.T) {
	iss := issue(detect.CategorySecurity, detect.Critical, "t-9", "credential-leak")
	iss.RunID = "run-1"
	iss.ExternalURL = "https://annotations.example.com/t-9"
	iss.AffectedStep = "render_reply"

	evals := map[string][]thread.Evaluation{
		"t-9": {{Tool: "leak_scan", Status: "fail", Score: 0.1}},
	}
	cards := Build([]detect.Issue{iss}, evals)
	if len(cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(cards))
	}
	c := cards[0]

	if c.Status != StatusBacklog {
		t.Errorf("status = %q, want BACKLOG", c.Status)
	}
	if !strings.HasPrefix(c.Title, "[CRITICAL] ") {
		t.Errorf("title = %q", c.Title)
	}
	if c.PotentialSolutions == nil || len(c.PotentialSolutions.CodeSuggestions) == 0 {
		t.Error("critical card must carry full potential_solutions")
	}
	if c.AffectedCode.Component != "render_reply" {
		t.Errorf("component = %q", c.AffectedCode.Component)
	}
	if c.Sources.RunID != "run-1" || c.Sources.ExternalURL == "" {
		t.Errorf("sources = %+v", c.Sources)
	}
	if len(c.EvaluationResults) != 1 || c.EvaluationResults[0].Tool != "leak_scan" {
		t.Errorf("evaluation results = %+v", c.EvaluationResults)
	}
}

func TestBuild_EvaluationResultsNeverNull(t *testing.T) {
	cards := Build([]detect.Issue{issue(detect.CategoryBug, detect.High, "t-1", "step-error")}, nil)
	data, err := json.Marshal(cards[0])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"evaluation_results":[]`) {
		t.Errorf("expected empty array, got %s", data)
	}
	if !strings.Contains(string(data), `"status":"BACKLOG"`) {
		t.Errorf("expected literal BACKLOG status, got %s", data)
	}
}

func TestBuild_HighCardOmitsDeepSolutions(t *testing.T) {
	cards := Build([]detect.Issue{issue(detect.CategoryQuality, detect.High, "t-1", "leaky-error")}, nil)
	sol := cards[0].PotentialSolutions
	if sol == nil {
		t.Fatal("HIGH cards still carry root cause and immediate fix")
	}
	if sol.LongTermFix != "" || sol.CodeSuggestions != nil {
		t.Errorf("HIGH card leaked deep solution fields: %+v", sol)
	}
}

func TestBuild_UXFoldsIntoQuality(t *testing.T) {
	// UX is MEDIUM and filtered in practice; the mapping is exercised
	// via an artificially escalated issue.
	iss := issue(detect.CategoryUX, detect.High, "t-1", "jargon-density")
	cards := Build([]detect.Issue{iss}, nil)
	if cards[0].Category != "QUALITY" {
		t.Errorf("category = %s, want QUALITY", cards[0].Category)
	}
}

func TestBuild_Empty(t *testing.T) {
	if cards := Build(nil, nil); len(cards) != 0 {
		t.Errorf("expected no cards, got %d", len(cards))
	}
}

func TestPatterns_CrossThread(t *testing.T) {
	issues := []detect.Issue{
		issue(detect.CategorySecurity, detect.Critical, "t-1", "internal-field-leak"),
		issue(detect.CategorySecurity, detect.Critical, "t-2", "internal-field-leak"),
		issue(detect.CategoryQuality, detect.High, "t-1", "contradiction"),
	}
	patterns := Patterns(issues)
	if len(patterns) != 1 {
		t.Fatalf("expected 1 pattern, got %d: %+v", len(patterns), patterns)
	}
	p := patterns[0]
	if p.Signature != "internal-field-leak" || p.Count != 2 {
		t.Errorf("pattern = %+v", p)
	}
	if diff := cmp.Diff([]string{"t-1", "t-2"}, p.ThreadIDs); diff != "" {
		t.Errorf("thread ids (-want +got):\n%s", diff)
	}
}

func TestPatterns_SameThreadTwiceIsNotAPattern(t *testing.T) {
	issues := []detect.Issue{
		issue(detect.CategoryQuality, detect.High, "t-1", "contradiction"),
		issue(detect.CategoryQuality, detect.High, "t-1", "contradiction"),
	}
	if patterns := Patterns(issues); len(patterns) != 0 {
		t.Errorf("repeats within one thread are not cross-thread patterns: %+v", patterns)
	}
}
