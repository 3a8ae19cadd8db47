// Package card normalizes surviving issues into ticket-ready records
// and aggregates cross-thread patterns over a batch.
package card

import (
	"github.com/jmoretti/threadtriage/internal/detect"
	"github.com/jmoretti/threadtriage/internal/solution"
	"github.com/jmoretti/threadtriage/internal/thread"
)

// StatusBacklog is the workflow status of every card at emission time.
const StatusBacklog = "BACKLOG"

// AffectedCode points at the implicated component with a suggestion.
type AffectedCode struct {
	Component  string `json:"component"`
	Suggestion string `json:"suggestion"`
}

// Sources carries the thread references for traceability.
type Sources struct {
	ThreadID    string `json:"thread_id"`
	ThreadName  string `json:"thread_name"`
	RunID       string `json:"run_id,omitempty"`
	ExternalURL string `json:"external_url"`
}

// IssueCard is the externally visible, ticket-ready record. Cards are
// built once per surviving issue and handed to the ticketing
// collaborator; their lifecycle ends there.
type IssueCard struct {
	Number             int                 `json:"number"`
	Title              string              `json:"title"`
	Priority           string              `json:"priority"`
	Category           string              `json:"category"`
	Status             string              `json:"status"`
	Details            string              `json:"details"`
	Description        string              `json:"description"`
	Recommendation     string              `json:"recommendation"`
	PotentialSolutions *solution.Solutions `json:"potential_solutions,omitempty"`
	AffectedCode       AffectedCode        `json:"affected_code"`
	Sources            Sources             `json:"sources"`
	EvaluationResults  []thread.Evaluation `json:"evaluation_results"`
}

// Pattern is an informational cross-thread note: the same rule fired in
// two or more threads of one batch. It is never an actionable card.
type Pattern struct {
	Category  detect.Category `json:"category"`
	Signature string          `json:"signature"`
	ThreadIDs []string        `json:"thread_ids"`
	Count     int             `json:"count"`
}
