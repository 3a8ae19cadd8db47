package thread

// Thread status values as delivered by the integration service.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusTimeout = "timeout"
	StatusError   = "error"
)

// Summary is one analyzed conversation thread. A batch file carries one
// Summary per JSONL line. Summaries are immutable once parsed.
type Summary struct {
	ThreadID        string     `json:"thread_id"`
	ThreadName      string     `json:"thread_name"`
	Status          string     `json:"status"`
	RunID           string     `json:"run_id,omitempty"`
	ExternalURL     string     `json:"external_url,omitempty"`
	DurationSeconds float64    `json:"duration_seconds"`
	TokenUsage      TokenUsage `json:"token_usage"`
	Steps           []Step     `json:"steps,omitempty"`
	AnnotationScore *float64   `json:"annotation_score,omitempty"`

	// Turns is the full turn-by-turn content of the conversation,
	// in exchange order.
	Turns []Turn `json:"turns,omitempty"`

	// Evaluations holds auxiliary evaluator outputs attached upstream.
	Evaluations []Evaluation `json:"evaluations,omitempty"`
}

// TokenUsage breaks down token consumption for a thread.
type TokenUsage struct {
	Total      int `json:"total"`
	Prompt     int `json:"prompt"`
	Completion int `json:"completion"`
}

// Step is one timed unit of work inside a thread.
type Step struct {
	Name       string `json:"name"`
	DurationMS int    `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// Turn is one message in the conversation.
type Turn struct {
	Role string `json:"role"` // "user" or "assistant"
	Text string `json:"text"`
}

// Evaluation is the result from a single upstream evaluation tool.
type Evaluation struct {
	Tool    string  `json:"tool"`
	Status  string  `json:"status"` // pass, warning, fail, error
	Score   float64 `json:"score"`
	Message string  `json:"message,omitempty"`
}

// Batch holds the parsed contents of one batch file.
type Batch struct {
	Threads []Summary
	// SkippedLines counts lines that could not be parsed or were
	// missing a thread_id. Bad lines never fail the whole batch.
	SkippedLines int
}
