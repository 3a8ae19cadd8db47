package thread

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseFile reads and parses a JSONL batch file of thread summaries.
func ParseFile(path string) (*Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open batch: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a JSONL batch from a reader, one Summary per line.
func Parse(r io.Reader) (*Batch, error) {
	batch := &Batch{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024) // 10MB max line

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var s Summary
		if err := json.Unmarshal([]byte(line), &s); err != nil {
			// Skip unparseable lines rather than failing the whole batch
			batch.SkippedLines++
			continue
		}

		if s.ThreadID == "" {
			batch.SkippedLines++
			continue
		}

		batch.Threads = append(batch.Threads, s)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan batch: %w", err)
	}

	return batch, nil
}

// AssistantText returns all assistant turn text joined with newlines.
func (s *Summary) AssistantText() string {
	var parts []string
	for _, t := range s.Turns {
		if t.Role == "assistant" && t.Text != "" {
			parts = append(parts, t.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// AssistantTurns returns the assistant turns in conversation order.
func (s *Summary) AssistantTurns() []Turn {
	var turns []Turn
	for _, t := range s.Turns {
		if t.Role == "assistant" {
			turns = append(turns, t)
		}
	}
	return turns
}

// FinalUserTurn returns the text of the last user turn, or "".
func (s *Summary) FinalUserTurn() string {
	for i := len(s.Turns) - 1; i >= 0; i-- {
		if s.Turns[i].Role == "user" {
			return s.Turns[i].Text
		}
	}
	return ""
}

// FinalAssistantTurn returns the text of the last assistant turn, or "".
func (s *Summary) FinalAssistantTurn() string {
	for i := len(s.Turns) - 1; i >= 0; i-- {
		if s.Turns[i].Role == "assistant" {
			return s.Turns[i].Text
		}
	}
	return ""
}

// SlowestStep returns the step with the largest duration.
// ok is false when the thread has no steps.
func (s *Summary) SlowestStep() (Step, bool) {
	if len(s.Steps) == 0 {
		return Step{}, false
	}
	slowest := s.Steps[0]
	for _, st := range s.Steps[1:] {
		if st.DurationMS > slowest.DurationMS {
			slowest = st
		}
	}
	return slowest, true
}

// Consistent reports whether total equals prompt + completion.
func (u TokenUsage) Consistent() bool {
	return u.Total == u.Prompt+u.Completion
}

// Quote renders token usage exactly as delivered. Inconsistent input is
// quoted literally, never reconciled.
func (u TokenUsage) Quote() string {
	return fmt.Sprintf("token_usage: total=%d prompt=%d completion=%d", u.Total, u.Prompt, u.Completion)
}
