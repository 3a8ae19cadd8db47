// Package report renders batch analysis results for terminal output
// and as a markdown run report.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoretti/threadtriage/internal/analyze"
	"github.com/jmoretti/threadtriage/internal/card"
	"github.com/jmoretti/threadtriage/internal/detect"
	"github.com/jmoretti/threadtriage/internal/gate"
	"github.com/jmoretti/threadtriage/internal/ticket"
)

// Format renders a batch result for terminal output. Ticket results
// may be nil when ticketing was skipped.
func Format(res *analyze.BatchResult, tickets []ticket.Result) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Triage Run %s\n", res.RunID))
	b.WriteString(strings.Repeat("=", 40) + "\n\n")

	if res.NoThreads() {
		b.WriteString("No threads to analyze.\n")
		if res.Excluded > 0 {
			b.WriteString(fmt.Sprintf("%d thread(s) already processed; use --reprocess to re-analyze.\n", res.Excluded))
		}
		return b.String()
	}

	b.WriteString("Overview\n")
	b.WriteString(fmt.Sprintf("  Threads analyzed   %d\n", len(res.Results)))
	if res.Excluded > 0 {
		b.WriteString(fmt.Sprintf("  Threads skipped    %d (already processed)\n", res.Excluded))
	}
	b.WriteString(fmt.Sprintf("  Full-depth scans   %d\n", fullDepthCount(res)))
	b.WriteString(fmt.Sprintf("  Issue cards        %d\n", len(res.Cards)))
	b.WriteString(fmt.Sprintf("  Informational      %d\n\n", len(res.Informational)))

	if res.NoActionableIssues() {
		b.WriteString("No actionable issues found.\n")
		writeInformational(&b, res.Informational)
		return b.String()
	}

	b.WriteString("Issue Cards\n")
	for _, c := range res.Cards {
		indicator := " "
		if c.Priority == "CRITICAL" {
			indicator = "!"
		}
		b.WriteString(fmt.Sprintf("  %s #%-3d %-8s %-12s %s\n",
			indicator, c.Number, c.Priority, c.Category, c.Title))
		b.WriteString(fmt.Sprintf("         thread: %s\n", c.Sources.ThreadName))
		if t := ticketLine(tickets, c.Number); t != "" {
			b.WriteString(fmt.Sprintf("         ticket: %s\n", t))
		}
	}
	b.WriteString("\n")

	writeInformational(&b, res.Informational)
	writePatterns(&b, res.Patterns)

	return b.String()
}

func fullDepthCount(res *analyze.BatchResult) int {
	n := 0
	for _, r := range res.Results {
		if r.Depth == gate.Full {
			n++
		}
	}
	return n
}

func writeInformational(b *strings.Builder, issues []detect.Issue) {
	if len(issues) == 0 {
		return
	}
	b.WriteString("Informational (no cards created)\n")
	for _, iss := range issues {
		b.WriteString(fmt.Sprintf("  %-8s %-12s %-28s %s\n",
			iss.Priority, iss.Category, iss.Signature, iss.ThreadName))
	}
	b.WriteString("\n")
}

func writePatterns(b *strings.Builder, patterns []card.Pattern) {
	if len(patterns) == 0 {
		return
	}
	b.WriteString("Cross-Thread Patterns\n")
	for _, p := range patterns {
		b.WriteString(fmt.Sprintf("  %s/%s in %d threads (%d occurrences)\n",
			p.Category, p.Signature, len(p.ThreadIDs), p.Count))
	}
	b.WriteString("\n")
}

func ticketLine(tickets []ticket.Result, cardNumber int) string {
	for _, t := range tickets {
		if t.CardNumber != cardNumber {
			continue
		}
		if t.Err != nil {
			return fmt.Sprintf("failed (%v)", t.Err)
		}
		if t.TicketURL != "" {
			return fmt.Sprintf("%s (%s)", t.TicketID, t.TicketURL)
		}
		return t.TicketID
	}
	return ""
}

// Markdown renders a full run report suitable for archiving alongside
// the batch. Ticket results may be nil.
func Markdown(res *analyze.BatchResult, tickets []ticket.Result, now time.Time) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# Triage Report %s\n\n", res.RunID))
	b.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format("2006-01-02 15:04")))

	if res.NoThreads() {
		b.WriteString("No threads to analyze.\n")
		return b.String()
	}

	b.WriteString("## Summary\n\n")
	b.WriteString(fmt.Sprintf("- Threads analyzed: %d\n", len(res.Results)))
	if res.Excluded > 0 {
		b.WriteString(fmt.Sprintf("- Threads skipped (already processed): %d\n", res.Excluded))
	}
	b.WriteString(fmt.Sprintf("- Issue cards: %d\n", len(res.Cards)))
	b.WriteString(fmt.Sprintf("- Informational findings: %d\n\n", len(res.Informational)))

	if res.NoActionableIssues() {
		b.WriteString("No actionable issues found.\n\n")
	}

	for _, c := range res.Cards {
		b.WriteString(fmt.Sprintf("## #%d %s\n\n", c.Number, c.Title))
		b.WriteString(fmt.Sprintf("- Priority: %s\n", c.Priority))
		b.WriteString(fmt.Sprintf("- Category: %s\n", c.Category))
		b.WriteString(fmt.Sprintf("- Status: %s\n", c.Status))
		b.WriteString(fmt.Sprintf("- Thread: %s (`%s`)\n", c.Sources.ThreadName, c.Sources.ThreadID))
		if c.Sources.ExternalURL != "" {
			b.WriteString(fmt.Sprintf("- Link: %s\n", c.Sources.ExternalURL))
		}
		if t := ticketLine(tickets, c.Number); t != "" {
			b.WriteString(fmt.Sprintf("- Ticket: %s\n", t))
		}
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%s\n\n", c.Description))
		b.WriteString(fmt.Sprintf("**Details:** %s\n\n", c.Details))
		b.WriteString(fmt.Sprintf("**Recommendation:** %s\n\n", c.Recommendation))
		if s := c.PotentialSolutions; s != nil {
			b.WriteString(fmt.Sprintf("**Root cause:** %s\n\n", s.RootCause))
			b.WriteString(fmt.Sprintf("**Immediate fix:** %s\n\n", s.ImmediateFix))
			if s.LongTermFix != "" {
				b.WriteString(fmt.Sprintf("**Long-term fix:** %s\n\n", s.LongTermFix))
			}
			for _, cs := range s.CodeSuggestions {
				b.WriteString(fmt.Sprintf("- %s\n", cs))
			}
			if len(s.CodeSuggestions) > 0 {
				b.WriteString("\n")
			}
		}
		if len(c.EvaluationResults) > 0 {
			b.WriteString("| Evaluator | Status | Score |\n")
			b.WriteString("|-----------|--------|-------|\n")
			for _, e := range c.EvaluationResults {
				b.WriteString(fmt.Sprintf("| %s | %s | %.2f |\n", e.Tool, e.Status, e.Score))
			}
			b.WriteString("\n")
		}
	}

	if len(res.Informational) > 0 {
		b.WriteString("## Informational Findings\n\n")
		b.WriteString("| Priority | Category | Signature | Thread |\n")
		b.WriteString("|----------|----------|-----------|--------|\n")
		for _, iss := range res.Informational {
			b.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				iss.Priority, iss.Category, iss.Signature, iss.ThreadName))
		}
		b.WriteString("\n")
	}

	if len(res.Patterns) > 0 {
		b.WriteString("## Cross-Thread Patterns\n\n")
		for _, p := range res.Patterns {
			b.WriteString(fmt.Sprintf("- %s/%s seen in %d threads (%d occurrences)\n",
				p.Category, p.Signature, len(p.ThreadIDs), p.Count))
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n")
	b.WriteString("*tt v0.1.0*\n")
	return b.String()
}

// ReportFilename returns the archive filename for a run report.
func ReportFilename(runID string, now time.Time) string {
	return fmt.Sprintf("%s-%s.md", now.Format("2006-01-02"), runID)
}

// SortTickets orders ticket results by card number for stable display.
func SortTickets(tickets []ticket.Result) {
	sort.Slice(tickets, func(i, j int) bool {
		return tickets[i].CardNumber < tickets[j].CardNumber
	})
}
