// Package analyze runs the full detection pipeline over a batch of
// threads. Per-thread analysis is independent and runs concurrently;
// card building is the single reduce step over the whole batch.
package analyze

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jmoretti/threadtriage/internal/card"
	"github.com/jmoretti/threadtriage/internal/detect"
	"github.com/jmoretti/threadtriage/internal/gate"
	"github.com/jmoretti/threadtriage/internal/thread"
)

// Options configure one batch run.
type Options struct {
	// Exclude lists thread IDs already processed in prior runs.
	// The caller owns that state; this package never reads it
	// ambiently.
	Exclude map[string]bool

	// Parallelism bounds concurrent per-thread analysis. <= 0 means 4.
	Parallelism int

	Gate   gate.Thresholds
	Detect detect.Config
}

// ThreadResult is the analysis outcome for one thread.
type ThreadResult struct {
	Thread *thread.Summary
	Depth  gate.Depth
	Issues []detect.Issue
}

// BatchResult is the aggregate outcome for one batch.
type BatchResult struct {
	RunID   string
	Results []ThreadResult

	// Cards are the numbered, ticket-ready CRITICAL/HIGH findings.
	Cards []card.IssueCard

	// Patterns are informational cross-thread notes.
	Patterns []card.Pattern

	// Informational holds the MEDIUM/LOW findings for the flat
	// summary table; they never become cards.
	Informational []detect.Issue

	// Done lists every analyzed thread ID, the completion signal for
	// the state-tracking collaborator.
	Done []string

	// Excluded counts threads skipped via Options.Exclude.
	Excluded int
}

// Run analyzes a batch. Results are reduced in input order, so output
// is deterministic regardless of scheduling. On cancellation no
// partially built cards are returned: the reduce step never runs.
func Run(ctx context.Context, threads []thread.Summary, opts Options) (*BatchResult, error) {
	if opts.Gate == (gate.Thresholds{}) {
		opts.Gate = gate.DefaultThresholds()
	}
	if opts.Detect == (detect.Config{}) {
		opts.Detect = detect.DefaultConfig()
	}
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = 4
	}

	res := &BatchResult{RunID: uuid.NewString()[:8]}

	var work []thread.Summary
	for _, t := range threads {
		if opts.Exclude[t.ThreadID] {
			res.Excluded++
			continue
		}
		work = append(work, t)
	}

	scanner := detect.NewScanner(opts.Detect)
	results := make([]ThreadResult, len(work))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i := range work {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t := &work[i]
			dec := gate.Classify(t, opts.Gate)
			results[i] = ThreadResult{
				Thread: t,
				Depth:  dec.Depth,
				Issues: scanner.Scan(t, dec),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analyze batch: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analyze batch: %w", err)
	}

	// Reduce in input order.
	res.Results = results
	evals := make(map[string][]thread.Evaluation)
	var all []detect.Issue
	for i := range results {
		all = append(all, results[i].Issues...)
		res.Done = append(res.Done, results[i].Thread.ThreadID)
		if len(results[i].Thread.Evaluations) > 0 {
			evals[results[i].Thread.ThreadID] = results[i].Thread.Evaluations
		}
	}

	for _, iss := range all {
		if !iss.Priority.Actionable() {
			res.Informational = append(res.Informational, iss)
		}
	}
	res.Cards = card.Build(all, evals)
	res.Patterns = card.Patterns(all)

	return res, nil
}

// NoThreads reports the batch-was-empty terminal state.
func (r *BatchResult) NoThreads() bool {
	return len(r.Results) == 0
}

// NoActionableIssues reports the analyzed-but-clean terminal state.
func (r *BatchResult) NoActionableIssues() bool {
	return len(r.Results) > 0 && len(r.Cards) == 0
}
