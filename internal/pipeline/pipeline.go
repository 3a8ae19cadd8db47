// Package pipeline wires the whole triage flow together: parse batch
// files, analyze threads, file tickets, record state, write the run
// report and archive the processed batches.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoretti/threadtriage/internal/analyze"
	"github.com/jmoretti/threadtriage/internal/archive"
	"github.com/jmoretti/threadtriage/internal/config"
	"github.com/jmoretti/threadtriage/internal/report"
	"github.com/jmoretti/threadtriage/internal/state"
	"github.com/jmoretti/threadtriage/internal/thread"
	"github.com/jmoretti/threadtriage/internal/ticket"
)

// Options control one pipeline run.
type Options struct {
	// DryRun analyzes and reports but files no real tickets and
	// leaves batch files in place.
	DryRun bool

	// NoTickets skips ticket creation entirely.
	NoTickets bool

	// Reprocess ignores the processed-thread state and re-analyzes
	// everything.
	Reprocess bool

	// Out receives the terminal report. Defaults to os.Stdout.
	Out io.Writer
}

// Pipeline runs triage over batch files using a shared config and
// state store.
type Pipeline struct {
	cfg     config.Config
	store   *state.Store
	creator ticket.Creator
}

// New builds a pipeline. store may be nil for stateless runs; creator
// may be nil, which disables ticketing.
func New(cfg config.Config, store *state.Store, creator ticket.Creator) *Pipeline {
	return &Pipeline{cfg: cfg, store: store, creator: creator}
}

// CreatorFromConfig builds the configured ticket backend. Returns nil
// when ticketing is disabled.
func CreatorFromConfig(cfg config.TicketingConfig) (ticket.Creator, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	token := os.Getenv(cfg.APITokenEnv)
	switch cfg.Provider {
	case "jira":
		return ticket.NewJira(ticket.JiraConfig{
			BaseURL:    cfg.JiraBaseURL,
			ProjectKey: cfg.JiraProjectKey,
			Email:      cfg.JiraEmail,
			APIToken:   token,
		}, nil), nil
	case "notion":
		return ticket.NewNotion(ticket.NotionConfig{
			DatabaseID: cfg.NotionDatabaseID,
			APIToken:   token,
		}, nil), nil
	default:
		return nil, fmt.Errorf("unknown ticketing provider %q", cfg.Provider)
	}
}

// Process triages the given batch files as one run.
func (p *Pipeline) Process(ctx context.Context, paths []string, opts Options) (*analyze.BatchResult, error) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	threads, err := loadBatches(paths)
	if err != nil {
		return nil, err
	}

	exclude := map[string]bool{}
	if p.store != nil && !opts.Reprocess {
		exclude, err = p.store.Processed()
		if err != nil {
			return nil, fmt.Errorf("load processed state: %w", err)
		}
	}

	res, err := analyze.Run(ctx, threads, analyze.Options{
		Exclude:     exclude,
		Parallelism: p.cfg.Analysis.Parallelism,
		Gate:        p.cfg.GateThresholds(),
		Detect:      p.cfg.DetectConfig(),
	})
	if err != nil {
		return nil, err
	}

	tickets := p.fileTickets(ctx, res, opts)

	fmt.Fprint(out, report.Format(res, tickets))

	if p.store != nil {
		p.recordRun(res, tickets)
	}

	if !res.NoThreads() {
		if err := p.writeReport(res, tickets); err != nil {
			log.Printf("warning: write report: %v", err)
		}
	}

	if !opts.DryRun {
		p.archiveBatches(paths)
	}

	return res, nil
}

func loadBatches(paths []string) ([]thread.Summary, error) {
	var threads []thread.Summary
	for _, path := range paths {
		r, err := archive.Open(path)
		if err != nil {
			return nil, err
		}
		batch, err := thread.Parse(r)
		r.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if batch.SkippedLines > 0 {
			log.Printf("warning: %s: skipped %d malformed lines", path, batch.SkippedLines)
		}
		threads = append(threads, batch.Threads...)
	}
	return threads, nil
}

func (p *Pipeline) fileTickets(ctx context.Context, res *analyze.BatchResult, opts Options) []ticket.Result {
	if opts.NoTickets || len(res.Cards) == 0 {
		return nil
	}
	if opts.DryRun {
		return ticket.CreateAll(ctx, ticket.DryRun{}, res.Cards)
	}
	if p.creator == nil {
		return nil
	}
	return ticket.CreateAll(ctx, p.creator, res.Cards)
}

func (p *Pipeline) recordRun(res *analyze.BatchResult, tickets []ticket.Result) {
	byThread := ticketsByThread(res, tickets)
	for _, tr := range res.Results {
		rec := state.Record{
			ThreadID:      tr.Thread.ThreadID,
			Name:          tr.Thread.ThreadName,
			Status:        tr.Thread.Status,
			ProcessedAt:   time.Now(),
			RunID:         res.RunID,
			IssuesCreated: cardCount(res, tr.Thread.ThreadID),
		}
		for _, t := range byThread[tr.Thread.ThreadID] {
			if t.Err != nil {
				rec.ErrorMessage = t.Err.Error()
				continue
			}
			rec.TicketIDs = append(rec.TicketIDs, t.TicketID)
			rec.TicketURLs = append(rec.TicketURLs, t.TicketURL)
		}
		if err := p.store.Record(rec); err != nil {
			log.Printf("warning: record %s: %v", tr.Thread.ThreadID, err)
		}
	}
}

func ticketsByThread(res *analyze.BatchResult, tickets []ticket.Result) map[string][]ticket.Result {
	byCard := make(map[int]string, len(res.Cards))
	for _, c := range res.Cards {
		byCard[c.Number] = c.Sources.ThreadID
	}
	m := make(map[string][]ticket.Result)
	for _, t := range tickets {
		id := byCard[t.CardNumber]
		m[id] = append(m[id], t)
	}
	return m
}

func cardCount(res *analyze.BatchResult, threadID string) int {
	n := 0
	for _, c := range res.Cards {
		if c.Sources.ThreadID == threadID {
			n++
		}
	}
	return n
}

func (p *Pipeline) writeReport(res *analyze.BatchResult, tickets []ticket.Result) error {
	dir := p.cfg.ReportsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	now := time.Now()
	path := filepath.Join(dir, report.ReportFilename(res.RunID, now))
	return os.WriteFile(path, []byte(report.Markdown(res, tickets, now)), 0o644)
}

func (p *Pipeline) archiveBatches(paths []string) {
	for _, path := range paths {
		if filepath.Ext(path) != ".jsonl" {
			continue // already archived
		}
		if p.cfg.Archive.Compress {
			if _, err := archive.Archive(path, p.cfg.ArchiveDir()); err != nil {
				log.Printf("warning: archive %s: %v", path, err)
			}
			continue
		}
		if err := os.MkdirAll(p.cfg.ArchiveDir(), 0o755); err != nil {
			log.Printf("warning: archive %s: %v", path, err)
			continue
		}
		dest := filepath.Join(p.cfg.ArchiveDir(), filepath.Base(path))
		if err := os.Rename(path, dest); err != nil {
			log.Printf("warning: archive %s: %v", path, err)
		}
	}
}
