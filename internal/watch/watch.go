// Package watch monitors the inbox directory for new batch files and
// reports them once writing has settled.
package watch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettleDelay is how long a batch file must stay quiet before it
// is considered fully written. Exporters write batches incrementally,
// so reacting to the first write would parse a truncated file.
const DefaultSettleDelay = 2 * time.Second

// Watcher emits inbox batch paths on Batches once they settle.
type Watcher struct {
	inboxDir    string
	settleDelay time.Duration
	batches     chan string
}

// New creates a watcher for the inbox directory. settleDelay <= 0 uses
// DefaultSettleDelay.
func New(inboxDir string, settleDelay time.Duration) *Watcher {
	if settleDelay <= 0 {
		settleDelay = DefaultSettleDelay
	}
	return &Watcher{
		inboxDir:    inboxDir,
		settleDelay: settleDelay,
		batches:     make(chan string),
	}
}

// Batches returns the channel of settled batch paths. Closed when Run
// returns.
func (w *Watcher) Batches() <-chan string {
	return w.batches
}

// Run watches the inbox until the context is cancelled. Batches already
// sitting in the inbox at startup are emitted first.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.batches)

	if err := os.MkdirAll(w.inboxDir, 0o755); err != nil {
		return fmt.Errorf("create inbox dir: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.inboxDir); err != nil {
		return fmt.Errorf("watch %s: %w", w.inboxDir, err)
	}

	// Pick up batches that arrived before the watcher started.
	if err := w.emitExisting(ctx); err != nil {
		return err
	}

	// pending maps a batch path to its settle timer. A new write on a
	// pending path resets the timer.
	pending := make(map[string]*time.Timer)
	settled := make(chan string)
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !isBatch(ev.Name) {
				continue
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			path := ev.Name
			if t, ok := pending[path]; ok {
				t.Reset(w.settleDelay)
				continue
			}
			pending[path] = time.AfterFunc(w.settleDelay, func() {
				select {
				case settled <- path:
				case <-ctx.Done():
				}
			})

		case path := <-settled:
			delete(pending, path)
			select {
			case w.batches <- path:
			case <-ctx.Done():
				return ctx.Err()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Printf("warning: watch error: %v", err)
		}
	}
}

func (w *Watcher) emitExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.inboxDir)
	if err != nil {
		return fmt.Errorf("read inbox: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !isBatch(e.Name()) {
			continue
		}
		select {
		case w.batches <- filepath.Join(w.inboxDir, e.Name()):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func isBatch(path string) bool {
	return strings.HasSuffix(path, ".jsonl")
}
