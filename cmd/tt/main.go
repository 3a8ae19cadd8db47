package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/jmoretti/threadtriage/internal/check"
	"github.com/jmoretti/threadtriage/internal/config"
	"github.com/jmoretti/threadtriage/internal/help"
	"github.com/jmoretti/threadtriage/internal/pipeline"
	"github.com/jmoretti/threadtriage/internal/state"
	"github.com/jmoretti/threadtriage/internal/ticket"
	"github.com/jmoretti/threadtriage/internal/watch"
)

const version = "0.1.0"

func main() {
	help.Version = version

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("load config: %v", err)
	}

	switch os.Args[1] {
	case "analyze":
		runAnalyze(cfg, os.Args[2:])

	case "watch":
		runWatch(cfg, os.Args[2:])

	case "status":
		runStatus(cfg)

	case "check":
		rep := check.Run(cfg)
		fmt.Print(rep.Format())
		if rep.HasFailures() {
			os.Exit(1)
		}

	case "init":
		runInit(cfg)

	case "clear-state":
		store := mustOpenStore(cfg)
		defer store.Close()
		if err := store.Clear(); err != nil {
			fatal("clear state: %v", err)
		}
		fmt.Println("processing state cleared")

	case "version":
		fmt.Printf("tt v%s (threadtriage)\n", version)

	case "help", "--help", "-h":
		if len(os.Args) > 2 {
			printCommandHelp(os.Args[2])
			return
		}
		usage()

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func runAnalyze(cfg config.Config, args []string) {
	opts := pipeline.Options{
		DryRun:    hasFlag(args, "--dry-run"),
		NoTickets: hasFlag(args, "--no-tickets"),
		Reprocess: hasFlag(args, "--reprocess"),
	}

	paths := positional(args)
	if len(paths) == 0 {
		var err error
		paths, err = inboxBatches(cfg.InboxDir())
		if err != nil {
			fatal("scan inbox: %v", err)
		}
		if len(paths) == 0 {
			fmt.Printf("inbox is empty: %s\n", cfg.InboxDir())
			return
		}
	}

	store := mustOpenStore(cfg)
	defer store.Close()

	p := pipeline.New(cfg, store, mustCreator(cfg, opts))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := p.Process(ctx, paths, opts); err != nil {
		fatal("analyze: %v", err)
	}
}

func runWatch(cfg config.Config, args []string) {
	opts := pipeline.Options{
		DryRun:    hasFlag(args, "--dry-run"),
		NoTickets: hasFlag(args, "--no-tickets"),
	}

	store := mustOpenStore(cfg)
	defer store.Close()

	p := pipeline.New(cfg, store, mustCreator(cfg, opts))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := watch.New(cfg.InboxDir(), 0)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	fmt.Printf("watching %s (ctrl-c to stop)\n", cfg.InboxDir())
	for batch := range w.Batches() {
		if _, err := p.Process(ctx, []string{batch}, opts); err != nil {
			if ctx.Err() != nil {
				break
			}
			fmt.Fprintf(os.Stderr, "tt: %s: %v\n", batch, err)
		}
	}

	if err := <-done; err != nil && err != context.Canceled {
		fatal("watch: %v", err)
	}
}

func runStatus(cfg config.Config) {
	store := mustOpenStore(cfg)
	defer store.Close()

	st, err := store.Stats()
	if err != nil {
		fatal("status: %v", err)
	}

	fmt.Println("Triage Status")
	fmt.Println(strings.Repeat("=", 40))
	fmt.Printf("  Threads processed  %d\n", st.TotalProcessed)
	fmt.Printf("  Successful         %d\n", st.Successful)
	fmt.Printf("  Errors             %d\n", st.Errors)
	fmt.Printf("  Issues created     %d\n", st.IssuesCreated)
	if !st.LastProcessed.IsZero() {
		fmt.Printf("  Last processed     %s\n", st.LastProcessed.Format("2006-01-02 15:04"))
	}

	recent, err := store.History(10)
	if err != nil {
		fatal("status: %v", err)
	}
	if len(recent) > 0 {
		fmt.Println("\nRecent threads")
		for _, r := range recent {
			line := fmt.Sprintf("  %-20s %-8s run:%s issues:%d", r.Name, r.Status, r.RunID, r.IssuesCreated)
			if len(r.TicketIDs) > 0 {
				line += " tickets:" + strings.Join(r.TicketIDs, ",")
			}
			fmt.Println(line)
		}
	}
}

func runInit(cfg config.Config) {
	for _, dir := range []string{cfg.WorkPath, cfg.InboxDir(), cfg.ArchiveDir(), cfg.ReportsDir(), cfg.StateDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fatal("init: %v", err)
		}
	}

	path, err := config.WriteDefault(cfg.WorkPath)
	if err != nil {
		fatal("init: %v", err)
	}

	fmt.Printf("initialized %s\n", config.CompressHome(cfg.WorkPath))
	fmt.Printf("config: %s\n", config.CompressHome(path))
	fmt.Println("drop batch files into inbox/ and run `tt analyze`")
}

func inboxBatches(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".jsonl") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func mustOpenStore(cfg config.Config) *state.Store {
	store, err := state.Open(cfg.StatePath())
	if err != nil {
		fatal("open state: %v", err)
	}
	return store
}

func mustCreator(cfg config.Config, opts pipeline.Options) ticket.Creator {
	if opts.DryRun || opts.NoTickets {
		return nil
	}
	creator, err := pipeline.CreatorFromConfig(cfg.Ticketing)
	if err != nil {
		fatal("%v", err)
	}
	return creator
}

func usage() {
	fmt.Fprint(os.Stderr, help.FormatUsage(help.TopLevel, help.Subcommands))
}

func printCommandHelp(name string) {
	for _, c := range help.Subcommands {
		if c.Name == name {
			fmt.Print(help.FormatTerminal(c))
			return
		}
	}
	fmt.Fprintf(os.Stderr, "unknown command: %s\n", name)
	usage()
	os.Exit(1)
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func positional(args []string) []string {
	var out []string
	for _, a := range args {
		if !strings.HasPrefix(a, "-") {
			out = append(out, a)
		}
	}
	return out
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "tt: "+format+"\n", args...)
	os.Exit(1)
}
