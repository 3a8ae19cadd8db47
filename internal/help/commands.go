package help

import "strings"

// Version is the tt release version, set by cmd/tt at startup.
var Version = "dev"

// Flag describes a command-line flag.
type Flag struct {
	Name string // e.g. "--dry-run" or "--weeks <n>"
	Desc string
}

// Arg describes a positional argument.
type Arg struct {
	Name     string // e.g. "files" or "batch.jsonl"
	Desc     string
	Optional bool
}

// Command describes a tt subcommand (or the top-level binary when Name is "").
type Command struct {
	Name        string   // "analyze", "watch", etc; "" for top-level
	Synopsis    string   // one-line description (lowercase, for --help header)
	Brief       string   // short description for usage table (capitalized)
	Usage       string   // full usage line, e.g. "tt analyze [files...]"
	TableUsage  string   // shortened usage for the top-level table (if different from Usage)
	Args        []Arg
	Flags       []Flag
	Description string   // multi-line prose (stored verbatim)
	Examples    []string // one per line, without leading 2-space indent
	SeeAlso     []string // man page cross-refs, e.g. "tt(1)"
}

// tableUsage returns TableUsage if set, otherwise Usage.
func (c Command) tableUsage() string {
	if c.TableUsage != "" {
		return c.TableUsage
	}
	return c.Usage
}

// ManName returns the man page name: "tt" for top-level, "tt-<name>" for subs.
// Spaces in Name are replaced with hyphens.
func (c Command) ManName() string {
	if c.Name == "" {
		return "tt"
	}
	return "tt-" + strings.ReplaceAll(c.Name, " ", "-")
}

// TopLevel is the top-level tt command (used by FormatUsage).
var TopLevel = Command{
	Name:     "",
	Synopsis: "thread triage",
}

var CmdAnalyze = Command{
	Name:       "analyze",
	Synopsis:   "analyze batch files and file issue tickets",
	Brief:      "Analyze batch files (defaults to inbox/)",
	Usage:      "tt analyze [files...] [--dry-run] [--no-tickets] [--reprocess]",
	TableUsage: "tt analyze [files...]",
	Args: []Arg{
		{Name: "files", Desc: "Batch files to analyze (default: every .jsonl in inbox/)", Optional: true},
	},
	Flags: []Flag{
		{Name: "--dry-run", Desc: "Report findings without filing tickets or archiving batches"},
		{Name: "--no-tickets", Desc: "Skip ticket creation"},
		{Name: "--reprocess", Desc: "Re-analyze threads already recorded as processed"},
	},
	Description: `Parses thread summaries from JSONL batch files, classifies each thread
for scan depth, runs the category detectors, and turns CRITICAL and
HIGH findings into numbered issue cards. Cards are filed as tickets
when a tracker is configured.

Threads seen in prior runs are skipped unless --reprocess is given.
Processed batches are compressed into archive/ and a markdown report
is written to reports/.`,
	Examples: []string{
		"tt analyze                          Analyze everything in inbox/",
		"tt analyze run.jsonl --dry-run      Preview findings for one batch",
		"tt analyze --reprocess              Re-analyze all known threads",
	},
	SeeAlso: []string{"tt(1)", "tt-watch(1)", "tt-status(1)"},
}

var CmdWatch = Command{
	Name:     "watch",
	Synopsis: "watch the inbox and analyze batches as they land",
	Brief:    "Watch inbox/ and analyze batches as they land",
	Usage:    "tt watch [--dry-run] [--no-tickets]",
	Flags: []Flag{
		{Name: "--dry-run", Desc: "Report findings without filing tickets or archiving batches"},
		{Name: "--no-tickets", Desc: "Skip ticket creation"},
	},
	Description: `Monitors the inbox directory for new .jsonl batch files and runs the
analyze pipeline on each once writing settles. Batches already sitting
in the inbox at startup are processed first.

Runs until interrupted (ctrl-c).`,
	SeeAlso: []string{"tt(1)", "tt-analyze(1)"},
}

var CmdStatus = Command{
	Name:     "status",
	Synopsis: "show processing history",
	Brief:    "Show processing history",
	Usage:    "tt status",
	Description: `Summarizes the processed-thread database: totals by outcome, issues
created, last run time, and the ten most recent threads with their
ticket IDs.`,
	SeeAlso: []string{"tt(1)", "tt-clear-state(1)"},
}

var CmdCheck = Command{
	Name:     "check",
	Synopsis: "validate config, directories, and ticketing",
	Brief:    "Validate config, directories and ticketing",
	Usage:    "tt check",
	Description: `Runs diagnostic checks and prints a pass/warn/FAIL report:
  - Config file location and validity
  - Work directory exists
  - Inbox and archive directories with batch counts
  - Processed-thread database
  - Ticketing provider fields and API token

Exit code 0 if all checks pass or warn, 1 if any check fails.`,
	SeeAlso: []string{"tt(1)", "tt-init(1)"},
}

var CmdInit = Command{
	Name:     "init",
	Synopsis: "create work directories and default config",
	Brief:    "Create work directories and default config",
	Usage:    "tt init",
	Description: `Creates the work directory tree (inbox/, archive/, reports/ and the
state directory) and writes a default config to
~/.config/threadtriage/config.toml. An existing config is left
untouched.`,
	Examples: []string{
		"tt init    Set up ~/threadtriage",
	},
	SeeAlso: []string{"tt(1)", "tt-check(1)"},
}

var CmdClearState = Command{
	Name:     "clear-state",
	Synopsis: "forget all processed threads",
	Brief:    "Forget all processed threads",
	Usage:    "tt clear-state",
	Description: `Deletes every entry from the processed-thread database. The next
analyze run treats all threads as new. Archived batches and reports
are not touched.`,
	SeeAlso: []string{"tt(1)", "tt-status(1)", "tt-analyze(1)"},
}

var CmdVersion = Command{
	Name:     "version",
	Synopsis: "print version",
	Brief:    "Print version",
	Usage:    "tt version",
	SeeAlso:  []string{"tt(1)"},
}

// Subcommands is the ordered list of all subcommands.
var Subcommands = []Command{
	CmdAnalyze,
	CmdWatch,
	CmdStatus,
	CmdCheck,
	CmdInit,
	CmdClearState,
	CmdVersion,
}
