package check

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoretti/threadtriage/internal/config"
)

// Status represents the outcome of a single check.
type Status int

const (
	Pass Status = iota
	Warn
	Fail
)

func (s Status) String() string {
	switch s {
	case Pass:
		return "pass"
	case Warn:
		return "warn"
	case Fail:
		return "FAIL"
	default:
		return "unknown"
	}
}

// Result holds the outcome of a single check.
type Result struct {
	Name   string
	Status Status
	Detail string
}

// Report aggregates all check results.
type Report struct {
	Results []Result
}

// HasFailures returns true if any result has Fail status.
func (r Report) HasFailures() bool {
	for _, res := range r.Results {
		if res.Status == Fail {
			return true
		}
	}
	return false
}

// Format returns the human-readable report string.
func (r Report) Format() string {
	if len(r.Results) == 0 {
		return "tt check\n\n  no checks ran\n"
	}

	// Find max name length for alignment.
	maxName := 0
	for _, res := range r.Results {
		if len(res.Name) > maxName {
			maxName = len(res.Name)
		}
	}

	var b strings.Builder
	b.WriteString("tt check\n\n")

	var passed, warnings, failures int
	for _, res := range r.Results {
		switch res.Status {
		case Pass:
			passed++
		case Warn:
			warnings++
		case Fail:
			failures++
		}
		fmt.Fprintf(&b, "  %-4s  %-*s  %s\n", res.Status, maxName, res.Name, res.Detail)
	}

	fmt.Fprintf(&b, "\n%d passed, %d warning, %d failure\n", passed, warnings, failures)
	return b.String()
}

// CheckConfig reports the resolved config path. Always passes — broken TOML
// is caught by config.Load before we get here.
func CheckConfig() Result {
	cfgPath := filepath.Join(config.ConfigDir(), "config.toml")
	return Result{
		Name:   "config",
		Status: Pass,
		Detail: config.CompressHome(cfgPath),
	}
}

// CheckWorkPath checks whether the work directory exists.
func CheckWorkPath(path string) Result {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return Result{Name: "workdir", Status: Pass, Detail: config.CompressHome(path)}
	}
	return Result{Name: "workdir", Status: Fail, Detail: path + " not found (run `tt init`)"}
}

// CheckInbox checks the inbox directory and reports the pending batch count.
func CheckInbox(inboxDir string) Result {
	if _, err := os.Stat(inboxDir); err != nil {
		return Result{Name: "inbox", Status: Warn, Detail: "inbox/ not found (fresh workdir)"}
	}
	count := countBatches(inboxDir)
	return Result{Name: "inbox", Status: Pass, Detail: fmt.Sprintf("inbox/ (%d pending batches)", count)}
}

func countBatches(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	count := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".jsonl") {
			count++
		}
	}
	return count
}

// CheckArchive checks the archive directory and reports the archived batch count.
func CheckArchive(archiveDir string) Result {
	entries, err := os.ReadDir(archiveDir)
	if err != nil {
		return Result{Name: "archive", Status: Warn, Detail: "archive/ not found (fresh workdir)"}
	}
	count := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".jsonl.zst") {
			count++
		}
	}
	return Result{Name: "archive", Status: Pass, Detail: fmt.Sprintf("archive/ (%d batches)", count)}
}

// CheckState checks whether the processed-thread database exists.
func CheckState(statePath string) Result {
	if info, err := os.Stat(statePath); err == nil && !info.IsDir() {
		return Result{Name: "state", Status: Pass, Detail: config.CompressHome(statePath)}
	}
	return Result{Name: "state", Status: Warn, Detail: "state.db not found (no runs yet)"}
}

// CheckTicketing validates the ticketing configuration. Disabled
// ticketing always passes; enabled ticketing needs provider fields and
// the API token in the environment.
func CheckTicketing(tcfg config.TicketingConfig) Result {
	if !tcfg.Enabled {
		return Result{Name: "ticketing", Status: Pass, Detail: "disabled"}
	}

	switch tcfg.Provider {
	case "jira":
		if tcfg.JiraBaseURL == "" || tcfg.JiraProjectKey == "" || tcfg.JiraEmail == "" {
			return Result{Name: "ticketing", Status: Fail, Detail: "jira needs jira_base_url, jira_project_key and jira_email"}
		}
	case "notion":
		if tcfg.NotionDatabaseID == "" {
			return Result{Name: "ticketing", Status: Fail, Detail: "notion needs notion_database_id"}
		}
	default:
		return Result{Name: "ticketing", Status: Fail, Detail: fmt.Sprintf("unknown provider %q", tcfg.Provider)}
	}

	keyEnv := tcfg.APITokenEnv
	if keyEnv == "" {
		keyEnv = "TRIAGE_TICKET_TOKEN"
	}
	if os.Getenv(keyEnv) != "" {
		return Result{Name: "ticketing", Status: Pass, Detail: tcfg.Provider + ", " + keyEnv + " set"}
	}
	return Result{Name: "ticketing", Status: Warn, Detail: keyEnv + " not set"}
}

// Run executes all checks against the given config and returns a report.
func Run(cfg config.Config) Report {
	var results []Result

	results = append(results, CheckConfig())
	results = append(results, CheckWorkPath(cfg.WorkPath))
	results = append(results, CheckInbox(cfg.InboxDir()))
	results = append(results, CheckArchive(cfg.ArchiveDir()))
	results = append(results, CheckState(cfg.StatePath()))
	results = append(results, CheckTicketing(cfg.Ticketing))

	return Report{Results: results}
}
