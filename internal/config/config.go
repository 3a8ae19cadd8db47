package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jmoretti/threadtriage/internal/detect"
	"github.com/jmoretti/threadtriage/internal/gate"
)

// Config holds all threadtriage configuration.
type Config struct {
	WorkPath string `toml:"work_path"`

	Thresholds ThresholdsConfig `toml:"thresholds"`
	Analysis   AnalysisConfig   `toml:"analysis"`
	Ticketing  TicketingConfig  `toml:"ticketing"`
	Archive    ArchiveConfig    `toml:"archive"`
}

type ThresholdsConfig struct {
	SlowThreadSeconds float64 `toml:"slow_thread_seconds"`
	SlowStepMS        int     `toml:"slow_step_ms"`
	HighTokenTotal    int     `toml:"high_token_total"`
	JargonDensity     float64 `toml:"jargon_density"`
}

type AnalysisConfig struct {
	Parallelism int `toml:"parallelism"`
}

type TicketingConfig struct {
	Enabled          bool   `toml:"enabled"`
	Provider         string `toml:"provider"` // jira, notion
	APITokenEnv      string `toml:"api_token_env"`
	JiraBaseURL      string `toml:"jira_base_url"`
	JiraProjectKey   string `toml:"jira_project_key"`
	JiraEmail        string `toml:"jira_email"`
	NotionDatabaseID string `toml:"notion_database_id"`
}

type ArchiveConfig struct {
	Compress bool `toml:"compress"`
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		WorkPath: "~/threadtriage",
		Thresholds: ThresholdsConfig{
			SlowThreadSeconds: 30,
			SlowStepMS:        10_000,
			HighTokenTotal:    50_000,
			JargonDensity:     0.25,
		},
		Analysis: AnalysisConfig{
			Parallelism: 4,
		},
		Ticketing: TicketingConfig{
			Enabled:     false,
			Provider:    "jira",
			APITokenEnv: "TRIAGE_TICKET_TOKEN",
		},
		Archive: ArchiveConfig{
			Compress: true,
		},
	}
}

// Load reads config from the standard path, falling back to defaults.
func Load() (Config, error) {
	cfg := DefaultConfig()

	paths := configPaths()
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			if _, err := toml.DecodeFile(p, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", p, err)
			}
			break
		}
	}

	cfg.WorkPath = expandHome(cfg.WorkPath)

	return cfg, nil
}

func configPaths() []string {
	var paths []string

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "threadtriage", "config.toml"))
	}

	home, _ := os.UserHomeDir()
	if home != "" {
		paths = append(paths, filepath.Join(home, ".config", "threadtriage", "config.toml"))
	}

	return paths
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// GateThresholds maps the config onto the metrics gate.
func (c Config) GateThresholds() gate.Thresholds {
	return gate.Thresholds{
		SlowThreadSeconds: c.Thresholds.SlowThreadSeconds,
		HighTokenTotal:    c.Thresholds.HighTokenTotal,
	}
}

// DetectConfig maps the config onto the category scanner.
func (c Config) DetectConfig() detect.Config {
	return detect.Config{
		SlowThreadSeconds: c.Thresholds.SlowThreadSeconds,
		SlowStepMS:        c.Thresholds.SlowStepMS,
		HighTokenTotal:    c.Thresholds.HighTokenTotal,
		JargonDensity:     c.Thresholds.JargonDensity,
	}
}

// InboxDir returns the directory watched for incoming batch files.
func (c Config) InboxDir() string {
	return filepath.Join(c.WorkPath, "inbox")
}

// ArchiveDir returns the cold-storage directory for processed batches.
func (c Config) ArchiveDir() string {
	return filepath.Join(c.WorkPath, "archive")
}

// ReportsDir returns the directory for markdown run reports.
func (c Config) ReportsDir() string {
	return filepath.Join(c.WorkPath, "reports")
}

// StateDir returns the .threadtriage state directory inside the work path.
func (c Config) StateDir() string {
	return filepath.Join(c.WorkPath, ".threadtriage")
}

// StatePath returns the processed-thread database path.
func (c Config) StatePath() string {
	return filepath.Join(c.StateDir(), "state.db")
}
