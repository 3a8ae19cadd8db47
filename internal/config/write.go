package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConfigDir returns the threadtriage config directory path.
// Uses $XDG_CONFIG_HOME/threadtriage if set, otherwise ~/.config/threadtriage.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "threadtriage")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "threadtriage")
}

// WriteDefault writes a default config.toml pointing to workPath.
// Returns the config file path. Skips if config.toml already exists.
func WriteDefault(workPath string) (string, error) {
	dir := ConfigDir()
	path := filepath.Join(dir, "config.toml")

	if _, err := os.Stat(path); err == nil {
		return path, nil // already exists
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}

	portablePath := CompressHome(workPath)

	content := fmt.Sprintf(`work_path = %q

[thresholds]
slow_thread_seconds = 30.0
slow_step_ms = 10000
high_token_total = 50000
jargon_density = 0.25

[analysis]
parallelism = 4

[ticketing]
enabled = false
provider = "jira"
api_token_env = "TRIAGE_TICKET_TOKEN"
jira_base_url = ""
jira_project_key = ""
jira_email = ""
notion_database_id = ""

[archive]
compress = true
`, portablePath)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}

	return path, nil
}

// CompressHome replaces $HOME prefix with ~/ for portable config values.
func CompressHome(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home+"/") {
		return "~/" + path[len(home)+1:]
	}
	if path == home {
		return "~"
	}
	return path
}
