package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.WorkPath != "~/threadtriage" {
		t.Errorf("WorkPath = %q", cfg.WorkPath)
	}
	if cfg.Thresholds.SlowThreadSeconds != 30 {
		t.Errorf("SlowThreadSeconds = %v", cfg.Thresholds.SlowThreadSeconds)
	}
	if cfg.Thresholds.SlowStepMS != 10_000 {
		t.Errorf("SlowStepMS = %d", cfg.Thresholds.SlowStepMS)
	}
	if cfg.Thresholds.HighTokenTotal != 50_000 {
		t.Errorf("HighTokenTotal = %d", cfg.Thresholds.HighTokenTotal)
	}
	if cfg.Analysis.Parallelism != 4 {
		t.Errorf("Parallelism = %d", cfg.Analysis.Parallelism)
	}
	if cfg.Ticketing.Enabled {
		t.Error("Ticketing.Enabled should default to false")
	}
	if cfg.Ticketing.Provider != "jira" {
		t.Errorf("Ticketing.Provider = %q", cfg.Ticketing.Provider)
	}
	if cfg.Archive.Compress != true {
		t.Error("Archive.Compress should default to true")
	}
}

func TestLoad_NoConfig(t *testing.T) {
	// Point XDG to an empty dir so no config file is found
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Should have expanded defaults (WorkPath no longer starts with ~/)
	if strings.HasPrefix(cfg.WorkPath, "~/") {
		t.Errorf("WorkPath not expanded: %q", cfg.WorkPath)
	}
	if !strings.HasSuffix(cfg.WorkPath, "threadtriage") {
		t.Errorf("WorkPath = %q, want suffix threadtriage", cfg.WorkPath)
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("HOME", t.TempDir())

	configDir := filepath.Join(xdg, "threadtriage")
	os.MkdirAll(configDir, 0o755)

	tomlContent := `work_path = "/custom/triage"

[thresholds]
slow_thread_seconds = 45.0
high_token_total = 80000

[analysis]
parallelism = 8

[ticketing]
enabled = true
provider = "notion"

[archive]
compress = false
`
	os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(tomlContent), 0o644)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.WorkPath != "/custom/triage" {
		t.Errorf("WorkPath = %q", cfg.WorkPath)
	}
	if cfg.Thresholds.SlowThreadSeconds != 45 {
		t.Errorf("SlowThreadSeconds = %v", cfg.Thresholds.SlowThreadSeconds)
	}
	if cfg.Thresholds.HighTokenTotal != 80_000 {
		t.Errorf("HighTokenTotal = %d", cfg.Thresholds.HighTokenTotal)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Thresholds.SlowStepMS != 10_000 {
		t.Errorf("SlowStepMS = %d, want default 10000", cfg.Thresholds.SlowStepMS)
	}
	if cfg.Analysis.Parallelism != 8 {
		t.Errorf("Parallelism = %d", cfg.Analysis.Parallelism)
	}
	if !cfg.Ticketing.Enabled {
		t.Error("Ticketing.Enabled should be true")
	}
	if cfg.Ticketing.Provider != "notion" {
		t.Errorf("Provider = %q", cfg.Ticketing.Provider)
	}
	if cfg.Archive.Compress {
		t.Error("Archive.Compress should be false")
	}
}

func TestLoad_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	configDir := filepath.Join(xdg, "threadtriage")
	os.MkdirAll(configDir, 0o755)
	os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(`work_path = "~/my-triage"`), 0o644)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := filepath.Join(home, "my-triage")
	if cfg.WorkPath != want {
		t.Errorf("WorkPath = %q, want %q", cfg.WorkPath, want)
	}
}

func TestLoad_XDGPriority(t *testing.T) {
	xdg := t.TempDir()
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("HOME", home)

	// Create config at XDG path
	xdgDir := filepath.Join(xdg, "threadtriage")
	os.MkdirAll(xdgDir, 0o755)
	os.WriteFile(filepath.Join(xdgDir, "config.toml"), []byte(`work_path = "/from-xdg"`), 0o644)

	// Also create config at ~/.config path
	homeDir := filepath.Join(home, ".config", "threadtriage")
	os.MkdirAll(homeDir, 0o755)
	os.WriteFile(filepath.Join(homeDir, "config.toml"), []byte(`work_path = "/from-home"`), 0o644)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.WorkPath != "/from-xdg" {
		t.Errorf("WorkPath = %q, want /from-xdg (XDG should take priority)", cfg.WorkPath)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("HOME", t.TempDir())

	configDir := filepath.Join(xdg, "threadtriage")
	os.MkdirAll(configDir, 0o755)
	os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(`work_path = [broken`), 0o644)

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestDirHelpers(t *testing.T) {
	cfg := Config{WorkPath: "/home/user/triage"}

	if got := cfg.InboxDir(); got != "/home/user/triage/inbox" {
		t.Errorf("InboxDir = %q", got)
	}
	if got := cfg.ArchiveDir(); got != "/home/user/triage/archive" {
		t.Errorf("ArchiveDir = %q", got)
	}
	if got := cfg.ReportsDir(); got != "/home/user/triage/reports" {
		t.Errorf("ReportsDir = %q", got)
	}
	if got := cfg.StatePath(); got != "/home/user/triage/.threadtriage/state.db" {
		t.Errorf("StatePath = %q", got)
	}
}

func TestThresholdMapping(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Thresholds.SlowThreadSeconds = 60
	cfg.Thresholds.JargonDensity = 0.5

	gt := cfg.GateThresholds()
	if gt.SlowThreadSeconds != 60 {
		t.Errorf("gate SlowThreadSeconds = %v", gt.SlowThreadSeconds)
	}
	if gt.HighTokenTotal != 50_000 {
		t.Errorf("gate HighTokenTotal = %d", gt.HighTokenTotal)
	}

	dc := cfg.DetectConfig()
	if dc.SlowThreadSeconds != 60 {
		t.Errorf("detect SlowThreadSeconds = %v", dc.SlowThreadSeconds)
	}
	if dc.JargonDensity != 0.5 {
		t.Errorf("detect JargonDensity = %v", dc.JargonDensity)
	}
}
