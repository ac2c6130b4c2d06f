package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATA_SOURCE", "DATA_SHEET", "DATA_PATHS", "DB_PATH", "LISTEN_ADDR",
		"SLACK_BOT_TOKEN", "DIGEST_CHANNEL_ID", "DIGEST_TOP_N",
		"EXTERNAL_HTTP_TIMEOUT_SECONDS",
	} {
		t.Setenv(key, "")
	}
	// An empty DIGEST_SCHEDULE overrides YAML, so it has to be unset.
	t.Setenv("DIGEST_SCHEDULE", "")
	os.Unsetenv("DIGEST_SCHEDULE")
	t.Setenv("TIMEZONE", "UTC")
}

func TestLoadDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing-config.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DataSource != DataSourceFile {
		t.Fatalf("unexpected data source default: %q", cfg.DataSource)
	}
	if len(cfg.DataPaths) != 2 || !strings.HasSuffix(cfg.DataPaths[0], "output_classified_split_with_actions.xlsx") {
		t.Fatalf("unexpected data paths default: %v", cfg.DataPaths)
	}
	if cfg.DBPath != "./findingboard.db" {
		t.Fatalf("unexpected db path default: %q", cfg.DBPath)
	}
	if cfg.ListenAddr != ":5000" {
		t.Fatalf("unexpected listen addr default: %q", cfg.ListenAddr)
	}
	if cfg.ExternalHTTPTimeoutSeconds != int(defaultExternalHTTPTimeout/time.Second) {
		t.Fatalf("unexpected external HTTP timeout default: %d", cfg.ExternalHTTPTimeoutSeconds)
	}
	if cfg.DigestTopN != 10 {
		t.Fatalf("unexpected digest top n default: %d", cfg.DigestTopN)
	}
	if cfg.Location == nil || cfg.Location.String() != "UTC" {
		t.Fatalf("unexpected location: %v", cfg.Location)
	}
	if cfg.DigestEnabled() {
		t.Fatal("digest should be disabled by default")
	}
}

func TestLoadYAMLAndEnvOverride(t *testing.T) {
	clearConfigEnv(t)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
data_source: "sqlite"
data_paths:
  - "/data/a.xlsx"
  - "/data/b.csv"
db_path: "/tmp/yaml.db"
listen_addr: ":8080"
slack_bot_token: "xoxb-yaml"
digest_channel_id: "C123"
digest_schedule: "0 9 * * 1"
digest_top_n: 5
timezone: "America/Los_Angeles"
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("DB_PATH", "/tmp/env.db")
	t.Setenv("DATA_PATHS", " /env/one.csv , ,/env/two.xlsx")
	t.Setenv("DIGEST_TOP_N", "3")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DataSource != DataSourceSQLite {
		t.Fatalf("expected yaml data source, got %q", cfg.DataSource)
	}
	if cfg.DBPath != "/tmp/env.db" {
		t.Fatalf("expected env db path override, got %q", cfg.DBPath)
	}
	if len(cfg.DataPaths) != 2 || cfg.DataPaths[0] != "/env/one.csv" || cfg.DataPaths[1] != "/env/two.xlsx" {
		t.Fatalf("expected env data paths override, got %v", cfg.DataPaths)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("expected yaml listen addr, got %q", cfg.ListenAddr)
	}
	if cfg.DigestTopN != 3 {
		t.Fatalf("expected env digest top n, got %d", cfg.DigestTopN)
	}
	if cfg.Location == nil || cfg.Location.String() != "UTC" {
		t.Fatalf("expected env timezone override, got %v", cfg.Location)
	}
	if !cfg.DigestEnabled() {
		t.Fatal("digest should be enabled with schedule, token and channel")
	}
}

func TestLoadEmptyScheduleEnvDisablesDigest(t *testing.T) {
	clearConfigEnv(t)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := "slack_bot_token: x\ndigest_channel_id: C1\ndigest_schedule: \"0 9 * * *\"\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DIGEST_SCHEDULE", "")
	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DigestEnabled() {
		t.Fatalf("digest should be disabled, schedule=%q", cfg.DigestSchedule)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"data source":  {"DATA_SOURCE": "postgres"},
		"timeout":      {"EXTERNAL_HTTP_TIMEOUT_SECONDS": "2"},
		"timeout int":  {"EXTERNAL_HTTP_TIMEOUT_SECONDS": "soon"},
		"top n":        {"DIGEST_TOP_N": "-1"},
		"schedule":     {"DIGEST_SCHEDULE": "every friday"},
		"timezone":     {"TIMEZONE": "Mars/Olympus_Mons"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
				t.Fatalf("expected error for %v", env)
			}
		})
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	clearConfigEnv(t)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("data_paths: [unclosed"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(cfgPath); err == nil {
		t.Fatal("expected parse error")
	}
}
