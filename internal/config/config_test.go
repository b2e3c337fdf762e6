package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const fullYAML = `
environment: production

paths:
  openclaw_config: /srv/openclaw/openclaw.json
  gateway_log: /srv/openclaw/logs/gateway.log
  watchdog_log: /srv/openclaw/logs/watchdog.log
  sessions_log: /srv/openclaw/logs/sessions.jsonl
  task_queue_md: /srv/openclaw/task-queue.md
  cron_jobs_json: /srv/openclaw/cron/jobs.json

db:
  driver: mysql
  host: 10.0.0.5
  port: 3307
  user: mc
  database: missionctl_prod

ingest:
  port: 9000
  api_key: sekrit

notify:
  slack_token: xoxb-test
  slack_channel: C012345
`

func TestParse_FullConfig(t *testing.T) {
	cfg, err := Parse([]byte(fullYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Environment != "production" {
		t.Errorf("Environment = %q, want %q", cfg.Environment, "production")
	}
	if cfg.Paths.OpenclawConfig != "/srv/openclaw/openclaw.json" {
		t.Errorf("Paths.OpenclawConfig = %q, want /srv/openclaw/openclaw.json", cfg.Paths.OpenclawConfig)
	}
	if cfg.Paths.GatewayLog != "/srv/openclaw/logs/gateway.log" {
		t.Errorf("Paths.GatewayLog = %q", cfg.Paths.GatewayLog)
	}
	if cfg.DB.Driver != "mysql" {
		t.Errorf("DB.Driver = %q, want mysql", cfg.DB.Driver)
	}
	if cfg.DB.Host != "10.0.0.5" {
		t.Errorf("DB.Host = %q, want 10.0.0.5", cfg.DB.Host)
	}
	if cfg.DB.Port != 3307 {
		t.Errorf("DB.Port = %d, want 3307", cfg.DB.Port)
	}
	if cfg.Ingest.Port != 9000 {
		t.Errorf("Ingest.Port = %d, want 9000", cfg.Ingest.Port)
	}
	if cfg.Ingest.APIKey != "sekrit" {
		t.Errorf("Ingest.APIKey = %q, want sekrit", cfg.Ingest.APIKey)
	}
	if !cfg.SlackEnabled() {
		t.Error("SlackEnabled() = false, want true")
	}
	if cfg.DiscordEnabled() {
		t.Error("DiscordEnabled() = true, want false")
	}
}

func TestParse_EmptyConfig_AppliesDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Environment != "development" {
		t.Errorf("Environment = %q, want development (default)", cfg.Environment)
	}
	if cfg.DB.Driver != "sqlite" {
		t.Errorf("DB.Driver = %q, want sqlite (default)", cfg.DB.Driver)
	}
	if cfg.DB.Path == "" {
		t.Error("DB.Path should default under ~/.openclaw")
	}
	if !strings.HasSuffix(cfg.Paths.GatewayLog, filepath.Join("logs", "gateway.log")) {
		t.Errorf("Paths.GatewayLog = %q, want .../logs/gateway.log", cfg.Paths.GatewayLog)
	}
	if !strings.HasSuffix(cfg.Paths.CronJobsJSON, filepath.Join("cron", "jobs.json")) {
		t.Errorf("Paths.CronJobsJSON = %q, want .../cron/jobs.json", cfg.Paths.CronJobsJSON)
	}
	if cfg.Ingest.Port != 8090 {
		t.Errorf("Ingest.Port = %d, want 8090 (default)", cfg.Ingest.Port)
	}
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("MC_GATEWAY_LOG", "/tmp/gateway.log")
	t.Setenv("MC_INGEST_API_KEY", "from-env")

	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Paths.GatewayLog != "/tmp/gateway.log" {
		t.Errorf("Paths.GatewayLog = %q, want /tmp/gateway.log (env override)", cfg.Paths.GatewayLog)
	}
	if cfg.Ingest.APIKey != "from-env" {
		t.Errorf("Ingest.APIKey = %q, want from-env (env override)", cfg.Ingest.APIKey)
	}
}

func TestParse_RejectsUnknownDriver(t *testing.T) {
	_, err := Parse([]byte("db:\n  driver: postgres\n"))
	if err == nil {
		t.Fatal("expected validation error for unsupported driver")
	}
	if !strings.Contains(err.Error(), "not supported") {
		t.Errorf("error = %v, want mention of unsupported driver", err)
	}
}

func TestParse_RejectsHalfConfiguredNotifier(t *testing.T) {
	_, err := Parse([]byte("notify:\n  slack_token: xoxb-only\n"))
	if err == nil {
		t.Fatal("expected validation error for slack token without channel")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DB.Driver != "sqlite" {
		t.Errorf("DB.Driver = %q, want sqlite", cfg.DB.Driver)
	}
}

func TestLoad_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missionctl.yaml")
	if err := os.WriteFile(path, []byte("ingest:\n  port: 7777\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Ingest.Port != 7777 {
		t.Errorf("Ingest.Port = %d, want 7777", cfg.Ingest.Port)
	}
}
