package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/openclaw/missionctl/internal/db"
	"github.com/openclaw/missionctl/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestVersionCmd(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "mc dev") {
		t.Errorf("expected output to contain 'mc dev', got: %s", out)
	}
	if !strings.Contains(out, "commit: none") {
		t.Errorf("expected output to contain 'commit: none', got: %s", out)
	}
}

func TestVersionCmdWithCustomValues(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, Date
	Version, Commit, Date = "1.0.0", "abc123", "2026-01-01"
	defer func() { Version, Commit, Date = origVersion, origCommit, origDate }()

	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	if !strings.Contains(buf.String(), "mc 1.0.0") {
		t.Errorf("expected output to contain 'mc 1.0.0', got: %s", buf.String())
	}
}

func TestRootCmdHelp(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("help command failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Mission Control") {
		t.Errorf("expected help output to contain 'Mission Control', got: %s", out)
	}
	for _, sub := range []string{"run", "serve", "sync", "status", "reset", "db", "version"} {
		if !strings.Contains(out, sub) {
			t.Errorf("expected help output to list %q subcommand, got: %s", sub, out)
		}
	}
}

// writeTestConfig writes a sqlite config pointing into a temp dir and returns
// its path.
func writeTestConfig(t *testing.T, environment string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "missionctl.yaml")
	content := fmt.Sprintf("environment: %s\ndb:\n  driver: sqlite\n  path: %s\n",
		environment, filepath.Join(dir, "mc.db"))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestDBInitCmd(t *testing.T) {
	cfgPath := writeTestConfig(t, "development")

	out, err := runCmd(t, "db", "init", "--config", cfgPath)
	if err != nil {
		t.Fatalf("db init failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Migrated") {
		t.Errorf("output = %s", out)
	}
}

func TestStatusCmd(t *testing.T) {
	cfgPath := writeTestConfig(t, "development")
	if _, err := runCmd(t, "db", "init", "--config", cfgPath); err != nil {
		t.Fatal(err)
	}

	gormDB := openTestStore(t, cfgPath)
	agentID := "kevin"
	if err := gormDB.Create(&models.Agent{ID: agentID, Name: "Kevin", Role: "Finance", Status: models.AgentOnline}).Error; err != nil {
		t.Fatal(err)
	}
	if err := gormDB.Create(&models.Event{
		EventType:  models.EventBotStart,
		Title:      "Bot started",
		AgentID:    &agentID,
		Severity:   models.SeverityInfo,
		OccurredAt: time.Now(),
	}).Error; err != nil {
		t.Fatal(err)
	}

	out, err := runCmd(t, "status", "--config", cfgPath)
	if err != nil {
		t.Fatalf("status failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Agents: 1") || !strings.Contains(out, "Events: 1") {
		t.Errorf("counts missing from output: %s", out)
	}
	if !strings.Contains(out, "kevin: Kevin [online]") {
		t.Errorf("agent line missing from output: %s", out)
	}
	if !strings.Contains(out, "bot_start: Bot started (kevin)") {
		t.Errorf("recent event line missing from output: %s", out)
	}
}

func TestResetCmd_RefusesProduction(t *testing.T) {
	cfgPath := writeTestConfig(t, "production")
	if _, err := runCmd(t, "db", "init", "--config", cfgPath); err != nil {
		t.Fatal(err)
	}

	_, err := runCmd(t, "reset", "--yes", "--config", cfgPath)
	if err == nil {
		t.Fatal("reset ran in production")
	}
	if !strings.Contains(err.Error(), "production") {
		t.Errorf("error = %v", err)
	}
}

func TestResetCmd_ClearsEventsAndOffsets(t *testing.T) {
	cfgPath := writeTestConfig(t, "development")
	if _, err := runCmd(t, "db", "init", "--config", cfgPath); err != nil {
		t.Fatal(err)
	}

	gormDB := openTestStore(t, cfgPath)
	seed := []interface{}{
		&models.Event{EventType: models.EventBotStart, Title: "started", OccurredAt: time.Now()},
		&models.IngestionState{FilePath: "/tmp/gateway.log", LastOffset: 42},
		&models.Agent{ID: "kevin", Name: "Kevin", Role: "Finance"},
	}
	for _, row := range seed {
		if err := gormDB.Create(row).Error; err != nil {
			t.Fatal(err)
		}
	}

	out, err := runCmd(t, "reset", "--yes", "--config", cfgPath)
	if err != nil {
		t.Fatalf("reset failed: %v\n%s", err, out)
	}

	var events, offsets, agents int64
	gormDB.Model(&models.Event{}).Count(&events)
	gormDB.Model(&models.IngestionState{}).Count(&offsets)
	gormDB.Model(&models.Agent{}).Count(&agents)
	if events != 0 || offsets != 0 {
		t.Errorf("events=%d offsets=%d after reset, want 0", events, offsets)
	}
	if agents != 1 {
		t.Errorf("agents=%d after reset, want 1 (roster is kept)", agents)
	}
}

func TestResetCmd_ConfirmViaPipedInput(t *testing.T) {
	cfgPath := writeTestConfig(t, "development")
	if _, err := runCmd(t, "db", "init", "--config", cfgPath); err != nil {
		t.Fatal(err)
	}

	gormDB := openTestStore(t, cfgPath)
	if err := gormDB.Create(&models.Event{EventType: "x", Title: "y", OccurredAt: time.Now()}).Error; err != nil {
		t.Fatal(err)
	}

	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetIn(strings.NewReader("yes\n"))
	cmd.SetArgs([]string{"reset", "--config", cfgPath})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("reset: %v", err)
	}

	// A piped non-file stdin still prompts; the typed "yes" is honored.
	var events int64
	gormDB.Model(&models.Event{}).Count(&events)
	if events != 0 {
		t.Errorf("events=%d, want 0 after confirmed reset", events)
	}
}

func TestSyncCmd(t *testing.T) {
	dir := t.TempDir()
	roster := filepath.Join(dir, "openclaw.json")
	jobs := filepath.Join(dir, "jobs.json")
	if err := os.WriteFile(roster, []byte(`{"agents": {"list": [{"id": "kevin", "name": "Kevin"}]}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(jobs, []byte(`[]`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfgPath := filepath.Join(dir, "missionctl.yaml")
	content := fmt.Sprintf(`environment: development
db:
  driver: sqlite
  path: %s
paths:
  openclaw_config: %s
  cron_jobs_json: %s
  task_queue_md: %s
`, filepath.Join(dir, "mc.db"), roster, jobs, filepath.Join(dir, "absent.md"))
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCmd(t, "sync", "--config", cfgPath)
	if err != nil {
		t.Fatalf("sync failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Roster synced: 1 agents") {
		t.Errorf("output = %s", out)
	}
}

// openTestStore opens the sqlite store a test config points at, with tables
// migrated.
func openTestStore(t *testing.T, cfgPath string) *gorm.DB {
	t.Helper()
	raw, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	var dbPath string
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "path: ") {
			dbPath = strings.TrimPrefix(line, "path: ")
		}
	}
	if dbPath == "" {
		t.Fatal("no db path in test config")
	}
	gormDB, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := gormDB.AutoMigrate(db.AllModels()...); err != nil {
		t.Fatal(err)
	}
	return gormDB
}
