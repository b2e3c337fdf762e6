package taskqueue

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/openclaw/missionctl/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Mission{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestParse_SectionsAndItems(t *testing.T) {
	doc := `# Task Queue

## To Do
- [ ] Write launch email
- [x] Fix login bug

## In Progress
- [ ] Ship v2

## Something Weird
- [ ] Mystery task
`
	items := Parse(doc, "/q/tasks.md")
	if len(items) != 4 {
		t.Fatalf("item count = %d, want 4", len(items))
	}

	if items[0].Status != models.MissionBacklog {
		t.Errorf("items[0].Status = %q, want backlog", items[0].Status)
	}
	// Checked items are done no matter the section.
	if items[1].Status != models.MissionDone || !items[1].Completed {
		t.Errorf("items[1] = %+v, want done/completed", items[1])
	}
	if items[2].Status != models.MissionInProgress {
		t.Errorf("items[2].Status = %q, want in_progress", items[2].Status)
	}
	// Unrecognized headers fall back to backlog.
	if items[3].Status != models.MissionBacklog {
		t.Errorf("items[3].Status = %q, want backlog (unknown header)", items[3].Status)
	}

	if items[2].MarkdownRef != "/q/tasks.md:Ship v2" {
		t.Errorf("MarkdownRef = %q, want path:title", items[2].MarkdownRef)
	}
}

func TestParse_HeaderVocabularyIsCaseInsensitive(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"## DONE", models.MissionDone},
		{"## Doing", models.MissionInProgress},
		{"## review", models.MissionReview},
		{"## ToDo", models.MissionBacklog}, // not in the vocabulary, defaults
	}
	for _, tt := range tests {
		items := Parse(tt.header+"\n- [ ] task\n", "/q/t.md")
		if len(items) != 1 {
			t.Fatalf("%q: item count = %d, want 1", tt.header, len(items))
		}
		if items[0].Status != tt.want {
			t.Errorf("%q: status = %q, want %q", tt.header, items[0].Status, tt.want)
		}
	}
}

func TestParse_UppercaseCheckmark(t *testing.T) {
	items := Parse("- [X] Shout it\n", "/q/t.md")
	if len(items) != 1 || !items[0].Completed {
		t.Fatalf("items = %+v, want one completed item", items)
	}
}

func TestSync_MovingItemUpdatesInPlace(t *testing.T) {
	db := testDB(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "task-queue.md")

	write := func(content string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	write("## In Progress\n- [ ] Ship v2\n")
	if _, err := Sync(db, path); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	// The item moves to Done and gets checked: same row, new status.
	write("## Done\n- [x] Ship v2\n")
	if _, err := Sync(db, path); err != nil {
		t.Fatalf("re-Sync: %v", err)
	}

	var missions []models.Mission
	db.Find(&missions)
	if len(missions) != 1 {
		t.Fatalf("mission count = %d, want 1 (update-in-place)", len(missions))
	}
	if missions[0].Status != models.MissionDone {
		t.Errorf("status = %q, want done", missions[0].Status)
	}
	if missions[0].CompletedAt == nil {
		t.Error("CompletedAt = nil, want set for a checked item")
	}
}

func TestSync_UncheckingClearsCompletedAt(t *testing.T) {
	db := testDB(t)
	path := filepath.Join(t.TempDir(), "task-queue.md")

	os.WriteFile(path, []byte("## Done\n- [x] Revert me\n"), 0o644)
	if _, err := Sync(db, path); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	os.WriteFile(path, []byte("## To Do\n- [ ] Revert me\n"), 0o644)
	if _, err := Sync(db, path); err != nil {
		t.Fatalf("re-Sync: %v", err)
	}

	var m models.Mission
	db.First(&m)
	if m.Status != models.MissionBacklog {
		t.Errorf("status = %q, want backlog", m.Status)
	}
	if m.CompletedAt != nil {
		t.Errorf("CompletedAt = %v, want nil after unchecking", m.CompletedAt)
	}
}

func TestSync_MissingFileErrors(t *testing.T) {
	db := testDB(t)
	if _, err := Sync(db, filepath.Join(t.TempDir(), "absent.md")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSync_CountsItems(t *testing.T) {
	db := testDB(t)
	path := filepath.Join(t.TempDir(), "task-queue.md")
	os.WriteFile(path, []byte("## To Do\n- [ ] a\n- [ ] b\nplain text\n"), 0o644)

	n, err := Sync(db, path)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if n != 2 {
		t.Errorf("synced = %d, want 2", n)
	}
}
