// Package taskqueue syncs the markdown task-queue checklist into mission
// rows. A task's identity is the file path plus its title, so moving an
// item between sections updates the same row instead of duplicating it.
package taskqueue

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/openclaw/missionctl/internal/models"
	"gorm.io/gorm"
)

var (
	headerRE = regexp.MustCompile(`^##\s+(.+)$`)
	taskRE   = regexp.MustCompile(`^-\s+\[([ xX])\]\s+(.+)$`)
)

// statusVocab maps section headers (lowercased) to mission statuses.
// Unrecognized headers default to backlog.
var statusVocab = map[string]string{
	"backlog":     models.MissionBacklog,
	"to do":       models.MissionBacklog,
	"todo":        models.MissionBacklog,
	"in progress": models.MissionInProgress,
	"doing":       models.MissionInProgress,
	"review":      models.MissionReview,
	"done":        models.MissionDone,
	"completed":   models.MissionDone,
}

// Item is one parsed checklist entry.
type Item struct {
	Title       string
	Status      string
	MarkdownRef string
	Completed   bool
}

// Parse extracts checklist items from a task-queue document. "##" headers
// set the status for the items below them; a checked box is always done no
// matter which section it sits in.
func Parse(content, filePath string) []Item {
	var items []Item
	currentStatus := models.MissionBacklog

	for _, line := range strings.Split(content, "\n") {
		if m := headerRE.FindStringSubmatch(line); m != nil {
			currentStatus = normalizeStatus(m[1])
			continue
		}
		m := taskRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		completed := m[1] != " "
		title := strings.TrimSpace(m[2])
		status := currentStatus
		if completed {
			status = models.MissionDone
		}
		items = append(items, Item{
			Title:       title,
			Status:      status,
			MarkdownRef: filePath + ":" + title,
			Completed:   completed,
		})
	}
	return items
}

func normalizeStatus(header string) string {
	if status, ok := statusVocab[strings.ToLower(strings.TrimSpace(header))]; ok {
		return status
	}
	return models.MissionBacklog
}

// Sync parses the task-queue file and upserts each item by markdown ref.
// Existing rows get their title, status, and completion timestamp updated
// in place; new rows are appended with a time-derived sort key. Returns the
// number of items synced.
func Sync(db *gorm.DB, filePath string) (int, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("taskqueue: read %s: %w", filePath, err)
	}

	items := Parse(string(content), filePath)
	for _, item := range items {
		var completedAt *time.Time
		if item.Completed {
			now := time.Now().UTC()
			completedAt = &now
		}

		var existing models.Mission
		err := db.Where("markdown_ref = ?", item.MarkdownRef).First(&existing).Error
		switch {
		case err == nil:
			err = db.Model(&existing).Updates(map[string]interface{}{
				"title":        item.Title,
				"status":       item.Status,
				"completed_at": completedAt,
			}).Error
			if err != nil {
				return 0, fmt.Errorf("taskqueue: update %q: %w", item.Title, err)
			}
		case err == gorm.ErrRecordNotFound:
			mission := models.Mission{
				Title:       item.Title,
				Status:      item.Status,
				Source:      "markdown",
				MarkdownRef: item.MarkdownRef,
				SortOrder:   time.Now().UnixMilli(),
				CompletedAt: completedAt,
			}
			if err := db.Create(&mission).Error; err != nil {
				return 0, fmt.Errorf("taskqueue: insert %q: %w", item.Title, err)
			}
		default:
			return 0, fmt.Errorf("taskqueue: lookup %q: %w", item.Title, err)
		}
	}
	return len(items), nil
}
