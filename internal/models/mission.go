package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Mission statuses (kanban columns).
const (
	MissionBacklog    = "backlog"
	MissionInProgress = "in_progress"
	MissionReview     = "review"
	MissionDone       = "done"
)

// Mission is one task-queue item. MarkdownRef is the stable identity for
// checklist-derived missions: file path + ":" + title, deliberately excluding
// status so moving an item between sections updates the same row.
type Mission struct {
	ID          string `gorm:"primaryKey;size:36"`
	Title       string `gorm:"not null"`
	Status      string `gorm:"size:16;default:backlog;index"`
	Source      string `gorm:"size:32"`
	MarkdownRef string `gorm:"uniqueIndex"`
	SortOrder   int64
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BeforeCreate assigns a UUID primary key when none is set.
func (m *Mission) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
