package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session is one completed agent session parsed from the sessions JSONL log.
// LineHash is a digest of the raw source line; its unique index keeps
// truncation-triggered re-reads from inserting the same session twice.
type Session struct {
	ID           string `gorm:"primaryKey;size:36"`
	AgentID      string `gorm:"size:64;index"`
	StartedAt    time.Time
	EndedAt      *time.Time
	MessageCount int
	TotalCost    *float64
	ToolsUsed    string `gorm:"type:text"` // JSON-encoded []string
	Summary      *string
	LineHash     string `gorm:"size:64;uniqueIndex"`
	CreatedAt    time.Time
}

// BeforeCreate assigns a UUID primary key when none is set.
func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
