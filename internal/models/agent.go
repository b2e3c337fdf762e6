package models

import "time"

// Agent statuses.
const (
	AgentOnline  = "online"
	AgentOffline = "offline"
	AgentError   = "error"
	AgentIdle    = "idle"
)

// Agent is one member of the openclaw fleet. Rows are upserted wholesale on
// every roster sync; status and last_seen_at are mutated independently by the
// tailer as bot_start/bot_stop events are observed.
type Agent struct {
	ID         string `gorm:"primaryKey;size:64"`
	Name       string `gorm:"not null"`
	Role       string `gorm:"size:64"`
	Model      string `gorm:"size:64"`
	Color      string `gorm:"size:16"`
	IsHand     bool
	BrainID    *string `gorm:"size:64"`
	Status     string  `gorm:"size:16;default:offline;index"`
	LastSeenAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
