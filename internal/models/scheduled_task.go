package models

import "time"

// ScheduledTask is a recurring cron job synced from the openclaw jobs config.
// Rows are keyed by (source, external_id); the agent link is applied in a
// separate best-effort pass so a job can sync before its agent exists.
type ScheduledTask struct {
	ID           uint    `gorm:"primaryKey;autoIncrement"`
	ExternalID   string  `gorm:"size:64;not null;uniqueIndex:idx_source_external"`
	Name         string  `gorm:"not null"`
	ScheduleExpr string  `gorm:"size:64"`
	ScheduleTZ   string  `gorm:"size:64"`
	AgentID      *string `gorm:"size:64"`
	Source       string  `gorm:"size:32;not null;uniqueIndex:idx_source_external"`
	Enabled      bool    `gorm:"default:true"`
	Description  *string `gorm:"type:text"`
	NextRunAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
