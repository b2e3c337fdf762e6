package models

import "time"

// Event types recognized by the ingestion pipeline and the ingest API.
const (
	EventBotStart       = "bot_start"
	EventBotStop        = "bot_stop"
	EventHeartbeat      = "heartbeat"
	EventReload         = "reload"
	EventConfigChange   = "config_change"
	EventPluginLoad     = "plugin_load"
	EventHealthAlert    = "health_alert"
	EventGatewayRestart = "gateway_restart"
	EventMessage        = "message"
	EventSessionStart   = "session_start"
	EventSessionEnd     = "session_end"
	EventError          = "error"
	EventSystem         = "system"
	EventMissionCreated = "mission_created"
	EventMissionUpdated = "mission_updated"
	EventAgentPush      = "agent_push"
	EventCostEvent      = "cost_event"
)

// Event severities, in increasing order.
const (
	SeverityInfo     = "info"
	SeverityWarn     = "warn"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Event is one row in the activity feed. Events are append-only: the
// ingestion path never updates or deletes them. OccurredAt is event time,
// CreatedAt is ingestion time; the two can disagree.
type Event struct {
	ID         uint    `gorm:"primaryKey;autoIncrement"`
	AgentID    *string `gorm:"size:64;index"`
	EventType  string  `gorm:"size:32;not null;index"`
	Source     string  `gorm:"size:32"`
	Title      string  `gorm:"not null"`
	Detail     *string `gorm:"type:text"`
	Severity   string  `gorm:"size:16;default:info;index"`
	OccurredAt time.Time `gorm:"index"`
	CreatedAt  time.Time
}
