// Package parse converts raw log lines into typed ingestion records.
// Parsers never fail on malformed input: a line that doesn't match returns
// (zero, false) and is skipped by the caller.
package parse

import (
	"time"

	"github.com/openclaw/missionctl/internal/models"
)

// Event is one parsed activity-feed record, ready for FK sanitization and
// insertion as a models.Event row.
type Event struct {
	AgentID    *string
	Type       string
	Source     string
	Title      string
	Detail     *string
	Severity   string
	OccurredAt time.Time
}

// Row converts a parsed event into a models.Event for insertion.
func (e Event) Row() models.Event {
	return models.Event{
		AgentID:    e.AgentID,
		EventType:  e.Type,
		Source:     e.Source,
		Title:      e.Title,
		Detail:     e.Detail,
		Severity:   e.Severity,
		OccurredAt: e.OccurredAt,
	}
}

func strPtr(s string) *string { return &s }
