package tailer

import (
	"context"
	"fmt"

	"github.com/openclaw/missionctl/internal/models"
	"github.com/openclaw/missionctl/internal/parse"
	"github.com/openclaw/missionctl/internal/roster"
	"gorm.io/gorm"
)

// eventChunkSize bounds one insert batch for event rows.
const eventChunkSize = 100

// EventSink parses log lines into events and persists them. Lines the
// parser rejects are skipped silently: parse failure is not ingestion
// failure. Any chunk insert failure aborts the batch so the tailer retries
// the same byte range.
type EventSink struct {
	db    *gorm.DB
	cache *roster.Cache
	parse func(string) (parse.Event, bool)
	alert func(context.Context, models.Event)
}

// NewEventSink creates a sink for one log's event records. alert may be nil.
func NewEventSink(db *gorm.DB, cache *roster.Cache, parseLine func(string) (parse.Event, bool), alert func(context.Context, models.Event)) (*EventSink, error) {
	if db == nil {
		return nil, fmt.Errorf("tailer: db is required")
	}
	if cache == nil {
		return nil, fmt.Errorf("tailer: roster cache is required")
	}
	if parseLine == nil {
		return nil, fmt.Errorf("tailer: parser is required")
	}
	return &EventSink{db: db, cache: cache, parse: parseLine, alert: alert}, nil
}

// Persist parses, sanitizes, and inserts one batch of lines, then applies
// roster status side effects and dispatches alerts.
func (s *EventSink) Persist(ctx context.Context, lines []string) error {
	var events []parse.Event
	for _, line := range lines {
		if ev, ok := s.parse(line); ok {
			events = append(events, ev)
		}
	}
	if len(events) == 0 {
		return nil
	}

	// Null out agent ids the roster doesn't know, so inserts can't trip
	// foreign key constraints on not-yet-synced agents.
	validIDs, err := s.cache.ValidIDs()
	if err != nil {
		return err
	}
	rows := make([]models.Event, len(events))
	for i, ev := range events {
		if ev.AgentID != nil && !validIDs[*ev.AgentID] {
			ev.AgentID = nil
			events[i].AgentID = nil
		}
		rows[i] = ev.Row()
	}

	db := s.db.WithContext(ctx)
	for start := 0; start < len(rows); start += eventChunkSize {
		endIdx := start + eventChunkSize
		if endIdx > len(rows) {
			endIdx = len(rows)
		}
		chunk := rows[start:endIdx]
		if err := db.Create(&chunk).Error; err != nil {
			return fmt.Errorf("insert events [%d:%d]: %w", start, endIdx, err)
		}
	}

	if err := roster.ApplyStatusEvents(db, events); err != nil {
		return err
	}

	if s.alert != nil {
		for _, row := range rows {
			if row.Severity == models.SeverityError || row.Severity == models.SeverityCritical {
				s.alert(ctx, row)
			}
		}
	}
	return nil
}
