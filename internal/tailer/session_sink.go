package tailer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openclaw/missionctl/internal/models"
	"github.com/openclaw/missionctl/internal/parse"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sessionChunkSize bounds one insert batch for session rows.
const sessionChunkSize = 50

// SessionSink parses session JSONL lines into session rows, plus any cost
// events embedded in the same lines. Session inserts are deduplicated by
// line hash so a truncation-triggered re-read cannot double-insert.
type SessionSink struct {
	db *gorm.DB
}

// NewSessionSink creates a sink for the sessions JSONL log.
func NewSessionSink(db *gorm.DB) (*SessionSink, error) {
	if db == nil {
		return nil, fmt.Errorf("tailer: db is required")
	}
	return &SessionSink{db: db}, nil
}

// Persist inserts the parsed session and cost rows from one batch of lines.
func (s *SessionSink) Persist(ctx context.Context, lines []string) error {
	var sessions []models.Session
	var costs []models.CostEvent

	for _, line := range lines {
		sess, ok := parse.SessionLine(line)
		if !ok {
			continue
		}

		tools, err := json.Marshal(sess.ToolsUsed)
		if err != nil {
			return fmt.Errorf("marshal tools_used: %w", err)
		}
		sessions = append(sessions, models.Session{
			AgentID:      sess.AgentID,
			StartedAt:    sess.StartedAt,
			EndedAt:      sess.EndedAt,
			MessageCount: sess.MessageCount,
			TotalCost:    sess.TotalCost,
			ToolsUsed:    string(tools),
			Summary:      sess.Summary,
			LineHash:     sess.LineHash,
		})

		// Session lines can carry usage metadata; bill it to the session's agent.
		if ce, ok := parse.CostLine(line, sess.AgentID); ok {
			agentID := ce.AgentID
			costs = append(costs, models.CostEvent{
				AgentID:      &agentID,
				Model:        ce.Model,
				Provider:     ce.Provider,
				InputTokens:  ce.InputTokens,
				OutputTokens: ce.OutputTokens,
				CostUSD:      ce.CostUSD,
				SessionID:    ce.SessionID,
				OccurredAt:   ce.OccurredAt,
			})
		}
	}

	db := s.db.WithContext(ctx)
	for start := 0; start < len(sessions); start += sessionChunkSize {
		endIdx := start + sessionChunkSize
		if endIdx > len(sessions) {
			endIdx = len(sessions)
		}
		chunk := sessions[start:endIdx]
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "line_hash"}},
			DoNothing: true,
		}).Create(&chunk).Error
		if err != nil {
			return fmt.Errorf("insert sessions [%d:%d]: %w", start, endIdx, err)
		}
	}

	for start := 0; start < len(costs); start += sessionChunkSize {
		endIdx := start + sessionChunkSize
		if endIdx > len(costs) {
			endIdx = len(costs)
		}
		chunk := costs[start:endIdx]
		if err := db.Create(&chunk).Error; err != nil {
			return fmt.Errorf("insert cost events [%d:%d]: %w", start, endIdx, err)
		}
	}
	return nil
}
