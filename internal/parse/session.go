package parse

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Session is one parsed record from the sessions JSONL log.
type Session struct {
	AgentID      string
	StartedAt    time.Time
	EndedAt      *time.Time
	MessageCount int
	TotalCost    *float64
	ToolsUsed    []string
	Summary      *string
	LineHash     string
}

// sessionLine mirrors the JSONL shape written by the session logger.
type sessionLine struct {
	AgentID      string   `json:"agent_id"`
	Timestamp    string   `json:"timestamp"`
	StartedAt    string   `json:"started_at"`
	EndedAt      string   `json:"ended_at"`
	MessageCount int      `json:"message_count"`
	TotalCost    *float64 `json:"total_cost"`
	ToolsUsed    []string `json:"tools_used"`
	Summary      *string  `json:"summary"`
}

// SessionLine parses one JSONL session record. Lines without an agent_id are
// not session records and return (Session{}, false). LineHash is a digest of
// the raw line, used downstream as a dedup key.
func SessionLine(line string) (Session, bool) {
	var data sessionLine
	if err := json.Unmarshal([]byte(line), &data); err != nil {
		return Session{}, false
	}
	if data.AgentID == "" {
		return Session{}, false
	}

	started := parseTimestamp(data.StartedAt)
	if started.IsZero() {
		started = parseTimestamp(data.Timestamp)
	}
	if started.IsZero() {
		started = time.Now().UTC()
	}

	var ended *time.Time
	if t := parseTimestamp(data.EndedAt); !t.IsZero() {
		ended = &t
	}

	tools := data.ToolsUsed
	if tools == nil {
		tools = []string{}
	}

	sum := sha256.Sum256([]byte(line))

	return Session{
		AgentID:      data.AgentID,
		StartedAt:    started,
		EndedAt:      ended,
		MessageCount: data.MessageCount,
		TotalCost:    data.TotalCost,
		ToolsUsed:    tools,
		Summary:      data.Summary,
		LineHash:     hex.EncodeToString(sum[:]),
	}, true
}

// parseTimestamp parses an RFC3339 timestamp, returning the zero time for
// empty or malformed input.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
