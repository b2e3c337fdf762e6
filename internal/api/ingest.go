package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openclaw/missionctl/internal/models"
	"gorm.io/gorm"
)

// ingestEvent is the wire shape of one submitted event. Events typed
// "cost_event" additionally carry the token-usage fields.
type ingestEvent struct {
	EventType  string  `json:"event_type"`
	Title      string  `json:"title"`
	AgentID    *string `json:"agent_id"`
	Source     string  `json:"source"`
	Detail     *string `json:"detail"`
	Severity   string  `json:"severity"`
	OccurredAt string  `json:"occurred_at"`

	Model        string  `json:"model"`
	Provider     string  `json:"provider"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`
	SessionID    *string `json:"session_id"`
}

// handleIngest accepts one event object or an array of them. Regular events
// land in the activity feed; cost_event rows land in cost_events and are
// mirrored into the feed so spend shows up in the timeline.
func handleIngest(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		events, ok := decodeBody(c)
		if !ok {
			return
		}

		for _, e := range events {
			if e.EventType == "" || e.Title == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Each event requires event_type and title"})
				return
			}
		}

		var regular, costs []ingestEvent
		for _, e := range events {
			if e.EventType == models.EventCostEvent {
				costs = append(costs, e)
			} else {
				regular = append(regular, e)
			}
		}

		inserted := 0
		if len(regular) > 0 {
			rows := make([]models.Event, 0, len(regular))
			for _, e := range regular {
				rows = append(rows, e.eventRow())
			}
			if err := db.Create(&rows).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			inserted = len(rows)
		}

		costCount := 0
		if len(costs) > 0 {
			costRows := make([]models.CostEvent, 0, len(costs))
			for _, e := range costs {
				costRows = append(costRows, e.costRow())
			}
			if err := db.Create(&costRows).Error; err != nil {
				status := http.StatusInternalServerError
				if inserted > 0 {
					status = http.StatusMultiStatus
				}
				c.JSON(status, gin.H{"error": err.Error(), "inserted": inserted})
				return
			}

			feedRows := make([]models.Event, 0, len(costs))
			for _, e := range costs {
				feedRows = append(feedRows, e.eventRow())
			}
			if err := db.Create(&feedRows).Error; err != nil {
				log.Printf("api: cost event feed mirror insert: %v", err)
			}
			costCount = len(costRows)
		}

		c.JSON(http.StatusOK, gin.H{"inserted": inserted + costCount, "costs": costCount})
	}
}

// decodeBody parses the request body as either a single event or an array.
func decodeBody(c *gin.Context) ([]ingestEvent, bool) {
	var many []ingestEvent
	if err := c.ShouldBindBodyWithJSON(&many); err == nil {
		return many, true
	}
	var one ingestEvent
	if err := c.ShouldBindBodyWithJSON(&one); err == nil {
		return []ingestEvent{one}, true
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
	return nil, false
}

func (e ingestEvent) eventRow() models.Event {
	row := models.Event{
		EventType:  e.EventType,
		Title:      e.Title,
		AgentID:    e.AgentID,
		Source:     e.Source,
		Detail:     e.Detail,
		Severity:   e.Severity,
		OccurredAt: e.occurredAt(),
	}
	if row.Source == "" {
		row.Source = "api"
	}
	if row.Severity == "" {
		row.Severity = models.SeverityInfo
	}
	return row
}

func (e ingestEvent) costRow() models.CostEvent {
	row := models.CostEvent{
		AgentID:      e.AgentID,
		Model:        e.Model,
		Provider:     e.Provider,
		InputTokens:  e.InputTokens,
		OutputTokens: e.OutputTokens,
		CostUSD:      e.CostUSD,
		SessionID:    e.SessionID,
		OccurredAt:   e.occurredAt(),
	}
	if row.Model == "" {
		row.Model = "unknown"
	}
	if row.Provider == "" {
		row.Provider = models.ProviderOther
	}
	return row
}

func (e ingestEvent) occurredAt() time.Time {
	if e.OccurredAt != "" {
		if t, err := time.Parse(time.RFC3339, e.OccurredAt); err == nil {
			return t
		}
	}
	return time.Now().UTC()
}
