package roster

import (
	"fmt"
	"strings"

	"github.com/openclaw/missionctl/internal/models"
	"github.com/openclaw/missionctl/internal/parse"
	"gorm.io/gorm"
)

// ApplyStatusEvents updates agent statuses from a batch of parsed events.
// A bot_start with a known agent sets it online and stamps last_seen_at
// with the event time. A bot_stop whose title carries SIGTERM means the
// whole gateway process tree went down, so every agent goes offline.
func ApplyStatusEvents(db *gorm.DB, events []parse.Event) error {
	for _, ev := range events {
		if ev.Type != models.EventBotStart || ev.AgentID == nil {
			continue
		}
		err := db.Model(&models.Agent{}).
			Where("id = ?", *ev.AgentID).
			Updates(map[string]interface{}{
				"status":       models.AgentOnline,
				"last_seen_at": ev.OccurredAt,
			}).Error
		if err != nil {
			return fmt.Errorf("roster: mark %s online: %w", *ev.AgentID, err)
		}
	}

	for _, ev := range events {
		if ev.Type != models.EventBotStop || !strings.Contains(ev.Title, "SIGTERM") {
			continue
		}
		err := db.Model(&models.Agent{}).
			Where("1 = 1").
			Update("status", models.AgentOffline).Error
		if err != nil {
			return fmt.Errorf("roster: mark all offline: %w", err)
		}
		break
	}

	return nil
}
