// Package roster maintains the authoritative agent roster from the openclaw
// config and the valid-ID cache the tailers use to sanitize foreign keys.
package roster

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/openclaw/missionctl/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// roleMap assigns display roles by agent id. Unknown agents get "General".
var roleMap = map[string]string{
	"main":          "System / General",
	"kevin":         "Finance",
	"kevin-hand":    "Finance (Hand)",
	"axe":           "Wealth",
	"axe-hand":      "Wealth (Hand)",
	"thomas":        "Culinary",
	"dinesh":        "Coding / CTO",
	"dinesh-coder":  "Coding (Hand)",
	"richard":       "Design / CDO",
	"richard-hand":  "Design (Hand)",
	"hormozi":       "Marketing",
	"hormozi-hand":  "Marketing (Hand)",
	"tim":           "Home Improvement",
	"harvey":        "Legal",
	"cox":           "Health",
	"jared":         "PM / Projects",
}

// colorMap assigns display colors by agent id; hands share their brain's color.
var colorMap = map[string]string{
	"main":         "#8b5cf6",
	"kevin":        "#f59e0b",
	"kevin-hand":   "#f59e0b",
	"axe":          "#ef4444",
	"axe-hand":     "#ef4444",
	"thomas":       "#10b981",
	"dinesh":       "#3b82f6",
	"dinesh-coder": "#3b82f6",
	"richard":      "#06b6d4",
	"richard-hand": "#06b6d4",
	"hormozi":      "#ec4899",
	"hormozi-hand": "#ec4899",
	"tim":          "#f97316",
	"harvey":       "#a855f7",
	"cox":          "#14b8a6",
	"jared":        "#6366f1",
}

const defaultColor = "#6366f1"

// openclawAgent is one entry in the openclaw agent list.
type openclawAgent struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Model *struct {
		Primary string `json:"primary"`
	} `json:"model"`
	Subagents *struct {
		AllowAgents []string `json:"allowAgents"`
	} `json:"subagents"`
}

// openclawConfig is the subset of openclaw.json the roster sync reads.
type openclawConfig struct {
	Agents struct {
		Defaults struct {
			Model struct {
				Primary string `json:"primary"`
			} `json:"model"`
		} `json:"defaults"`
		List []openclawAgent `json:"list"`
	} `json:"agents"`
}

// Sync reads the openclaw config and upserts the full agent roster keyed by
// id. A missing or malformed config aborts this sync only; prior roster
// state is left intact. Agents removed from the config are deliberately not
// pruned so their status history survives config edits. Returns the number
// of agents synced.
func Sync(db *gorm.DB, configPath string) (int, error) {
	raw, err := os.ReadFile(configPath)
	if err != nil {
		return 0, fmt.Errorf("roster: read %s: %w", configPath, err)
	}
	var cfg openclawConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return 0, fmt.Errorf("roster: parse %s: %w", configPath, err)
	}

	defaultModel := cfg.Agents.Defaults.Model.Primary

	// An agent listed in anyone's allowAgents is that agent's hand.
	handToBrain := map[string]string{}
	for _, agent := range cfg.Agents.List {
		if agent.Subagents == nil {
			continue
		}
		for _, handID := range agent.Subagents.AllowAgents {
			handToBrain[handID] = agent.ID
		}
	}

	known := map[string]bool{}
	for _, agent := range cfg.Agents.List {
		known[agent.ID] = true
	}

	rows := make([]models.Agent, 0, len(cfg.Agents.List))
	for _, agent := range cfg.Agents.List {
		model := defaultModel
		if agent.Model != nil && agent.Model.Primary != "" {
			model = agent.Model.Primary
		}

		role, ok := roleMap[agent.ID]
		if !ok {
			role = "General"
		}
		color, ok := colorMap[agent.ID]
		if !ok {
			color = defaultColor
		}

		var brainID *string
		brain, isHand := handToBrain[agent.ID]
		if isHand && known[brain] {
			brainID = &brain
		}

		rows = append(rows, models.Agent{
			ID:      agent.ID,
			Name:    agent.Name,
			Role:    role,
			Model:   ShortModel(model),
			Color:   color,
			IsHand:  isHand,
			BrainID: brainID,
			Status:  models.AgentOffline,
		})
	}

	if len(rows) == 0 {
		return 0, nil
	}

	result := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "role", "model", "color", "is_hand", "brain_id", "status", "last_seen_at",
		}),
	}).Create(&rows)
	if result.Error != nil {
		return 0, fmt.Errorf("roster: upsert agents: %w", result.Error)
	}
	return len(rows), nil
}

// ShortModel strips a vendor path prefix and the "claude-" prefix from a
// model string: "anthropic/claude-opus-4-5" becomes "opus-4-5".
func ShortModel(model string) string {
	if i := strings.LastIndex(model, "/"); i >= 0 {
		model = model[i+1:]
	}
	return strings.TrimPrefix(model, "claude-")
}
