// Package cronsync mirrors the openclaw cron jobs file into the
// scheduled_tasks table.
package cronsync

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/openclaw/missionctl/internal/models"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// Source tag for jobs synced from the openclaw cron file.
	Source = "openclaw"

	defaultTZ = "America/Chicago"

	// Jobs firing more often than this are watchdog noise, not work.
	minIntervalMinutes = 5
)

// cronParser accepts standard 5-field expressions (minute through weekday).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// job is one entry of the openclaw cron jobs file.
type job struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Schedule    string `json:"schedule"`
	Agent       string `json:"agent"`
	Description string `json:"description"`
	Enabled     *bool  `json:"enabled"`
}

// Sync reads the cron jobs file and upserts recurring jobs keyed by
// (source, external_id). A missing file is not an error: there is simply
// nothing to sync. Agent links are applied afterwards by Reconcile so a job
// can arrive before its agent. Returns the number of jobs synced.
func Sync(db *gorm.DB, filePath string) (int, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("cronsync: read %s: %w", filePath, err)
	}

	var jobs []job
	if err := json.Unmarshal(raw, &jobs); err != nil {
		return 0, fmt.Errorf("cronsync: parse %s: %w", filePath, err)
	}

	synced := 0
	for _, j := range jobs {
		if !wanted(j) {
			continue
		}

		row := models.ScheduledTask{
			ExternalID:   j.ID,
			Name:         j.Name,
			ScheduleExpr: j.Schedule,
			ScheduleTZ:   defaultTZ,
			Source:       Source,
			Enabled:      j.Enabled == nil || *j.Enabled,
			NextRunAt:    nextRun(j.Schedule),
		}
		if j.Description != "" {
			row.Description = &j.Description
		}

		err := db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "source"}, {Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "schedule_expr", "schedule_tz", "enabled", "description", "next_run_at", "updated_at",
			}),
		}).Create(&row).Error
		if err != nil {
			return synced, fmt.Errorf("cronsync: upsert %q: %w", j.Name, err)
		}
		synced++
	}
	return synced, nil
}

// wanted filters to recurring cron jobs, skipping high-frequency watchdogs
// (*/n with n below five minutes).
func wanted(j job) bool {
	if j.Kind != "cron" {
		return false
	}
	fields := strings.Fields(j.Schedule)
	if len(fields) > 0 && strings.HasPrefix(fields[0], "*/") {
		if interval, err := strconv.Atoi(fields[0][2:]); err == nil && interval < minIntervalMinutes {
			return false
		}
	}
	return true
}

// nextRun computes the next fire time for a 5-field cron expression, or nil
// when the expression doesn't parse.
func nextRun(expr string) *time.Time {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		log.Printf("cronsync: schedule %q does not parse: %v", expr, err)
		return nil
	}
	next := sched.Next(time.Now())
	return &next
}

// Reconcile links synced jobs to their agents. Jobs whose agent is still
// missing from the roster keep a null link; that is expected, not an error,
// and the next reconcile pass picks them up.
func Reconcile(db *gorm.DB, filePath string) error {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("cronsync: read %s: %w", filePath, err)
	}
	var jobs []job
	if err := json.Unmarshal(raw, &jobs); err != nil {
		return fmt.Errorf("cronsync: parse %s: %w", filePath, err)
	}

	for _, j := range jobs {
		if j.Agent == "" || !wanted(j) {
			continue
		}
		var agent models.Agent
		if err := db.Select("id").First(&agent, "id = ?", j.Agent).Error; err != nil {
			continue // agent not synced yet; try again next pass
		}
		err := db.Model(&models.ScheduledTask{}).
			Where("source = ? AND external_id = ?", Source, j.ID).
			Update("agent_id", j.Agent).Error
		if err != nil {
			return fmt.Errorf("cronsync: link %q to %s: %w", j.Name, j.Agent, err)
		}
	}
	return nil
}
