package main

import (
	"fmt"
	"time"

	"github.com/openclaw/missionctl/internal/models"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newStatusCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show ingestion status",
		Long:  "Displays row counts, the most recent events, and the agent roster with live status.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			return runStatus(cmd, gormDB)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "missionctl.yaml", "path to config file")
	return cmd
}

func runStatus(cmd *cobra.Command, gormDB *gorm.DB) error {
	out := cmd.OutOrStdout()

	var agents, events, errors int64
	gormDB.Model(&models.Agent{}).Count(&agents)
	gormDB.Model(&models.Event{}).Count(&events)
	gormDB.Model(&models.Event{}).
		Where("severity IN ?", []string{models.SeverityError, models.SeverityCritical}).
		Count(&errors)

	fmt.Fprintf(out, "Agents: %d\n", agents)
	fmt.Fprintf(out, "Events: %d\n", events)
	fmt.Fprintf(out, "Errors: %d\n", errors)

	var recent []models.Event
	if err := gormDB.Order("occurred_at DESC").Limit(10).Find(&recent).Error; err != nil {
		return fmt.Errorf("recent events: %w", err)
	}
	fmt.Fprintln(out, "\n--- Recent Events ---")
	for _, e := range recent {
		agent := "system"
		if e.AgentID != nil {
			agent = *e.AgentID
		}
		fmt.Fprintf(out, "  [%s] %s: %s (%s) @ %s\n",
			e.Severity, e.EventType, e.Title, agent, e.OccurredAt.Format(time.RFC3339))
	}

	var roster []models.Agent
	if err := gormDB.Order("id").Find(&roster).Error; err != nil {
		return fmt.Errorf("agents: %w", err)
	}
	fmt.Fprintln(out, "\n--- Agents ---")
	for _, a := range roster {
		fmt.Fprintf(out, "  %s: %s [%s]\n", a.ID, a.Name, a.Status)
	}
	return nil
}
