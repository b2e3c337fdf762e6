package db

import (
	"fmt"

	"github.com/openclaw/missionctl/internal/models"
	"gorm.io/gorm"
)

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.Agent{},
		&models.Event{},
		&models.Session{},
		&models.CostEvent{},
		&models.IngestionState{},
		&models.ScheduledTask{},
		&models.Mission{},
	}
}

// AutoMigrate creates or updates all mission control tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}
