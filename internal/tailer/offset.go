// Package tailer reads the unread suffix of growing log files and persists
// the parsed records, tracking byte offsets so restarts resume exactly where
// the previous run stopped.
package tailer

import (
	"errors"
	"fmt"

	"github.com/openclaw/missionctl/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OffsetStore persists the per-file read offset. Last-write-wins, no
// history.
type OffsetStore struct {
	db *gorm.DB
}

// NewOffsetStore creates an offset store over the given database.
func NewOffsetStore(db *gorm.DB) *OffsetStore {
	return &OffsetStore{db: db}
}

// Get returns the recorded offset for path, or 0 if the path is unknown.
func (s *OffsetStore) Get(path string) (int64, error) {
	var state models.IngestionState
	err := s.db.Where("file_path = ?", path).First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("tailer: get offset for %s: %w", path, err)
	}
	return state.LastOffset, nil
}

// Set upserts the offset for path. lastLine is stored as a diagnostic aid;
// an empty lastLine advances the offset without disturbing the previously
// recorded line.
func (s *OffsetStore) Set(path string, offset int64, lastLine string) error {
	state := models.IngestionState{
		FilePath:   path,
		LastOffset: offset,
	}
	assign := []string{"last_offset", "updated_at"}
	if lastLine != "" {
		state.LastLine = &lastLine
		assign = append(assign, "last_line")
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "file_path"}},
		DoUpdates: clause.AssignmentColumns(assign),
	}).Create(&state).Error
	if err != nil {
		return fmt.Errorf("tailer: set offset for %s: %w", path, err)
	}
	return nil
}
