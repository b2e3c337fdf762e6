package models

import "time"

// IngestionState records how far the tailer has read into one watched file.
// LastOffset must never exceed the file's true size for the same file
// identity; an observed size below it means the file was rotated or
// truncated and forces a re-read from byte 0.
type IngestionState struct {
	ID         uint    `gorm:"primaryKey;autoIncrement"`
	FilePath   string  `gorm:"uniqueIndex;not null"`
	LastOffset int64   `gorm:"not null;default:0"`
	LastLine   *string `gorm:"type:text"`
	UpdatedAt  time.Time
}
