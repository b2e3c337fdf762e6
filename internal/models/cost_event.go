package models

import "time"

// Cost providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGoogle    = "google"
	ProviderXAI       = "xai"
	ProviderTogether  = "together"
	ProviderOther     = "other"
)

// CostEvent is one token-usage/cost record for the cost dashboard.
type CostEvent struct {
	ID           uint    `gorm:"primaryKey;autoIncrement"`
	AgentID      *string `gorm:"size:64;index"`
	Model        string  `gorm:"size:64"`
	Provider     string  `gorm:"size:16;index"`
	InputTokens  int
	OutputTokens int
	CostUSD      float64
	SessionID    *string `gorm:"size:64"`
	OccurredAt   time.Time `gorm:"index"`
	CreatedAt    time.Time
}
