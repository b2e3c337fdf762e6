package parse

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/openclaw/missionctl/internal/models"
)

// CostEvent is one parsed token-usage record from a session JSONL line.
type CostEvent struct {
	AgentID      string
	Model        string
	Provider     string
	InputTokens  int
	OutputTokens int
	CostUSD      float64
	SessionID    *string
	OccurredAt   time.Time
}

// modelProviders maps known model names to providers. Checked exact-first,
// then by substring.
var modelProviders = map[string]string{
	"opus-4-5":        models.ProviderAnthropic,
	"claude-opus-4-5": models.ProviderAnthropic,
	"sonnet-4-5":      models.ProviderAnthropic,
	"claude-sonnet-4-5": models.ProviderAnthropic,
	"haiku-4-5":        models.ProviderAnthropic,
	"claude-haiku-4-5": models.ProviderAnthropic,
	"gpt-4o":           models.ProviderOpenAI,
	"gpt-4-turbo":      models.ProviderOpenAI,
	"o1":               models.ProviderOpenAI,
	"o3":               models.ProviderOpenAI,
	"gemini-3-flash":   models.ProviderGoogle,
	"gemini-2.5-pro":   models.ProviderGoogle,
	"grok-3":           models.ProviderXAI,
	"deepseek-r1":      models.ProviderTogether,
	"kimi-k2":          models.ProviderTogether,
}

// InferProvider resolves a model name to its provider: exact table match,
// then substring match against table keys, then name prefix heuristics.
func InferProvider(model string) string {
	if p, ok := modelProviders[model]; ok {
		return p
	}
	for key, p := range modelProviders {
		if strings.Contains(model, key) {
			return p
		}
	}
	switch {
	case strings.HasPrefix(model, "claude"),
		strings.Contains(model, "opus"),
		strings.Contains(model, "sonnet"),
		strings.Contains(model, "haiku"):
		return models.ProviderAnthropic
	case strings.HasPrefix(model, "gpt"),
		strings.HasPrefix(model, "o1"),
		strings.HasPrefix(model, "o3"):
		return models.ProviderOpenAI
	case strings.HasPrefix(model, "gemini"):
		return models.ProviderGoogle
	case strings.HasPrefix(model, "grok"):
		return models.ProviderXAI
	}
	return models.ProviderOther
}

// usageBlob is the nested usage/cost object, tolerant of the several field
// spellings that appear in the wild.
type usageBlob struct {
	Model            string   `json:"model"`
	Provider         string   `json:"provider"`
	InputTokens      *int     `json:"input_tokens"`
	InputTokensAlt   *int     `json:"inputTokens"`
	PromptTokens     *int     `json:"prompt_tokens"`
	OutputTokens     *int     `json:"output_tokens"`
	OutputTokensAlt  *int     `json:"outputTokens"`
	CompletionTokens *int     `json:"completion_tokens"`
	CostUSD          *float64 `json:"cost_usd"`
	CostUSDAlt       *float64 `json:"costUsd"`
	TotalCost        *float64 `json:"total_cost"`
	SessionID        *string  `json:"session_id"`
}

// costLine is the outer JSONL object.
type costLine struct {
	Usage      *usageBlob `json:"usage"`
	CostEvt    *usageBlob `json:"costEvent"`
	Cost       *usageBlob `json:"cost"`
	Model      string     `json:"model"`
	SessionID  *string    `json:"session_id"`
	Timestamp  string     `json:"timestamp"`
	OccurredAt string     `json:"occurred_at"`
}

// CostLine extracts a cost event from one session JSONL line, attributed to
// the agent whose log is being tailed. Lines without a usage object, or
// whose token counts and cost are all zero, are noise and return false.
func CostLine(line, agentID string) (CostEvent, bool) {
	var data costLine
	if err := json.Unmarshal([]byte(line), &data); err != nil {
		return CostEvent{}, false
	}

	usage := data.Usage
	if usage == nil {
		usage = data.CostEvt
	}
	if usage == nil {
		usage = data.Cost
	}
	if usage == nil {
		return CostEvent{}, false
	}

	inputTokens := firstInt(usage.InputTokens, usage.InputTokensAlt, usage.PromptTokens)
	outputTokens := firstInt(usage.OutputTokens, usage.OutputTokensAlt, usage.CompletionTokens)
	costUSD := firstFloat(usage.CostUSD, usage.CostUSDAlt, usage.TotalCost)

	if inputTokens == 0 && outputTokens == 0 && costUSD == 0 {
		return CostEvent{}, false
	}

	model := usage.Model
	if model == "" {
		model = data.Model
	}
	if model == "" {
		model = "unknown"
	}

	provider := usage.Provider
	if provider == "" {
		provider = InferProvider(model)
	}

	sessionID := usage.SessionID
	if sessionID == nil {
		sessionID = data.SessionID
	}

	at := parseTimestamp(data.Timestamp)
	if at.IsZero() {
		at = parseTimestamp(data.OccurredAt)
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}

	return CostEvent{
		AgentID:      agentID,
		Model:        model,
		Provider:     provider,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		CostUSD:      costUSD,
		SessionID:    sessionID,
		OccurredAt:   at,
	}, true
}

func firstInt(vals ...*int) int {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return 0
}

func firstFloat(vals ...*float64) float64 {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return 0
}
