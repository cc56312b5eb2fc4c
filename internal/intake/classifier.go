package intake

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ishwar-prog/Singularity-Hackathon/internal/model"
)

// ErrNoAPIKey is returned when a hosted provider is selected without a key
var ErrNoAPIKey = errors.New("api key is required")

// Classifier turns raw report text into a ClassificationRecord
type Classifier interface {
	// Name returns the classifier name
	Name() string

	// Classify normalizes and classifies one report
	Classify(ctx context.Context, req ClassifyRequest) (*model.ClassificationRecord, error)

	// IsAvailable checks if the classifier is configured and reachable
	IsAvailable(ctx context.Context) bool
}

// ClassifyRequest is the input for one classification
type ClassifyRequest struct {
	Text string

	// SourcePlatform is the declared or detected platform id
	SourcePlatform string
}

// Config holds classifier configuration
type Config struct {
	// Provider name: "openai", "groq", "ollama", or "" for offline
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL overrides the provider endpoint
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	MaxTokens   int
	Temperature float32
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "", // offline
		Timeout:     30,
		MaxTokens:   1000,
		Temperature: 0.1,
	}
}

// ConfigFromModel converts the file config section
func ConfigFromModel(c model.IntakeConfig) Config {
	return Config{
		Provider:    c.Provider,
		Model:       c.Model,
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		Timeout:     c.Timeout,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
	}
}

const systemPrompt = `You convert raw disaster reports into one strict JSON object.

Rules:
1. Reply with JSON only. No prose, no markdown fences.
2. Never invent data. Use null or "unknown" for anything the report does not state, and lower your confidence.
3. Detect the input language and translate internally; normalized_text is a short English restatement.
4. Rate urgency conservatively, but when human safety is at stake prefer the higher level.
5. Spam or unrelated text gets need_type "unknown" and confidence below 0.3.

Urgency levels:
- critical: people trapped, bleeding, life-threatening danger, children or elderly at risk
- high: no food or water, medical need, stranded
- medium: help requested without immediate danger
- low: informational or a future need

The object must match this JSON Schema:
%s`

// BuildMessages returns the system and user prompts for a request
func BuildMessages(req ClassifyRequest) (system, user string) {
	platform := req.SourcePlatform
	if platform == "" {
		platform = "unknown"
	}
	system = fmt.Sprintf(systemPrompt, RecordSchema)
	user = fmt.Sprintf("Process this disaster report:\n\n%s\n\nSource platform: %s", req.Text, platform)
	return system, user
}

// finalize fills the fields the oracle does not own and applies schema
// defaults to anything left empty
func finalize(rec *model.ClassificationRecord, req ClassifyRequest, now time.Time) *model.ClassificationRecord {
	if rec == nil {
		rec = &model.ClassificationRecord{}
	}

	if id := strings.TrimSpace(rec.RequestID); id == "" || strings.EqualFold(id, "unknown") {
		rec.RequestID = uuid.NewString()
	}
	if ts := strings.TrimSpace(rec.Timestamp); ts == "" || strings.EqualFold(ts, "unknown") {
		rec.Timestamp = now.UTC().Format(time.RFC3339)
	}
	if rec.OriginalText == "" {
		rec.OriginalText = req.Text
	}
	if rec.NormalizedText == "" {
		rec.NormalizedText = req.Text
	}
	if rec.SourcePlatform == "" || rec.SourcePlatform == "unknown" {
		rec.SourcePlatform = req.SourcePlatform
	}
	if rec.SourcePlatform == "" {
		rec.SourcePlatform = "unknown"
	}
	if rec.SourceLanguage == "" {
		rec.SourceLanguage = "en"
	}
	if rec.DisasterType == "" {
		rec.DisasterType = model.DisasterUnknown
	}
	if rec.NeedType == "" {
		rec.NeedType = model.NeedUnknown
	}
	if rec.Urgency == "" {
		rec.Urgency = model.UrgencyMedium
	}
	if rec.Confidence == nil {
		c := model.DefaultConfidence
		rec.Confidence = &c
	}
	return rec
}
