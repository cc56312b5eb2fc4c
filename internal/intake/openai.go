package intake

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ishwar-prog/Singularity-Hackathon/internal/model"
)

// Endpoints and default models of the OpenAI-compatible providers
const (
	GroqBaseURL   = "https://api.groq.com/openai/v1"
	OllamaBaseURL = "http://localhost:11434/v1"

	defaultOpenAIModel = openai.GPT4oMini
	defaultGroqModel   = "llama-3.3-70b-versatile"
	defaultOllamaModel = "llama3.1"
)

// OpenAIClassifier classifies reports through any OpenAI-compatible chat
// completions endpoint in JSON mode
type OpenAIClassifier struct {
	name      string
	client    *openai.Client
	config    Config
	validator *SchemaValidator
	now       func() time.Time
}

// NewOpenAIClassifier creates a classifier for OpenAI itself
func NewOpenAIClassifier(config Config) (*OpenAIClassifier, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("openai: %w", ErrNoAPIKey)
	}
	if config.Model == "" {
		config.Model = defaultOpenAIModel
	}
	return newCompatClassifier("openai", config)
}

// NewGroqClassifier creates a classifier for Groq's OpenAI-compatible API
func NewGroqClassifier(config Config) (*OpenAIClassifier, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("groq: %w", ErrNoAPIKey)
	}
	if config.BaseURL == "" {
		config.BaseURL = GroqBaseURL
	}
	if config.Model == "" {
		config.Model = defaultGroqModel
	}
	return newCompatClassifier("groq", config)
}

// NewOllamaClassifier creates a classifier for a local Ollama server. No key
// is needed.
func NewOllamaClassifier(config Config) (*OpenAIClassifier, error) {
	if config.APIKey == "" {
		config.APIKey = "ollama"
	}
	if config.BaseURL == "" {
		config.BaseURL = OllamaBaseURL
	}
	if config.Model == "" {
		config.Model = defaultOllamaModel
	}
	return newCompatClassifier("ollama", config)
}

func newCompatClassifier(name string, config Config) (*OpenAIClassifier, error) {
	validator, err := NewSchemaValidator()
	if err != nil {
		return nil, err
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIClassifier{
		name:      name,
		client:    openai.NewClientWithConfig(clientConfig),
		config:    config,
		validator: validator,
		now:       time.Now,
	}, nil
}

// Name returns the provider name
func (c *OpenAIClassifier) Name() string {
	return c.name
}

// IsAvailable lists models as a lightweight reachability check
func (c *OpenAIClassifier) IsAvailable(ctx context.Context) bool {
	_, err := c.client.ListModels(ctx)
	return err == nil
}

// Classify sends the report to the model and validates the JSON it returns
func (c *OpenAIClassifier) Classify(ctx context.Context, req ClassifyRequest) (*model.ClassificationRecord, error) {
	maxTokens := c.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}

	timeout := time.Duration(c.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	system, user := BuildMessages(req)
	chatReq := openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens:   maxTokens,
		Temperature: c.config.Temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := c.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return nil, fmt.Errorf("%s API error: %w", c.name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from %s", c.name)
	}

	rec, err := c.validator.Decode(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.name, err)
	}

	return finalize(rec, req, c.now()), nil
}
