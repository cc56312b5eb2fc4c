package intake

import (
	"fmt"
	"os"
	"strings"
)

// providerKeyEnv lists the conventional key variable of each provider
var providerKeyEnv = map[string]string{
	"openai": "OPENAI_API_KEY",
	"groq":   "GROQ_API_KEY",
}

// NewClassifier creates a classifier based on configuration. An empty
// provider gives the offline classifier.
func NewClassifier(config Config) (Classifier, error) {
	provider := strings.ToLower(strings.TrimSpace(config.Provider))

	if config.APIKey == "" {
		if env, ok := providerKeyEnv[provider]; ok {
			config.APIKey = os.Getenv(env)
		}
	}

	switch provider {
	case "openai":
		return NewOpenAIClassifier(config)

	case "groq":
		return NewGroqClassifier(config)

	case "ollama":
		return NewOllamaClassifier(config)

	case "", "offline", "none":
		return NewDefaultsClassifier(), nil

	default:
		return nil, fmt.Errorf("unknown intake provider: %s (supported: openai, groq, ollama)", config.Provider)
	}
}
