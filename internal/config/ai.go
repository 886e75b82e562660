package config

import (
	"strings"
	"time"
)

// LLM providers understood by the completion layer
const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
	ProviderNone       = "none"
)

// AIModels defines which model to use for each engine task
type AIModels struct {
	// Evaluate is for per-answer sufficiency judgement and extraction
	Evaluate string `json:"evaluate"`

	// Classify is for confirmation replies the lexicon could not decide
	Classify string `json:"classify"`
}

// AIConfig holds all AI-related configuration
type AIConfig struct {
	Provider string        `json:"provider"`
	APIKey   string        `json:"-"` // Never serialize
	BaseURL  string        `json:"baseUrl"`
	Models   AIModels      `json:"models"`
	Timeout  time.Duration `json:"timeout"`
}

// DefaultAIConfig returns the AI configuration from the environment
func DefaultAIConfig() *AIConfig {
	provider := strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenRouter))
	cfg := &AIConfig{
		Provider: provider,
		Timeout:  getEnvAsDuration("LLM_TIMEOUT", 10*time.Second),
	}

	switch provider {
	case ProviderGemini:
		model := getEnv("GEMINI_MODEL", "gemini-2.0-flash")
		cfg.APIKey = getEnv("GEMINI_API_KEY", "")
		cfg.Models = AIModels{
			Evaluate: model,
			Classify: getEnv("GEMINI_MODEL_CLASSIFY", model),
		}
	case ProviderNone:
	default:
		model := getEnv("MODEL_NAME", "openai/gpt-3.5-turbo")
		cfg.Provider = ProviderOpenRouter
		cfg.APIKey = getEnv("OPENROUTER_API_KEY", "")
		cfg.BaseURL = strings.TrimRight(getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"), "/")
		cfg.Models = AIModels{
			Evaluate: model,
			Classify: getEnv("MODEL_NAME_CLASSIFY", model),
		}
	}
	return cfg
}

// IsEnabled returns true if a provider is selected and has credentials
func (c *AIConfig) IsEnabled() bool {
	return c.Provider != ProviderNone && c.APIKey != ""
}
