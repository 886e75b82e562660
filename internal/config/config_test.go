package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("REDIS_URI", "redis://cache:6379")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("OPENROUTER_API_KEY", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 6, cfg.ContextWindow)
	assert.Equal(t, RejectRestart, cfg.RejectPolicy)
	assert.Equal(t, ProviderOpenRouter, cfg.AI.Provider)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.AI.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.AI.Timeout)
	assert.False(t, cfg.AI.IsEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CONTEXT_WINDOW", "4")
	t.Setenv("REJECT_POLICY", "Revise")
	t.Setenv("TURN_LOCK_WAIT", "5s")
	t.Setenv("SESSION_TTL", "not-a-duration")

	cfg := Load()

	assert.Equal(t, 4, cfg.ContextWindow)
	assert.Equal(t, RejectRevise, cfg.RejectPolicy)
	assert.Equal(t, 5*time.Second, cfg.TurnLockWait)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
}

func TestAIConfigProviders(t *testing.T) {
	t.Run("gemini", func(t *testing.T) {
		t.Setenv("LLM_PROVIDER", "gemini")
		t.Setenv("GEMINI_API_KEY", "k")
		t.Setenv("GEMINI_MODEL", "gemini-2.5-flash")

		cfg := DefaultAIConfig()
		assert.Equal(t, ProviderGemini, cfg.Provider)
		assert.Equal(t, "gemini-2.5-flash", cfg.Models.Evaluate)
		assert.Equal(t, "gemini-2.5-flash", cfg.Models.Classify)
		assert.True(t, cfg.IsEnabled())
	})

	t.Run("none is never enabled", func(t *testing.T) {
		t.Setenv("LLM_PROVIDER", "none")
		t.Setenv("OPENROUTER_API_KEY", "k")

		cfg := DefaultAIConfig()
		assert.False(t, cfg.IsEnabled())
	})

	t.Run("openrouter trims base url", func(t *testing.T) {
		t.Setenv("LLM_PROVIDER", "openrouter")
		t.Setenv("OPENROUTER_API_KEY", "k")
		t.Setenv("OPENROUTER_BASE_URL", "http://localhost:9999/v1/")
		t.Setenv("MODEL_NAME", "openai/gpt-4o-mini")

		cfg := DefaultAIConfig()
		assert.Equal(t, "http://localhost:9999/v1", cfg.BaseURL)
		assert.Equal(t, "openai/gpt-4o-mini", cfg.Models.Evaluate)
		assert.True(t, cfg.IsEnabled())
	})
}
