package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.HTTPAddr)
	assert.Equal(t, 2000, cfg.MaxInputLength)
	assert.Equal(t, 1000, cfg.MaxOutputLength)
	assert.Equal(t, 100, cfg.RateLimitPerHour)
	assert.Equal(t, "logs", cfg.LogDirectory)
	assert.Equal(t, ProviderDemo, cfg.LLMProvider)
	assert.Equal(t, "professional", cfg.DefaultTone)
	assert.True(t, cfg.EnableLogging)
	assert.True(t, cfg.EnableEditTracking)
	assert.Equal(t, 1000, cfg.MaxTokens)
	assert.Empty(t, cfg.Model())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LOG_DIRECTORY", "/tmp/support-logs")
	t.Setenv("MAX_INPUT_LENGTH", "50")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("ENABLE_SIGNATURE", "false")
	t.Setenv("ADMIN_CHAT_ID", "-100123")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/support-logs", cfg.LogDirectory)
	assert.Equal(t, 50, cfg.MaxInputLength)
	assert.Equal(t, ProviderOpenAI, cfg.LLMProvider)
	assert.False(t, cfg.EnableSignature)
	assert.Equal(t, int64(-100123), cfg.AdminChatID)
}

func TestLoadRejectsNonPositiveLimits(t *testing.T) {
	t.Setenv("MAX_OUTPUT_LENGTH", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_HOUR", "lots")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsNonPositiveMaxTokens(t *testing.T) {
	t.Setenv("MAX_TOKENS", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestModel(t *testing.T) {
	cfg := &Config{LLMProvider: ProviderOpenAI, OpenAIModel: "gpt-4o-mini"}
	assert.Equal(t, "gpt-4o-mini", cfg.Model())

	cfg.LLMModel = "gpt-4.1"
	assert.Equal(t, "gpt-4.1", cfg.Model())

	cfg = &Config{LLMProvider: ProviderYandex, OpenAIModel: "gpt-4o-mini"}
	assert.Empty(t, cfg.Model())

	cfg.LLMModel = "yandexgpt-lite"
	assert.Equal(t, "yandexgpt-lite", cfg.Model())
}
