package config

import (
	"fmt"
	"log"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderDemo   LLMProvider = "demo"
	ProviderOpenAI LLMProvider = "openai"
	ProviderYandex LLMProvider = "yandex"
)

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":5000"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Safety limits
	MaxInputLength   int `env:"MAX_INPUT_LENGTH" envDefault:"2000"`
	MaxOutputLength  int `env:"MAX_OUTPUT_LENGTH" envDefault:"1000"`
	RateLimitPerHour int `env:"RATE_LIMIT_PER_HOUR" envDefault:"100"`

	// Business defaults
	DefaultBusinessName string `env:"DEFAULT_BUSINESS_NAME" envDefault:"Our Support Team"`
	DefaultTone         string `env:"DEFAULT_TONE" envDefault:"professional"`
	DefaultIndustry     string `env:"DEFAULT_INDUSTRY" envDefault:"general business"`

	// LLM settings
	LLMProvider      LLMProvider `env:"LLM_PROVIDER" envDefault:"demo"`
	LLMModel         string      `env:"LLM_MODEL"`
	MaxTokens        int         `env:"MAX_TOKENS" envDefault:"1000"`
	OpenAIAPIKey     string      `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string      `env:"OPENAI_BASE_URL"`
	OpenAIModel      string      `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	YandexOAuthToken string      `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string      `env:"YANDEX_FOLDER_ID"`

	// OpenRouter (optional)
	OpenRouterReferrer string `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string `env:"OPENROUTER_TITLE"`

	// Storage
	LogDirectory string `env:"LOG_DIRECTORY" envDefault:"logs"`

	// Feature flags
	EnableLogging      bool `env:"ENABLE_LOGGING" envDefault:"true"`
	EnableSignature    bool `env:"ENABLE_SIGNATURE" envDefault:"true"`
	EnableEditTracking bool `env:"ENABLE_EDIT_TRACKING" envDefault:"true"`
	EnableAnalytics    bool `env:"ENABLE_ANALYTICS" envDefault:"true"`

	// Daily report
	ReportCron       string `env:"REPORT_CRON" envDefault:"0 21 * * *"`
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	AdminChatID      int64  `env:"ADMIN_CHAT_ID"`
}

// Load parses the configuration from the process environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.MaxInputLength <= 0 || cfg.MaxOutputLength <= 0 {
		return nil, fmt.Errorf("length limits must be positive (input=%d, output=%d)", cfg.MaxInputLength, cfg.MaxOutputLength)
	}
	if cfg.MaxTokens <= 0 {
		return nil, fmt.Errorf("MAX_TOKENS must be positive, got %d", cfg.MaxTokens)
	}
	return cfg, nil
}

// Model is the model name for the selected provider. LLM_MODEL applies to every
// provider; OPENAI_MODEL is the OpenAI fallback.
func (c *Config) Model() string {
	if c.LLMModel != "" {
		return c.LLMModel
	}
	if c.LLMProvider == ProviderOpenAI {
		return c.OpenAIModel
	}
	return ""
}

func New() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
