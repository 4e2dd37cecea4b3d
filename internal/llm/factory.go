package llm

import (
	"fmt"
	"strings"

	"support-assistant/internal/config"
)

// Factory creates reply providers from configuration.
type Factory struct {
	OpenaiAPIKey       string
	OpenaiBaseURL      string
	OpenRouterReferrer string
	OpenRouterTitle    string
	YandexOAuthToken   string
	YandexFolderID     string
	MaxTokens          int
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		OpenaiAPIKey:       cfg.OpenAIAPIKey,
		OpenaiBaseURL:      cfg.OpenAIBaseURL,
		OpenRouterReferrer: cfg.OpenRouterReferrer,
		OpenRouterTitle:    cfg.OpenRouterTitle,
		YandexOAuthToken:   cfg.YandexOAuthToken,
		YandexFolderID:     cfg.YandexFolderID,
		MaxTokens:          cfg.MaxTokens,
	}
}

// CreateClient builds the provider's client. The demo provider ignores model.
func (f *Factory) CreateClient(provider, model string) (Client, error) {
	switch config.LLMProvider(strings.ToLower(provider)) {
	case config.ProviderDemo, "":
		return NewKeyword(), nil
	case config.ProviderOpenAI:
		if f.OpenaiAPIKey == "" {
			return nil, fmt.Errorf("openai provider requires OPENAI_API_KEY")
		}
		return NewOpenAI(f.OpenaiAPIKey, f.OpenaiBaseURL, model, f.OpenRouterReferrer, f.OpenRouterTitle, f.MaxTokens), nil
	case config.ProviderYandex:
		if model != "" && model != YandexModel {
			return nil, fmt.Errorf("yandex provider only serves %s, got model %q", YandexModel, model)
		}
		return NewYandex(f.YandexOAuthToken, f.YandexFolderID)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", provider)
	}
}
