// Package assistant turns a customer message into a formatted support reply.
package assistant

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"support-assistant/internal/llm"
	"support-assistant/internal/logging"
	"support-assistant/internal/sanitize"
	"support-assistant/internal/storage"
)

const (
	DefaultTone            = "professional"
	DefaultIndustry        = "general business"
	DefaultBusinessName    = "our team"
	DefaultMaxOutputLength = 1000
)

// Settings controls how a reply is produced and formatted.
type Settings struct {
	Tone         string `json:"tone"`
	Industry     string `json:"industry"`
	AddSignature bool   `json:"add_signature"`
}

// DefaultSettings returns the settings used when a request leaves them out.
func DefaultSettings() Settings {
	return Settings{Tone: DefaultTone, Industry: DefaultIndustry, AddSignature: true}
}

// Record converts s to the form persisted with an interaction.
func (s Settings) Record() storage.Settings {
	sig := s.AddSignature
	return storage.Settings{Tone: s.Tone, Industry: s.Industry, AddSignature: &sig}
}

type Result struct {
	Reply           string
	OriginalMessage string
	CleanedMessage  string
	SettingsUsed    Settings
	Model           string
}

type Options struct {
	MaxInputLength  int
	MaxOutputLength int
	// SignatureEnabled gates AddSignature globally.
	SignatureEnabled bool
}

type Assistant struct {
	client    llm.Client
	sanitizer *sanitize.Sanitizer
	opts      Options
	logger    *zap.Logger
}

func New(client llm.Client, opts Options, logger *zap.Logger) *Assistant {
	if opts.MaxOutputLength <= 0 {
		opts.MaxOutputLength = DefaultMaxOutputLength
	}
	return &Assistant{
		client:    client,
		sanitizer: sanitize.New(opts.MaxInputLength),
		opts:      opts,
		logger:    logging.OrNop(logger),
	}
}

// GenerateReply sanitizes message, asks the reply provider for an answer and formats it.
// Sanitization failures are returned as *sanitize.ValidationError.
func (a *Assistant) GenerateReply(ctx context.Context, message, businessName string, settings Settings) (*Result, error) {
	cleaned, err := a.sanitizer.Clean(message)
	if err != nil {
		return nil, err
	}
	if settings.Tone == "" {
		settings.Tone = DefaultTone
	}
	if settings.Industry == "" {
		settings.Industry = DefaultIndustry
	}
	if businessName == "" {
		businessName = DefaultBusinessName
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: BuildSystemPrompt(settings.Tone, settings.Industry)},
		{Role: llm.RoleUser, Content: cleaned},
	}
	resp, err := a.client.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("generate reply: %w", err)
	}
	a.logger.Debug("reply generated",
		zap.String("model", resp.Model),
		zap.Int("prompt_tokens", resp.PromptTokens),
		zap.Int("completion_tokens", resp.CompletionTokens),
	)

	return &Result{
		Reply:           a.format(resp.Content, businessName, settings.AddSignature),
		OriginalMessage: message,
		CleanedMessage:  cleaned,
		SettingsUsed:    settings,
		Model:           resp.Model,
	}, nil
}

func (a *Assistant) format(reply, businessName string, addSignature bool) string {
	formatted := strings.TrimSpace(reply)
	if addSignature && a.opts.SignatureEnabled {
		formatted += "\n\nBest regards,\n" + businessName
	}
	return sanitize.Truncate(formatted, a.opts.MaxOutputLength)
}

// BuildSystemPrompt renders the instructions given to model-backed providers.
func BuildSystemPrompt(tone, industry string) string {
	return fmt.Sprintf(`You are a skilled customer support assistant for %s business.

Core Principles:
- Tone: %s, friendly, and empathetic
- Goal: Solve the customer's problem quickly and effectively
- Style: Clear, concise, human (never robotic)
- Length: Keep responses short but complete (2-4 sentences ideal)

Rules:
1. Always acknowledge the customer's concern first
2. Provide a clear solution or next step
3. End with helpfulness, not just closing
4. Never use corporate jargon or templates
5. Sound like a real person who cares

If you cannot solve the issue, escalate politely and explain why.
Never make promises the business cannot keep.`, industry, tone)
}
