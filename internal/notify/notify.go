// Package notify delivers analysis reports to operators.
package notify

import (
	"context"
	"fmt"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"support-assistant/internal/logging"
)

// Telegram rejects messages longer than this many characters.
const telegramMessageLimit = 4096

type Notifier interface {
	Send(ctx context.Context, text string) error
}

// LogNotifier writes reports to the service log.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logging.OrNop(logger)}
}

func (n *LogNotifier) Send(ctx context.Context, text string) error {
	n.logger.Info("analysis report", zap.String("report", text))
	return nil
}

// TelegramNotifier sends reports to a single admin chat.
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegram(botToken string, chatID int64) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	return &TelegramNotifier{api: api, chatID: chatID}, nil
}

// NewTelegramWithEndpoint targets a non-default Bot API endpoint of the form ".../bot%s/%s".
func NewTelegramWithEndpoint(botToken, endpoint string, chatID int64) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPIWithAPIEndpoint(botToken, endpoint)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	return &TelegramNotifier{api: api, chatID: chatID}, nil
}

func (n *TelegramNotifier) Send(ctx context.Context, text string) error {
	for _, chunk := range splitMessage(text, telegramMessageLimit) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := n.api.Send(tgbotapi.NewMessage(n.chatID, chunk)); err != nil {
			return fmt.Errorf("send report to chat %d: %w", n.chatID, err)
		}
	}
	return nil
}

// splitMessage cuts text into pieces of at most limit runes, preferring line breaks.
func splitMessage(text string, limit int) []string {
	var out []string
	for utf8.RuneCountInString(text) > limit {
		runes := []rune(text)
		cut := limit
		for i := limit - 1; i > limit/2; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}
		out = append(out, string(runes[:cut]))
		text = string(runes[cut:])
	}
	if text != "" {
		out = append(out, text)
	}
	return out
}
