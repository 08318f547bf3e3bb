// Package notify delivers run summaries to Telegram.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier sends plain-text messages to one chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifier creates a notifier, or nil when the token is empty
// or the bot cannot authenticate. A nil notifier is a valid "disabled"
// value for the collector.
func NewTelegramNotifier(token string, chatID int64) *TelegramNotifier {
	if token == "" || chatID == 0 {
		return nil
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		slog.Error("Failed to create telegram bot", "error", err)
		return nil
	}
	bot.Debug = false

	if _, err := bot.GetMe(); err != nil {
		slog.Error("Failed to verify telegram bot", "error", err)
		return nil
	}

	slog.Info("Telegram notifier initialized", "chat_id", chatID)
	return &TelegramNotifier{bot: bot, chatID: chatID}
}

// Send delivers one message. Context cancellation aborts before sending.
func (n *TelegramNotifier) Send(ctx context.Context, text string) error {
	if n == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}
