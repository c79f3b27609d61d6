// Package providers implements the out-of-band side channels used for
// critical alerts. Channels are best effort and never participate in the
// alert transaction.
package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"

	"inventory-monitor/internal/logging"
	"inventory-monitor/internal/models"
)

// Telegram broadcasts critical alerts to configured chat IDs.
type Telegram struct {
	token   string
	chatIDs []int64
	logger  *logging.Logger
}

func NewTelegram(token string, chatIDs []int64, logger *logging.Logger) *Telegram {
	return &Telegram{token: token, chatIDs: chatIDs, logger: logger}
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Send(ctx context.Context, alert models.Alert, product models.Product) error {
	if t.token == "" || len(t.chatIDs) == 0 {
		return fmt.Errorf("telegram channel not configured")
	}

	text := fmt.Sprintf(
		"*CRITICAL ALERT*\n%s\n\n"+
			"*Product:* %s (SKU %s)\n"+
			"*Type:* %s\n"+
			"*Detected by:* %s",
		alert.Message,
		product.Name,
		product.SKU,
		alert.AlertType,
		alert.DetectedBy,
	)

	return retry(t.logger, 3, time.Second, func() error {
		b, err := bot.New(t.token)
		if err != nil {
			return fmt.Errorf("failed to initialize Telegram bot: %w", err)
		}
		for _, chatID := range t.chatIDs {
			params := &bot.SendMessageParams{
				ChatID:    chatID,
				Text:      text,
				ParseMode: "Markdown",
			}
			if _, err := b.SendMessage(ctx, params); err != nil {
				return fmt.Errorf("failed to send Telegram message to chat_id %d: %w", chatID, err)
			}
		}
		return nil
	})
}
