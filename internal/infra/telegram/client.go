package telegram

import (
	"context"
	"fmt"

	"gopkg.in/telebot.v3"
)

// TelebotNotifier delivers notifications to a single Telegram chat using the
// gopkg.in/telebot.v3 library.
type TelebotNotifier struct {
	bot    *telebot.Bot
	chatID int64
}

// NewTelebotNotifier builds an offline bot: it never polls for updates and
// does not call getMe at construction time.
func NewTelebotNotifier(token string, chatID int64) (*TelebotNotifier, error) {
	b, err := telebot.NewBot(telebot.Settings{
		Token:   token,
		Offline: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return NewTelebotAdapter(b, chatID), nil
}

func NewTelebotAdapter(b *telebot.Bot, chatID int64) *TelebotNotifier {
	return &TelebotNotifier{bot: b, chatID: chatID}
}

func (n *TelebotNotifier) Name() string { return "telegram" }

// Send posts text to the configured chat. Link previews are disabled so the
// booking URL does not push the slot list out of view.
func (n *TelebotNotifier) Send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := n.bot.Send(telebot.ChatID(n.chatID), text, &telebot.SendOptions{
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("telegram send to chat %d failed: %w", n.chatID, err)
	}
	return nil
}
