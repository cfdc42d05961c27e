package alert

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Alerter отправляет короткое сообщение о сбое дежурным
type Alerter interface {
	Alert(ctx context.Context, text string) error
}

// NopAlerter используется, когда алерты не настроены
type NopAlerter struct{}

func (NopAlerter) Alert(context.Context, string) error { return nil }

type messageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// TelegramAlerter пишет алерты в чат Telegram
type TelegramAlerter struct {
	sender messageSender
	chatID int64
	prefix string
}

// NewTelegramAlerter создаёт алертер без запроса getMe при старте
func NewTelegramAlerter(token string, chatID int64, prefix string) (*TelegramAlerter, error) {
	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &TelegramAlerter{sender: b, chatID: chatID, prefix: prefix}, nil
}

func (a *TelegramAlerter) Alert(ctx context.Context, text string) error {
	if a.prefix != "" {
		text = a.prefix + " " + text
	}

	_, err := a.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: a.chatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("send telegram alert: %w", err)
	}

	return nil
}
