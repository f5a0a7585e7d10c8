// Package notify доставляет события слотов во внешние системы.
package notify

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/coach_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// MessageSender отправка сообщений, реализуется *bot.Bot
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// TelegramPublisher пишет события слотов в чат Telegram
type TelegramPublisher struct {
	sender MessageSender
	chatID int64
}

func NewTelegramPublisher(sender MessageSender, chatID int64) *TelegramPublisher {
	return &TelegramPublisher{sender: sender, chatID: chatID}
}

// NewTelegramBot создаёт клиента Telegram без получения обновлений
func NewTelegramBot(token string) (*bot.Bot, error) {
	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return b, nil
}

// Publish отправляет текст события в чат
func (p *TelegramPublisher) Publish(ctx context.Context, event service.SlotEvent) error {
	_, err := p.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: p.chatID,
		Text:   formatEvent(event),
	})
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}
