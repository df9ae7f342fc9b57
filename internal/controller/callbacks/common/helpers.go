package common

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Messenger часть API бота, которой пользуются обработчики
type Messenger interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
}

// HandlerFunc обработчик обновления, работающий через Messenger
type HandlerFunc func(ctx context.Context, b Messenger, update *models.Update)

// Adapt превращает HandlerFunc в обработчик go-telegram/bot
func Adapt(fn HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		fn(ctx, b, update)
	}
}

// AnswerCallback отвечает на callback query (без alert)
func AnswerCallback(ctx context.Context, b Messenger, callbackID string, text string) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       false,
	})
}

// AnswerCallbackAlert отвечает на callback query с alert (всплывающее окно)
func AnswerCallbackAlert(ctx context.Context, b Messenger, callbackID string, text string) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       true,
	})
}

// GetMessageFromCallback извлекает сообщение из callback query
func GetMessageFromCallback(callback *models.CallbackQuery) *models.Message {
	if callback.Message.Message != nil {
		return callback.Message.Message
	}
	return nil
}

// ChatIDFromCallback возвращает чат, из которого нажата кнопка.
// Для недоступных сообщений используется личный чат пользователя.
func ChatIDFromCallback(callback *models.CallbackQuery) int64 {
	if msg := GetMessageFromCallback(callback); msg != nil {
		return msg.Chat.ID
	}
	return callback.From.ID
}

// ParseIDFromCallback извлекает ID из callback data
// Например: "ev_reg:3f2a..." -> "3f2a..."
func ParseIDFromCallback(data string) (string, error) {
	_, id, ok := strings.Cut(data, ":")
	if !ok || id == "" || strings.Contains(id, ":") {
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, data)
	}
	return id, nil
}

// ParsePageFromCallback извлекает номер страницы: "events_page:2" -> 2
func ParsePageFromCallback(data string) (int, error) {
	raw, err := ParseIDFromCallback(data)
	if err != nil {
		return 0, err
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, data)
	}
	return page, nil
}
