package notify

import (
	"context"
	"fmt"
	"html"

	"github.com/Freeeeeet/campus_events/internal/directory"
	"github.com/Freeeeeet/campus_events/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// MessageSender часть API бота, нужная для рассылки. *bot.Bot её реализует.
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// TelegramNotifier отправляет уведомление каждому записанному студенту с привязанным чатом
type TelegramNotifier struct {
	sender MessageSender
	dir    *directory.Directory
	logger *zap.Logger
}

func NewTelegramNotifier(sender MessageSender, dir *directory.Directory, logger *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		sender: sender,
		dir:    dir,
		logger: logger,
	}
}

func (n *TelegramNotifier) Notify(ctx context.Context, event model.Event, message string) {
	text := fmt.Sprintf("🔔 %s", html.EscapeString(message))

	sent := 0
	for _, studentID := range event.StudentIDs() {
		student, err := n.dir.User(studentID)
		if err != nil || student.TelegramID == 0 {
			continue
		}

		_, err = n.sender.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    student.TelegramID,
			Text:      text,
			ParseMode: models.ParseModeHTML,
		})
		if err != nil {
			n.logger.Warn("Failed to deliver notice",
				zap.String("event_id", event.ID),
				zap.String("student_id", studentID),
				zap.Error(err),
			)
			continue
		}
		sent++
	}

	n.logger.Info("Telegram notices sent",
		zap.String("event_id", event.ID),
		zap.Int("sent", sent),
		zap.Int("registered", len(event.Registrations)),
	)
}
