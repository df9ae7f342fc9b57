package callbacks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/campus_events/internal/controller/callbacks/common"
	"github.com/Freeeeeet/campus_events/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/campus_events/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// loadUser находит пользователя, нажавшего кнопку
func loadUser(ctx context.Context, b common.Messenger, callback *models.CallbackQuery, h *Handler) (model.User, bool) {
	user, err := h.UserService.GetByTelegramID(ctx, callback.From.ID)
	if errors.Is(err, model.ErrNotFound) {
		common.AnswerCallbackAlert(ctx, b, callback.ID, "❌ Пользователь не найден. Используйте /start")
		return model.User{}, false
	}
	if err != nil {
		h.Logger.Error("Failed to get user", zap.Int64("telegram_id", callback.From.ID), zap.Error(err))
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return model.User{}, false
	}
	return user, true
}

// parseEventAction разбирает callback вида "prefix:event_id" и загружает пользователя
func parseEventAction(ctx context.Context, b common.Messenger, callback *models.CallbackQuery, h *Handler) (model.User, string, bool) {
	eventID, err := common.ParseIDFromCallback(callback.Data)
	if err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return model.User{}, "", false
	}

	user, ok := loadUser(ctx, b, callback, h)
	if !ok {
		return model.User{}, "", false
	}
	return user, eventID, true
}

// HandleEventsPage листает список активных мероприятий
func HandleEventsPage(ctx context.Context, b common.Messenger, callback *models.CallbackQuery, h *Handler) {
	page, err := common.ParsePageFromCallback(callback.Data)
	if err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	common.AnswerCallback(ctx, b, callback.ID, "")
	h.Commands.ShowEventsPage(ctx, b, common.ChatIDFromCallback(callback), page)
}

// HandleViewEvent показывает карточку мероприятия
func HandleViewEvent(ctx context.Context, b common.Messenger, callback *models.CallbackQuery, h *Handler) {
	user, eventID, ok := parseEventAction(ctx, b, callback, h)
	if !ok {
		return
	}

	common.AnswerCallback(ctx, b, callback.ID, "")
	h.Commands.ShowEvent(ctx, b, common.ChatIDFromCallback(callback), user, eventID)
}

// HandleRegister записывает студента на мероприятие
func HandleRegister(ctx context.Context, b common.Messenger, callback *models.CallbackQuery, h *Handler) {
	user, eventID, ok := parseEventAction(ctx, b, callback, h)
	if !ok {
		return
	}

	if _, err := h.RegistrationService.Register(ctx, user.ID, user.ID, eventID); err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	common.AnswerCallback(ctx, b, callback.ID, "✅ Вы записаны!")
	h.Commands.ShowEvent(ctx, b, common.ChatIDFromCallback(callback), user, eventID)
}

// HandleWithdraw снимает запись студента
func HandleWithdraw(ctx context.Context, b common.Messenger, callback *models.CallbackQuery, h *Handler) {
	user, eventID, ok := parseEventAction(ctx, b, callback, h)
	if !ok {
		return
	}

	removed, err := h.RegistrationService.WithdrawStudent(ctx, user.ID, user.ID, eventID)
	if err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	if !removed {
		common.AnswerCallback(ctx, b, callback.ID, "Вы не были записаны")
		return
	}
	common.AnswerCallback(ctx, b, callback.ID, "✅ Запись отменена")
	h.Commands.ShowEvent(ctx, b, common.ChatIDFromCallback(callback), user, eventID)
}

// HandleApprove одобряет предложение
func HandleApprove(ctx context.Context, b common.Messenger, callback *models.CallbackQuery, h *Handler) {
	user, eventID, ok := parseEventAction(ctx, b, callback, h)
	if !ok {
		return
	}

	event, err := h.EventService.Approve(ctx, eventID, user.ID)
	if err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	common.AnswerCallback(ctx, b, callback.ID, "✅ Одобрено, запись открыта")
	notifyProposer(ctx, b, h, event, fmt.Sprintf("🎉 Ваше предложение «%s» одобрено! Запись открыта.", event.Title))
	h.Commands.ShowEvent(ctx, b, common.ChatIDFromCallback(callback), user, eventID)
}

// HandleReject отклоняет предложение
func HandleReject(ctx context.Context, b common.Messenger, callback *models.CallbackQuery, h *Handler) {
	user, eventID, ok := parseEventAction(ctx, b, callback, h)
	if !ok {
		return
	}

	event, err := h.EventService.Reject(ctx, eventID, user.ID)
	if err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	common.AnswerCallback(ctx, b, callback.ID, "🚫 Отклонено, комната освобождена")
	notifyProposer(ctx, b, h, event, fmt.Sprintf("😔 Ваше предложение «%s» отклонено.", event.Title))
}

// HandleCancelEvent спрашивает подтверждение отмены
func HandleCancelEvent(ctx context.Context, b common.Messenger, callback *models.CallbackQuery, h *Handler) {
	user, eventID, ok := parseEventAction(ctx, b, callback, h)
	if !ok {
		return
	}
	if !user.CanManageEvents() {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(model.ErrNotPermitted))
		return
	}

	event, err := h.EventService.Get(ctx, eventID)
	if err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	common.AnswerCallback(ctx, b, callback.ID, "")
	n := len(event.Registrations)
	send(ctx, b, h, common.ChatIDFromCallback(callback), fmt.Sprintf(
		"⚠️ Отменить «%s»?\n\nЗаписано %d %s, все получат уведомление.",
		event.Title, n, formatting.PluralizeStudents(n),
	), common.CancelConfirmButtons(eventID))
}

// HandleConfirmCancel отменяет мероприятие
func HandleConfirmCancel(ctx context.Context, b common.Messenger, callback *models.CallbackQuery, h *Handler) {
	user, eventID, ok := parseEventAction(ctx, b, callback, h)
	if !ok {
		return
	}

	event, err := h.EventService.Cancel(ctx, eventID, user.ID)
	if err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	common.AnswerCallback(ctx, b, callback.ID, "❌ Мероприятие отменено")
	n := len(event.Registrations)
	send(ctx, b, h, common.ChatIDFromCallback(callback), fmt.Sprintf(
		"❌ «%s» отменено. Комната освобождена, уведомлено %d %s.",
		event.Title, n, formatting.PluralizeStudents(n),
	), nil)
}

// HandleEventReport показывает список участников
func HandleEventReport(ctx context.Context, b common.Messenger, callback *models.CallbackQuery, h *Handler) {
	user, eventID, ok := parseEventAction(ctx, b, callback, h)
	if !ok {
		return
	}

	report, err := h.EventService.Report(ctx, user.ID, eventID)
	if err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "👥 %s\n", report.Event.Title)
	fmt.Fprintf(&sb, "Записано %d из %d, свободно %d\n", report.Registered, report.Event.Capacity, report.Remaining)
	for i, student := range report.Students {
		fmt.Fprintf(&sb, "\n%d. %s", i+1, student.Name)
		if student.StudentNumber != "" {
			fmt.Fprintf(&sb, " (%s)", student.StudentNumber)
		}
	}

	common.AnswerCallback(ctx, b, callback.ID, "")
	send(ctx, b, h, common.ChatIDFromCallback(callback), sb.String(), nil)
}

// HandleProposeRoom завершает диалог /propose выбором комнаты
func HandleProposeRoom(ctx context.Context, b common.Messenger, callback *models.CallbackQuery, h *Handler) {
	roomID, err := common.ParseIDFromCallback(callback.Data)
	if err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	err = h.Commands.CompleteProposal(ctx, b, callback.From.ID, common.ChatIDFromCallback(callback), roomID)
	if errors.Is(err, model.ErrRoomConflict) {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}
	if err != nil {
		h.Logger.Warn("Proposal not completed", zap.Int64("telegram_id", callback.From.ID), zap.Error(err))
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	common.AnswerCallback(ctx, b, callback.ID, "✅ Готово")
}

// notifyProposer сообщает студенту о решении по его предложению
func notifyProposer(ctx context.Context, b common.Messenger, h *Handler, event model.Event, text string) {
	proposer, err := h.UserService.GetByID(ctx, event.ProposerID)
	if err != nil || proposer.TelegramID == 0 || !proposer.IsStudent() {
		return
	}
	send(ctx, b, h, proposer.TelegramID, text, nil)
}

func send(ctx context.Context, b common.Messenger, h *Handler, chatID int64, text string, markup models.ReplyMarkup) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: markup,
	})
	if err != nil {
		h.Logger.Error("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
