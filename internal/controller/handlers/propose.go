package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Freeeeeet/campus_events/internal/controller/callbacks/common"
	"github.com/Freeeeeet/campus_events/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/campus_events/internal/controller/state"
	"github.com/Freeeeeet/campus_events/internal/lifecycle"
	"github.com/Freeeeeet/campus_events/internal/model"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleProposeStart начинает диалог создания мероприятия.
// Организатор создаёт сразу активное мероприятие, студент - предложение.
func (h *Handlers) HandleProposeStart(ctx context.Context, b common.Messenger, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	if user.Role == model.RoleAdmin {
		h.sendError(ctx, b, chatID, "❌ Администраторы не создают мероприятия. Используйте аккаунт организатора.")
		return
	}
	if len(h.roomService.List(ctx)) == 0 {
		h.sendError(ctx, b, chatID, "❌ В системе пока нет ни одной комнаты.")
		return
	}

	telegramID := update.Message.From.ID
	h.stateManager.ClearState(telegramID)
	h.stateManager.SetState(telegramID, state.StateProposeTitle)
	h.stateManager.SetData(telegramID, state.KeyUserID, user.ID)

	h.logger.Info("Starting event proposal",
		zap.Int64("telegram_id", telegramID),
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)))

	intro := "📝 Новое мероприятие"
	if user.IsStudent() {
		intro = "💡 Предложение мероприятия\n\nПосле отправки его рассмотрит организатор."
	}

	h.sendMessage(ctx, b, chatID, intro+"\n\n"+
		"Шаг 1 из 5: Как называется мероприятие?\n\n"+
		"Для отмены используйте /cancel")
}

// handleProposeTitleStep обрабатывает ввод названия
func (h *Handlers) handleProposeTitleStep(ctx context.Context, b common.Messenger, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	title := strings.TrimSpace(update.Message.Text)

	length := utf8.RuneCountInString(title)
	if length < EventTitleMinLength {
		h.sendError(ctx, b, chatID,
			fmt.Sprintf("❌ Название слишком короткое. Минимум %d символа.\n\nПопробуйте ещё раз:", EventTitleMinLength))
		return
	}
	if length > EventTitleMaxLength {
		h.sendError(ctx, b, chatID,
			fmt.Sprintf("❌ Название слишком длинное. Максимум %d символов.\n\nПопробуйте ещё раз:", EventTitleMaxLength))
		return
	}

	h.stateManager.SetData(telegramID, state.KeyTitle, title)
	h.stateManager.SetState(telegramID, state.StateProposeDescription)

	h.sendMessage(ctx, b, chatID, fmt.Sprintf("✅ Название: %s\n\n"+
		"Шаг 2 из 5: Опишите мероприятие\n\n"+
		"Отправьте «%s», чтобы пропустить", title, SkipStep))
}

// handleProposeDescriptionStep обрабатывает ввод описания
func (h *Handlers) handleProposeDescriptionStep(ctx context.Context, b common.Messenger, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	description := strings.TrimSpace(update.Message.Text)

	if description == SkipStep {
		description = ""
	}
	if utf8.RuneCountInString(description) > EventDescriptionMaxLength {
		h.sendError(ctx, b, chatID,
			fmt.Sprintf("❌ Описание слишком длинное. Максимум %d символов.\n\nПопробуйте ещё раз:", EventDescriptionMaxLength))
		return
	}

	h.stateManager.SetData(telegramID, state.KeyDescription, description)
	h.stateManager.SetState(telegramID, state.StateProposeStart)

	h.sendMessage(ctx, b, chatID, "Шаг 3 из 5: Когда начало?\n\n"+
		"Формат: ДД.ММ.ГГГГ ЧЧ:ММ\n"+
		"Например: "+formatting.FormatDateTime(h.now().In(h.location).Add(24*time.Hour).Truncate(time.Hour)))
}

// handleProposeStartStep обрабатывает ввод времени начала
func (h *Handlers) handleProposeStartStep(ctx context.Context, b common.Messenger, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	start, err := formatting.ParseDateTime(strings.TrimSpace(update.Message.Text), h.location)
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ Не удалось разобрать дату. Формат: ДД.ММ.ГГГГ ЧЧ:ММ\n\nПопробуйте ещё раз:")
		return
	}
	if !start.After(h.now()) {
		h.sendError(ctx, b, chatID, "❌ Время начала уже прошло.\n\nПопробуйте ещё раз:")
		return
	}

	h.stateManager.SetData(telegramID, state.KeyStart, start)
	h.stateManager.SetState(telegramID, state.StateProposeEnd)

	h.sendMessage(ctx, b, chatID, fmt.Sprintf("✅ Начало: %s\n\n"+
		"Шаг 4 из 5: Во сколько конец? Формат: ЧЧ:ММ", formatting.FormatDateTime(start)))
}

// handleProposeEndStep обрабатывает ввод времени окончания
func (h *Handlers) handleProposeEndStep(ctx context.Context, b common.Messenger, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	start, ok := state.Get[time.Time](h.stateManager, telegramID, state.KeyStart)
	if !ok {
		h.abortProposal(ctx, b, telegramID, chatID)
		return
	}

	end, err := formatting.ParseEndTime(strings.TrimSpace(update.Message.Text), start)
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ Не удалось разобрать время. Формат: ЧЧ:ММ\n\nПопробуйте ещё раз:")
		return
	}
	if !end.After(start) {
		h.sendError(ctx, b, chatID, common.ErrorMessage(model.ErrInvalidInterval)+"\n\nПопробуйте ещё раз:")
		return
	}

	h.stateManager.SetData(telegramID, state.KeyEnd, end)
	h.stateManager.SetState(telegramID, state.StateProposeCapacity)

	h.sendMessage(ctx, b, chatID, fmt.Sprintf("✅ Длительность: %s\n\n"+
		"Шаг 5 из 5: Сколько мест?", formatting.FormatDuration(end.Sub(start))))
}

// handleProposeCapacityStep обрабатывает ввод количества мест и предлагает выбрать комнату
func (h *Handlers) handleProposeCapacityStep(ctx context.Context, b common.Messenger, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	capacity, err := strconv.Atoi(strings.TrimSpace(update.Message.Text))
	if err != nil || capacity < 1 {
		h.sendError(ctx, b, chatID, common.ErrorMessage(model.ErrInvalidCapacity)+"\n\nПопробуйте ещё раз:")
		return
	}
	if capacity > EventMaxCapacity {
		h.sendError(ctx, b, chatID,
			fmt.Sprintf("❌ Слишком много мест. Максимум %d.\n\nПопробуйте ещё раз:", EventMaxCapacity))
		return
	}

	start, okStart := state.Get[time.Time](h.stateManager, telegramID, state.KeyStart)
	end, okEnd := state.Get[time.Time](h.stateManager, telegramID, state.KeyEnd)
	if !okStart || !okEnd {
		h.abortProposal(ctx, b, telegramID, chatID)
		return
	}

	h.stateManager.SetData(telegramID, state.KeyCapacity, capacity)
	h.stateManager.SetState(telegramID, state.StateProposeRoom)

	// Показываем только комнаты, свободные на выбранное время
	var free []model.Room
	for _, room := range h.roomService.List(ctx) {
		if ok, err := h.roomService.IsAvailable(ctx, room.ID, start, end); err == nil && ok {
			free = append(free, room)
		}
	}

	if len(free) == 0 {
		h.stateManager.ClearState(telegramID)
		h.sendError(ctx, b, chatID, fmt.Sprintf("😔 На %s все комнаты заняты.\n\nНачните заново: /propose",
			formatting.FormatInterval(start, end)))
		return
	}

	h.sendWithKeyboard(ctx, b, chatID, fmt.Sprintf("✅ Мест: %d\n\nВыберите комнату на %s:",
		capacity, formatting.FormatInterval(start, end)), common.RoomButtons(free))
}

// CompleteProposal создаёт мероприятие из данных диалога в выбранной комнате.
// При конфликте брони диалог остаётся на шаге выбора комнаты.
func (h *Handlers) CompleteProposal(ctx context.Context, b common.Messenger, telegramID, chatID int64, roomID string) error {
	if h.stateManager.GetState(telegramID) != state.StateProposeRoom {
		return fmt.Errorf("%w: no proposal in progress", model.ErrInvalidInput)
	}

	userID, okUser := h.stateManager.GetString(telegramID, state.KeyUserID)
	title, okTitle := h.stateManager.GetString(telegramID, state.KeyTitle)
	description, _ := h.stateManager.GetString(telegramID, state.KeyDescription)
	start, okStart := state.Get[time.Time](h.stateManager, telegramID, state.KeyStart)
	end, okEnd := state.Get[time.Time](h.stateManager, telegramID, state.KeyEnd)
	capacity, okCapacity := state.Get[int](h.stateManager, telegramID, state.KeyCapacity)

	if !okUser || !okTitle || !okStart || !okEnd || !okCapacity {
		h.abortProposal(ctx, b, telegramID, chatID)
		return fmt.Errorf("%w: proposal data is incomplete", model.ErrInvalidInput)
	}

	event, err := h.eventService.Create(ctx, lifecycle.CreateRequest{
		CreatorID:   userID,
		Title:       title,
		Description: description,
		StartTime:   start,
		EndTime:     end,
		Capacity:    capacity,
		RoomID:      roomID,
	})
	if err != nil {
		return err
	}

	h.stateManager.ClearState(telegramID)

	text := "🎉 Мероприятие создано, запись открыта!"
	if event.Status == model.EventStatusPending {
		text = "📨 Предложение отправлено на рассмотрение. Статус можно проверить в /myevents"
	}
	h.sendMessage(ctx, b, chatID, text)

	user, err := h.userService.GetByID(ctx, userID)
	if err == nil {
		h.ShowEvent(ctx, b, chatID, user, event.ID)
	}
	return nil
}

func (h *Handlers) abortProposal(ctx context.Context, b common.Messenger, telegramID, chatID int64) {
	h.logger.Error("Missing proposal data", zap.Int64("telegram_id", telegramID))
	h.stateManager.ClearState(telegramID)
	h.sendError(ctx, b, chatID, "❌ Ошибка: данные не найдены. Начните заново через /propose")
}
