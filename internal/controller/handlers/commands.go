package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/campus_events/internal/controller/callbacks/common"
	"github.com/Freeeeeet/campus_events/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/campus_events/internal/controller/state"
	"github.com/Freeeeeet/campus_events/internal/model"
	"github.com/Freeeeeet/campus_events/internal/service"
	"github.com/go-telegram/bot/models"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b common.Messenger, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	from := update.Message.From
	name := strings.TrimSpace(from.FirstName + " " + from.LastName)

	user, created, err := h.userService.RegisterTelegramUser(ctx, from.ID, name)
	if err != nil {
		h.logger.Error("Failed to register user", zap.Int64("telegram_id", from.ID), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Произошла ошибка при регистрации. Попробуйте позже.")
		return
	}

	greeting := "👋 С возвращением"
	if created {
		greeting = "👋 Привет"
	}
	role := formatting.GetRoleDisplay(user.Role)

	h.sendMessage(ctx, b, update.Message.Chat.ID, fmt.Sprintf(
		"%s, %s!\n\n"+
			"Это бот мероприятий кампуса.\n"+
			"Ваша роль: %s %s\n\n"+
			"/events - Мероприятия с открытой записью\n"+
			"/help - Справка",
		greeting, user.Name, role.Emoji, role.Text,
	))
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b common.Messenger, update *models.Update) {
	if update.Message == nil {
		return
	}

	helpText := "📚 Справка по командам:\n\n" +
		"Для студентов:\n" +
		"/events - Мероприятия с открытой записью\n" +
		"/myregistrations - Мои записи\n" +
		"/propose - Предложить мероприятие\n" +
		"/myevents - Мои предложения\n\n" +
		"Для организаторов:\n" +
		"/propose - Создать мероприятие\n" +
		"/pending - Предложения на рассмотрении\n" +
		"/myevents - Мои мероприятия\n\n" +
		"/rooms - Комнаты и их загрузка\n" +
		"/cancel - Прервать текущий диалог"

	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText)
}

// HandleEvents показывает мероприятия с открытой записью
func (h *Handlers) HandleEvents(ctx context.Context, b common.Messenger, update *models.Update) {
	if _, ok := h.requireUser(ctx, b, update); !ok {
		return
	}
	h.ShowEventsPage(ctx, b, update.Message.Chat.ID, 0)
}

// ShowEventsPage отправляет страницу списка активных мероприятий
func (h *Handlers) ShowEventsPage(ctx context.Context, b common.Messenger, chatID int64, page int) {
	events := h.eventService.List(ctx, service.EventFilter{Status: model.EventStatusActive})
	text, markup := common.EventsPageScreen("📅 Мероприятия с открытой записью:", events, page)
	h.sendWithKeyboard(ctx, b, chatID, text, markup)
}

// ShowEvent отправляет карточку мероприятия с кнопками, доступными пользователю
func (h *Handlers) ShowEvent(ctx context.Context, b common.Messenger, chatID int64, user model.User, eventID string) {
	event, err := h.eventService.Get(ctx, eventID)
	if err != nil {
		h.sendError(ctx, b, chatID, common.ErrorMessage(err))
		return
	}

	roomName := ""
	if room, err := h.roomService.Get(ctx, event.RoomID); err == nil {
		roomName = room.Name
	}

	card := formatting.FormatEventCard(event, roomName, h.eventService.OrganizerName(event))
	h.sendWithKeyboard(ctx, b, chatID, card, common.EventButtons(event, user))
}

// HandleMyRegistrations показывает мероприятия, на которые записан студент
func (h *Handlers) HandleMyRegistrations(ctx context.Context, b common.Messenger, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	if !user.IsStudent() {
		h.sendError(ctx, b, chatID, "❌ Записываться на мероприятия могут только студенты.")
		return
	}

	events, err := h.registrationService.ForStudent(ctx, user.ID)
	if err != nil {
		h.logger.Error("Failed to list registrations", zap.String("user_id", user.ID), zap.Error(err))
		h.sendError(ctx, b, chatID, common.ErrorMessage(err))
		return
	}

	if len(events) == 0 {
		h.sendMessage(ctx, b, chatID, "📭 У вас пока нет записей.\n\nПосмотреть мероприятия: /events")
		return
	}

	h.sendMessage(ctx, b, chatID, fmt.Sprintf("📝 Вы записаны на %d %s:", len(events), formatting.PluralizeEvents(len(events))))
	for _, event := range events {
		h.ShowEvent(ctx, b, chatID, user, event.ID)
	}
}

// HandlePending показывает предложения студентов, ожидающие решения
func (h *Handlers) HandlePending(ctx context.Context, b common.Messenger, update *models.Update) {
	user, ok := h.requireManager(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	pending := h.eventService.Pending(ctx)
	if len(pending) == 0 {
		h.sendMessage(ctx, b, chatID, "✅ Нет предложений на рассмотрении.")
		return
	}

	h.sendMessage(ctx, b, chatID, fmt.Sprintf("⏳ На рассмотрении %d %s:", len(pending), formatting.PluralizeEvents(len(pending))))
	for _, event := range pending {
		h.ShowEvent(ctx, b, chatID, user, event.ID)
	}
}

// HandleMyEvents показывает мероприятия организатора или предложения студента
func (h *Handlers) HandleMyEvents(ctx context.Context, b common.Messenger, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	var events []model.Event
	if user.CanManageEvents() {
		events = h.eventService.OrganizedBy(ctx, user.ID)
	} else {
		events = lo.Filter(h.eventService.List(ctx, service.EventFilter{}), func(e model.Event, _ int) bool {
			return e.ProposerID == user.ID
		})
	}

	text := lo.Ternary(user.CanManageEvents(), "📋 Ваши мероприятия:", "💡 Ваши предложения:")
	text, markup := common.EventsPageScreen(text, events, 0)
	h.sendWithKeyboard(ctx, b, update.Message.Chat.ID, text, markup)
}

// HandleRooms показывает комнаты и их ближайшие брони
func (h *Handlers) HandleRooms(ctx context.Context, b common.Messenger, update *models.Update) {
	if _, ok := h.requireUser(ctx, b, update); !ok {
		return
	}
	chatID := update.Message.Chat.ID

	rooms := h.roomService.List(ctx)
	if len(rooms) == 0 {
		h.sendMessage(ctx, b, chatID, "📭 Комнат пока нет.")
		return
	}

	now := h.now()
	var sb strings.Builder
	sb.WriteString("🏫 Комнаты:\n")
	for _, room := range rooms {
		fmt.Fprintf(&sb, "\n📍 %s", room.Name)
		if room.Location != "" {
			fmt.Fprintf(&sb, ", %s", room.Location)
		}
		fmt.Fprintf(&sb, " (%d %s)\n", room.Capacity, formatting.PluralizeSeats(room.Capacity))

		schedule, err := h.roomService.Schedule(ctx, room.ID)
		if err != nil {
			continue
		}
		upcoming := lo.Filter(schedule, func(item service.ScheduleItem, _ int) bool {
			return item.Booking.EndTime.After(now)
		})
		if len(upcoming) == 0 {
			sb.WriteString("    🟢 Свободна\n")
			continue
		}
		for _, item := range upcoming {
			fmt.Fprintf(&sb, "    🔴 %s %s\n",
				formatting.FormatInterval(item.Booking.StartTime, item.Booking.EndTime), item.Event.Title)
		}
	}

	h.sendMessage(ctx, b, chatID, sb.String())
}

// HandleCancel обрабатывает команду /cancel - отмена текущего диалога
func (h *Handlers) HandleCancel(ctx context.Context, b common.Messenger, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	telegramID := update.Message.From.ID
	if h.stateManager.GetState(telegramID) == state.StateNone {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "❌ Нет активных операций для отмены.")
		return
	}

	h.stateManager.ClearState(telegramID)
	h.sendMessage(ctx, b, update.Message.Chat.ID, "✅ Операция отменена.\n\nИспользуйте /help для просмотра доступных команд.")
}

// HandleTextMessage обрабатывает текстовые сообщения в зависимости от состояния пользователя
func (h *Handlers) HandleTextMessage(ctx context.Context, b common.Messenger, update *models.Update) {
	if update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
		return
	}

	// Команды обрабатываются другими handlers
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	telegramID := update.Message.From.ID
	currentState := h.stateManager.GetState(telegramID)

	h.logger.Debug("HandleTextMessage called",
		zap.Int64("telegram_id", telegramID),
		zap.String("state", string(currentState)))

	switch currentState {
	case state.StateNone:
		return
	case state.StateProposeTitle:
		h.handleProposeTitleStep(ctx, b, update)
	case state.StateProposeDescription:
		h.handleProposeDescriptionStep(ctx, b, update)
	case state.StateProposeStart:
		h.handleProposeStartStep(ctx, b, update)
	case state.StateProposeEnd:
		h.handleProposeEndStep(ctx, b, update)
	case state.StateProposeCapacity:
		h.handleProposeCapacityStep(ctx, b, update)
	case state.StateProposeRoom:
		h.sendMessage(ctx, b, update.Message.Chat.ID, "👆 Выберите комнату кнопкой выше или /cancel")
	default:
		h.logger.Warn("Unknown state", zap.String("state", string(currentState)))
	}
}
