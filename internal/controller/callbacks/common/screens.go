package common

import (
	"fmt"
	"strings"

	"github.com/Freeeeeet/campus_events/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/campus_events/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/campus_events/internal/model"
	"github.com/go-telegram/bot/models"
)

// Форматы callback data
const (
	EventsPage    = "events_page:"   // events_page:0
	ViewEvent     = "ev_view:"       // ev_view:event_id
	Register      = "ev_reg:"        // ev_reg:event_id
	Withdraw      = "ev_wd:"         // ev_wd:event_id
	Approve       = "ev_ok:"         // ev_ok:event_id
	Reject        = "ev_no:"         // ev_no:event_id
	CancelEvent   = "ev_cancel:"     // ev_cancel:event_id
	ConfirmCancel = "ev_cancel_yes:" // ev_cancel_yes:event_id
	EventReport   = "ev_report:"     // ev_report:event_id
	ProposeRoom   = "propose_room:"  // propose_room:room_id
)

// EventsPageSize сколько мероприятий показывать на одной странице
const EventsPageSize = 5

// EventsPageScreen собирает страницу списка мероприятий с кнопками просмотра
func EventsPageScreen(title string, events []model.Event, page int) (string, models.ReplyMarkup) {
	if len(events) == 0 {
		return title + "\n\n📭 Пока ничего нет", nil
	}

	pages, page := keyboard.Pages(len(events), EventsPageSize, page)
	from := page * EventsPageSize
	to := min(from+EventsPageSize, len(events))

	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n")

	kb := keyboard.NewBuilder()
	for i, event := range events[from:to] {
		fmt.Fprintf(&sb, "\n%d. %s", from+i+1, formatting.FormatEventLine(event))
		kb.Row(keyboard.Button(fmt.Sprintf("%d. %s", from+i+1, event.Title), ViewEvent+event.ID))
	}
	kb.AddPagination(EventsPage, page, pages)

	return sb.String(), kb.Build()
}

// EventButtons собирает кнопки действий с мероприятием, доступных пользователю
func EventButtons(event model.Event, user model.User) models.ReplyMarkup {
	kb := keyboard.NewBuilder()

	switch {
	case user.IsStudent() && event.Status == model.EventStatusActive:
		if _, registered := event.RegistrationOf(user.ID); registered {
			kb.Row(keyboard.Button("❌ Отписаться", Withdraw+event.ID))
		} else if !event.IsFull() {
			kb.Row(keyboard.Button("✅ Записаться", Register+event.ID))
		}

	case user.CanManageEvents() && event.Status == model.EventStatusPending:
		kb.Row(
			keyboard.Button("✅ Одобрить", Approve+event.ID),
			keyboard.Button("🚫 Отклонить", Reject+event.ID),
		)

	case user.CanManageEvents() && event.Status == model.EventStatusActive:
		kb.Row(keyboard.Button("❌ Отменить мероприятие", CancelEvent+event.ID))
	}

	if user.CanManageEvents() {
		kb.Row(keyboard.Button("👥 Участники", EventReport+event.ID))
	}

	return kb.Build()
}

// CancelConfirmButtons кнопки подтверждения отмены
func CancelConfirmButtons(eventID string) models.ReplyMarkup {
	return keyboard.NewBuilder().
		Row(
			keyboard.Button("Да, отменить", ConfirmCancel+eventID),
			keyboard.Button("Нет", ViewEvent+eventID),
		).
		Build()
}

// RoomButtons кнопки выбора комнаты в диалоге предложения
func RoomButtons(rooms []model.Room) models.ReplyMarkup {
	kb := keyboard.NewBuilder()
	for _, room := range rooms {
		text := fmt.Sprintf("📍 %s (%d %s)", room.Name, room.Capacity, formatting.PluralizeSeats(room.Capacity))
		kb.Row(keyboard.Button(text, ProposeRoom+room.ID))
	}
	return kb.Build()
}
