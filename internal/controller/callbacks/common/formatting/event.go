package formatting

import (
	"fmt"
	"strings"

	"github.com/Freeeeeet/campus_events/internal/model"
)

// FormatEventCard форматирует карточку мероприятия
func FormatEventCard(event model.Event, roomName, organizerName string) string {
	display := GetEventStatusDisplay(event.Status)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n\n", display.Emoji, event.Title)
	if event.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", event.Description)
	}
	fmt.Fprintf(&sb, "📅 %s\n", FormatInterval(event.StartTime, event.EndTime))
	if roomName != "" {
		fmt.Fprintf(&sb, "📍 %s\n", roomName)
	}
	if organizerName != "" {
		fmt.Fprintf(&sb, "👤 %s\n", organizerName)
	}
	fmt.Fprintf(&sb, "📊 Статус: %s\n", display.Text)

	remaining := event.Remaining()
	fmt.Fprintf(&sb, "🪑 Записано %d из %d, свободно %d %s",
		len(event.Registrations), event.Capacity, remaining, PluralizeSeats(remaining))

	return sb.String()
}

// FormatEventLine форматирует мероприятие одной строкой для списков
func FormatEventLine(event model.Event) string {
	display := GetEventStatusDisplay(event.Status)
	return fmt.Sprintf("%s %s\n    📅 %s", display.Emoji, event.Title, FormatInterval(event.StartTime, event.EndTime))
}
