package formatting

import "github.com/Freeeeeet/campus_events/internal/model"

// StatusDisplay представляет отображение статуса
type StatusDisplay struct {
	Emoji string
	Text  string
}

// GetEventStatusDisplay возвращает emoji и текст для статуса мероприятия
func GetEventStatusDisplay(status model.EventStatus) StatusDisplay {
	displays := map[model.EventStatus]StatusDisplay{
		model.EventStatusPending:   {"⏳", "Ожидает одобрения"},
		model.EventStatusActive:    {"✅", "Открыта запись"},
		model.EventStatusCancelled: {"❌", "Отменено"},
		model.EventStatusRejected:  {"🚫", "Отклонено"},
	}

	if display, ok := displays[status]; ok {
		return display
	}

	return StatusDisplay{"❓", "Неизвестно"}
}

// GetRoleDisplay возвращает emoji и текст для роли пользователя
func GetRoleDisplay(role model.Role) StatusDisplay {
	displays := map[model.Role]StatusDisplay{
		model.RoleStudent:   {"🎓", "Студент"},
		model.RoleOrganizer: {"📋", "Организатор"},
		model.RoleAdmin:     {"🛠", "Администратор"},
	}

	if display, ok := displays[role]; ok {
		return display
	}

	return StatusDisplay{"❓", "Неизвестно"}
}
