package lifecycle

import (
	"fmt"

	"github.com/Freeeeeet/campus_events/internal/model"
)

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionCancel  Action = "cancel"
)

var transitions = map[model.EventStatus]map[Action]model.EventStatus{
	model.EventStatusPending: {
		ActionApprove: model.EventStatusActive,
		ActionReject:  model.EventStatusRejected,
	},
	model.EventStatusActive: {
		ActionCancel: model.EventStatusCancelled,
	},
}

// Next возвращает статус после action. Из Cancelled и Rejected
// переходов нет.
func Next(from model.EventStatus, action Action) (model.EventStatus, error) {
	if to, ok := transitions[from][action]; ok {
		return to, nil
	}
	return "", fmt.Errorf("%w: cannot %s event in status %s", model.ErrInvalidTransition, action, from)
}

// releasesRoom освобождает ли действие комнату
func releasesRoom(action Action) bool {
	return action == ActionReject || action == ActionCancel
}

// InitialStatus статус нового мероприятия по роли автора.
// Организатор публикует сразу, студент предлагает.
func InitialStatus(role model.Role) (model.EventStatus, error) {
	switch role {
	case model.RoleOrganizer:
		return model.EventStatusActive, nil
	case model.RoleStudent:
		return model.EventStatusPending, nil
	default:
		return "", fmt.Errorf("%w: role %q cannot create events", model.ErrNotPermitted, role)
	}
}
