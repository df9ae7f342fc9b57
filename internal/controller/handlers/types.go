package handlers

import (
	"time"

	"github.com/Freeeeeet/campus_events/internal/controller/state"
	"github.com/Freeeeeet/campus_events/internal/service"
	"go.uber.org/zap"
)

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	userService         *service.UserService
	eventService        *service.EventService
	registrationService *service.RegistrationService
	roomService         *service.RoomService
	stateManager        *state.Manager
	logger              *zap.Logger

	location *time.Location // зона, в которой пользователи вводят время
	now      func() time.Time
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(
	userService *service.UserService,
	eventService *service.EventService,
	registrationService *service.RegistrationService,
	roomService *service.RoomService,
	stateManager *state.Manager,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		userService:         userService,
		eventService:        eventService,
		registrationService: registrationService,
		roomService:         roomService,
		stateManager:        stateManager,
		logger:              logger,
		location:            time.Local,
		now:                 time.Now,
	}
}

// StateManager отдаёт менеджер состояний для обработчиков callback
func (h *Handlers) StateManager() *state.Manager {
	return h.stateManager
}
