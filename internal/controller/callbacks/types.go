package callbacks

import (
	"context"

	"github.com/Freeeeeet/campus_events/internal/controller/callbacks/common"
	"github.com/Freeeeeet/campus_events/internal/controller/handlers"
	"github.com/Freeeeeet/campus_events/internal/service"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Handler содержит общие зависимости для всех callback handlers
type Handler struct {
	UserService         *service.UserService
	EventService        *service.EventService
	RegistrationService *service.RegistrationService
	Commands            *handlers.Handlers // экраны и диалоги из обработчиков команд
	Logger              *zap.Logger
}

// NewHandler создаёт новый обработчик callbacks с зависимостями
func NewHandler(
	userService *service.UserService,
	eventService *service.EventService,
	registrationService *service.RegistrationService,
	commands *handlers.Handlers,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		UserService:         userService,
		EventService:        eventService,
		RegistrationService: registrationService,
		Commands:            commands,
		Logger:              logger,
	}
}

// HandleCallbackQuery - главный обработчик callback queries
func (h *Handler) HandleCallbackQuery(ctx context.Context, b common.Messenger, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}

	callback := update.CallbackQuery

	h.Logger.Debug("Callback received",
		zap.String("data", callback.Data),
		zap.Int64("user_id", callback.From.ID),
	)

	Route(ctx, b, callback, h)
}
