package controller

import (
	"context"
	"strings"
	"time"

	"github.com/Freeeeeet/campus_events/internal/controller/callbacks"
	"github.com/Freeeeeet/campus_events/internal/controller/callbacks/common"
	"github.com/Freeeeeet/campus_events/internal/controller/handlers"
	"github.com/Freeeeeet/campus_events/internal/controller/state"
	"github.com/Freeeeeet/campus_events/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type BotController struct {
	bot             *bot.Bot
	handlers        *handlers.Handlers
	callbackHandler *callbacks.Handler
	logger          *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	userService *service.UserService,
	eventService *service.EventService,
	registrationService *service.RegistrationService,
	roomService *service.RoomService,
	logger *zap.Logger,
) *BotController {
	// Создаём менеджер состояний
	stateManager := state.NewManager()

	// Создаём обработчики команд
	cmdHandlers := handlers.NewHandlers(
		userService,
		eventService,
		registrationService,
		roomService,
		stateManager,
		logger,
	)

	callbackHandler := callbacks.NewHandler(
		userService,
		eventService,
		registrationService,
		cmdHandlers,
		logger,
	)

	return &BotController{
		bot:             botInstance,
		handlers:        cmdHandlers,
		callbackHandler: callbackHandler,
		logger:          logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	commands := map[string]common.HandlerFunc{
		"/start":           c.handlers.HandleStart,
		"/help":            c.handlers.HandleHelp,
		"/events":          c.handlers.HandleEvents,
		"/myregistrations": c.handlers.HandleMyRegistrations,
		"/propose":         c.handlers.HandleProposeStart,
		"/myevents":        c.handlers.HandleMyEvents,
		"/pending":         c.handlers.HandlePending,
		"/rooms":           c.handlers.HandleRooms,
		"/cancel":          c.handlers.HandleCancel,
	}
	for command, handler := range commands {
		c.bot.RegisterHandler(bot.HandlerTypeMessageText, command, bot.MatchTypeExact, common.Adapt(handler))
	}

	// Обработчик текстовых сообщений (для диалогов с состояниями), команды сюда не попадают
	c.bot.RegisterHandlerMatchFunc(isDialogText, common.Adapt(c.handlers.HandleTextMessage))

	// Обработчик нажатий на inline кнопки
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, common.Adapt(c.callbackHandler.HandleCallbackQuery))

	// Устанавливаем меню команд
	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Начать работу с ботом"},
		{Command: "help", Description: "❓ Справка по командам"},
		{Command: "events", Description: "📅 Мероприятия с открытой записью"},
		{Command: "myregistrations", Description: "📝 Мои записи"},
		{Command: "propose", Description: "💡 Предложить мероприятие"},
		{Command: "myevents", Description: "📋 Мои мероприятия"},
		{Command: "pending", Description: "⏳ На рассмотрении (организатор)"},
		{Command: "rooms", Description: "🏫 Комнаты"},
		{Command: "cancel", Description: "✖️ Прервать диалог"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает бота и блокируется до отмены ctx
func (c *BotController) Start(ctx context.Context) {
	c.logger.Info("🤖 Starting bot...")
	go c.sweepDialogs(ctx)
	c.bot.Start(ctx)
	c.logger.Info("Bot stopped")
}

// sweepDialogs периодически убирает брошенные диалоги
func (c *BotController) sweepDialogs(ctx context.Context) {
	ticker := time.NewTicker(state.DefaultTTL / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.handlers.StateManager().Sweep(); n > 0 {
				c.logger.Debug("Abandoned dialogs removed", zap.Int("count", n))
			}
		}
	}
}

func isDialogText(update *models.Update) bool {
	if update.Message == nil || update.Message.Text == "" {
		return false
	}
	return !strings.HasPrefix(update.Message.Text, "/")
}
