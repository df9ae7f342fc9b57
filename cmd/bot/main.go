package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/campus_events/internal/app"
	"github.com/Freeeeeet/campus_events/internal/config"
	"github.com/Freeeeeet/campus_events/internal/controller"
	"github.com/Freeeeeet/campus_events/internal/controller/httpapi"
	"github.com/Freeeeeet/campus_events/internal/ledger"
	"github.com/Freeeeeet/campus_events/internal/lifecycle"
	"github.com/Freeeeeet/campus_events/internal/notify"
	"github.com/Freeeeeet/campus_events/internal/service"
	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment, "campus_events")
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("❌ Application failed", zap.Error(err))
	}
	logger.Info("👋 Shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("🚀 Starting campus events",
		zap.String("storage", cfg.StorageDriver),
		zap.String("http_addr", cfg.HTTPAddr),
		zap.Bool("telegram", cfg.TelegramToken != ""),
	)

	store, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	dir, err := app.LoadDirectory(ctx, store, logger)
	if err != nil {
		return err
	}

	// Telegram необязателен: без токена работает только HTTP API
	var telegramBot *bot.Bot
	if cfg.TelegramToken != "" {
		telegramBot, err = bot.New(cfg.TelegramToken)
		if err != nil {
			return err
		}
	}

	notifiers := notify.Fanout{notify.NewLogNotifier(logger)}
	if telegramBot != nil {
		notifiers = append(notifiers, notify.NewTelegramNotifier(telegramBot, dir, logger))
	}
	if cfg.RabbitMQURL != "" {
		rabbit, err := notify.NewRabbitNotifier(cfg.RabbitMQURL, cfg.RabbitMQExchange, cfg.RabbitMQQueue, logger)
		if err != nil {
			return err
		}
		defer rabbit.Close()
		notifiers = append(notifiers, rabbit)
	}

	persist := service.NewPersistence(dir, store)
	manager := lifecycle.NewManager(dir, notifiers)
	registrations := ledger.New(dir)

	userService := service.NewUserService(dir, registrations, persist, logger)
	roomService := service.NewRoomService(dir, manager, persist, logger)
	eventService := service.NewEventService(dir, manager, persist, logger)
	registrationService := service.NewRegistrationService(dir, registrations, persist, logger)

	// Последняя попытка дописать отложенные записи перед закрытием хранилища
	defer func() {
		if pending := persist.Pending(); pending > 0 {
			if _, err := persist.Flush(context.Background()); err != nil {
				logger.Error("❌ Unsaved changes lost on shutdown", zap.Int("pending", persist.Pending()), zap.Error(err))
			}
		}
	}()

	scheduler := app.NewScheduler(eventService, cfg.SweepInterval, logger, app.WithFlusher(persist))
	scheduler.Start(ctx)
	defer scheduler.Stop()

	api := httpapi.NewHandler(userService, roomService, eventService, registrationService, logger)
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      api.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("🌐 HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	if telegramBot != nil {
		botController := controller.NewBotController(telegramBot, userService, eventService, registrationService, roomService, logger)
		if err := botController.RegisterHandlers(ctx); err != nil {
			logger.Warn("⚠️ Failed to set bot commands", zap.Error(err))
		}
		go botController.Start(ctx)
	}

	select {
	case <-ctx.Done():
		logger.Info("🛑 Shutdown signal received")
	case err := <-serverErr:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
