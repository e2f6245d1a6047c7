package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/club-system/config"
	"github.com/Dosada05/club-system/db"
	"github.com/Dosada05/club-system/handlers"
	"github.com/Dosada05/club-system/realtime"
	"github.com/Dosada05/club-system/repositories"
	api "github.com/Dosada05/club-system/routes"
	"github.com/Dosada05/club-system/services"
	"github.com/go-chi/chi/v5"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbClient, err := db.Connect(cfg.MongoURL, cfg.MongoDatabase, 10*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Disconnect(context.Background()); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if err := dbClient.EnsureIndexes(context.Background()); err != nil {
		logger.Error("failed to ensure database indexes", slog.Any("error", err))
		os.Exit(1)
	}

	// Инициализация WebSocket Hub и моста уведомлений
	wsHub := realtime.NewHub(logger)
	go wsHub.Run()
	notifier := realtime.NewHubNotifier(wsHub, logger)
	logger.Info("WebSocket hub started")

	clock := services.NewRealClock()

	// Инициализация репозиториев
	userRepo := repositories.NewMongoUserRepository(dbClient.Collection("users"))
	teamRepo := repositories.NewMongoTeamRepository(dbClient.Collection("teams"))
	eventRepo := repositories.NewMongoEventRepository(dbClient.Collection("events"))
	sessionRepo := repositories.NewMongoSessionRepository(dbClient.Collection("attendance_sessions"))
	logger.Info("repositories initialized")

	// Инициализация сервисов
	authService := services.NewAuthService(userRepo, clock)
	teamService := services.NewTeamService(teamRepo, userRepo, notifier, clock, logger)
	eventService := services.NewEventService(eventRepo, teamRepo, clock)
	participationService := services.NewParticipationService(eventRepo, teamRepo, notifier, clock, logger)
	attendanceService := services.NewAttendanceService(sessionRepo, teamRepo, eventRepo, clock)
	reminderService := services.NewReminderService(eventRepo, notifier, clock, logger)
	logger.Info("services initialized")

	// Запуск планировщика напоминаний
	go func() {
		ticker := time.NewTicker(cfg.ReminderInterval)
		defer ticker.Stop()
		logger.Info("reminder sweep scheduler started", slog.Duration("interval", cfg.ReminderInterval))

		// Первый проход сразу при старте, дальше по тикеру.
		if err := reminderService.SweepDueReminders(context.Background()); err != nil {
			logger.Error("scheduler: initial reminder sweep failed", slog.Any("error", err))
		}

		for range ticker.C {
			if err := reminderService.SweepDueReminders(context.Background()); err != nil {
				logger.Error("scheduler: periodic reminder sweep failed", slog.Any("error", err))
			}
		}
	}()

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	teamHandler := handlers.NewTeamHandler(teamService)
	eventHandler := handlers.NewEventHandler(eventService, participationService)
	attendanceHandler := handlers.NewAttendanceHandler(attendanceService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, logger)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		authHandler,
		teamHandler,
		eventHandler,
		attendanceHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
