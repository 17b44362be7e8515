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

	"github.com/Dosada05/tournament-bracket/config"
	"github.com/Dosada05/tournament-bracket/db"
	"github.com/Dosada05/tournament-bracket/handlers"
	"github.com/Dosada05/tournament-bracket/metrics"
	"github.com/Dosada05/tournament-bracket/realtime"
	"github.com/Dosada05/tournament-bracket/repositories"
	api "github.com/Dosada05/tournament-bracket/routes"
	"github.com/Dosada05/tournament-bracket/services"
	"github.com/Dosada05/tournament-bracket/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

const shutdownTimeout = 15 * time.Second

// @title Tournament Bracket API
// @version 1.0
// @description Single-elimination bracket sessions: seeding, advancement, undo and archiving.
// @BasePath /
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.Int("history_limit", cfg.HistoryLimit),
		slog.Bool("archive_enabled", cfg.ArchiveEnabled()),
	)

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 10*time.Second)
	err = db.Migrate(migrateCtx, dbConn)
	cancelMigrate()
	if err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}

	var archiver storage.Archiver
	if cfg.ArchiveEnabled() {
		archiver, err = storage.NewCloudflareR2Archiver(context.Background(), storage.CloudflareR2ArchiverConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 archiver", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 archiver initialized", slog.String("bucket", cfg.R2BucketName))
	} else {
		logger.Warn("R2 not configured, completed sessions will not be archived")
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	wsHub := realtime.NewHub(logger)
	go wsHub.Run(hubCtx)
	logger.Info("WebSocket hub started")

	bracketMetrics := metrics.NewBracket().WithRuntime()

	sessionRepo := repositories.NewPostgresSessionRepository(dbConn)
	sessionService := services.NewSessionService(services.SessionServiceConfig{
		Repo:         sessionRepo,
		Archiver:     archiver,
		Notifier:     wsHub,
		Metrics:      bracketMetrics,
		Logger:       logger,
		HistoryLimit: cfg.HistoryLimit,
	})

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Dependencies{
		SessionHandler:   handlers.NewSessionHandler(sessionService),
		WebSocketHandler: handlers.NewWebSocketHandler(wsHub, sessionService, cfg.CORSAllowedOrigins, logger),
		HealthHandler:    handlers.NewHealthHandler(dbConn),
		Metrics:          bracketMetrics.Handler(),
		AllowedOrigins:   cfg.CORSAllowedOrigins,
	})
	logger.Info("routes configured")

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
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		stopHub()
		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
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
