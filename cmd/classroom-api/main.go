package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/classroom-service/internal/auth"
	"github.com/SAP-F-2025/classroom-service/internal/cache"
	"github.com/SAP-F-2025/classroom-service/internal/config"
	"github.com/SAP-F-2025/classroom-service/internal/handlers"
	"github.com/SAP-F-2025/classroom-service/internal/metrics"
	"github.com/SAP-F-2025/classroom-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/classroom-service/internal/services"
	"github.com/SAP-F-2025/classroom-service/internal/utils"
	"github.com/SAP-F-2025/classroom-service/internal/validator"
	"github.com/SAP-F-2025/classroom-service/pkg"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.NewLogger("development", nil).LogError(err, "Failed to load config")
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Environment, nil)
	slogger := utils.ToSlogLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.LogError(err, "Failed to connect to database")
		os.Exit(1)
	}
	if err := pkg.AutoMigrate(db); err != nil {
		logger.LogError(err, "Failed to migrate database")
		os.Exit(1)
	}

	zapLogger := newZapLogger(cfg)
	defer zapLogger.Sync()

	var cacheService cache.CacheService
	redisClient, err := pkg.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn("Redis unavailable, running without cache", "error", err)
	} else {
		defer redisClient.Close()
		cacheService = cache.NewRedisCache(redisClient, zapLogger)
	}

	eventPublisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		logger.LogError(err, "Failed to create event publisher")
		os.Exit(1)
	}
	defer eventPublisher.Close()

	feed, err := cfg.Events.CreateChangeFeed(slogger)
	if err != nil {
		logger.LogError(err, "Failed to create change feed")
		os.Exit(1)
	}
	defer feed.Close()

	repo := postgres.NewRepository(db)
	v := validator.New()

	notificationService := services.NewNotificationService(repo, feed, eventPublisher, slogger)
	quizService := services.NewQuizService(repo, cacheService, cfg.CacheTTL, notificationService, slogger, v)
	svc := handlers.Services{
		Course:       services.NewCourseService(repo, notificationService, slogger, v),
		Quiz:         quizService,
		Submission:   services.NewSubmissionService(repo, cacheService, feed, notificationService, slogger),
		Grading:      services.NewGradingService(repo, cacheService, feed, notificationService, slogger, v),
		Gradebook:    services.NewGradebookService(repo, slogger),
		Notification: notificationService,
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	m := metrics.New("classroom")

	router := gin.New()
	router.Use(
		gin.Recovery(),
		utils.RequestIDMiddleware(logger),
		utils.LoggerMiddleware(logger),
		m.Middleware(),
	)

	verifier := auth.NewCasdoorVerifier(cfg.Casdoor)
	handlers.NewHandlerManager(svc, logger, m).SetupRoutes(router, auth.Middleware(verifier, logger))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Notification streams end when the process is asked to stop.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		logger.Info("Classroom API listening", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.LogError(err, "Server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.LogError(err, "Server forced to shutdown")
	}

	logger.Info("Server exiting")
}

func newZapLogger(cfg *config.Config) *zap.Logger {
	build := zap.NewDevelopment
	if cfg.IsProduction() {
		build = zap.NewProduction
	}
	l, err := build()
	if err != nil {
		return zap.NewNop()
	}
	return l.Named("cache")
}
