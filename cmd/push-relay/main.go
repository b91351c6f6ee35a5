package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/classroom-service/internal/config"
	"github.com/SAP-F-2025/classroom-service/internal/metrics"
	"github.com/SAP-F-2025/classroom-service/internal/push"
	"github.com/SAP-F-2025/classroom-service/internal/utils"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.NewLogger("development", nil).LogError(err, "Failed to load config")
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Environment, nil)
	if cfg.Relay.FirebaseCredentialsFile == "" {
		logger.Warn("FIREBASE_CREDENTIALS_FILE is empty, using application default credentials")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sender, err := push.NewFirebaseSender(ctx, push.FirebaseConfig{
		ProjectID:       cfg.Relay.FirebaseProjectID,
		CredentialsFile: cfg.Relay.FirebaseCredentialsFile,
		Endpoint:        cfg.Relay.PushEndpoint,
		Timeout:         cfg.Relay.PushTimeout,
	})
	if err != nil {
		logger.LogError(err, "Failed to create push sender")
		os.Exit(1)
	}

	limiter := push.NewRateLimiter(cfg.Relay.RatePerSecond, cfg.Relay.Burst)
	go limiter.Cleanup(ctx)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	m := metrics.New("push_relay")

	router := gin.New()
	router.Use(gin.Recovery(), utils.RequestIDMiddleware(logger), utils.LoggerMiddleware(logger), m.Middleware())

	push.NewRelay(push.NewTokenStore(), sender, limiter, logger, m).SetupRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Relay.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Push relay listening", "port", cfg.Relay.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.LogError(err, "Relay stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down relay")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.LogError(err, "Relay forced to shutdown")
	}
}
