package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticketflow/internal/api/http"
	"github.com/spec-kit/ticketflow/internal/api/http/handlers"
	"github.com/spec-kit/ticketflow/internal/auth"
	"github.com/spec-kit/ticketflow/internal/config"
	"github.com/spec-kit/ticketflow/internal/observability"
	"github.com/spec-kit/ticketflow/internal/persistence"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	redis := persistence.NewRedis(cfg.Stub.Redis, logger)
	defer redis.Close()

	tasks := persistence.NewTaskRegistry(context.Background(), redis, logger)
	tokenManager := auth.NewTokenManager(cfg.Stub.JWTSecret, cfg.Stub.TokenTTLMinutes)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Prefix:    cfg.API.VersionPrefix,
		Analyze:   handlers.NewAnalyzeHandler(),
		Bulk:      handlers.NewBulkHandler(tasks, logger),
		Solutions: handlers.NewSolutionsHandler(),
		Analytics: handlers.NewAnalyticsHandler(),
		Health:    handlers.NewHealthHandler(cfg.App.Version, redis),
		Auth:      handlers.NewAuthHandler(tokenManager),
	})

	go func() {
		if err := app.Listen(cfg.Stub.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
