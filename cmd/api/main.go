package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/changuis/linear-ticket-to-csv/internal/api/http"
	"github.com/changuis/linear-ticket-to-csv/internal/api/http/handlers"
	"github.com/changuis/linear-ticket-to-csv/internal/config"
	"github.com/changuis/linear-ticket-to-csv/internal/linear"
	"github.com/changuis/linear-ticket-to-csv/internal/observability"
	"github.com/changuis/linear-ticket-to-csv/internal/openai"
	"github.com/changuis/linear-ticket-to-csv/internal/service"
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

	metrics := observability.NewMetrics()

	linearClient := linear.NewClient(cfg.Linear.Endpoint, cfg.Linear.Timeout())
	resolver := linear.NewResolver(linearClient, logger)
	completions := openai.NewClient(cfg.OpenAI.BaseURL, cfg.OpenAI.Temperature, cfg.OpenAI.Timeout())

	generationService := service.NewGenerationService(service.GenerationDependencies{
		Resolver:      resolver,
		Completions:   completions,
		Logger:        logger,
		MaxConcurrent: cfg.Linear.MaxConcurrent,
	})

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version),
		EnvStatus: handlers.NewEnvStatusHandler(cfg.Linear, cfg.OpenAI),
		Generate:  handlers.NewGenerateHandler(generationService, cfg.Linear, cfg.OpenAI),
		Metrics:   metrics.Handler(),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
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
