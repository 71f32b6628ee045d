package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/vex-labs/ticket-view/internal/api/http"
	"github.com/vex-labs/ticket-view/internal/api/http/handlers"
	"github.com/vex-labs/ticket-view/internal/bootstrap"
	"github.com/vex-labs/ticket-view/internal/config"
	"github.com/vex-labs/ticket-view/internal/events"
	"github.com/vex-labs/ticket-view/internal/observability"
	"github.com/vex-labs/ticket-view/internal/service"
	"github.com/vex-labs/ticket-view/internal/viewmodel"
	"github.com/vex-labs/ticket-view/internal/worker"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend, err := bootstrap.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open ticket source", zap.String("source", cfg.Source.Kind), zap.Error(err))
	}
	defer backend.Close()

	loc, err := cfg.View.Location()
	if err != nil {
		logger.Fatal("invalid view timezone", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, cfg.Notification))

	viewService := service.NewViewService(service.ViewDependencies{
		Tickets:         backend.Source,
		Users:           backend.Source,
		Commander:       backend.Commander,
		UserCommander:   backend.UserCommander,
		Invalidator:     backend.Invalidator(),
		Dispatcher:      dispatcher,
		Metrics:         metrics,
		Logger:          logger,
		Options:         viewmodel.Options{Location: loc, DateLayout: cfg.View.DateLayout},
		DefaultPageSize: cfg.View.DefaultPageSize,
	})
	refresherDone := worker.StartSnapshotRefresher(ctx, viewService, cfg.Redis.SnapshotRefresh(), logger)

	checks := make([]handlers.DependencyCheck, 0, len(backend.Checks))
	for _, check := range backend.Checks {
		checks = append(checks, handlers.DependencyCheck{Name: check.Name, Ping: check.Ping})
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, checks...),
		Tickets: handlers.NewTicketsHandler(viewService),
		Users:   handlers.NewUsersHandler(viewService),
		Stats:   handlers.NewStatsHandler(viewService, metrics),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()
	logger.Info("ticket view started",
		zap.String("addr", cfg.App.Addr()),
		zap.String("source", cfg.Source.Kind),
		zap.Bool("cache", backend.Cache != nil),
	)

	waitForShutdown(logger)

	cancel()
	<-refresherDone
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
