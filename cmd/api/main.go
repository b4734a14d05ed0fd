package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/guardline/report-service/internal/api/http"
	"github.com/guardline/report-service/internal/api/http/handlers"
	"github.com/guardline/report-service/internal/chat"
	"github.com/guardline/report-service/internal/config"
	"github.com/guardline/report-service/internal/events"
	"github.com/guardline/report-service/internal/observability"
	"github.com/guardline/report-service/internal/persistence"
	"github.com/guardline/report-service/internal/repository"
	"github.com/guardline/report-service/internal/service"
	"github.com/guardline/report-service/internal/worker"
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

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations && pg.PoolHandle() != nil {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var reportRepo repository.ReportRepository
	if pool := pg.PoolHandle(); pool != nil {
		reportRepo = repository.NewReportRepository(pool)
	} else {
		reportRepo = repository.NewMemoryReportRepository()
	}

	var sessions chat.SessionStore
	if redis.Client != nil {
		sessions = chat.NewRedisSessionStore(redis.Client, cfg.Chat.SessionTTL())
	} else {
		sessions = chat.NewMemorySessionStore()
	}

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	reportService := service.NewReportService(service.ReportDependencies{
		ReportRepo: reportRepo,
		Dispatcher: dispatcher,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	chatClient := chat.NewClient(cfg.Chat)
	orchestrator := chat.NewOrchestrator(chatClient, sessions, dispatcher, logger)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Reports: handlers.NewReportsHandler(reportService),
		Chat:    handlers.NewChatHandler(orchestrator),
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
