package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-router/internal/api/http"
	"github.com/spec-kit/ticket-router/internal/api/http/handlers"
	"github.com/spec-kit/ticket-router/internal/auth"
	"github.com/spec-kit/ticket-router/internal/config"
	"github.com/spec-kit/ticket-router/internal/department"
	"github.com/spec-kit/ticket-router/internal/events"
	"github.com/spec-kit/ticket-router/internal/observability"
	"github.com/spec-kit/ticket-router/internal/persistence"
	"github.com/spec-kit/ticket-router/internal/repository"
	"github.com/spec-kit/ticket-router/internal/service"
	"github.com/spec-kit/ticket-router/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	registry, err := department.LoadFile(cfg.Departments.Path)
	if err != nil {
		logger.Fatal("failed to load departments", zap.String("path", cfg.Departments.Path), zap.Error(err))
	}
	if registry.Len() == 0 {
		logger.Warn("department registry is empty; listing will fail", zap.String("path", cfg.Departments.Path))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, registry, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	resolver := persistence.NewConnectionResolver(registry, pg.Conns())
	if cfg.Postgres.RunMigrations {
		migrateStores(ctx, resolver, logger)
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	var publisher events.Publisher
	if cfg.Notification.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.Notification.AMQPURL, cfg.Notification.Exchange, cfg.Notification.RoutingKey)
		if err != nil {
			logger.Warn("amqp unavailable; events will only be logged", zap.Error(err))
		} else {
			notificationWorker := worker.NewNotificationWorker(amqpPublisher, logger, 256)
			notificationWorker.Start()
			defer notificationWorker.Close()
			publisher = notificationWorker
		}
	}
	service.NewNotificationService(dispatcher, publisher, logger).RegisterHandlers()

	ticketService := service.NewTicketService(service.TicketDependencies{
		Resolver:   resolver,
		TicketRepo: repository.NewTicketRepository(),
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
		Listing:    cfg.Listing,
	})
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		Revoker: redis,
		Logger:  logger,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), redis, logger)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env != "development",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		AdminTickets:   handlers.NewAdminTicketsHandler(ticketService),
		Auth:           handlers.NewAuthHandler(authService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("fiber shutdown", zap.Error(err))
	}
}

// migrateStores brings every reachable store up to date. A store that fails is
// logged and left for its requests to report as unavailable.
func migrateStores(ctx context.Context, resolver *persistence.ConnectionResolver, logger *zap.Logger) {
	handles, err := resolver.ResolveAll()
	if err != nil {
		logger.Error("cannot resolve stores for migration", zap.Error(err))
		return
	}
	for _, h := range handles {
		if err := persistence.RunMigrations(ctx, h, persistence.DefaultMigrationsDir, persistence.DirectionUp, logger); err != nil {
			logger.Error("migration failed",
				zap.String("department", h.Department().Name),
				zap.String("store", h.Department().Store),
				zap.Error(err))
		}
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
