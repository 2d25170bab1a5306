package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/Coconut044/SmartTicketSystem/internal/api/http"
	"github.com/Coconut044/SmartTicketSystem/internal/api/http/handlers"
	"github.com/Coconut044/SmartTicketSystem/internal/auth"
	"github.com/Coconut044/SmartTicketSystem/internal/config"
	"github.com/Coconut044/SmartTicketSystem/internal/domain"
	"github.com/Coconut044/SmartTicketSystem/internal/events"
	"github.com/Coconut044/SmartTicketSystem/internal/observability"
	"github.com/Coconut044/SmartTicketSystem/internal/persistence"
	"github.com/Coconut044/SmartTicketSystem/internal/repository"
	"github.com/Coconut044/SmartTicketSystem/internal/service"
	"github.com/Coconut044/SmartTicketSystem/internal/worker"
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

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	txManager := repository.NewTxManager(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	slaRepo := repository.NewSlaConfigurationRepository(pool)
	historyRepo := repository.NewTicketHistoryRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	workloadCache := persistence.NewWorkloadCache(redis, logger, 30*time.Second)
	clock := domain.SystemClock{}

	notificationService := service.NewNotificationService(notificationRepo, logger, cfg.Notification)
	notificationService.RegisterHandlers(dispatcher)

	slaService := service.NewSlaService(slaRepo, cfg.Sla)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   ticketRepo,
		CategoryRepo: categoryRepo,
		HistoryRepo:  historyRepo,
		Notification: notificationService,
		Sla:          slaService,
		Tx:           txManager,
		Dispatcher:   dispatcher,
		Clock:        clock,
	})
	lifecycleService := service.NewLifecycleService(service.LifecycleDependencies{
		TicketRepo:   ticketRepo,
		HistoryRepo:  historyRepo,
		Notification: notificationService,
		Tx:           txManager,
		Dispatcher:   dispatcher,
		Clock:        clock,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		TicketRepo:   ticketRepo,
		UserRepo:     userRepo,
		HistoryRepo:  historyRepo,
		Notification: notificationService,
		Tx:           txManager,
		Dispatcher:   dispatcher,
		Clock:        clock,
		Cache:        workloadCache,
	})
	escalationService := service.NewEscalationService(service.EscalationDependencies{
		TicketRepo:   ticketRepo,
		HistoryRepo:  historyRepo,
		Notification: notificationService,
		Tx:           txManager,
		Dispatcher:   dispatcher,
		Clock:        clock,
		Logger:       logger,
	})
	commentService := service.NewCommentService(service.CommentDependencies{
		CommentRepo:  commentRepo,
		TicketRepo:   ticketRepo,
		HistoryRepo:  historyRepo,
		Notification: notificationService,
		Tx:           txManager,
		Dispatcher:   dispatcher,
		Clock:        clock,
	})
	categoryService := service.NewCategoryService(categoryRepo)
	userService := service.NewUserService(userRepo, cfg.Auth)

	tokenIssuer := auth.NewTokenIssuer(cfg.Auth)
	authService := service.NewAuthService(userRepo, tokenIssuer, cfg.Auth, clock)
	authMiddleware := auth.Middleware(tokenIssuer, userRepo)

	escalationWorker := worker.NewEscalationWorker(escalationService, cfg.Escalation, logger)
	if err := escalationWorker.Start(ctx); err != nil {
		logger.Fatal("failed to start escalation worker", zap.Error(err))
	}
	defer escalationWorker.Stop()

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Lifecycle:      handlers.NewLifecycleHandler(lifecycleService, ticketService),
		Assignment:     handlers.NewAssignmentHandler(assignmentService),
		Comments:       handlers.NewCommentsHandler(commentService, ticketService),
		Categories:     handlers.NewCategoriesHandler(categoryService),
		Sla:            handlers.NewSlaHandler(slaService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		Users:          handlers.NewUsersHandler(userService),
		AuthMiddleware: authMiddleware,
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
