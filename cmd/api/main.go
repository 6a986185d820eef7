package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/credit-service/internal/api/http"
	"github.com/spec-kit/credit-service/internal/api/http/handlers"
	"github.com/spec-kit/credit-service/internal/api/validation"
	"github.com/spec-kit/credit-service/internal/auth"
	"github.com/spec-kit/credit-service/internal/config"
	"github.com/spec-kit/credit-service/internal/events"
	"github.com/spec-kit/credit-service/internal/health"
	"github.com/spec-kit/credit-service/internal/observability"
	"github.com/spec-kit/credit-service/internal/persistence"
	"github.com/spec-kit/credit-service/internal/photo"
	"github.com/spec-kit/credit-service/internal/ratelimit"
	"github.com/spec-kit/credit-service/internal/repository"
	"github.com/spec-kit/credit-service/internal/service"
	"github.com/spec-kit/credit-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	collector := observability.NewCollector(cfg.Metrics.Namespace, cfg.App.Name)

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, collector, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Configured() && cfg.Postgres.RunMigrations {
		db := stdlib.OpenDBFromPool(pg.Pool)
		if err := persistence.RunMigrations(ctx, db, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
		_ = db.Close()
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var (
		userRepo repository.UserRepository
		cardRepo repository.CreditCardRepository
	)
	if pg.Configured() {
		userRepo = repository.NewUserRepository(pg.Pool)
		cardRepo = repository.NewCreditCardRepository(pg.Pool)
	} else {
		userRepo = repository.NewMemoryUserRepository()
		cardRepo = repository.NewMemoryCreditCardRepository()
	}

	photoClient := photo.NewClient(cfg.PhotoService.URL, cfg.PhotoService.Timeout(), collector)

	aggregator := health.NewAggregator(cfg.Health.CheckTimeout(), logger,
		health.MetricsCallback(collector),
		health.LogCallback(logger),
	)
	components := []health.Component{
		{Name: "photo_service", Type: "service", Severity: health.SeverityMinor, Checker: photoClient.IsConnected},
	}
	if pg.Configured() {
		components = append(components, health.Component{Name: "postgres", Type: "database", Severity: health.SeverityMajor, Checker: pg.IsConnected})
	}
	if redis.Client != nil {
		components = append(components, health.Component{Name: "redis", Type: "cache", Severity: health.SeverityMinor, Checker: redis.IsConnected})
	}
	if err := aggregator.AddComponents(components...); err != nil {
		logger.Fatal("failed to register health components", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartAuditWorker(service.NewAuditService(dispatcher, collector, logger))

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:   userRepo,
		Tokens:     tokens,
		Dispatcher: dispatcher,
	})
	userService := service.NewUserService(userRepo, photoClient, dispatcher)
	cardService := service.NewCreditCardService(service.CreditCardDependencies{
		CardRepo:   cardRepo,
		Policy:     service.NewLimitPolicy(cfg.CreditCard.DefaultLimit, time.Now),
		Dispatcher: dispatcher,
		Logger:     logger,
		ExpYears:   cfg.CreditCard.ExpYears,
	})

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: cfg.App.BodyLimitMB * 1024 * 1024,
	})
	httptransport.RegisterMiddlewares(app, logger, collector, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(aggregator, collector),
		Users:          handlers.NewUsersHandler(authService, userService, validation.MustNew()),
		CreditCards:    handlers.NewCreditCardHandler(cardService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, userRepo),
		LoginLimiter:   ratelimit.NewLimiter(redis.Client, cfg.RateLimit.Attempts, cfg.RateLimit.Window(), logger),
	})

	refresher, err := worker.NewHealthRefresher(aggregator, cfg.Health.RefreshSchedule, logger)
	if err != nil {
		logger.Fatal("invalid health refresh schedule", zap.Error(err))
	}
	refresher.Start()

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	refresher.Stop(shutdownCtx)
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
