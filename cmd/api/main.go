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

	httptransport "github.com/spec-kit/certtrack-service/internal/api/http"
	"github.com/spec-kit/certtrack-service/internal/api/http/handlers"
	"github.com/spec-kit/certtrack-service/internal/auth"
	"github.com/spec-kit/certtrack-service/internal/config"
	"github.com/spec-kit/certtrack-service/internal/domain"
	"github.com/spec-kit/certtrack-service/internal/events"
	"github.com/spec-kit/certtrack-service/internal/observability"
	"github.com/spec-kit/certtrack-service/internal/persistence"
	"github.com/spec-kit/certtrack-service/internal/repository"
	"github.com/spec-kit/certtrack-service/internal/salesforce"
	"github.com/spec-kit/certtrack-service/internal/service"
	"github.com/spec-kit/certtrack-service/internal/worker"
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

	registry, err := domain.LoadRequirementRegistry(cfg.Registry.RequirementsFile)
	if err != nil {
		logger.Fatal("failed to load role requirements", zap.Error(err))
	}

	store, cleanup, err := buildStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to init profile store", zap.Error(err))
	}
	defer cleanup()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	fetcher := salesforce.NewClient(cfg.Salesforce, logger)

	profileService := service.NewProfileService(store, registry, dispatcher, logger)
	syncService := service.NewSyncService(store, fetcher, dispatcher, metrics, logger, cfg.Sync.Concurrency)
	importService := service.NewImportService(store, dispatcher, logger)
	complianceService := service.NewComplianceService(store, registry, logger)
	authService := service.NewAuthService(cfg.Auth, logger)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager())

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics,
		time.Duration(cfg.App.RequestTimeoutSeconds)*time.Second)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, store),
		Auth:           handlers.NewAuthHandler(authService),
		Cache:          handlers.NewCacheHandler(profileService),
		Sync:           handlers.NewSyncHandler(syncService),
		Import:         handlers.NewImportHandler(importService),
		Compliance:     handlers.NewComplianceHandler(complianceService, registry),
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

// buildStore selects the profile store driver. The returned cleanup closes
// whatever connections the driver opened.
func buildStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.ProfileStore, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, func() {}, err
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				pg.Close()
				return nil, func() {}, err
			}
		}
		return repository.NewPostgresStore(pg.PoolHandle()), pg.Close, nil

	case config.StoreDriverRedis:
		rd := persistence.NewRedis(cfg.Redis, logger)
		return repository.NewRedisStore(rd.Client, cfg.Store.RedisKey), rd.Close, nil

	default:
		fs, err := repository.NewFileStore(cfg.Store.CacheFile)
		if err != nil {
			return nil, func() {}, err
		}
		logger.Info("using file profile store", zap.String("path", cfg.Store.CacheFile))
		return fs, func() {}, nil
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
