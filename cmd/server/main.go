package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"atw-marketplace/internal/adapters/cache"
	"atw-marketplace/internal/adapters/http/handlers"
	"atw-marketplace/internal/adapters/http/middleware"
	"atw-marketplace/internal/adapters/http/routes"
	"atw-marketplace/internal/adapters/mail"
	"atw-marketplace/internal/adapters/payment"
	"atw-marketplace/internal/adapters/persistence/memory"
	"atw-marketplace/internal/adapters/persistence/repositories"
	"atw-marketplace/internal/config"
	"atw-marketplace/internal/core/services"
	"atw-marketplace/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "atw-marketplace/docs" // Swagger docs
)

// @title ATW Marketplace API
// @version 1.0
// @description Real-estate and car marketplace: accounts, agent onboarding, listings, chat and payments.

// @contact.name API Support

// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zlog, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Mode:        cfg.AppMode,
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()
	zap.ReplaceGlobals(zlog)

	if !cfg.EnvFileLoaded {
		zlog.Info(".env not found, using process environment")
	}

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := config.ConnectDatabase(cfg, zlog)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			zlog.Warn("database close failed", zap.Error(err))
		}
	}()

	var repos repositories.Set
	if db.IsMemory() {
		repos = memory.NewStore().Repositories()
	} else {
		repos = repositories.NewGormSet(db.DB)
	}

	if err := config.NewSeeder(repos.Users, cfg, zlog).Run(ctx); err != nil {
		zlog.Warn("seeding failed", zap.Error(err))
	}

	healthChecks := map[string]handlers.HealthChecker{"database": db.HealthCheck}

	var (
		listingCache services.Cache         = cache.Noop{}
		publisher    services.ChatPublisher = cache.Noop{}
	)
	redisClient, err := config.ConnectRedis(cfg, zlog)
	if err != nil {
		// the marketplace still works without a cache
		zlog.Warn("redis unavailable, continuing without cache", zap.Error(err))
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		listingCache = cache.NewRedisCache(redisClient)
		publisher = cache.NewRedisPublisher(redisClient)
		healthChecks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	dispatcher := mail.NewDispatcher(mail.NewMailer(cfg.Mail, zlog), cfg.Mail, zlog)

	cronService := services.NewCronService(repos.Users, cfg, zlog)
	if err := cronService.Start(); err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		AppName:      "ATW Marketplace API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	middleware.Setup(app, cfg, zlog)

	routes.Setup(app, routes.Dependencies{
		Config:       cfg,
		Logger:       zlog,
		Repos:        repos,
		Cache:        listingCache,
		Publisher:    publisher,
		Mail:         dispatcher,
		Gateway:      payment.NewPaystackClient(cfg.Paystack),
		HealthChecks: healthChecks,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zlog.Info("server starting", zap.String("port", cfg.Port), zap.String("mode", cfg.AppMode))
		return app.Listen(":" + cfg.Port)
	})

	g.Go(func() error {
		<-gctx.Done()
		zlog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		cronService.Stop(shutdownCtx)
		if err := dispatcher.Close(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		zlog.Info("server stopped gracefully")
		return errors.Join(errs...)
	})

	return g.Wait()
}
