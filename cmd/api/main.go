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

	httptransport "github.com/spec-kit/cook-api/internal/api/http"
	"github.com/spec-kit/cook-api/internal/api/http/handlers"
	"github.com/spec-kit/cook-api/internal/auth"
	"github.com/spec-kit/cook-api/internal/cache"
	"github.com/spec-kit/cook-api/internal/config"
	"github.com/spec-kit/cook-api/internal/events"
	"github.com/spec-kit/cook-api/internal/observability"
	"github.com/spec-kit/cook-api/internal/persistence"
	"github.com/spec-kit/cook-api/internal/repository"
	"github.com/spec-kit/cook-api/internal/service"
	"github.com/spec-kit/cook-api/internal/worker"
)

const shutdownTimeout = 10 * time.Second

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

	if cfg.Auth.UsesDevSecret() {
		logger.Warn("signing tokens with the built-in development secret, set AUTH_JWT_SECRET",
			zap.String("env", cfg.App.Env))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, cfg.App.Name, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	deps := map[string]handlers.Pinger{"postgres": nil, "redis": nil}

	var (
		userRepo   repository.UserRepository
		recipeRepo repository.RecipeRepository
		reviewRepo repository.ReviewRepository
	)
	if pg.Enabled() {
		pool := pg.PoolHandle()
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pool, cfg.Postgres.MigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		userRepo = repository.NewUserRepository(pool)
		recipeRepo = repository.NewRecipeRepository(pool)
		reviewRepo = repository.NewReviewRepository(pool)
		deps["postgres"] = pg
	} else {
		userRepo = repository.NewInMemoryUserRepository()
		reviews := repository.NewInMemoryReviewRepository()
		recipeRepo = repository.NewInMemoryRecipeRepository().WithReviews(reviews)
		reviewRepo = reviews
	}

	recipeCache := cache.NewNoopRecipeCache()
	if cfg.Cache.Enabled {
		rdb := persistence.NewRedis(ctx, cfg.Redis, logger)
		defer rdb.Close()
		recipeCache = cache.NewRedisRecipeCache(rdb.Handle(), cfg.Cache.RecipeTTL(), logger)
		deps["redis"] = rdb
	}

	codec, err := auth.NewTokenCodec(cfg.Auth.JWTSecret)
	if err != nil {
		logger.Fatal("invalid AUTH_JWT_SECRET", zap.Error(err))
	}
	tokens := auth.NewTokenService(codec, cfg.Auth.AccessTokenTTL(), cfg.Auth.RefreshTokenTTL())

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   userRepo,
		Tokens:     tokens,
		Dispatcher: dispatcher,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	recipeService := service.NewRecipeService(recipeRepo, recipeCache, dispatcher)
	reviewService := service.NewReviewService(reviewRepo, recipeRepo, dispatcher)

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Recipes:        handlers.NewRecipesHandler(recipeService),
		Reviews:        handlers.NewReviewsHandler(reviewService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, userRepo),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
