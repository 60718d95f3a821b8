package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/server"
	"github.com/pageza/foodgram/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logging.Info().Str("environment", string(config.GetEnvironment())).Msg("configuration loaded")

	db, err := database.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
		logging.Fatal().Err(err).Msg("failed to run migrations")
	}

	ctx := context.Background()
	redisClient, err := database.NewRedisClient(ctx, cfg)
	if err != nil {
		logging.Warn().Err(err).Msg("redis unavailable; logout and rate limiting are disabled")
		redisClient = nil
	}

	srv, err := server.New(cfg, buildServices(ctx, cfg, db, redisClient))
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to build server")
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logging.Fatal().Err(err).Msg("server error")
		}
	case sig := <-quit:
		logging.Info().Str("signal", sig.String()).Msg("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("server shutdown error")
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logging.Info().Msg("server stopped")
}

func buildServices(ctx context.Context, cfg *config.Config, db *gorm.DB, redisClient *redis.Client) api.Services {
	var revoker service.TokenRevoker
	var limiter *middleware.RateLimiter
	if redisClient != nil {
		revoker = service.NewRedisTokenRevoker(redisClient)
		limiter = middleware.NewRecipeCreationRateLimiter(redisClient, cfg.RecipeCreateLimit)
	}

	var images service.ImageStorage
	s3Config, err := config.NewS3Config(ctx, cfg)
	switch {
	case errors.Is(err, config.ErrStorageDisabled):
		logging.Warn().Msg("S3_BUCKET_NAME not set; recipe images are disabled")
	case err != nil:
		logging.Fatal().Err(err).Msg("failed to configure image storage")
	default:
		images = service.NewS3Storage(s3Config)
	}

	auth := service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL, revoker)
	return api.Services{
		DB:                  db,
		Auth:                auth,
		Users:               service.NewUserService(db),
		Tags:                service.NewTagService(db),
		Ingredients:         service.NewIngredientService(db),
		Recipes:             service.NewRecipeService(db, images),
		Favorites:           service.NewFavoriteService(db),
		Cart:                service.NewCartService(db),
		Subscriptions:       service.NewSubscriptionService(db),
		RecipeCreateLimiter: limiter,
		PageSize:            cfg.DefaultPageSize,
	}
}
