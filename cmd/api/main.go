package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/server"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/validation"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if err := validation.RegisterWithGin(); err != nil {
		logging.Fatal().Err(err).Msg("failed to register validators")
	}

	db, err := database.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(db); err != nil {
		logging.Fatal().Err(err).Msg("failed to run migrations")
	}

	redisClient, err := database.NewRedisClient(cfg)
	switch {
	case errors.Is(err, database.ErrRedisDisabled):
		logging.Info().Msg("redis not configured, rate limiting disabled")
	case err != nil:
		logging.Warn().Err(err).Msg("redis unavailable, rate limiting disabled")
		redisClient = nil
	default:
		defer redisClient.Close()
	}

	var images service.IImageResolver
	s3cfg, err := config.NewS3Config(context.Background(), cfg)
	switch {
	case errors.Is(err, config.ErrStorageDisabled):
		logging.Info().Msg("image bucket not configured, serving stored image values")
	case err != nil:
		logging.Warn().Err(err).Msg("failed to initialize image storage")
	default:
		images = service.NewImageResolver(s3cfg, cfg.ImageURLTTL)
	}

	deps, err := api.NewDependencies(db, cfg, redisClient, images)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to build services")
	}

	srv := server.New(cfg, deps)

	errChan := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", cfg.Addr()).Msg("starting server")
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
		logging.Info().Str("signal", sig.String()).Msg("received signal")
	}

	logging.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("server shutdown error")
		return
	}
	logging.Info().Msg("server stopped")
}
