package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hongminglow/users-api/internal/config"
	"github.com/hongminglow/users-api/internal/logger"
	"github.com/hongminglow/users-api/internal/server"
	"github.com/hongminglow/users-api/internal/storage"
	"github.com/hongminglow/users-api/internal/storage/postgres"
	"github.com/hongminglow/users-api/internal/storage/sqlite"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Init("users-api", true)
		logger.Logger.Fatal().Err(err).Msg("load config")
	}

	logger.Init("users-api", cfg.Development)
	logger.SetLevel(cfg.LogLevel)
	if envErr != nil {
		logger.Logger.Info().Msg("no .env file found; relying on existing environment")
	}

	ctx := context.Background()
	userStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Logger.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("init database")
	}
	defer userStore.Close()

	srv := server.New(cfg, userStore)

	go func() {
		logger.Logger.Info().
			Str("addr", cfg.HTTPAddress()).
			Str("driver", cfg.StoreDriver).
			Msg("users API listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Logger.Info().Msg("shutting down")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Logger.Error().Err(err).Msg("graceful shutdown error")
	}
}

func openStore(ctx context.Context, cfg config.Config) (storage.UserStore, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		return postgres.NewUserStore(ctx, cfg.StoreDSN)
	case config.DriverSQLite:
		return sqlite.NewUserStore(ctx, cfg.StoreDSN)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}
