package main

import (
	"context"
	"time"

	"github.com/example/ec-checkout/internal/config"
	"github.com/example/ec-checkout/internal/infrastructure/store"
	"github.com/example/ec-checkout/internal/logging"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.FromEnv()
	logger, logErr := logging.New(cfg.LogLevel)
	if logErr != nil {
		panic(logErr)
	}
	defer logger.Sync()
	logger = logger.Named("migrate")
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := store.Migrate(ctx, cfg.DatabaseURL); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}
	logger.Info("schema up to date")
}
