package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/ec-checkout/internal/config"
	"github.com/example/ec-checkout/internal/domain/catalog"
	"github.com/example/ec-checkout/internal/email"
	"github.com/example/ec-checkout/internal/infrastructure/kafka"
	"github.com/example/ec-checkout/internal/infrastructure/store"
	"github.com/example/ec-checkout/internal/logging"
	"github.com/example/ec-checkout/internal/notification"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.FromEnv()
	logger, logErr := logging.New(cfg.LogLevel)
	if logErr != nil {
		panic(logErr)
	}
	defer logger.Sync()
	logger = logger.Named("notifier")
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("starting",
		zap.Strings("kafka_brokers", cfg.KafkaBrokers),
		zap.String("kafka_topic", cfg.KafkaTopic),
		zap.String("group", cfg.KafkaGroupID),
		zap.String("smtp", cfg.SMTPHost+":"+cfg.SMTPPort),
		zap.String("from", cfg.SMTPFrom),
	)

	// Variant names come from the shared event store; an in-memory store
	// belongs to the API process, so mail falls back to variant ids.
	var variants notification.VariantLookup
	if cfg.StoreBackend != config.BackendMemory {
		backend, err := store.OpenBackend(ctx, store.BackendConfig{
			Kind:                cfg.StoreBackend,
			DatabaseURL:         cfg.DatabaseURL,
			DynamoTable:         cfg.DynamoTable,
			DynamoSnapshotTable: cfg.DynamoSnapshotTable,
			DynamoEndpoint:      cfg.DynamoEndpoint,
		}, nil)
		if err != nil {
			logger.Fatal("open stores", zap.Error(err))
		}
		defer backend.Close()
		variants = catalog.NewService(backend.Events)
	}

	handler := notification.NewHandler(email.NewService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom), variants, logger)

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, logger)
	defer consumer.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		logger.Info("consuming", zap.String("topic", cfg.KafkaTopic))
		if err := consumer.Consume(ctx, handler.HandleEvent); err != nil && ctx.Err() == nil {
			logger.Error("consumer error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-done:
	}

	logger.Info("shutting down")
	cancel()
	<-done
}
