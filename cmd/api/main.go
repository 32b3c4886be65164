package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/example/ec-checkout/internal/api"
	"github.com/example/ec-checkout/internal/auth"
	"github.com/example/ec-checkout/internal/command"
	"github.com/example/ec-checkout/internal/config"
	"github.com/example/ec-checkout/internal/domain/catalog"
	"github.com/example/ec-checkout/internal/domain/checkout"
	"github.com/example/ec-checkout/internal/domain/inventory"
	"github.com/example/ec-checkout/internal/domain/order"
	"github.com/example/ec-checkout/internal/domain/payment"
	"github.com/example/ec-checkout/internal/domain/shipping"
	"github.com/example/ec-checkout/internal/domain/tax"
	"github.com/example/ec-checkout/internal/infrastructure/kafka"
	"github.com/example/ec-checkout/internal/infrastructure/store"
	"github.com/example/ec-checkout/internal/logging"
	"github.com/example/ec-checkout/internal/notification"
	"github.com/example/ec-checkout/internal/projection"
	"github.com/example/ec-checkout/internal/query"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.FromEnv()
	if err == nil {
		err = cfg.ValidateAPI()
	}
	logger, logErr := logging.New(cfg.LogLevel)
	if logErr != nil {
		panic(logErr)
	}
	defer logger.Sync()
	logger = logger.Named("api")
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("starting",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("store_backend", cfg.StoreBackend),
		zap.Strings("kafka_brokers", cfg.KafkaBrokers),
		zap.String("kafka_topic", cfg.KafkaTopic),
		zap.Bool("track_inventory_levels", cfg.Checkout.TrackInventoryLevels),
		zap.Bool("allow_backorders", cfg.Checkout.AllowBackorders),
	)

	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	defer producer.Close()

	backend, err := store.OpenBackend(ctx, store.BackendConfig{
		Kind:                cfg.StoreBackend,
		DatabaseURL:         cfg.DatabaseURL,
		DynamoTable:         cfg.DynamoTable,
		DynamoSnapshotTable: cfg.DynamoSnapshotTable,
		DynamoEndpoint:      cfg.DynamoEndpoint,
	}, producer)
	if err != nil {
		logger.Fatal("open stores", zap.Error(err))
	}
	defer backend.Close()

	methods := shippingMethods()
	updater := order.NewUpdater(cfg.Checkout.UpdaterConfig(nil))
	machine := checkout.NewMachine(checkout.Deps{
		Repo:      order.NewDocumentRepository(backend.Documents),
		Updater:   updater,
		Shipping:  methods,
		Rates:     shipping.NewRateEngine(methods, logger),
		Payments:  payment.NewProcessor(paymentMethods(), logger),
		Tax:       tax.NewRateTable(taxRates()...),
		Inventory: inventory.NewLedger(backend.Events, cfg.Checkout.InventoryConfig(), logger),
		Notifier:  notification.NewEventNotifier(backend.Events, logger),
		Logger:    logger,
	}, cfg.Checkout)

	cmdHandler := command.NewHandler(machine, catalog.NewService(backend.Events), backend.Events, cfg.DefaultCurrency, logger)
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiry)

	// Read models are projected asynchronously from Kafka.
	projector := projection.NewProjector(backend.Documents, logger)
	if source, ok := backend.Events.(store.EventSource); ok {
		replayed, err := projector.Replay(ctx, source)
		if err != nil {
			logger.Fatal("replay events", zap.Error(err))
		}
		logger.Info("read models rebuilt", zap.Int("events", replayed))
	}
	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.ProjectorGroupID, logger)
	defer consumer.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := consumer.Consume(ctx, projector.HandleEvent); err != nil && ctx.Err() == nil {
			logger.Error("projector stopped", zap.Error(err))
		}
	}()

	server := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: api.NewRouter(api.RouterConfig{
			Handlers:      api.NewHandlers(cmdHandler, query.NewHandler(backend.Documents), logger),
			Authenticator: jwtService,
			Logger:        logger,
		}),
	}

	go func() {
		logger.Info("server started", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	wg.Wait()
}
