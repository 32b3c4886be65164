package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/example/ec-checkout/internal/domain/checkout"
	"github.com/example/ec-checkout/internal/domain/money"
)

const minJWTSecretLength = 32

// Event store backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendDynamo   = "dynamo"
)

// Config holds runtime configuration parsed from environment variables.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
	LogLevel        string

	// StoreBackend selects the event store. Orders live in PostgreSQL
	// whenever DatabaseURL is set and in memory otherwise.
	StoreBackend string
	DatabaseURL  string
	DynamoTable  string
	// DynamoSnapshotTable holds aggregate snapshots next to DynamoTable.
	DynamoSnapshotTable string
	DynamoEndpoint      string

	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string
	// ProjectorGroupID is the consumer group of the API's read model projector.
	ProjectorGroupID string

	JWTSecret string
	JWTExpiry time.Duration

	SMTPHost string
	SMTPPort string
	SMTPFrom string

	DefaultCurrency string
	Checkout        checkout.Config
}

// FromEnv builds Config with defaults, overridden by environment variables.
func FromEnv() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	env := envReader{getenv: getenv}

	policy, err := checkout.ParseCancelPaymentPolicy(env.str("CANCEL_PAYMENT_POLICY", string(checkout.CreditOwedUnlessShipped)))
	if err != nil {
		env.errs = append(env.errs, err)
	}

	cfg := Config{
		HTTPAddr:            env.str("HTTP_ADDR", ":8080"),
		ShutdownTimeout:     env.seconds("SHUTDOWN_TIMEOUT_SECONDS", 5*time.Second),
		LogLevel:            env.str("LOG_LEVEL", "info"),
		StoreBackend:        strings.ToLower(env.str("STORE_BACKEND", BackendMemory)),
		DatabaseURL:         env.str("DATABASE_URL", ""),
		DynamoTable:         env.str("DYNAMO_EVENTS_TABLE", "checkout-events"),
		DynamoSnapshotTable: env.str("DYNAMO_SNAPSHOTS_TABLE", "checkout-snapshots"),
		DynamoEndpoint:      env.str("DYNAMO_ENDPOINT", ""),
		KafkaBrokers:        env.list("KAFKA_BROKERS", "localhost:9092"),
		KafkaTopic:          env.str("KAFKA_TOPIC", "checkout-events"),
		KafkaGroupID:        env.str("KAFKA_GROUP_ID", "checkout-notifier"),
		ProjectorGroupID:    env.str("KAFKA_PROJECTOR_GROUP_ID", "checkout-projector"),
		JWTSecret:           env.str("JWT_SECRET", ""),
		JWTExpiry:           env.seconds("JWT_EXPIRY_SECONDS", 15*time.Minute),
		SMTPHost:            env.str("SMTP_HOST", "localhost"),
		SMTPPort:            env.str("SMTP_PORT", "1025"),
		SMTPFrom:            env.str("SMTP_FROM", "orders@example.com"),
		DefaultCurrency:     strings.ToUpper(env.str("DEFAULT_CURRENCY", "USD")),
		Checkout: checkout.Config{
			AllowCheckoutOnGatewayError: env.bool("ALLOW_CHECKOUT_ON_GATEWAY_ERROR", false),
			TrackInventoryLevels:        env.bool("TRACK_INVENTORY_LEVELS", true),
			AllowBackorders:             env.bool("ALLOW_BACKORDERS", true),
			CancelPaymentPolicy:         policy,
		},
	}

	switch cfg.StoreBackend {
	case BackendMemory, BackendDynamo:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			env.errs = append(env.errs, errors.New("DATABASE_URL is required for the postgres backend"))
		}
	default:
		env.errs = append(env.errs, fmt.Errorf("STORE_BACKEND %q is not one of memory, postgres, dynamo", cfg.StoreBackend))
	}
	if _, err := money.ValidateCurrency(cfg.DefaultCurrency); err != nil {
		env.errs = append(env.errs, fmt.Errorf("DEFAULT_CURRENCY: %w", err))
	}

	return cfg, errors.Join(env.errs...)
}

// ValidateAPI checks what only the API binary needs.
func (c Config) ValidateAPI() error {
	if len(c.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters long", minJWTSecretLength)
	}
	return nil
}

type envReader struct {
	getenv func(string) string
	errs   []error
}

func (e *envReader) str(key, def string) string {
	if v := strings.TrimSpace(e.getenv(key)); v != "" {
		return v
	}
	return def
}

func (e *envReader) list(key, def string) []string {
	var out []string
	for _, part := range strings.Split(e.str(key, def), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (e *envReader) bool(key string, def bool) bool {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return b
}

func (e *envReader) seconds(key string, def time.Duration) time.Duration {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		e.errs = append(e.errs, fmt.Errorf("%s: want a positive number of seconds, got %q", key, v))
		return def
	}
	return time.Duration(n) * time.Second
}
