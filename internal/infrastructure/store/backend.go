package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// BackendConfig selects where events and documents are kept.
type BackendConfig struct {
	// Kind is memory, postgres or dynamo.
	Kind                string
	DatabaseURL         string
	DynamoTable         string
	DynamoSnapshotTable string
	DynamoEndpoint      string
}

// Backend bundles the event and document stores of one process.
type Backend struct {
	Events    EventStoreInterface
	Documents DocumentStore
	db        *sql.DB
}

// OpenBackend connects the configured stores. Documents go to PostgreSQL
// whenever a database URL is set, independent of the event backend.
func OpenBackend(ctx context.Context, cfg BackendConfig, publisher Publisher) (*Backend, error) {
	b := &Backend{}
	if cfg.DatabaseURL != "" {
		db, err := ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.db = db
		b.Documents = NewPostgresDocumentStore(db)
	} else {
		b.Documents = NewMemoryDocumentStore()
	}

	switch cfg.Kind {
	case "", "memory":
		b.Events = NewEventStore(publisher)
	case "postgres":
		if b.db == nil {
			return nil, fmt.Errorf("postgres backend needs a database URL")
		}
		b.Events = NewPostgresEventStore(b.db, publisher)
	case "dynamo":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if cfg.DynamoEndpoint != "" {
				o.BaseEndpoint = aws.String(cfg.DynamoEndpoint)
			}
		})
		b.Events = NewDynamoEventStore(client, cfg.DynamoTable, cfg.DynamoSnapshotTable, publisher)
	default:
		b.Close()
		return nil, fmt.Errorf("unknown store backend %q", cfg.Kind)
	}
	return b, nil
}

func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}
