package store

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	ErrDocumentExists   = errors.New("document already exists")
	ErrDocumentNotFound = errors.New("document not found")
)

// Publisher forwards stored events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// EventStoreInterface defines the interface for event stores
type EventStoreInterface interface {
	Append(ctx context.Context, aggregateID, aggregateType, eventType string, data any) (*Event, error)
	GetEvents(ctx context.Context, aggregateID string) ([]Event, error)
	GetEventsFromVersion(ctx context.Context, aggregateID string, fromVersion int) ([]Event, error)
	GetSnapshot(ctx context.Context, aggregateID string) (*Snapshot, error)
	SaveSnapshot(ctx context.Context, snapshot *Snapshot) error
}

// EventSource lists stored events for replays
type EventSource interface {
	GetEventsByType(ctx context.Context, aggregateType string) ([]Event, error)
}

// DocumentStore keeps whole-aggregate JSON documents grouped by collection.
type DocumentStore interface {
	// Create stores a new document and fails with ErrDocumentExists when the id is taken.
	Create(ctx context.Context, collection, id string, doc json.RawMessage) error

	// Put creates or replaces a document
	Put(ctx context.Context, collection, id string, doc json.RawMessage) error

	// Get returns ErrDocumentNotFound when the id is unknown.
	Get(ctx context.Context, collection, id string) (json.RawMessage, error)

	Delete(ctx context.Context, collection, id string) error

	// List returns every document in a collection ordered by id.
	List(ctx context.Context, collection string) ([]json.RawMessage, error)
}
