package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/ec-checkout/internal/infrastructure/store"
)

const collection = "orders"

// Repository persists whole orders with their owned collections.
type Repository interface {
	// Create fails with ErrDuplicateNumber when the number is taken.
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, number string) (*Order, error)
	Save(ctx context.Context, o *Order) error
	Delete(ctx context.Context, number string) error
	List(ctx context.Context) ([]*Order, error)
}

// DocumentRepository stores each order as one JSON document keyed by number.
type DocumentRepository struct {
	docs store.DocumentStore
}

func NewDocumentRepository(docs store.DocumentStore) *DocumentRepository {
	return &DocumentRepository{docs: docs}
}

func (r *DocumentRepository) Create(ctx context.Context, o *Order) error {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}
	err = r.docs.Create(ctx, collection, o.Number, data)
	if errors.Is(err, store.ErrDocumentExists) {
		return fmt.Errorf("%w: %s", ErrDuplicateNumber, o.Number)
	}
	return err
}

// Get returns a fresh instance; its rate memo starts empty.
func (r *DocumentRepository) Get(ctx context.Context, number string) (*Order, error) {
	data, err := r.docs.Get(ctx, collection, number)
	if errors.Is(err, store.ErrDocumentNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, number)
	}
	if err != nil {
		return nil, err
	}
	return decode(data)
}

func (r *DocumentRepository) Save(ctx context.Context, o *Order) error {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}
	return r.docs.Put(ctx, collection, o.Number, data)
}

func (r *DocumentRepository) Delete(ctx context.Context, number string) error {
	err := r.docs.Delete(ctx, collection, number)
	if errors.Is(err, store.ErrDocumentNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, number)
	}
	return err
}

func (r *DocumentRepository) List(ctx context.Context) ([]*Order, error) {
	docs, err := r.docs.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	orders := make([]*Order, 0, len(docs))
	for _, data := range docs {
		o, err := decode(data)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// ListByState returns the orders currently in state, ordered by number.
func ListByState(ctx context.Context, repo Repository, state State) ([]*Order, error) {
	all, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	var matched []*Order
	for _, o := range all {
		if o.State == state {
			matched = append(matched, o)
		}
	}
	return matched, nil
}

func decode(data json.RawMessage) (*Order, error) {
	var o Order
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order: %w", err)
	}
	return &o, nil
}
