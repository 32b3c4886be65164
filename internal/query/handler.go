package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/example/ec-checkout/internal/infrastructure/store"
	"github.com/example/ec-checkout/internal/readmodel"
)

var ErrStockLevelNotFound = errors.New("stock level not found")

// Handler reads the projected models. Results lag the write side by the
// Kafka round trip.
type Handler struct {
	docs store.DocumentStore
}

func NewHandler(docs store.DocumentStore) *Handler {
	return &Handler{docs: docs}
}

// OrdersByUser returns a user's orders, newest first
func (h *Handler) OrdersByUser(ctx context.Context, userID string) ([]*readmodel.OrderSummary, error) {
	all, err := list[readmodel.OrderSummary](ctx, h.docs, readmodel.CollectionOrderSummaries)
	if err != nil {
		return nil, err
	}
	orders := make([]*readmodel.OrderSummary, 0)
	for _, o := range all {
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (h *Handler) StockLevel(ctx context.Context, variantID string) (*readmodel.StockLevel, error) {
	doc, err := h.docs.Get(ctx, readmodel.CollectionStockLevels, variantID)
	if errors.Is(err, store.ErrDocumentNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrStockLevelNotFound, variantID)
	}
	if err != nil {
		return nil, err
	}
	var level readmodel.StockLevel
	if err := json.Unmarshal(doc, &level); err != nil {
		return nil, err
	}
	return &level, nil
}

// Sales returns the totals of every currency, ordered by currency code
func (h *Handler) Sales(ctx context.Context) ([]*readmodel.SalesTotal, error) {
	return list[readmodel.SalesTotal](ctx, h.docs, readmodel.CollectionSales)
}

func list[T any](ctx context.Context, docs store.DocumentStore, collection string) ([]*T, error) {
	raw, err := docs.List(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	out := make([]*T, 0, len(raw))
	for _, doc := range raw {
		v := new(T)
		if err := json.Unmarshal(doc, v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", collection, err)
		}
		out = append(out, v)
	}
	return out, nil
}
