package projection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/ec-checkout/internal/domain/inventory"
	"github.com/example/ec-checkout/internal/domain/order"
	"github.com/example/ec-checkout/internal/infrastructure/store"
	"github.com/example/ec-checkout/internal/readmodel"
	"go.uber.org/zap"
)

// Projector folds order and stock events from Kafka into read models.
// Redelivered events are skipped by version.
type Projector struct {
	docs   store.DocumentStore
	logger *zap.Logger
}

func NewProjector(docs store.DocumentStore, logger *zap.Logger) *Projector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Projector{docs: docs, logger: logger.Named("projector")}
}

func (p *Projector) HandleEvent(ctx context.Context, key, value []byte) error {
	var event store.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return err
	}

	p.logger.Debug("received event",
		zap.String("type", event.EventType),
		zap.String("aggregate", event.AggregateType),
		zap.String("id", event.AggregateID),
	)
	return p.apply(ctx, event)
}

// Replay rebuilds the read models from the stored order and stock events.
// Events already applied are skipped, so replaying on every start is safe.
func (p *Projector) Replay(ctx context.Context, source store.EventSource) (int, error) {
	applied := 0
	for _, aggregateType := range []string{order.AggregateType, inventory.AggregateType} {
		events, err := source.GetEventsByType(ctx, aggregateType)
		if err != nil {
			return applied, fmt.Errorf("load %s events: %w", aggregateType, err)
		}
		for _, event := range events {
			if err := p.apply(ctx, event); err != nil {
				return applied, fmt.Errorf("replay %s %s: %w", event.EventType, event.ID, err)
			}
			applied++
		}
	}
	return applied, nil
}

func (p *Projector) apply(ctx context.Context, event store.Event) error {
	switch event.AggregateType {
	case order.AggregateType:
		return p.handleOrderEvent(ctx, event)
	case inventory.AggregateType:
		return p.handleStockEvent(ctx, event)
	}
	return nil
}

func (p *Projector) handleOrderEvent(ctx context.Context, event store.Event) error {
	if event.EventType == order.EventOrderCreated {
		var e order.OrderCreated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		summary := &readmodel.OrderSummary{
			Number:    e.Number,
			UserID:    e.UserID,
			Currency:  e.Currency,
			State:     string(order.StateCart),
			CreatedAt: e.CreatedAt,
			UpdatedAt: e.CreatedAt,
			Version:   event.Version,
		}
		err := p.create(ctx, readmodel.CollectionOrderSummaries, e.Number, summary)
		if errors.Is(err, store.ErrDocumentExists) {
			return nil
		}
		return err
	}

	summary, err := p.orderSummary(ctx, event.AggregateID)
	if err != nil {
		return err
	}
	if summary == nil {
		p.logger.Warn("event for unknown order", zap.String("order", event.AggregateID), zap.String("type", event.EventType))
		return nil
	}
	if event.Version <= summary.Version {
		return nil
	}
	counted := summary.Counted()

	switch event.EventType {
	case order.EventOrderCompleted:
		var e order.OrderCompleted
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		summary.State = string(order.StateComplete)
		summary.Total = e.Total
		summary.CompletedAt = &e.CompletedAt
		summary.UpdatedAt = e.CompletedAt

	case order.EventOrderCanceled:
		var e order.OrderCanceled
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		summary.State = string(order.StateCanceled)
		summary.UpdatedAt = e.CanceledAt

	case order.EventOrderResumed:
		var e order.OrderResumed
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		summary.State = string(e.State)
		summary.UpdatedAt = e.ResumedAt

	case order.EventOrderAssociated:
		var e order.OrderAssociated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		summary.UserID = e.UserID
		summary.UpdatedAt = e.AssociatedAt

	case order.EventOrderMerged:
		var e order.OrderMerged
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		if err := p.docs.Delete(ctx, readmodel.CollectionOrderSummaries, e.From); err != nil && !errors.Is(err, store.ErrDocumentNotFound) {
			return err
		}
		summary.UpdatedAt = e.MergedAt

	default:
		return nil
	}

	summary.Version = event.Version
	if counted != summary.Counted() {
		delta := 1
		if counted {
			delta = -1
		}
		if err := p.addSale(ctx, summary, delta, summary.UpdatedAt); err != nil {
			return err
		}
	}
	return p.put(ctx, readmodel.CollectionOrderSummaries, summary.Number, summary)
}

func (p *Projector) handleStockEvent(ctx context.Context, event store.Event) error {
	level, err := p.stockLevel(ctx, event.AggregateID)
	if err != nil {
		return err
	}
	if event.Version <= level.Version {
		return nil
	}

	switch event.EventType {
	case inventory.EventStockAdded:
		var e inventory.StockAdded
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		level.OnHand += e.Quantity
		level.UpdatedAt = e.AddedAt

	case inventory.EventStockSold:
		var e inventory.StockSold
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		level.OnHand -= e.Quantity
		level.Sold += e.Quantity
		level.Backordered += e.Backordered
		level.UpdatedAt = e.SoldAt

	case inventory.EventStockRestocked:
		var e inventory.StockRestocked
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		level.OnHand += e.Quantity
		level.Restocked += e.Quantity
		level.UpdatedAt = e.RestockedAt

	default:
		return nil
	}

	level.Version = event.Version
	return p.put(ctx, readmodel.CollectionStockLevels, level.VariantID, level)
}

func (p *Projector) addSale(ctx context.Context, summary *readmodel.OrderSummary, delta int, at time.Time) error {
	total := &readmodel.SalesTotal{Currency: summary.Currency}
	if _, err := p.get(ctx, readmodel.CollectionSales, summary.Currency, total); err != nil {
		return err
	}
	total.Orders += delta
	if delta > 0 {
		total.Revenue = total.Revenue.Add(summary.Total)
	} else {
		total.Revenue = total.Revenue.Sub(summary.Total)
	}
	total.UpdatedAt = at
	return p.put(ctx, readmodel.CollectionSales, summary.Currency, total)
}

func (p *Projector) orderSummary(ctx context.Context, number string) (*readmodel.OrderSummary, error) {
	summary := &readmodel.OrderSummary{}
	found, err := p.get(ctx, readmodel.CollectionOrderSummaries, number, summary)
	if err != nil || !found {
		return nil, err
	}
	return summary, nil
}

func (p *Projector) stockLevel(ctx context.Context, variantID string) (*readmodel.StockLevel, error) {
	level := &readmodel.StockLevel{VariantID: variantID}
	if _, err := p.get(ctx, readmodel.CollectionStockLevels, variantID, level); err != nil {
		return nil, err
	}
	return level, nil
}

func (p *Projector) get(ctx context.Context, collection, id string, dst any) (bool, error) {
	doc, err := p.docs.Get(ctx, collection, id)
	if errors.Is(err, store.ErrDocumentNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	if err := json.Unmarshal(doc, dst); err != nil {
		return false, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return true, nil
}

func (p *Projector) put(ctx context.Context, collection, id string, v any) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.docs.Put(ctx, collection, id, doc)
}

func (p *Projector) create(ctx context.Context, collection, id string, v any) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.docs.Create(ctx, collection, id, doc)
}
