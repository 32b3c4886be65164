package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/example/ec-checkout/internal/domain/money"
	"github.com/example/ec-checkout/internal/domain/order"
	"github.com/example/ec-checkout/internal/infrastructure/store"
	"go.uber.org/zap"
)

// EventNotifier turns notifications into request events. The event store
// publishes them and the notifier process mails them.
type EventNotifier struct {
	eventStore store.EventStoreInterface
	logger     *zap.Logger
	now        func() time.Time
}

func NewEventNotifier(es store.EventStoreInterface, logger *zap.Logger) *EventNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventNotifier{eventStore: es, logger: logger.Named("notifier"), now: time.Now}
}

func (n *EventNotifier) SendConfirmation(ctx context.Context, o *order.Order) error {
	return n.request(ctx, EventConfirmationRequested, o)
}

func (n *EventNotifier) SendCancellation(ctx context.Context, o *order.Order) error {
	return n.request(ctx, EventCancellationRequested, o)
}

func (n *EventNotifier) request(ctx context.Context, eventType string, o *order.Order) error {
	if o.Email == "" {
		return fmt.Errorf("order %s has no email", o.Number)
	}
	if _, err := n.eventStore.Append(ctx, o.Number, AggregateType, eventType, newRequested(o, n.now())); err != nil {
		return fmt.Errorf("request %s: %w", eventType, err)
	}
	n.logger.Debug("notification requested",
		zap.String("order", o.Number),
		zap.String("event", eventType),
	)
	return nil
}

func newRequested(o *order.Order, at time.Time) Requested {
	items := make([]Item, len(o.LineItems))
	for i, li := range o.LineItems {
		items[i] = Item{
			VariantID: li.VariantID,
			Quantity:  li.Quantity,
			Price:     money.Format(li.Price, o.Currency),
			Amount:    money.Format(li.Amount(), o.Currency),
		}
	}
	return Requested{
		OrderNumber: o.Number,
		Email:       o.Email,
		Items:       items,
		ItemTotal:   o.DisplayItemTotal(),
		ShipTotal:   o.DisplayShipTotal(),
		TaxTotal:    o.DisplayTaxTotal(),
		Total:       o.DisplayTotal(),
		RequestedAt: at,
	}
}
