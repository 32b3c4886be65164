package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/ec-checkout/internal/domain/catalog"
	"github.com/example/ec-checkout/internal/domain/checkout"
	"github.com/example/ec-checkout/internal/domain/money"
	"github.com/example/ec-checkout/internal/domain/order"
	"github.com/example/ec-checkout/internal/infrastructure/store"
	"go.uber.org/zap"
)

const createAttempts = 5

var ErrLineItemNotFound = errors.New("line item not found")

// Handler implements the order entry points. Every mutation loads the order,
// changes it under a per-order lock and saves it back.
type Handler struct {
	machine         *checkout.Machine
	catalog         *catalog.Service
	eventStore      store.EventStoreInterface
	logger          *zap.Logger
	locks           *orderLocks
	defaultCurrency string
	now             func() time.Time
}

func NewHandler(
	machine *checkout.Machine,
	catalogSvc *catalog.Service,
	eventStore store.EventStoreInterface,
	defaultCurrency string,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultCurrency == "" {
		defaultCurrency = "USD"
	}
	return &Handler{
		machine:         machine,
		catalog:         catalogSvc,
		eventStore:      eventStore,
		logger:          logger.Named("orders"),
		locks:           newOrderLocks(),
		defaultCurrency: defaultCurrency,
		now:             machine.Now,
	}
}

func (h *Handler) repo() order.Repository {
	return h.machine.Repo
}

func (h *Handler) update(o *order.Order) {
	h.machine.Updater.Update(o)
}

// mutate runs fn on the stored order under its lock and saves the result.
func (h *Handler) mutate(ctx context.Context, number string, fn func(o *order.Order) error) (*order.Order, error) {
	unlock := h.locks.lock(number)
	defer unlock()

	o, err := h.repo().Get(ctx, number)
	if err != nil {
		return nil, err
	}
	if err := fn(o); err != nil {
		return nil, err
	}
	if err := h.repo().Save(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// record appends a lifecycle event; the order document stays authoritative,
// so failures are only logged.
func (h *Handler) record(ctx context.Context, number, eventType string, data any) {
	if h.eventStore == nil {
		return
	}
	if _, err := h.eventStore.Append(ctx, number, order.AggregateType, eventType, data); err != nil {
		h.logger.Error("failed to record order event",
			zap.String("order", number),
			zap.String("event", eventType),
			zap.Error(err),
		)
	}
}

// Create starts a cart with a fresh number, retrying on collisions.
func (h *Handler) Create(ctx context.Context, cmd CreateOrder) (*order.Order, error) {
	currency := cmd.Currency
	if currency == "" {
		currency = h.defaultCurrency
	}
	code, err := money.ValidateCurrency(currency)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", order.ErrValidation, err)
	}

	for range createAttempts {
		o := order.New(order.NewNumber(), code, h.now())
		o.Email = cmd.Email
		o.UserID = cmd.UserID
		if err := h.machine.AdjustTaxes(ctx, o); err != nil {
			return nil, err
		}
		h.update(o)

		err := h.repo().Create(ctx, o)
		if errors.Is(err, order.ErrDuplicateNumber) {
			h.logger.Debug("order number taken, retrying", zap.String("order", o.Number))
			continue
		}
		if err != nil {
			return nil, err
		}

		h.record(ctx, o.Number, order.EventOrderCreated, order.OrderCreated{
			Number:    o.Number,
			Currency:  o.Currency,
			UserID:    o.UserID,
			CreatedAt: o.CreatedAt,
		})
		h.logger.Info("order created", zap.String("order", o.Number), zap.String("currency", o.Currency))
		return o, nil
	}
	return nil, fmt.Errorf("%w: gave up after %d attempts", order.ErrDuplicateNumber, createAttempts)
}

func (h *Handler) Get(ctx context.Context, number string) (*order.Order, error) {
	return h.repo().Get(ctx, number)
}

func (h *Handler) List(ctx context.Context, state order.State) ([]*order.Order, error) {
	if state == "" {
		return h.repo().List(ctx)
	}
	return order.ListByState(ctx, h.repo(), state)
}

// Update recomputes totals and states of an order.
func (h *Handler) Update(ctx context.Context, number string) (*order.Order, error) {
	return h.mutate(ctx, number, func(o *order.Order) error {
		h.update(o)
		return nil
	})
}

func (h *Handler) UpdateOrder(ctx context.Context, cmd UpdateOrder) (*order.Order, error) {
	return h.mutate(ctx, cmd.OrderNumber, func(o *order.Order) error {
		if cmd.Email != nil {
			o.Email = *cmd.Email
		}
		if err := o.Validate(); err != nil {
			return err
		}
		h.update(o)
		return nil
	})
}

// AssociateUser hands a guest order to a user and takes over their email.
func (h *Handler) AssociateUser(ctx context.Context, cmd AssociateUser) (*order.Order, error) {
	if cmd.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", order.ErrValidation)
	}
	o, err := h.mutate(ctx, cmd.OrderNumber, func(o *order.Order) error {
		o.UserID = cmd.UserID
		if cmd.Email != "" {
			o.Email = cmd.Email
		}
		o.UpdatedAt = h.now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	h.record(ctx, o.Number, order.EventOrderAssociated, order.OrderAssociated{
		Number:       o.Number,
		UserID:       o.UserID,
		AssociatedAt: o.UpdatedAt,
	})
	return o, nil
}

// Advance moves the order one step through checkout. A rejected transition
// still saves the order so failed and captured payments are kept.
func (h *Handler) Advance(ctx context.Context, number string) (*order.Order, error) {
	unlock := h.locks.lock(number)
	defer unlock()

	o, err := h.repo().Get(ctx, number)
	if err != nil {
		return nil, err
	}

	_, advanceErr := h.machine.Advance(ctx, o)
	var te *checkout.TransitionError
	if advanceErr != nil && !errors.As(advanceErr, &te) {
		return nil, advanceErr
	}
	if err := h.repo().Save(ctx, o); err != nil {
		return nil, err
	}
	if advanceErr != nil {
		return o, advanceErr
	}

	if o.State == order.StateComplete {
		h.record(ctx, o.Number, order.EventOrderCompleted, order.OrderCompleted{
			Number:      o.Number,
			Email:       o.Email,
			Total:       o.Total,
			Currency:    o.Currency,
			CompletedAt: *o.CompletedAt,
		})
	}
	return o, nil
}

func (h *Handler) Cancel(ctx context.Context, number string) (*order.Order, error) {
	o, err := h.mutate(ctx, number, func(o *order.Order) error {
		return h.machine.Cancel(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	h.record(ctx, o.Number, order.EventOrderCanceled, order.OrderCanceled{
		Number:       o.Number,
		PaymentState: o.PaymentState,
		CanceledAt:   o.UpdatedAt,
	})
	return o, nil
}

func (h *Handler) Resume(ctx context.Context, number string) (*order.Order, error) {
	o, err := h.mutate(ctx, number, func(o *order.Order) error {
		return h.machine.Resume(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	h.record(ctx, o.Number, order.EventOrderResumed, order.OrderResumed{
		Number:    o.Number,
		State:     o.State,
		ResumedAt: o.UpdatedAt,
	})
	return o, nil
}

// Merge moves the line items of from into into and deletes from. Lines in
// another currency are dropped; lines for the same variant add up.
func (h *Handler) Merge(ctx context.Context, cmd MergeOrders) (*order.Order, error) {
	if cmd.Into == cmd.From {
		return nil, fmt.Errorf("%w: cannot merge an order into itself", order.ErrValidation)
	}
	unlock := h.locks.lock(cmd.Into, cmd.From)
	defer unlock()

	into, err := h.repo().Get(ctx, cmd.Into)
	if err != nil {
		return nil, err
	}
	from, err := h.repo().Get(ctx, cmd.From)
	if err != nil {
		return nil, err
	}
	if into.Completed() || from.Completed() {
		return nil, fmt.Errorf("%w: completed orders cannot be merged", order.ErrValidation)
	}

	for _, li := range from.LineItems {
		if li.Currency != into.Currency {
			h.logger.Info("dropping line item in other currency",
				zap.String("order", into.Number),
				zap.String("variant", li.VariantID),
				zap.String("currency", li.Currency),
			)
			continue
		}
		if existing := into.FindLineItemByVariant(li.VariantID); existing != nil {
			existing.Quantity += li.Quantity
			continue
		}
		into.LineItems = append(into.LineItems, li)
	}
	h.update(into)

	if err := h.repo().Save(ctx, into); err != nil {
		return nil, err
	}
	if err := h.repo().Delete(ctx, from.Number); err != nil {
		return nil, err
	}

	h.record(ctx, into.Number, order.EventOrderMerged, order.OrderMerged{
		Number:   into.Number,
		From:     from.Number,
		MergedAt: into.UpdatedAt,
	})
	return into, nil
}

// Rates lists the shipping rates available to the order, cheapest first.
func (h *Handler) Rates(ctx context.Context, number string) ([]order.ShippingRate, error) {
	o, err := h.repo().Get(ctx, number)
	if err != nil {
		return nil, err
	}
	return h.machine.Rates.Rates(ctx, o)
}
