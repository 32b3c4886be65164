package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/ec-checkout/internal/domain/aggregate"
	"github.com/example/ec-checkout/internal/domain/order"
	"github.com/example/ec-checkout/internal/infrastructure/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrInvalidQuantity = errors.New("quantity must not be negative")

type Config struct {
	// TrackInventoryLevels turns stock bookkeeping on; units are created either way.
	TrackInventoryLevels bool
	// AllowBackorders lets lines exceed on-hand stock.
	AllowBackorders bool
}

// Ledger keeps per-variant stock in the event store and the inventory units of orders.
type Ledger struct {
	eventStore store.EventStoreInterface
	cfg        Config
	logger     *zap.Logger
	now        func() time.Time
}

func NewLedger(es store.EventStoreInterface, cfg Config, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{
		eventStore: es,
		cfg:        cfg,
		logger:     logger.Named("inventory"),
		now:        time.Now,
	}
}

func (l *Ledger) Config() Config {
	return l.cfg
}

func (l *Ledger) loadStock(ctx context.Context, variantID string) (*Stock, error) {
	s, _, err := aggregate.LoadAggregate(ctx, l.eventStore, variantID, func() *Stock {
		return &Stock{VariantID: variantID}
	})
	return s, err
}

// OnHand returns the current on-hand count of a variant.
func (l *Ledger) OnHand(ctx context.Context, variantID string) (int, error) {
	s, err := l.loadStock(ctx, variantID)
	if err != nil {
		return 0, err
	}
	return s.OnHand, nil
}

// AddStock receives new stock for a variant.
func (l *Ledger) AddStock(ctx context.Context, variantID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}
	s, err := l.loadStock(ctx, variantID)
	if err != nil {
		return err
	}
	return l.append(ctx, s, EventStockAdded, StockAdded{
		VariantID: variantID,
		Quantity:  quantity,
		AddedAt:   l.now(),
	}, quantity)
}

// Increase holds quantity more units of variantID for o. Units beyond
// on-hand stock are backordered.
func (l *Ledger) Increase(ctx context.Context, o *order.Order, variantID string, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}
	if quantity == 0 {
		return nil
	}

	backordered := 0
	if l.cfg.TrackInventoryLevels {
		s, err := l.loadStock(ctx, variantID)
		if err != nil {
			return err
		}
		backordered = s.backorderFor(quantity)
		err = l.append(ctx, s, EventStockSold, StockSold{
			VariantID:   variantID,
			OrderNumber: o.Number,
			Quantity:    quantity,
			Backordered: backordered,
			SoldAt:      l.now(),
		}, -quantity)
		if err != nil {
			return err
		}
	}

	createUnits(o, variantID, quantity-backordered, backordered)
	l.logger.Debug("units held",
		zap.String("order", o.Number),
		zap.String("variant", variantID),
		zap.Int("quantity", quantity),
		zap.Int("backordered", backordered),
	)
	return nil
}

// Decrease releases quantity units of variantID from o, backordered units first.
// Shipped and returned units are never released.
func (l *Ledger) Decrease(ctx context.Context, o *order.Order, variantID string, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}
	if quantity == 0 {
		return nil
	}

	if l.cfg.TrackInventoryLevels {
		s, err := l.loadStock(ctx, variantID)
		if err != nil {
			return err
		}
		err = l.append(ctx, s, EventStockRestocked, StockRestocked{
			VariantID:   variantID,
			OrderNumber: o.Number,
			Quantity:    quantity,
			RestockedAt: l.now(),
		}, quantity)
		if err != nil {
			return err
		}
	}

	destroyUnits(o, variantID, quantity)
	return nil
}

// AssignOpeningInventory holds units for every line of a completed order.
func (l *Ledger) AssignOpeningInventory(ctx context.Context, o *order.Order) error {
	if !o.Completed() {
		return nil
	}
	return l.HoldOrder(ctx, o)
}

// HoldOrder holds stock for every line item of o. When a line fails, the
// lines already held are released again.
func (l *Ledger) HoldOrder(ctx context.Context, o *order.Order) error {
	return l.eachLine(ctx, o, "hold", l.Increase, l.Decrease)
}

// ReleaseOrder puts the stock of every line item of o back on hand. When a
// line fails, the lines already released are held again.
func (l *Ledger) ReleaseOrder(ctx context.Context, o *order.Order) error {
	return l.eachLine(ctx, o, "release", l.Decrease, l.Increase)
}

type lineOp func(ctx context.Context, o *order.Order, variantID string, quantity int) error

func (l *Ledger) eachLine(ctx context.Context, o *order.Order, action string, apply, undo lineOp) error {
	for i, li := range o.LineItems {
		err := apply(ctx, o, li.VariantID, li.Quantity)
		if err == nil {
			continue
		}
		for _, done := range o.LineItems[:i] {
			if undoErr := undo(ctx, o, done.VariantID, done.Quantity); undoErr != nil {
				l.logger.Error("stock left partially applied",
					zap.String("order", o.Number),
					zap.String("action", action),
					zap.String("variant", done.VariantID),
					zap.Int("quantity", done.Quantity),
					zap.Error(undoErr),
				)
			}
		}
		return fmt.Errorf("%s stock for %s: %w", action, li.VariantID, err)
	}
	return nil
}

// Ship marks every unit of the shipment as shipped.
func (l *Ledger) Ship(o *order.Order, shipmentNumber string) {
	for _, u := range o.InventoryUnits {
		if u.ShipmentNumber == shipmentNumber && u.State != order.UnitReturned {
			u.State = order.UnitShipped
		}
	}
}

// Return marks up to quantity shipped units as returned and puts them back on hand.
func (l *Ledger) Return(ctx context.Context, o *order.Order, variantID string, quantity int) (int, error) {
	returned := 0
	for _, u := range o.InventoryUnits {
		if returned == quantity {
			break
		}
		if u.VariantID == variantID && u.State == order.UnitShipped {
			u.State = order.UnitReturned
			returned++
		}
	}
	if returned == 0 || !l.cfg.TrackInventoryLevels {
		return returned, nil
	}

	s, err := l.loadStock(ctx, variantID)
	if err != nil {
		return returned, err
	}
	return returned, l.append(ctx, s, EventStockRestocked, StockRestocked{
		VariantID:   variantID,
		OrderNumber: o.Number,
		Quantity:    returned,
		RestockedAt: l.now(),
	}, returned)
}

// InsufficientStockLines lists lines whose variant lacks on-hand stock when
// backorders are not allowed.
func (l *Ledger) InsufficientStockLines(ctx context.Context, o *order.Order) ([]*order.LineItem, error) {
	if l.cfg.AllowBackorders || !l.cfg.TrackInventoryLevels {
		return nil, nil
	}
	var short []*order.LineItem
	for _, li := range o.LineItems {
		onHand, err := l.OnHand(ctx, li.VariantID)
		if err != nil {
			return nil, err
		}
		if onHand < li.Quantity {
			short = append(short, li)
		}
	}
	return short, nil
}

func (l *Ledger) append(ctx context.Context, s *Stock, eventType string, data any, delta int) error {
	stored, err := l.eventStore.Append(ctx, s.VariantID, AggregateType, eventType, data)
	if err != nil {
		return err
	}

	s.OnHand += delta
	if stored != nil {
		s.Version = stored.Version
	}
	if err := aggregate.MaybeCreateSnapshot(ctx, l.eventStore, s, AggregateType); err != nil {
		l.logger.Warn("snapshot failed", zap.String("variant", s.VariantID), zap.Error(err))
	}
	return nil
}

func createUnits(o *order.Order, variantID string, sold, backordered int) {
	shipment := ""
	for _, s := range o.Shipments {
		if !s.Shipped() {
			shipment = s.Number
			break
		}
	}
	add := func(n int, state order.UnitState) {
		for range n {
			o.InventoryUnits = append(o.InventoryUnits, &order.InventoryUnit{
				ID:             uuid.New().String(),
				VariantID:      variantID,
				State:          state,
				ShipmentNumber: shipment,
			})
		}
	}
	add(sold, order.UnitSold)
	add(backordered, order.UnitBackordered)
}

func destroyUnits(o *order.Order, variantID string, quantity int) {
	remove := make(map[string]bool, quantity)
	for _, state := range []order.UnitState{order.UnitBackordered, order.UnitSold} {
		for _, u := range o.InventoryUnits {
			if len(remove) == quantity {
				break
			}
			if u.VariantID == variantID && u.State == state {
				remove[u.ID] = true
			}
		}
	}

	kept := o.InventoryUnits[:0]
	for _, u := range o.InventoryUnits {
		if !remove[u.ID] {
			kept = append(kept, u)
		}
	}
	o.InventoryUnits = kept
}
