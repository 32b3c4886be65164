package order

import (
	"time"

	"github.com/example/ec-checkout/internal/domain/money"
)

// Hook runs after every full Update and after an order completes.
type Hook func(o *Order)

type UpdaterConfig struct {
	// TrackInventoryLevels enables the backorder shipment state.
	TrackInventoryLevels bool
	Now                  func() time.Time
}

// Updater recomputes totals and derives the payment and shipment states of an order.
type Updater struct {
	cfg   UpdaterConfig
	hooks []Hook
}

func NewUpdater(cfg UpdaterConfig) *Updater {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Updater{cfg: cfg}
}

func (u *Updater) RegisterHook(h Hook) {
	u.hooks = append(u.hooks, h)
}

// Update recomputes everything derived on the order. A second totals pass
// runs only when the shipment cascade changed an adjustment.
func (u *Updater) Update(o *Order) {
	u.UpdateTotals(o)
	u.UpdatePaymentState(o)

	changed := false
	for _, s := range o.Shipments {
		if s.Update(o) {
			changed = true
		}
	}
	if changed {
		u.UpdateTotals(o)
		u.UpdatePaymentState(o)
	}

	u.UpdateShipmentState(o)
	o.UpdatedAt = u.cfg.Now()
	u.RunHooks(o)
}

// RunHooks calls the registered hooks in registration order.
func (u *Updater) RunHooks(o *Order) {
	for _, h := range u.hooks {
		h(o)
	}
}

// UpdateTotals is a pure function of the child collections.
func (u *Updater) UpdateTotals(o *Order) {
	paymentTotal := money.Sum()
	for _, p := range o.Payments {
		if p.State == PaymentCompleted {
			paymentTotal = paymentTotal.Add(p.Amount)
		}
	}

	itemTotal := money.Sum()
	for _, li := range o.LineItems {
		itemTotal = itemTotal.Add(li.Amount())
	}

	adjustmentTotal := money.Sum()
	for _, a := range o.Adjustments {
		if a.Eligible {
			adjustmentTotal = adjustmentTotal.Add(a.Amount)
		}
	}

	o.PaymentTotal = paymentTotal
	o.ItemTotal = itemTotal
	o.AdjustmentTotal = adjustmentTotal
	o.Total = itemTotal.Add(adjustmentTotal)
}

// UpdateShipmentState stores and returns the aggregate shipment state.
func (u *Updater) UpdateShipmentState(o *Order) ShipmentState {
	next := DeriveShipmentState(o.Shipments, u.cfg.TrackInventoryLevels && o.Backordered())
	u.transition(o, DimensionShipment, string(o.ShipmentState), string(next))
	o.ShipmentState = next
	return next
}

// UpdatePaymentState stores and returns the payment state.
func (u *Updater) UpdatePaymentState(o *Order) PaymentState {
	next := DerivePaymentState(o)
	u.transition(o, DimensionPayment, string(o.PaymentState), string(next))
	o.PaymentState = next
	return next
}

func (u *Updater) transition(o *Order, name Dimension, previous, next string) {
	if previous == next {
		return
	}
	o.RecordStateChange(name, previous, next, u.cfg.Now())
}

// DeriveShipmentState partitions shipments into exactly one outcome:
// backorder, none, shipped, ready, pending or partial.
func DeriveShipmentState(shipments []*Shipment, backordered bool) ShipmentState {
	if backordered {
		return ShipmentBackorder
	}
	if len(shipments) == 0 {
		return ShipmentNone
	}

	counts := make(map[ShipmentState]int, 3)
	for _, s := range shipments {
		counts[s.State]++
	}
	switch len(shipments) {
	case counts[ShipmentShipped]:
		return ShipmentShipped
	case counts[ShipmentReady]:
		return ShipmentReady
	case counts[ShipmentPending]:
		return ShipmentPending
	}
	return ShipmentPartial
}

// DerivePaymentState compares payment and order totals at the currency's precision.
func DerivePaymentState(o *Order) PaymentState {
	if last := o.LastPayment(); last != nil && last.State == PaymentFailed {
		return PaymentStateFailed
	}
	if len(o.LineItems) == 0 {
		return PaymentStateBalanceDue
	}

	paid := money.Round(o.PaymentTotal, o.Currency)
	total := money.Round(o.Total, o.Currency)
	switch paid.Cmp(total) {
	case 1:
		return PaymentStateCreditOwed
	case 0:
		return PaymentStatePaid
	}
	return PaymentStateBalanceDue
}
