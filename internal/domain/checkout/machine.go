package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/ec-checkout/internal/domain/inventory"
	"github.com/example/ec-checkout/internal/domain/order"
	"github.com/example/ec-checkout/internal/domain/payment"
	"github.com/example/ec-checkout/internal/domain/shipping"
	"github.com/example/ec-checkout/internal/domain/tax"
	"go.uber.org/zap"
)

// Deps are the collaborators of a Machine. Notifier and Logger may be nil.
type Deps struct {
	Repo      order.Repository
	Updater   *order.Updater
	Shipping  shipping.Availability
	Rates     *shipping.RateEngine
	Payments  *payment.Processor
	Tax       tax.Engine
	Inventory *inventory.Ledger
	Notifier  Notifier
	Logger    *zap.Logger
	Now       func() time.Time
}

// Machine drives an order through the checkout flow.
type Machine struct {
	Deps
	cfg  Config
	flow *Flow
}

func NewMachine(deps Deps, cfg Config) *Machine {
	if deps.Notifier == nil {
		deps.Notifier = nopNotifier{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	deps.Logger = deps.Logger.Named("checkout")
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if cfg.CancelPaymentPolicy == "" {
		cfg.CancelPaymentPolicy = CreditOwedUnlessShipped
	}

	if deps.Inventory != nil && deps.Inventory.Config() != cfg.InventoryConfig() {
		deps.Logger.Warn("inventory ledger settings differ from checkout settings",
			zap.Bool("track_inventory_levels", cfg.TrackInventoryLevels),
			zap.Bool("allow_backorders", cfg.AllowBackorders),
		)
	}

	m := &Machine{Deps: deps, cfg: cfg}
	m.flow = m.defaultFlow()
	return m
}

func (m *Machine) defaultFlow() *Flow {
	return NewFlow().
		Step(Step{State: order.StateAddress}).
		Step(Step{State: order.StateDelivery, Prepare: m.enterDelivery}).
		Step(Step{State: order.StatePayment, Prepare: m.createShipment, Guard: paymentRequired}).
		Step(Step{State: order.StateConfirm, Guard: m.confirmationRequired}).
		Step(Step{State: order.StateComplete, Guard: hasPaymentsIfRequired, Before: m.beforeComplete, After: m.Finalize}).
		RemoveTransition(order.StateDelivery, order.StateConfirm)
}

func (m *Machine) Flow() *Flow {
	return m.flow
}

func (m *Machine) Config() Config {
	return m.cfg
}

func paymentRequired(o *order.Order) bool {
	return o.PaymentRequired()
}

func hasPaymentsIfRequired(o *order.Order) bool {
	if !o.PaymentRequired() {
		return true
	}
	return len(o.Payments) > 0
}

// ConfirmationRequired holds when the selected payment method stores payment profiles.
func (m *Machine) ConfirmationRequired(o *order.Order) bool {
	return m.confirmationRequired(o)
}

func (m *Machine) confirmationRequired(o *order.Order) bool {
	return m.Payments.SupportsProfiles(o)
}

// Advance moves the order to the first reachable step whose guard passes.
// On failure the order keeps its state; side effects of Prepare hooks stay.
func (m *Machine) Advance(ctx context.Context, o *order.Order) (order.State, error) {
	from := o.State
	candidates := m.flow.Candidates(from)
	if len(candidates) == 0 {
		return from, rejected(from, "", "no transition available", nil)
	}
	if err := m.validateLeaving(ctx, o); err != nil {
		return from, invalid(from, "", err)
	}

	for _, step := range candidates {
		if step.Prepare != nil {
			if err := step.Prepare(ctx, o); err != nil {
				return from, m.stepError(from, step.State, err)
			}
		}
		if step.Guard != nil && !step.Guard(o) {
			continue
		}
		return m.enter(ctx, o, from, step)
	}

	return from, rejected(from, "", "no step guard passed", nil)
}

func (m *Machine) enter(ctx context.Context, o *order.Order, from order.State, step Step) (order.State, error) {
	if step.State != order.StateCart && o.Email == "" {
		return from, invalid(from, step.State, fmt.Errorf("%w: email is required", order.ErrValidation))
	}
	if step.Before != nil {
		if err := step.Before(ctx, o); err != nil {
			return from, m.stepError(from, step.State, err)
		}
	}

	o.State = step.State
	if step.State != order.StateComplete {
		o.RecordStateChange(order.DimensionOrder, string(from), string(step.State), m.Now())
	}
	m.Logger.Debug("order advanced",
		zap.String("order", o.Number),
		zap.String("from", string(from)),
		zap.String("to", string(step.State)),
	)

	if step.After != nil {
		if err := step.After(ctx, o); err != nil {
			m.rollback(o, from, err)
			return from, m.stepError(from, step.State, err)
		}
	}
	return o.State, nil
}

// rollback puts an order whose After hook failed back into from. Captured
// payments keep their state so the caller can persist them.
func (m *Machine) rollback(o *order.Order, from order.State, cause error) {
	to := o.State
	o.State = from
	o.CompletedAt = nil
	m.Updater.Update(o)
	m.Logger.Error("transition rolled back",
		zap.String("order", o.Number),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("payment_total", o.PaymentTotal.String()),
		zap.Error(cause),
	)
}

func (m *Machine) stepError(from, to order.State, err error) error {
	var te *TransitionError
	if errors.As(err, &te) {
		return te
	}
	if errors.Is(err, order.ErrValidation) {
		return invalid(from, to, err)
	}
	return rejected(from, to, err.Error(), err)
}

// validateLeaving checks what the current state requires before the order may move on.
func (m *Machine) validateLeaving(ctx context.Context, o *order.Order) error {
	if err := o.Validate(); err != nil {
		return err
	}

	switch o.State {
	case order.StateCart:
		if !o.CheckoutAllowed() {
			return fmt.Errorf("%w: cart is empty", order.ErrValidation)
		}
	case order.StateAddress:
		if err := o.BillAddress.Validate(); err != nil {
			return fmt.Errorf("bill address: %w", err)
		}
		if err := o.ShipAddress.Validate(); err != nil {
			return fmt.Errorf("ship address: %w", err)
		}
		methods, err := m.Shipping.AvailableMethods(ctx, o, shipping.DisplayFrontEnd)
		if err != nil {
			return err
		}
		if len(methods) == 0 {
			return fmt.Errorf("%w: no shipping methods available for %s", order.ErrValidation, o.ShipAddress.Country)
		}
	case order.StateDelivery:
		if len(m.Payments.Methods().Available(payment.DisplayFrontEnd)) == 0 {
			return fmt.Errorf("%w: no payment methods available", order.ErrValidation)
		}
	}
	return nil
}

// enterDelivery drops shipments whose method no longer serves the ship
// address and recomputes taxes for the confirmed address.
func (m *Machine) enterDelivery(ctx context.Context, o *order.Order) error {
	for _, s := range append([]*order.Shipment(nil), o.Shipments...) {
		method, err := m.Shipping.Method(s.ShippingMethodID)
		if err == nil && method.AvailableFor(o.ShipAddress, shipping.DisplayFrontEnd) {
			continue
		}
		m.Logger.Info("removing unavailable shipment",
			zap.String("order", o.Number),
			zap.String("shipment", s.Number),
			zap.String("method", s.ShippingMethodID),
		)
		o.RemoveShipment(s.Number)
		if o.ShippingMethodID == s.ShippingMethodID {
			o.ShippingMethodID = ""
		}
	}

	if err := m.AdjustTaxes(ctx, o); err != nil {
		return err
	}
	m.Updater.Update(o)
	return nil
}

// AdjustTaxes replaces the order's unlocked tax adjustments.
func (m *Machine) AdjustTaxes(ctx context.Context, o *order.Order) error {
	if m.Tax == nil {
		return nil
	}
	if err := m.Tax.Adjust(ctx, o); err != nil {
		return fmt.Errorf("tax: %w", err)
	}
	return nil
}

// createShipment creates or refreshes the order's shipment for the selected
// method, then recomputes totals so the payment guard sees the shipping cost.
func (m *Machine) createShipment(ctx context.Context, o *order.Order) error {
	if o.ShippingMethodID == "" {
		return nil
	}
	rate, err := m.Rates.Rate(ctx, o, o.ShippingMethodID)
	if err != nil {
		return err
	}

	if s := o.Shipment(); s != nil && !s.Shipped() {
		s.ShippingMethodID = rate.MethodID
		s.Address = o.ShipAddress.Clone()
		s.Cost = rate.Cost
	} else {
		s := order.NewShipment(rate.MethodID, o.ShipAddress, rate.Cost)
		o.Shipments = append(o.Shipments, s)
		for _, u := range o.InventoryUnits {
			if u.ShipmentNumber == "" {
				u.ShipmentNumber = s.Number
			}
		}
	}

	m.Updater.Update(o)
	return nil
}

func (m *Machine) beforeComplete(ctx context.Context, o *order.Order) error {
	short, err := m.Inventory.InsufficientStockLines(ctx, o)
	if err != nil {
		return err
	}
	if len(short) > 0 {
		variants := make([]string, len(short))
		for i, li := range short {
			variants[i] = li.VariantID
		}
		return fmt.Errorf("%w: insufficient stock for %s", order.ErrValidation, strings.Join(variants, ", "))
	}

	err = m.Payments.ProcessPayments(ctx, o)
	var gwErr *payment.GatewayError
	switch {
	case err == nil:
	case errors.As(err, &gwErr):
		if !m.cfg.AllowCheckoutOnGatewayError {
			m.Updater.Update(o)
			return rejected(o.State, order.StateComplete, gwErr.Message, gwErr)
		}
		m.Logger.Warn("completing order despite gateway error",
			zap.String("order", o.Number),
			zap.Error(gwErr),
		)
	default:
		return err
	}

	m.Updater.UpdateTotals(o)
	return nil
}
