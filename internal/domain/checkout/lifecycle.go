package checkout

import (
	"context"
	"fmt"

	"github.com/example/ec-checkout/internal/domain/order"
	"go.uber.org/zap"
)

// Finalize completes an order that has just entered the complete state.
// A failed confirmation is logged and does not fail the order. On error the
// held stock is released and the caller rolls the order back.
func (m *Machine) Finalize(ctx context.Context, o *order.Order) error {
	now := m.Now()
	o.CompletedAt = &now

	if err := m.Inventory.AssignOpeningInventory(ctx, o); err != nil {
		return err
	}

	var unlocked []*order.Adjustment
	for _, a := range o.Adjustments {
		if !a.Locked {
			unlocked = append(unlocked, a)
		}
	}
	o.LockAdjustments()

	m.Updater.UpdatePaymentState(o)
	for _, s := range o.Shipments {
		s.Update(o)
	}
	m.Updater.UpdateShipmentState(o)
	o.UpdatedAt = now

	if err := m.Repo.Save(ctx, o); err != nil {
		for _, a := range unlocked {
			a.Locked = false
		}
		if releaseErr := m.Inventory.ReleaseOrder(ctx, o); releaseErr != nil {
			m.Logger.Error("release stock after failed completion",
				zap.String("order", o.Number),
				zap.Error(releaseErr),
			)
		}
		return fmt.Errorf("save completed order: %w", err)
	}
	m.Updater.RunHooks(o)

	if err := m.Notifier.SendConfirmation(ctx, o); err != nil {
		m.Logger.Error("order confirmation failed",
			zap.String("order", o.Number),
			zap.Error(err),
		)
	}

	o.RecordStateChange(order.DimensionOrder, string(order.StateCart), string(order.StateComplete), now)
	m.Logger.Info("order completed",
		zap.String("order", o.Number),
		zap.String("total", o.Total.String()),
		zap.String("payment_state", string(o.PaymentState)),
	)
	return nil
}

// Cancel restocks every line item, notifies the customer and applies the
// configured payment policy.
func (m *Machine) Cancel(ctx context.Context, o *order.Order) error {
	from := o.State
	if !o.AllowCancel() {
		return rejected(from, order.StateCanceled, "order cannot be canceled", order.ErrCannotCancel)
	}

	if err := m.Inventory.ReleaseOrder(ctx, o); err != nil {
		return err
	}

	o.State = order.StateCanceled
	now := m.Now()
	o.RecordStateChange(order.DimensionOrder, string(from), string(order.StateCanceled), now)

	if err := m.Notifier.SendCancellation(ctx, o); err != nil {
		m.Logger.Error("cancellation notice failed",
			zap.String("order", o.Number),
			zap.Error(err),
		)
	}

	m.cfg.CancelPaymentPolicy.Apply(o)
	o.UpdatedAt = now
	m.Logger.Info("order canceled",
		zap.String("order", o.Number),
		zap.String("from", string(from)),
		zap.String("payment_state", string(o.PaymentState)),
	)
	return nil
}

// Resume holds stock again for every line item and puts the order back in
// the state it was canceled from.
func (m *Machine) Resume(ctx context.Context, o *order.Order) error {
	previous, ok := o.StateBeforeCancel()
	if o.State != order.StateCanceled || !ok {
		return rejected(o.State, "", "order cannot be resumed", order.ErrCannotResume)
	}

	if err := m.Inventory.HoldOrder(ctx, o); err != nil {
		return err
	}

	o.State = previous
	m.Updater.Update(o)
	o.RecordStateChange(order.DimensionOrder, string(order.StateCanceled), string(previous), m.Now())
	m.Logger.Info("order resumed",
		zap.String("order", o.Number),
		zap.String("state", string(previous)),
	)
	return nil
}
