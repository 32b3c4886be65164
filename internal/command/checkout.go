package command

import (
	"context"
	"fmt"

	"github.com/example/ec-checkout/internal/domain/order"
	"github.com/example/ec-checkout/internal/domain/payment"
)

func (h *Handler) UpdateAddress(ctx context.Context, cmd UpdateAddress) (*order.Order, error) {
	return h.mutate(ctx, cmd.OrderNumber, func(o *order.Order) error {
		if cmd.BillAddress != nil {
			o.BillAddress = cmd.BillAddress.Clone()
		}
		if cmd.UseBilling {
			o.UseBilling()
		} else if cmd.ShipAddress != nil {
			o.ShipAddress = cmd.ShipAddress.Clone()
		}
		h.update(o)
		return nil
	})
}

// SetShippingMethod selects a method available for the order and reprices
// an unshipped shipment.
func (h *Handler) SetShippingMethod(ctx context.Context, cmd SetShippingMethod) (*order.Order, error) {
	return h.mutate(ctx, cmd.OrderNumber, func(o *order.Order) error {
		rate, err := h.machine.Rates.Rate(ctx, o, cmd.MethodID)
		if err != nil {
			return err
		}
		o.ShippingMethodID = rate.MethodID
		if s := o.Shipment(); s != nil && !s.Shipped() {
			s.ShippingMethodID = rate.MethodID
			s.Cost = rate.Cost
		}
		h.update(o)
		return nil
	})
}

// AddPayment adds a checkout payment with an active front end method.
func (h *Handler) AddPayment(ctx context.Context, cmd AddPayment) (*payment.Method, *order.Order, error) {
	method, err := h.machine.Payments.Methods().Get(cmd.MethodID)
	if err != nil {
		return nil, nil, err
	}
	if !method.Active {
		return nil, nil, fmt.Errorf("%w: %s is inactive", payment.ErrMethodNotFound, cmd.MethodID)
	}

	o, err := h.mutate(ctx, cmd.OrderNumber, func(o *order.Order) error {
		if o.Completed() || o.Canceled() {
			return fmt.Errorf("%w: order %s no longer takes payments", order.ErrValidation, o.Number)
		}
		amount := o.OutstandingBalance()
		if cmd.Amount != nil {
			amount = *cmd.Amount
		}
		if !amount.IsPositive() {
			return fmt.Errorf("%w: payment amount must be positive, got %s", order.ErrValidation, amount)
		}
		o.Payments = append(o.Payments, order.NewPayment(method.ID, amount, h.now()))
		h.update(o)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &method, o, nil
}
