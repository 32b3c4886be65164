package command

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/example/ec-checkout/internal/domain/order"
	"go.uber.org/zap"
)

// Ship ships a ready shipment and its inventory units.
func (h *Handler) Ship(ctx context.Context, cmd ShipShipment) (*order.Order, error) {
	return h.mutate(ctx, cmd.OrderNumber, func(o *order.Order) error {
		if !o.CanShip() {
			return fmt.Errorf("%w: order %s is %s", order.ErrValidation, o.Number, o.State)
		}
		s := o.FindShipment(cmd.ShipmentNumber)
		if s == nil {
			return fmt.Errorf("%w: shipment %s", order.ErrNotFound, cmd.ShipmentNumber)
		}
		if err := s.Ship(h.now()); err != nil {
			return err
		}
		s.Tracking = cmd.Tracking
		h.machine.Inventory.Ship(o, s.Number)
		h.update(o)
		h.logger.Info("shipment shipped",
			zap.String("order", o.Number),
			zap.String("shipment", s.Number),
		)
		return nil
	})
}

// AuthorizeReturn opens a return authorization on an order with shipped units.
func (h *Handler) AuthorizeReturn(ctx context.Context, cmd AuthorizeReturn) (*order.ReturnAuthorization, *order.Order, error) {
	var ra *order.ReturnAuthorization
	o, err := h.mutate(ctx, cmd.OrderNumber, func(o *order.Order) error {
		if !o.CanShip() || (o.ShipmentState != order.ShipmentShipped && o.ShipmentState != order.ShipmentPartial) {
			return fmt.Errorf("%w: order %s has nothing shipped to return", order.ErrValidation, o.Number)
		}
		if cmd.Amount.IsNegative() {
			return fmt.Errorf("%w: return amount must not be negative", order.ErrValidation)
		}
		ra = &order.ReturnAuthorization{
			Number: fmt.Sprintf("RMA%09d", rand.IntN(1_000_000_000)),
			State:  order.ReturnAuthorized,
			Amount: cmd.Amount,
		}
		o.ReturnAuthorizations = append(o.ReturnAuthorizations, ra)
		h.transition(o, order.StateAwaitingReturn)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return ra, o, nil
}

// ReceiveReturn puts returned units back on hand and closes the authorization.
func (h *Handler) ReceiveReturn(ctx context.Context, cmd ReceiveReturn) (*order.Order, error) {
	return h.mutate(ctx, cmd.OrderNumber, func(o *order.Order) error {
		var ra *order.ReturnAuthorization
		for _, r := range o.ReturnAuthorizations {
			if r.Number == cmd.RANumber {
				ra = r
			}
		}
		if ra == nil {
			return fmt.Errorf("%w: return authorization %s", order.ErrNotFound, cmd.RANumber)
		}
		if ra.State != order.ReturnAuthorized {
			return fmt.Errorf("%w: return authorization %s is %s", order.ErrValidation, ra.Number, ra.State)
		}

		for variantID, quantity := range cmd.Items {
			returned, err := h.machine.Inventory.Return(ctx, o, variantID, quantity)
			if err != nil {
				return err
			}
			if returned < quantity {
				h.logger.Warn("fewer shipped units than returned",
					zap.String("order", o.Number),
					zap.String("variant", variantID),
					zap.Int("requested", quantity),
					zap.Int("returned", returned),
				)
			}
		}
		ra.State = order.ReturnReceived
		if !o.AwaitingReturns() {
			h.transition(o, order.StateReturned)
		}
		h.update(o)
		return nil
	})
}

func (h *Handler) transition(o *order.Order, next order.State) {
	if o.State == next {
		return
	}
	o.RecordStateChange(order.DimensionOrder, string(o.State), string(next), h.now())
	o.State = next
}
