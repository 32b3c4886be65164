package command

import (
	"context"
	"fmt"

	"github.com/example/ec-checkout/internal/domain/order"
	"go.uber.org/zap"
)

// AddVariant adds quantity units of a variant at its price in the order's
// currency. A variant already in the order increases its line.
func (h *Handler) AddVariant(ctx context.Context, cmd AddVariant) (*order.LineItem, *order.Order, error) {
	if cmd.Quantity <= 0 {
		return nil, nil, fmt.Errorf("%w: quantity must be positive, got %d", order.ErrValidation, cmd.Quantity)
	}

	var line *order.LineItem
	o, err := h.mutate(ctx, cmd.OrderNumber, func(o *order.Order) error {
		if line = o.FindLineItemByVariant(cmd.VariantID); line != nil {
			if err := h.setQuantity(ctx, o, line, line.Quantity+cmd.Quantity); err != nil {
				return err
			}
			h.update(o)
			return nil
		}

		price, err := h.catalog.Price(ctx, cmd.VariantID, o.Currency)
		if err != nil {
			return err
		}
		line = order.NewLineItem(cmd.VariantID, cmd.Quantity, price, o.Currency)
		o.LineItems = append(o.LineItems, line)
		if o.Completed() {
			if err := h.machine.Inventory.Increase(ctx, o, line.VariantID, line.Quantity); err != nil {
				return err
			}
		}
		h.update(o)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return line, o, nil
}

// UpdateLineItem sets a line's quantity; zero removes the line.
func (h *Handler) UpdateLineItem(ctx context.Context, cmd UpdateLineItem) (*order.Order, error) {
	return h.mutate(ctx, cmd.OrderNumber, func(o *order.Order) error {
		li := o.FindLineItem(cmd.LineItemID)
		if li == nil {
			return fmt.Errorf("%w: %s", ErrLineItemNotFound, cmd.LineItemID)
		}
		if cmd.Quantity == 0 {
			if err := h.removeLine(ctx, o, li); err != nil {
				return err
			}
		} else if err := h.setQuantity(ctx, o, li, cmd.Quantity); err != nil {
			return err
		}
		h.update(o)
		return nil
	})
}

func (h *Handler) RemoveLineItem(ctx context.Context, cmd RemoveLineItem) (*order.Order, error) {
	return h.mutate(ctx, cmd.OrderNumber, func(o *order.Order) error {
		li := o.FindLineItem(cmd.LineItemID)
		if li == nil {
			return fmt.Errorf("%w: %s", ErrLineItemNotFound, cmd.LineItemID)
		}
		if err := h.removeLine(ctx, o, li); err != nil {
			return err
		}
		h.update(o)
		return nil
	})
}

// Empty removes every line item and adjustment.
func (h *Handler) Empty(ctx context.Context, number string) (*order.Order, error) {
	return h.mutate(ctx, number, func(o *order.Order) error {
		for _, li := range append([]*order.LineItem(nil), o.LineItems...) {
			if err := h.removeLine(ctx, o, li); err != nil {
				return err
			}
		}
		o.Adjustments = nil
		h.update(o)
		return nil
	})
}

// setQuantity changes a line and, on completed orders, holds or releases the difference.
func (h *Handler) setQuantity(ctx context.Context, o *order.Order, li *order.LineItem, quantity int) error {
	if err := o.CheckQuantity(li, quantity); err != nil {
		return err
	}
	delta := quantity - li.Quantity
	li.Quantity = quantity
	if !o.Completed() || delta == 0 {
		return nil
	}

	h.logger.Debug("line quantity changed on completed order",
		zap.String("order", o.Number),
		zap.String("variant", li.VariantID),
		zap.Int("delta", delta),
	)
	if delta > 0 {
		return h.machine.Inventory.Increase(ctx, o, li.VariantID, delta)
	}
	return h.machine.Inventory.Decrease(ctx, o, li.VariantID, -delta)
}

// removeLine refuses lines with shipped units and releases held units on completed orders.
func (h *Handler) removeLine(ctx context.Context, o *order.Order, li *order.LineItem) error {
	if shipped := o.ShippedUnits(li.VariantID); shipped > 0 {
		return fmt.Errorf("%w: %d units of %s already shipped", order.ErrValidation, shipped, li.VariantID)
	}
	if o.Completed() {
		if err := h.machine.Inventory.Decrease(ctx, o, li.VariantID, li.Quantity); err != nil {
			return err
		}
	}
	o.RemoveLineItem(li.ID)
	return nil
}
