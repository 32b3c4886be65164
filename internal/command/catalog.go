package command

import (
	"context"

	"github.com/example/ec-checkout/internal/domain/catalog"
)

// CreateVariant creates a variant and receives its opening stock.
func (h *Handler) CreateVariant(ctx context.Context, cmd CreateVariant) (*catalog.Variant, error) {
	v, err := h.catalog.Create(ctx, cmd.SKU, cmd.Name, cmd.Prices)
	if err != nil {
		return nil, err
	}
	if cmd.Stock > 0 {
		if err := h.machine.Inventory.AddStock(ctx, v.ID, cmd.Stock); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (h *Handler) GetVariant(ctx context.Context, variantID string) (*catalog.Variant, error) {
	return h.catalog.Get(ctx, variantID)
}

func (h *Handler) SetVariantPrice(ctx context.Context, cmd SetVariantPrice) error {
	return h.catalog.SetPrice(ctx, cmd.VariantID, cmd.Currency, cmd.Amount)
}

func (h *Handler) AddStock(ctx context.Context, cmd AddStock) error {
	if _, err := h.catalog.Get(ctx, cmd.VariantID); err != nil {
		return err
	}
	return h.machine.Inventory.AddStock(ctx, cmd.VariantID, cmd.Quantity)
}

func (h *Handler) OnHand(ctx context.Context, variantID string) (int, error) {
	return h.machine.Inventory.OnHand(ctx, variantID)
}
