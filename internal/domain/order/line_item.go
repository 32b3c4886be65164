package order

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one variant line of an order. An order holds at most one line per variant.
type LineItem struct {
	ID        string          `json:"id"`
	VariantID string          `json:"variant_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency"`
}

func NewLineItem(variantID string, quantity int, price decimal.Decimal, currency string) *LineItem {
	return &LineItem{
		ID:        uuid.New().String(),
		VariantID: variantID,
		Quantity:  quantity,
		Price:     price,
		Currency:  currency,
	}
}

// Amount is price times quantity.
func (li *LineItem) Amount() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

func (li *LineItem) Validate() error {
	if li.VariantID == "" {
		return fmt.Errorf("%w: line item variant is required", ErrValidation)
	}
	if li.Quantity < 0 {
		return fmt.Errorf("%w: quantity must be >= 0, got %d", ErrValidation, li.Quantity)
	}
	if li.Price.IsNegative() {
		return fmt.Errorf("%w: price must be >= 0", ErrValidation)
	}
	return nil
}

// CheckQuantity refuses a quantity below the units already shipped for the line's variant.
func (o *Order) CheckQuantity(li *LineItem, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("%w: quantity must be >= 0, got %d", ErrValidation, quantity)
	}
	if shipped := o.ShippedUnits(li.VariantID); quantity < shipped {
		return fmt.Errorf("%w: quantity %d is below the %d units already shipped", ErrValidation, quantity, shipped)
	}
	return nil
}

// RemoveLineItem drops the line; the caller releases inventory first.
func (o *Order) RemoveLineItem(id string) {
	kept := o.LineItems[:0]
	for _, li := range o.LineItems {
		if li.ID != id {
			kept = append(kept, li)
		}
	}
	o.LineItems = kept
}
