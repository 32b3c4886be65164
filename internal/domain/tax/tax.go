package tax

import (
	"context"
	"strings"

	"github.com/example/ec-checkout/internal/domain/money"
	"github.com/example/ec-checkout/internal/domain/order"
	"github.com/shopspring/decimal"
)

// Engine recomputes the tax adjustments of an order.
type Engine interface {
	Adjust(ctx context.Context, o *order.Order) error
}

// Rate applies Amount (a fraction, 0.08 for 8%) to the item total of orders
// shipping to Country. An empty Country matches every address.
type Rate struct {
	ID      string
	Label   string
	Country string
	Amount  decimal.Decimal
}

// RateTable is a static Engine. Locked tax adjustments are left alone.
type RateTable struct {
	rates []Rate
}

func NewRateTable(rates ...Rate) *RateTable {
	return &RateTable{rates: rates}
}

func (t *RateTable) Adjust(_ context.Context, o *order.Order) error {
	var adjustments []*order.Adjustment
	if o.ShipAddress != nil {
		base := money.Sum()
		for _, li := range o.LineItems {
			base = base.Add(li.Amount())
		}
		for _, r := range t.rates {
			if r.Country != "" && !strings.EqualFold(r.Country, o.ShipAddress.Country) {
				continue
			}
			amount := money.Round(base.Mul(r.Amount), o.Currency)
			if amount.IsZero() {
				continue
			}
			adjustments = append(adjustments, order.NewAdjustment(order.KindTax, r.Label, amount, r.ID))
		}
	}
	o.ReplaceAdjustments(order.KindTax, adjustments)
	return nil
}
