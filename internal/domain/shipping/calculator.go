package shipping

import (
	"context"

	"github.com/example/ec-checkout/internal/domain/money"
	"github.com/example/ec-checkout/internal/domain/order"
	"github.com/shopspring/decimal"
)

// Calculator prices a shipping method for an order. A nil cost means the
// method does not apply and is left out of the rates.
type Calculator interface {
	Compute(ctx context.Context, o *order.Order) (*decimal.Decimal, error)
}

// CalculatorFunc adapts a function to Calculator.
type CalculatorFunc func(ctx context.Context, o *order.Order) (*decimal.Decimal, error)

func (f CalculatorFunc) Compute(ctx context.Context, o *order.Order) (*decimal.Decimal, error) {
	return f(ctx, o)
}

func itemTotal(o *order.Order) decimal.Decimal {
	total := money.Sum()
	for _, li := range o.LineItems {
		total = total.Add(li.Amount())
	}
	return total
}

func cost(d decimal.Decimal) *decimal.Decimal {
	return &d
}

// FlatRate charges the same amount per order.
type FlatRate struct {
	Amount decimal.Decimal
}

func (c FlatRate) Compute(context.Context, *order.Order) (*decimal.Decimal, error) {
	return cost(c.Amount), nil
}

// PerItem charges Amount for every unit in the order.
type PerItem struct {
	Amount decimal.Decimal
}

func (c PerItem) Compute(_ context.Context, o *order.Order) (*decimal.Decimal, error) {
	return cost(c.Amount.Mul(decimal.NewFromInt(int64(o.ItemCount())))), nil
}

// FlexiRate charges FirstItem for the first unit of every group of MaxItems
// units and AdditionalItem for the rest. MaxItems 0 means one group.
type FlexiRate struct {
	FirstItem      decimal.Decimal
	AdditionalItem decimal.Decimal
	MaxItems       int
}

func (c FlexiRate) Compute(_ context.Context, o *order.Order) (*decimal.Decimal, error) {
	sum := decimal.Zero
	for i := range o.ItemCount() {
		if (c.MaxItems == 0 && i == 0) || (c.MaxItems > 0 && i%c.MaxItems == 0) {
			sum = sum.Add(c.FirstItem)
		} else {
			sum = sum.Add(c.AdditionalItem)
		}
	}
	return cost(sum), nil
}

// Tier applies Amount once the item total reaches Minimum.
type Tier struct {
	Minimum decimal.Decimal
	Amount  decimal.Decimal
}

// PriceSack picks the amount of the highest tier the item total reaches,
// falling back to Base.
type PriceSack struct {
	Tiers []Tier
	Base  decimal.Decimal
}

// DefaultPriceSack ships free from 100, for 15 from 50 and for 10 otherwise.
func DefaultPriceSack() PriceSack {
	return PriceSack{
		Tiers: []Tier{
			{Minimum: decimal.NewFromInt(100), Amount: decimal.Zero},
			{Minimum: decimal.NewFromInt(50), Amount: decimal.NewFromInt(15)},
		},
		Base: decimal.NewFromInt(10),
	}
}

func (c PriceSack) Compute(_ context.Context, o *order.Order) (*decimal.Decimal, error) {
	total := itemTotal(o)
	best := -1
	for i, t := range c.Tiers {
		if total.GreaterThanOrEqual(t.Minimum) && (best < 0 || t.Minimum.GreaterThan(c.Tiers[best].Minimum)) {
			best = i
		}
	}
	if best < 0 {
		return cost(c.Base), nil
	}
	return cost(c.Tiers[best].Amount), nil
}

// FlatPercentItemTotal charges a percentage of the item total.
type FlatPercentItemTotal struct {
	Percent decimal.Decimal
}

func (c FlatPercentItemTotal) Compute(_ context.Context, o *order.Order) (*decimal.Decimal, error) {
	amount := itemTotal(o).Mul(c.Percent).Div(decimal.NewFromInt(100))
	return cost(money.Round(amount, o.Currency)), nil
}
