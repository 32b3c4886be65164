package shipping

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/ec-checkout/internal/domain/order"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newOrder(lines ...*order.LineItem) *order.Order {
	o := order.New("R000000001", "USD", time.Now())
	o.LineItems = lines
	o.ShipAddress = &order.Address{Country: "US"}
	return o
}

func line(variant string, qty int, price string) *order.LineItem {
	return order.NewLineItem(variant, qty, d(price), "USD")
}

// ============================================
// Calculator Tests
// ============================================

func TestCalculators(t *testing.T) {
	ctx := context.Background()
	o := newOrder(line("var-1", 2, "20"), line("var-2", 1, "15"))

	tests := []struct {
		name string
		calc Calculator
		want string
	}{
		{"flat rate", FlatRate{Amount: d("7.5")}, "7.5"},
		{"per item", PerItem{Amount: d("2")}, "6"},
		{"flexi single group", FlexiRate{FirstItem: d("5"), AdditionalItem: d("1")}, "7"},
		{"flexi groups of two", FlexiRate{FirstItem: d("5"), AdditionalItem: d("1"), MaxItems: 2}, "11"},
		{"percent of item total", FlatPercentItemTotal{Percent: d("10")}, "5.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.calc.Compute(ctx, o)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.True(t, d(tt.want).Equal(*got), got.String())
		})
	}
}

func TestPriceSack(t *testing.T) {
	ctx := context.Background()
	sack := DefaultPriceSack()

	tests := []struct {
		itemTotal string
		want      string
	}{
		{"10", "10"},
		{"49.99", "10"},
		{"50", "15"},
		{"99.99", "15"},
		{"100", "0"},
		{"250", "0"},
	}

	for _, tt := range tests {
		got, err := sack.Compute(ctx, newOrder(line("var-1", 1, tt.itemTotal)))
		require.NoError(t, err)
		assert.True(t, d(tt.want).Equal(*got), "item total %s: got %s", tt.itemTotal, got)
	}
}

// ============================================
// Availability Tests
// ============================================

func TestMethod_AvailableFor(t *testing.T) {
	us := &order.Address{Country: "us"}
	fr := &order.Address{Country: "FR"}

	domestic := Method{ID: "ups", Countries: []string{"US"}}
	assert.True(t, domestic.AvailableFor(us, DisplayFrontEnd))
	assert.False(t, domestic.AvailableFor(fr, DisplayFrontEnd))
	assert.False(t, domestic.AvailableFor(nil, DisplayFrontEnd))

	anywhere := Method{ID: "post"}
	assert.True(t, anywhere.AvailableFor(nil, DisplayFrontEnd))

	backOffice := Method{ID: "courier", DisplayOn: DisplayBackEnd}
	assert.False(t, backOffice.AvailableFor(us, DisplayFrontEnd))
	assert.True(t, backOffice.AvailableFor(us, DisplayBackEnd))
	assert.True(t, backOffice.AvailableFor(us, DisplayBoth))
}

func TestCatalog_Method(t *testing.T) {
	c := NewCatalog(Method{ID: "ups"})

	m, err := c.Method("ups")
	require.NoError(t, err)
	assert.Equal(t, "ups", m.ID)

	_, err = c.Method("fedex")
	assert.ErrorIs(t, err, ErrMethodNotFound)
}

// ============================================
// RateEngine Tests
// ============================================

func TestRateEngine_SortsAndDropsNil(t *testing.T) {
	nothing := CalculatorFunc(func(context.Context, *order.Order) (*decimal.Decimal, error) { return nil, nil })
	engine := NewRateEngine(NewCatalog(
		Method{ID: "express", Name: "Express", Calculator: FlatRate{Amount: d("20")}},
		Method{ID: "pickup", Name: "Pickup", Calculator: nothing},
		Method{ID: "ground", Name: "Ground", Calculator: FlatRate{Amount: d("5")}},
		Method{ID: "economy", Name: "Economy", Calculator: FlatRate{Amount: d("5")}},
		Method{ID: "eu", Countries: []string{"DE"}, Calculator: FlatRate{Amount: d("1")}},
	), nil)

	rates, err := engine.Rates(context.Background(), newOrder(line("var-1", 1, "10")))
	require.NoError(t, err)

	ids := make([]string, 0, len(rates))
	for _, r := range rates {
		ids = append(ids, r.MethodID)
	}
	assert.Equal(t, []string{"ground", "economy", "express"}, ids)
	assert.Equal(t, "USD", rates[0].Currency)
}

func TestRateEngine_RunsConcurrently(t *testing.T) {
	var inFlight, peak atomic.Int32
	release := make(chan struct{})
	slow := CalculatorFunc(func(ctx context.Context, _ *order.Order) (*decimal.Decimal, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		if n == 3 {
			close(release)
		}
		select {
		case <-release:
		case <-time.After(2 * time.Second):
		}
		inFlight.Add(-1)
		return cost(decimal.NewFromInt(1)), nil
	})
	engine := NewRateEngine(NewCatalog(
		Method{ID: "a", Calculator: slow},
		Method{ID: "b", Calculator: slow},
		Method{ID: "c", Calculator: slow},
	), nil)

	rates, err := engine.Rates(context.Background(), newOrder())
	require.NoError(t, err)
	assert.Len(t, rates, 3)
	assert.Equal(t, int32(3), peak.Load())
}

func TestRateEngine_MemoizedPerInstance(t *testing.T) {
	var calls atomic.Int32
	counting := CalculatorFunc(func(context.Context, *order.Order) (*decimal.Decimal, error) {
		calls.Add(1)
		return cost(decimal.NewFromInt(3)), nil
	})
	engine := NewRateEngine(NewCatalog(Method{ID: "ups", Calculator: counting}), nil)
	ctx := context.Background()

	o := newOrder()
	_, err := engine.Rates(ctx, o)
	require.NoError(t, err)
	_, err = engine.Rates(ctx, o)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	_, err = engine.Rates(ctx, newOrder())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRateEngine_CalculatorError(t *testing.T) {
	failing := CalculatorFunc(func(context.Context, *order.Order) (*decimal.Decimal, error) {
		return nil, errors.New("carrier down")
	})
	engine := NewRateEngine(NewCatalog(Method{ID: "ups", Calculator: failing}), nil)

	_, err := engine.Rates(context.Background(), newOrder())
	assert.ErrorContains(t, err, "carrier down")
}

func TestRateEngine_Rate(t *testing.T) {
	engine := NewRateEngine(NewCatalog(Method{ID: "ups", Calculator: FlatRate{Amount: d("4")}}), nil)
	ctx := context.Background()
	o := newOrder()

	rate, err := engine.Rate(ctx, o, "ups")
	require.NoError(t, err)
	assert.True(t, d("4").Equal(rate.Cost))

	_, err = engine.Rate(ctx, o, "fedex")
	assert.ErrorIs(t, err, ErrMethodNotFound)
}
