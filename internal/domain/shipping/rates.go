package shipping

import (
	"context"
	"fmt"
	"sort"

	"github.com/example/ec-checkout/internal/domain/order"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RateEngine prices every available method for an order concurrently.
type RateEngine struct {
	availability Availability
	logger       *zap.Logger
}

func NewRateEngine(availability Availability, logger *zap.Logger) *RateEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateEngine{availability: availability, logger: logger.Named("shipping")}
}

// Rates returns the applicable rates sorted by ascending cost, ties in
// discovery order. Results are memoized on the order instance.
func (e *RateEngine) Rates(ctx context.Context, o *order.Order) ([]order.ShippingRate, error) {
	if rates, ok := o.CachedRates(); ok {
		return rates, nil
	}

	methods, err := e.availability.AvailableMethods(ctx, o, DisplayFrontEnd)
	if err != nil {
		return nil, fmt.Errorf("available methods: %w", err)
	}

	results := make([]*order.ShippingRate, len(methods))
	g, gctx := errgroup.WithContext(ctx)
	for i, m := range methods {
		g.Go(func() error {
			c, err := m.Calculator.Compute(gctx, o)
			if err != nil {
				return fmt.Errorf("compute %s: %w", m.ID, err)
			}
			if c == nil {
				return nil
			}
			results[i] = &order.ShippingRate{
				MethodID: m.ID,
				Name:     m.Name,
				Cost:     *c,
				Currency: o.Currency,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rates := make([]order.ShippingRate, 0, len(results))
	for _, r := range results {
		if r != nil {
			rates = append(rates, *r)
		}
	}
	sort.SliceStable(rates, func(i, j int) bool {
		return rates[i].Cost.LessThan(rates[j].Cost)
	})

	e.logger.Debug("rates computed", zap.String("order", o.Number), zap.Int("methods", len(methods)), zap.Int("rates", len(rates)))
	o.CacheRates(rates)
	return rates, nil
}

// Rate returns the rate of one method, or ErrMethodNotFound when it does not apply.
func (e *RateEngine) Rate(ctx context.Context, o *order.Order, methodID string) (order.ShippingRate, error) {
	if _, err := e.Rates(ctx, o); err != nil {
		return order.ShippingRate{}, err
	}
	rate, ok := o.RateFor(methodID)
	if !ok {
		return order.ShippingRate{}, fmt.Errorf("%w: %s not available for order %s", ErrMethodNotFound, methodID, o.Number)
	}
	return rate, nil
}
