package order

import "github.com/shopspring/decimal"

// ShippingRate is the cost of one shipping method for an order.
type ShippingRate struct {
	MethodID string          `json:"method_id"`
	Name     string          `json:"name"`
	Cost     decimal.Decimal `json:"cost"`
	Currency string          `json:"currency"`
}

type rateMemo struct {
	rates []ShippingRate
}

// CachedRates returns the rates memoized on this instance. A freshly loaded
// order has none.
func (o *Order) CachedRates() ([]ShippingRate, bool) {
	if o.rates == nil {
		return nil, false
	}
	return o.rates.rates, true
}

func (o *Order) CacheRates(rates []ShippingRate) {
	o.rates = &rateMemo{rates: rates}
}

// RateFor finds the memoized rate of a method.
func (o *Order) RateFor(methodID string) (ShippingRate, bool) {
	rates, _ := o.CachedRates()
	for _, r := range rates {
		if r.MethodID == methodID {
			return r, true
		}
	}
	return ShippingRate{}, false
}
