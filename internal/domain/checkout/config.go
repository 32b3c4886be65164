package checkout

import (
	"fmt"
	"time"

	"github.com/example/ec-checkout/internal/domain/inventory"
	"github.com/example/ec-checkout/internal/domain/order"
)

// CancelPaymentPolicy decides the payment state of a canceled order.
type CancelPaymentPolicy string

const (
	// CreditOwedUnlessShipped sets credit_owed unless something already shipped.
	CreditOwedUnlessShipped CancelPaymentPolicy = "credit_owed_unless_shipped"
	// AlwaysCreditOwed sets credit_owed on every cancellation.
	AlwaysCreditOwed CancelPaymentPolicy = "credit_owed"
	// KeepPaymentState leaves the payment state untouched.
	KeepPaymentState CancelPaymentPolicy = "keep"
)

func ParseCancelPaymentPolicy(s string) (CancelPaymentPolicy, error) {
	switch p := CancelPaymentPolicy(s); p {
	case "":
		return CreditOwedUnlessShipped, nil
	case CreditOwedUnlessShipped, AlwaysCreditOwed, KeepPaymentState:
		return p, nil
	}
	return "", fmt.Errorf("unknown cancel payment policy %q", s)
}

// Apply sets the canceled order's payment state.
func (p CancelPaymentPolicy) Apply(o *order.Order) {
	switch p {
	case KeepPaymentState:
		return
	case AlwaysCreditOwed:
		o.PaymentState = order.PaymentStateCreditOwed
	default:
		if o.ShipmentState != order.ShipmentPartial && o.ShipmentState != order.ShipmentShipped {
			o.PaymentState = order.PaymentStateCreditOwed
		}
	}
}

// Config carries the checkout switches into the machine.
type Config struct {
	AllowCheckoutOnGatewayError bool
	TrackInventoryLevels        bool
	AllowBackorders             bool
	CancelPaymentPolicy         CancelPaymentPolicy
}

// UpdaterConfig derives the order updater settings.
func (c Config) UpdaterConfig(now func() time.Time) order.UpdaterConfig {
	return order.UpdaterConfig{TrackInventoryLevels: c.TrackInventoryLevels, Now: now}
}

// InventoryConfig derives the stock ledger settings.
func (c Config) InventoryConfig() inventory.Config {
	return inventory.Config{
		TrackInventoryLevels: c.TrackInventoryLevels,
		AllowBackorders:      c.AllowBackorders,
	}
}
