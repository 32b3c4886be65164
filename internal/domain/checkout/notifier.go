package checkout

import (
	"context"

	"github.com/example/ec-checkout/internal/domain/order"
)

// Notifier delivers customer notifications. Failures are logged by the
// machine and never fail a transition.
type Notifier interface {
	SendConfirmation(ctx context.Context, o *order.Order) error
	SendCancellation(ctx context.Context, o *order.Order) error
}

type nopNotifier struct{}

func (nopNotifier) SendConfirmation(context.Context, *order.Order) error { return nil }
func (nopNotifier) SendCancellation(context.Context, *order.Order) error { return nil }
