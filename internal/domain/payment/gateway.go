package payment

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/example/ec-checkout/internal/domain/order"
)

var ErrGateway = errors.New("gateway error")

// GatewayError is returned by gateways when a payment is declined or cannot be processed.
type GatewayError struct {
	Code    string
	Message string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error %s: %s", e.Code, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return ErrGateway
}

// Gateway captures a payment, returning the authorization code on success.
type Gateway interface {
	Process(ctx context.Context, p *order.Payment) (string, error)
}

// BogusGateway approves everything unless Decline is set. Used in development and tests.
type BogusGateway struct {
	Decline bool
	seq     atomic.Int64
}

func (g *BogusGateway) Process(_ context.Context, p *order.Payment) (string, error) {
	if g.Decline {
		return "", &GatewayError{Code: "declined", Message: "bogus gateway declined payment " + p.ID}
	}
	return fmt.Sprintf("BOGUS-%06d", g.seq.Add(1)), nil
}
