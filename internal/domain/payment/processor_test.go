package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/ec-checkout/internal/domain/order"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingGateway struct{ err error }

func (g failingGateway) Process(context.Context, *order.Payment) (string, error) {
	return "", g.err
}

func newTestOrder(total string) *order.Order {
	o := order.New("R000000001", "USD", time.Now())
	o.Total = decimal.RequireFromString(total)
	return o
}

func addPayment(o *order.Order, method, amount string) *order.Payment {
	p := order.NewPayment(method, decimal.RequireFromString(amount), time.Now())
	o.Payments = append(o.Payments, p)
	return p
}

// ============================================
// ProcessPayments Tests
// ============================================

func TestProcessor_StopsOnceCovered(t *testing.T) {
	proc := NewProcessor(NewRegistry(Method{ID: "card", Active: true, Gateway: &BogusGateway{}}), nil)
	o := newTestOrder("10")
	first := addPayment(o, "card", "10")
	second := addPayment(o, "card", "5")

	require.NoError(t, proc.ProcessPayments(context.Background(), o))

	assert.Equal(t, order.PaymentCompleted, first.State)
	assert.Equal(t, "BOGUS-000001", first.ResponseCode)
	assert.Equal(t, order.PaymentCheckout, second.State)
	assert.True(t, decimal.NewFromInt(10).Equal(o.PaymentTotal))
}

func TestProcessor_GatewayError(t *testing.T) {
	proc := NewProcessor(NewRegistry(Method{ID: "card", Active: true, Gateway: &BogusGateway{Decline: true}}), nil)
	o := newTestOrder("10")
	p := addPayment(o, "card", "10")

	err := proc.ProcessPayments(context.Background(), o)

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "declined", gwErr.Code)
	assert.ErrorIs(t, err, ErrGateway)
	assert.Equal(t, order.PaymentFailed, p.State)
	assert.True(t, o.PaymentTotal.IsZero())
}

func TestProcessor_WrapsPlainGatewayFailures(t *testing.T) {
	proc := NewProcessor(NewRegistry(Method{ID: "card", Gateway: failingGateway{err: errors.New("timeout")}}), nil)
	o := newTestOrder("10")
	addPayment(o, "card", "10")

	err := proc.ProcessPayments(context.Background(), o)
	assert.ErrorIs(t, err, ErrGateway)
	assert.ErrorContains(t, err, "timeout")
}

func TestProcessor_OfflineMethodStaysPending(t *testing.T) {
	proc := NewProcessor(NewRegistry(Method{ID: "check", Active: true}), nil)
	o := newTestOrder("10")
	p := addPayment(o, "check", "10")

	require.NoError(t, proc.ProcessPayments(context.Background(), o))
	assert.Equal(t, order.PaymentPending, p.State)
}

func TestProcessor_UnknownMethod(t *testing.T) {
	proc := NewProcessor(NewRegistry(), nil)
	o := newTestOrder("10")
	addPayment(o, "ghost", "10")

	assert.ErrorIs(t, proc.ProcessPayments(context.Background(), o), ErrMethodNotFound)
}

func TestProcessor_SupportsProfiles(t *testing.T) {
	proc := NewProcessor(NewRegistry(
		Method{ID: "card", SupportsProfiles: true},
		Method{ID: "check"},
	), nil)
	o := newTestOrder("10")
	assert.False(t, proc.SupportsProfiles(o))

	addPayment(o, "check", "10")
	assert.False(t, proc.SupportsProfiles(o))

	addPayment(o, "card", "10")
	assert.True(t, proc.SupportsProfiles(o))
}

// ============================================
// Registry Tests
// ============================================

func TestRegistry_Available(t *testing.T) {
	r := NewRegistry(
		Method{ID: "card", Active: true},
		Method{ID: "retired"},
		Method{ID: "invoice", Active: true, DisplayOn: DisplayBackEnd},
	)

	ids := func(ms []Method) []string {
		var out []string
		for _, m := range ms {
			out = append(out, m.ID)
		}
		return out
	}
	assert.Equal(t, []string{"card"}, ids(r.Available(DisplayFrontEnd)))
	assert.Equal(t, []string{"card", "invoice"}, ids(r.Available(DisplayBackEnd)))

	_, err := r.Get("nope")
	assert.ErrorIs(t, err, ErrMethodNotFound)
}
