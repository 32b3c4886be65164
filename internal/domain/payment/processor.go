package payment

import (
	"context"
	"errors"

	"github.com/example/ec-checkout/internal/domain/order"
	"go.uber.org/zap"
)

// Processor runs an order's checkout payments through their gateways.
type Processor struct {
	methods *Registry
	logger  *zap.Logger
}

func NewProcessor(methods *Registry, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{methods: methods, logger: logger.Named("payment")}
}

func (p *Processor) Methods() *Registry {
	return p.methods
}

// ProcessPayments processes checkout payments in order and stops once the
// payment total covers the order total. The first gateway failure marks that
// payment failed and is returned as a *GatewayError.
func (p *Processor) ProcessPayments(ctx context.Context, o *order.Order) error {
	for _, pay := range o.CheckoutPayments() {
		if o.PaymentTotal.GreaterThanOrEqual(o.Total) {
			break
		}
		if err := p.process(ctx, o, pay); err != nil {
			return err
		}
	}
	return nil
}

func (p *Processor) process(ctx context.Context, o *order.Order, pay *order.Payment) error {
	method, err := p.methods.Get(pay.MethodID)
	if err != nil {
		return err
	}
	if method.Gateway == nil {
		pay.State = order.PaymentPending
		return nil
	}

	pay.State = order.PaymentProcessing
	code, err := method.Gateway.Process(ctx, pay)
	if err != nil {
		pay.State = order.PaymentFailed
		p.logger.Warn("payment failed",
			zap.String("order", o.Number),
			zap.String("payment", pay.ID),
			zap.Error(err),
		)
		var gwErr *GatewayError
		if errors.As(err, &gwErr) {
			return gwErr
		}
		return &GatewayError{Code: "error", Message: err.Error()}
	}

	pay.State = order.PaymentCompleted
	pay.ResponseCode = code
	o.PaymentTotal = o.PaymentTotal.Add(pay.Amount)
	return nil
}

// SupportsProfiles reports whether the method of the order's last payment stores payment profiles.
func (p *Processor) SupportsProfiles(o *order.Order) bool {
	last := o.LastPayment()
	if last == nil {
		return false
	}
	m, err := p.methods.Get(last.MethodID)
	if err != nil {
		return false
	}
	return m.SupportsProfiles
}
