package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the lifecycle state of a single payment.
type PaymentStatus string

const (
	PaymentCheckout   PaymentStatus = "checkout"
	PaymentProcessing PaymentStatus = "processing"
	PaymentPending    PaymentStatus = "pending"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentFailed     PaymentStatus = "failed"
	PaymentVoid       PaymentStatus = "void"
)

type Payment struct {
	ID           string          `json:"id"`
	Amount       decimal.Decimal `json:"amount"`
	State        PaymentStatus   `json:"state"`
	MethodID     string          `json:"method_id"`
	ResponseCode string          `json:"response_code,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

func NewPayment(methodID string, amount decimal.Decimal, now time.Time) *Payment {
	return &Payment{
		ID:        uuid.New().String(),
		Amount:    amount,
		State:     PaymentCheckout,
		MethodID:  methodID,
		CreatedAt: now,
	}
}

// CheckoutPayments returns payments still waiting to be processed, in creation order.
func (o *Order) CheckoutPayments() []*Payment {
	var pending []*Payment
	for _, p := range o.Payments {
		if p.State == PaymentCheckout {
			pending = append(pending, p)
		}
	}
	return pending
}

// LastPayment returns the most recently added payment, or nil.
func (o *Order) LastPayment() *Payment {
	if len(o.Payments) == 0 {
		return nil
	}
	return o.Payments[len(o.Payments)-1]
}
