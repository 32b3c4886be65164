package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lifecycle events appended to the event store under AggregateType.
const (
	EventOrderCreated    = "OrderCreated"
	EventOrderCompleted  = "OrderCompleted"
	EventOrderCanceled   = "OrderCanceled"
	EventOrderResumed    = "OrderResumed"
	EventOrderMerged     = "OrderMerged"
	EventOrderAssociated = "OrderAssociated"
)

type OrderCreated struct {
	Number    string    `json:"number"`
	Currency  string    `json:"currency"`
	UserID    string    `json:"user_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type OrderCompleted struct {
	Number      string          `json:"number"`
	Email       string          `json:"email"`
	Total       decimal.Decimal `json:"total"`
	Currency    string          `json:"currency"`
	CompletedAt time.Time       `json:"completed_at"`
}

type OrderCanceled struct {
	Number       string       `json:"number"`
	PaymentState PaymentState `json:"payment_state"`
	CanceledAt   time.Time    `json:"canceled_at"`
}

type OrderResumed struct {
	Number    string    `json:"number"`
	State     State     `json:"state"`
	ResumedAt time.Time `json:"resumed_at"`
}

type OrderMerged struct {
	Number   string    `json:"number"`
	From     string    `json:"from"`
	MergedAt time.Time `json:"merged_at"`
}

type OrderAssociated struct {
	Number       string    `json:"number"`
	UserID       string    `json:"user_id"`
	AssociatedAt time.Time `json:"associated_at"`
}
