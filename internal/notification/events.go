package notification

import "time"

const AggregateType = "Notification"

const (
	EventConfirmationRequested = "OrderConfirmationRequested"
	EventCancellationRequested = "OrderCancellationRequested"
)

type Item struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
	Amount    string `json:"amount"`
}

// Requested asks the notifier to mail a customer. Amounts are display strings
// in the order currency.
type Requested struct {
	OrderNumber string    `json:"order_number"`
	Email       string    `json:"email"`
	Items       []Item    `json:"items"`
	ItemTotal   string    `json:"item_total"`
	ShipTotal   string    `json:"ship_total"`
	TaxTotal    string    `json:"tax_total"`
	Total       string    `json:"total"`
	RequestedAt time.Time `json:"requested_at"`
}
