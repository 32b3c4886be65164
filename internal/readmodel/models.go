package readmodel

import (
	"time"

	"github.com/shopspring/decimal"
)

// Collections the projector writes to.
const (
	CollectionOrderSummaries = "order_summaries"
	CollectionStockLevels    = "stock_levels"
	CollectionSales          = "sales"
)

// OrderSummary is one row of a customer's order history
type OrderSummary struct {
	Number      string          `json:"number"`
	UserID      string          `json:"user_id,omitempty"`
	Currency    string          `json:"currency"`
	State       string          `json:"state"`
	Total       decimal.Decimal `json:"total"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	UpdatedAt   time.Time       `json:"updated_at"`
	// Version is the last applied event version of the order stream
	Version int `json:"version"`
}

// Counted reports whether the order contributes to sales totals
func (s *OrderSummary) Counted() bool {
	return s.CompletedAt != nil && s.State != "canceled"
}

// StockLevel tracks movements of one variant
type StockLevel struct {
	VariantID   string    `json:"variant_id"`
	OnHand      int       `json:"on_hand"`
	Sold        int       `json:"sold"`
	Backordered int       `json:"backordered"`
	Restocked   int       `json:"restocked"`
	UpdatedAt   time.Time `json:"updated_at"`
	Version     int       `json:"version"`
}

// SalesTotal aggregates completed, non-canceled orders per currency
type SalesTotal struct {
	Currency  string          `json:"currency"`
	Orders    int             `json:"orders"`
	Revenue   decimal.Decimal `json:"revenue"`
	UpdatedAt time.Time       `json:"updated_at"`
}
