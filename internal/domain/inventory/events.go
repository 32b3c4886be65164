package inventory

import "time"

const (
	EventStockAdded     = "StockAdded"
	EventStockSold      = "StockSold"
	EventStockRestocked = "StockRestocked"
)

type StockAdded struct {
	VariantID string    `json:"variant_id"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

type StockSold struct {
	VariantID   string    `json:"variant_id"`
	OrderNumber string    `json:"order_number"`
	Quantity    int       `json:"quantity"`
	Backordered int       `json:"backordered"`
	SoldAt      time.Time `json:"sold_at"`
}

type StockRestocked struct {
	VariantID   string    `json:"variant_id"`
	OrderNumber string    `json:"order_number"`
	Quantity    int       `json:"quantity"`
	RestockedAt time.Time `json:"restocked_at"`
}
