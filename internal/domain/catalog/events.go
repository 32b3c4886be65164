package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventVariantCreated  = "VariantCreated"
	EventVariantPriceSet = "VariantPriceSet"
	EventVariantDeleted  = "VariantDeleted"
)

type VariantCreated struct {
	VariantID string                     `json:"variant_id"`
	SKU       string                     `json:"sku"`
	Name      string                     `json:"name"`
	Prices    map[string]decimal.Decimal `json:"prices"`
	CreatedAt time.Time                  `json:"created_at"`
}

type VariantPriceSet struct {
	VariantID string          `json:"variant_id"`
	Currency  string          `json:"currency"`
	Amount    decimal.Decimal `json:"amount"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type VariantDeleted struct {
	VariantID string    `json:"variant_id"`
	DeletedAt time.Time `json:"deleted_at"`
}
