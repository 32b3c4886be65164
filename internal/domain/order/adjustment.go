package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AdjustmentKind string

const (
	KindTax       AdjustmentKind = "tax"
	KindShipping  AdjustmentKind = "shipping"
	KindPromotion AdjustmentKind = "promotion"
)

// Adjustment is a signed delta on the order total. Ineligible adjustments are
// excluded from totals; locked ones are never recomputed.
type Adjustment struct {
	ID           string          `json:"id"`
	Kind         AdjustmentKind  `json:"kind"`
	Label        string          `json:"label"`
	Amount       decimal.Decimal `json:"amount"`
	Eligible     bool            `json:"eligible"`
	Locked       bool            `json:"locked"`
	OriginatorID string          `json:"originator_id,omitempty"`
	LineItemID   string          `json:"line_item_id,omitempty"`
}

func NewAdjustment(kind AdjustmentKind, label string, amount decimal.Decimal, originatorID string) *Adjustment {
	return &Adjustment{
		ID:           uuid.New().String(),
		Kind:         kind,
		Label:        label,
		Amount:       amount,
		Eligible:     true,
		OriginatorID: originatorID,
	}
}
