package order

import "github.com/shopspring/decimal"

type UnitState string

const (
	UnitSold        UnitState = "sold"
	UnitBackordered UnitState = "backordered"
	UnitShipped     UnitState = "shipped"
	UnitReturned    UnitState = "returned"
)

// InventoryUnit is one physical unit of a variant held for the order.
// Units are created and destroyed in bulk by the inventory ledger.
type InventoryUnit struct {
	ID             string    `json:"id"`
	VariantID      string    `json:"variant_id"`
	State          UnitState `json:"state"`
	ShipmentNumber string    `json:"shipment_number,omitempty"`
}

type ReturnState string

const (
	ReturnAuthorized ReturnState = "authorized"
	ReturnReceived   ReturnState = "received"
	ReturnCanceled   ReturnState = "canceled"
)

type ReturnAuthorization struct {
	Number string          `json:"number"`
	State  ReturnState     `json:"state"`
	Amount decimal.Decimal `json:"amount"`
}
