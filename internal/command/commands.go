package command

import (
	"github.com/example/ec-checkout/internal/domain/order"
	"github.com/shopspring/decimal"
)

// Catalog Commands
type CreateVariant struct {
	SKU    string                     `json:"sku"`
	Name   string                     `json:"name"`
	Prices map[string]decimal.Decimal `json:"prices"`
	Stock  int                        `json:"stock"`
}

type SetVariantPrice struct {
	VariantID string          `json:"variant_id"`
	Currency  string          `json:"currency"`
	Amount    decimal.Decimal `json:"amount"`
}

type AddStock struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

// Order Commands
type CreateOrder struct {
	Currency string `json:"currency"`
	Email    string `json:"email"`
	UserID   string `json:"user_id"`
}

type UpdateOrder struct {
	OrderNumber string  `json:"order_number"`
	Email       *string `json:"email,omitempty"`
}

type AssociateUser struct {
	OrderNumber string `json:"order_number"`
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
}

type MergeOrders struct {
	Into string `json:"into"`
	From string `json:"from"`
}

// Line Item Commands
type AddVariant struct {
	OrderNumber string `json:"order_number"`
	VariantID   string `json:"variant_id"`
	Quantity    int    `json:"quantity"`
}

type UpdateLineItem struct {
	OrderNumber string `json:"order_number"`
	LineItemID  string `json:"line_item_id"`
	Quantity    int    `json:"quantity"`
}

type RemoveLineItem struct {
	OrderNumber string `json:"order_number"`
	LineItemID  string `json:"line_item_id"`
}

// Checkout Commands
type UpdateAddress struct {
	OrderNumber string         `json:"order_number"`
	BillAddress *order.Address `json:"bill_address,omitempty"`
	ShipAddress *order.Address `json:"ship_address,omitempty"`
	UseBilling  bool           `json:"use_billing"`
}

type SetShippingMethod struct {
	OrderNumber string `json:"order_number"`
	MethodID    string `json:"method_id"`
}

// AddPayment charges the outstanding balance when Amount is nil.
type AddPayment struct {
	OrderNumber string           `json:"order_number"`
	MethodID    string           `json:"method_id"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
}

// Fulfillment Commands
type ShipShipment struct {
	OrderNumber    string `json:"order_number"`
	ShipmentNumber string `json:"shipment_number"`
	Tracking       string `json:"tracking"`
}

type AuthorizeReturn struct {
	OrderNumber string          `json:"order_number"`
	Amount      decimal.Decimal `json:"amount"`
}

type ReceiveReturn struct {
	OrderNumber string         `json:"order_number"`
	RANumber    string         `json:"ra_number"`
	Items       map[string]int `json:"items"`
}
