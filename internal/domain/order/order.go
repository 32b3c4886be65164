package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/ec-checkout/internal/domain/money"
	"github.com/shopspring/decimal"
)

const AggregateType = "Order"

// State is the checkout state of an order.
type State string

const (
	StateCart           State = "cart"
	StateAddress        State = "address"
	StateDelivery       State = "delivery"
	StatePayment        State = "payment"
	StateConfirm        State = "confirm"
	StateComplete       State = "complete"
	StateCanceled       State = "canceled"
	StateResumed        State = "resumed"
	StateAwaitingReturn State = "awaiting_return"
	StateReturned       State = "returned"
)

// ShipmentState is used for both a single shipment and the order-level aggregate.
type ShipmentState string

const (
	ShipmentNone      ShipmentState = ""
	ShipmentPending   ShipmentState = "pending"
	ShipmentReady     ShipmentState = "ready"
	ShipmentShipped   ShipmentState = "shipped"
	ShipmentBackorder ShipmentState = "backorder"
	ShipmentPartial   ShipmentState = "partial"
)

// PaymentState is the order-level payment summary derived by the Updater.
type PaymentState string

const (
	PaymentStateNone       PaymentState = ""
	PaymentStateBalanceDue PaymentState = "balance_due"
	PaymentStateCreditOwed PaymentState = "credit_owed"
	PaymentStatePaid       PaymentState = "paid"
	PaymentStateFailed     PaymentState = "failed"
	PaymentStateVoid       PaymentState = "void"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("order not found")
	ErrDuplicateNumber = errors.New("order number already taken")
	ErrCannotCancel    = errors.New("order cannot be canceled")
	ErrCannotResume    = errors.New("order cannot be resumed")
)

// Order is the checkout aggregate root. Totals, PaymentState and ShipmentState
// are derived by Updater and must not be assigned elsewhere.
type Order struct {
	Number        string        `json:"number"`
	State         State         `json:"state"`
	ShipmentState ShipmentState `json:"shipment_state,omitempty"`
	PaymentState  PaymentState  `json:"payment_state,omitempty"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
	Email         string        `json:"email,omitempty"`
	Currency      string        `json:"currency"`
	UserID        string        `json:"user_id,omitempty"`

	ItemTotal       decimal.Decimal `json:"item_total"`
	AdjustmentTotal decimal.Decimal `json:"adjustment_total"`
	PaymentTotal    decimal.Decimal `json:"payment_total"`
	Total           decimal.Decimal `json:"total"`

	BillAddress      *Address `json:"bill_address,omitempty"`
	ShipAddress      *Address `json:"ship_address,omitempty"`
	ShippingMethodID string   `json:"shipping_method_id,omitempty"`

	LineItems            []*LineItem            `json:"line_items"`
	Payments             []*Payment             `json:"payments"`
	Shipments            []*Shipment            `json:"shipments"`
	Adjustments          []*Adjustment          `json:"adjustments"`
	ReturnAuthorizations []*ReturnAuthorization `json:"return_authorizations,omitempty"`
	StateChanges         []StateChange          `json:"state_changes"`
	InventoryUnits       []*InventoryUnit       `json:"inventory_units"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	rates *rateMemo
}

// New returns an empty cart order.
func New(number, currency string, now time.Time) *Order {
	return &Order{
		Number:    number,
		State:     StateCart,
		Currency:  currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Completed reports whether finalization has happened; CompletedAt is the only completion flag.
func (o *Order) Completed() bool {
	return o.CompletedAt != nil
}

func (o *Order) Canceled() bool {
	return o.State == StateCanceled
}

// CanShip is true once the order has left checkout.
func (o *Order) CanShip() bool {
	switch o.State {
	case StateComplete, StateResumed, StateAwaitingReturn, StateReturned:
		return true
	}
	return false
}

// Paid treats overpaid orders as paid.
func (o *Order) Paid() bool {
	return o.PaymentState == PaymentStatePaid || o.PaymentState == PaymentStateCreditOwed
}

// PaymentRequired is false for free orders.
func (o *Order) PaymentRequired() bool {
	return o.Total.IsPositive()
}

// CheckoutAllowed requires at least one line item.
func (o *Order) CheckoutAllowed() bool {
	return len(o.LineItems) > 0
}

// AllowCancel holds for completed, non-canceled orders that have not shipped anything.
func (o *Order) AllowCancel() bool {
	if !o.Completed() || o.Canceled() {
		return false
	}
	switch o.ShipmentState {
	case ShipmentNone, ShipmentReady, ShipmentBackorder, ShipmentPending:
		return true
	}
	return false
}

// AllowResume requires a recorded cancellation with a known previous state.
func (o *Order) AllowResume() bool {
	if o.State != StateCanceled {
		return false
	}
	_, ok := o.StateBeforeCancel()
	return ok
}

// StateBeforeCancel looks up the previous state of the latest order-level
// transition into canceled.
func (o *Order) StateBeforeCancel() (State, bool) {
	for i := len(o.StateChanges) - 1; i >= 0; i-- {
		sc := o.StateChanges[i]
		if sc.Name != DimensionOrder || sc.NextState != string(StateCanceled) {
			continue
		}
		if sc.PreviousState == "" {
			return "", false
		}
		return State(sc.PreviousState), true
	}
	return "", false
}

// Backordered reports whether any inventory unit is waiting for stock.
func (o *Order) Backordered() bool {
	for _, u := range o.InventoryUnits {
		if u.State == UnitBackordered {
			return true
		}
	}
	return false
}

// AwaitingReturns is true while any return authorization is still authorized.
func (o *Order) AwaitingReturns() bool {
	for _, ra := range o.ReturnAuthorizations {
		if ra.State == ReturnAuthorized {
			return true
		}
	}
	return false
}

func (o *Order) ItemCount() int {
	n := 0
	for _, li := range o.LineItems {
		n += li.Quantity
	}
	return n
}

func (o *Order) OutstandingBalance() decimal.Decimal {
	return o.Total.Sub(o.PaymentTotal)
}

func (o *Order) FindLineItemByVariant(variantID string) *LineItem {
	for _, li := range o.LineItems {
		if li.VariantID == variantID {
			return li
		}
	}
	return nil
}

func (o *Order) FindLineItem(id string) *LineItem {
	for _, li := range o.LineItems {
		if li.ID == id {
			return li
		}
	}
	return nil
}

func (o *Order) Contains(variantID string) bool {
	return o.FindLineItemByVariant(variantID) != nil
}

func (o *Order) QuantityOf(variantID string) int {
	if li := o.FindLineItemByVariant(variantID); li != nil {
		return li.Quantity
	}
	return 0
}

// ShippedUnits counts shipped inventory units of a variant.
func (o *Order) ShippedUnits(variantID string) int {
	n := 0
	for _, u := range o.InventoryUnits {
		if u.VariantID == variantID && u.State == UnitShipped {
			n++
		}
	}
	return n
}

// Shipment returns the most recent shipment, or nil.
func (o *Order) Shipment() *Shipment {
	if len(o.Shipments) == 0 {
		return nil
	}
	return o.Shipments[len(o.Shipments)-1]
}

func (o *Order) FindShipment(number string) *Shipment {
	for _, s := range o.Shipments {
		if s.Number == number {
			return s
		}
	}
	return nil
}

// RemoveShipment drops the shipment, its shipping adjustment and unlinks its units.
func (o *Order) RemoveShipment(number string) {
	kept := o.Shipments[:0]
	for _, s := range o.Shipments {
		if s.Number != number {
			kept = append(kept, s)
		}
	}
	o.Shipments = kept

	adjustments := o.Adjustments[:0]
	for _, a := range o.Adjustments {
		if a.Kind == KindShipping && a.OriginatorID == number {
			continue
		}
		adjustments = append(adjustments, a)
	}
	o.Adjustments = adjustments

	for _, u := range o.InventoryUnits {
		if u.ShipmentNumber == number {
			u.ShipmentNumber = ""
		}
	}
}

func (o *Order) ShipTotal() decimal.Decimal {
	return o.adjustmentSum(KindShipping)
}

func (o *Order) TaxTotal() decimal.Decimal {
	return o.adjustmentSum(KindTax)
}

func (o *Order) adjustmentSum(kind AdjustmentKind) decimal.Decimal {
	total := decimal.Zero
	for _, a := range o.Adjustments {
		if a.Eligible && a.Kind == kind {
			total = total.Add(a.Amount)
		}
	}
	return total
}

// PriceAdjustmentTotals groups eligible promotion adjustments by label.
func (o *Order) PriceAdjustmentTotals() map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, a := range o.Adjustments {
		if a.Eligible && a.Kind == KindPromotion {
			totals[a.Label] = totals[a.Label].Add(a.Amount)
		}
	}
	return totals
}

// LockAdjustments freezes every adjustment against recomputation.
func (o *Order) LockAdjustments() {
	for _, a := range o.Adjustments {
		a.Locked = true
	}
}

// ReplaceAdjustments swaps every unlocked adjustment of kind for the given ones.
func (o *Order) ReplaceAdjustments(kind AdjustmentKind, replacements []*Adjustment) {
	kept := o.Adjustments[:0]
	for _, a := range o.Adjustments {
		if a.Kind == kind && !a.Locked {
			continue
		}
		kept = append(kept, a)
	}
	o.Adjustments = append(kept, replacements...)
}

// UseBilling copies the bill address onto the ship address.
func (o *Order) UseBilling() {
	if o.BillAddress != nil {
		o.ShipAddress = o.BillAddress.Clone()
	}
}

// RecordStateChange appends an audit entry; the log is append-only.
func (o *Order) RecordStateChange(name Dimension, previous, next string, at time.Time) {
	o.StateChanges = append(o.StateChanges, NewStateChange(name, previous, next, o.UserID, at))
}

// Validate checks the order-level invariants that hold in every state.
func (o *Order) Validate() error {
	if o.Number == "" {
		return fmt.Errorf("%w: number is required", ErrValidation)
	}
	if _, err := money.ValidateCurrency(o.Currency); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if o.State != StateCart && o.Email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	seen := make(map[string]bool, len(o.LineItems))
	for _, li := range o.LineItems {
		if seen[li.VariantID] {
			return fmt.Errorf("%w: duplicate line item for variant %s", ErrValidation, li.VariantID)
		}
		seen[li.VariantID] = true
		if err := li.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (o *Order) DisplayItemTotal() string       { return money.Format(o.ItemTotal, o.Currency) }
func (o *Order) DisplayAdjustmentTotal() string { return money.Format(o.AdjustmentTotal, o.Currency) }
func (o *Order) DisplayTotal() string           { return money.Format(o.Total, o.Currency) }
func (o *Order) DisplayShipTotal() string       { return money.Format(o.ShipTotal(), o.Currency) }
func (o *Order) DisplayTaxTotal() string        { return money.Format(o.TaxTotal(), o.Currency) }
func (o *Order) DisplayOutstandingBalance() string {
	return money.Format(o.OutstandingBalance(), o.Currency)
}
