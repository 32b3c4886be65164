package order

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"
)

// Shipment groups inventory units for one fulfillment: pending -> ready -> shipped.
type Shipment struct {
	Number           string          `json:"number"`
	State            ShipmentState   `json:"state"`
	ShippingMethodID string          `json:"shipping_method_id"`
	Address          *Address        `json:"address,omitempty"`
	Cost             decimal.Decimal `json:"cost"`
	Tracking         string          `json:"tracking,omitempty"`
	ShippedAt        *time.Time      `json:"shipped_at,omitempty"`
}

// NewShipment returns a pending shipment with an "H" + 11 digit number.
func NewShipment(methodID string, address *Address, cost decimal.Decimal) *Shipment {
	return &Shipment{
		Number:           fmt.Sprintf("H%011d", rand.Int64N(1e11)),
		State:            ShipmentPending,
		ShippingMethodID: methodID,
		Address:          address.Clone(),
		Cost:             cost,
	}
}

// Ready moves a pending shipment to ready.
func (s *Shipment) Ready() error {
	if s.State != ShipmentPending {
		return fmt.Errorf("%w: shipment %s is %s, cannot become ready", ErrValidation, s.Number, s.State)
	}
	s.State = ShipmentReady
	return nil
}

// Ship moves a ready shipment to shipped.
func (s *Shipment) Ship(at time.Time) error {
	if s.State != ShipmentReady {
		return fmt.Errorf("%w: shipment %s is %s, cannot ship", ErrValidation, s.Number, s.State)
	}
	s.State = ShipmentShipped
	s.ShippedAt = &at
	return nil
}

func (s *Shipment) Shipped() bool {
	return s.State == ShipmentShipped
}

// DetermineState derives the shipment state from its order: shipped stays
// shipped, nothing ships before checkout finishes or while units are
// backordered, and paid orders are ready.
func (s *Shipment) DetermineState(o *Order) ShipmentState {
	if s.State == ShipmentShipped {
		return ShipmentShipped
	}
	if !o.CanShip() {
		return ShipmentPending
	}
	for _, u := range o.InventoryUnits {
		if u.ShipmentNumber == s.Number && u.State == UnitBackordered {
			return ShipmentPending
		}
	}
	if o.Paid() {
		return ShipmentReady
	}
	return ShipmentPending
}

// Update derives the shipment's state and reconciles its shipping adjustment.
// It reports whether the adjustment changed.
func (s *Shipment) Update(o *Order) bool {
	s.State = s.DetermineState(o)
	return s.reconcileAdjustment(o)
}

func (s *Shipment) reconcileAdjustment(o *Order) bool {
	for _, a := range o.Adjustments {
		if a.Kind != KindShipping || a.OriginatorID != s.Number {
			continue
		}
		if a.Locked || a.Amount.Equal(s.Cost) {
			return false
		}
		a.Amount = s.Cost
		return true
	}
	o.Adjustments = append(o.Adjustments, NewAdjustment(KindShipping, "Shipping", s.Cost, s.Number))
	return true
}
