package order

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completedOrder() *Order {
	o := newTestOrder()
	o.State = StateComplete
	now := fixedNow
	o.CompletedAt = &now
	return o
}

// ============================================
// Cancel / Resume Predicates
// ============================================

func TestOrder_AllowCancel(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *Order)
		want   bool
	}{
		{"not completed", func(o *Order) { o.CompletedAt = nil }, false},
		{"already canceled", func(o *Order) { o.State = StateCanceled }, false},
		{"no shipments", func(o *Order) {}, true},
		{"ready", func(o *Order) { o.ShipmentState = ShipmentReady }, true},
		{"pending", func(o *Order) { o.ShipmentState = ShipmentPending }, true},
		{"backorder", func(o *Order) { o.ShipmentState = ShipmentBackorder }, true},
		{"partial", func(o *Order) { o.ShipmentState = ShipmentPartial }, false},
		{"shipped", func(o *Order) { o.ShipmentState = ShipmentShipped }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := completedOrder()
			tt.mutate(o)
			assert.Equal(t, tt.want, o.AllowCancel())
		})
	}
}

func TestOrder_AllowResume(t *testing.T) {
	o := completedOrder()
	o.State = StateCanceled
	assert.False(t, o.AllowResume(), "no history")

	o.RecordStateChange(DimensionPayment, "balance_due", "paid", fixedNow)
	o.RecordStateChange(DimensionOrder, "complete", "canceled", fixedNow)
	assert.True(t, o.AllowResume())

	prev, ok := o.StateBeforeCancel()
	require.True(t, ok)
	assert.Equal(t, StateComplete, prev)
}

func TestOrder_AllowResume_UnknownPreviousState(t *testing.T) {
	o := completedOrder()
	o.State = StateCanceled
	o.RecordStateChange(DimensionOrder, "", "canceled", fixedNow)

	assert.False(t, o.AllowResume())
}

// ============================================
// Accessors
// ============================================

func TestOrder_LineItemAccessors(t *testing.T) {
	o := newTestOrder()
	o.LineItems = []*LineItem{
		NewLineItem("var-1", 2, d("3"), "USD"),
		NewLineItem("var-2", 5, d("1"), "USD"),
	}

	assert.Equal(t, 7, o.ItemCount())
	assert.True(t, o.Contains("var-2"))
	assert.False(t, o.Contains("var-3"))
	assert.Equal(t, 5, o.QuantityOf("var-2"))
	assert.Equal(t, 0, o.QuantityOf("var-3"))
	assert.True(t, o.CheckoutAllowed())

	o.RemoveLineItem(o.LineItems[0].ID)
	assert.False(t, o.Contains("var-1"))
}

func TestOrder_AdjustmentTotals(t *testing.T) {
	o := newTestOrder()
	o.Adjustments = []*Adjustment{
		NewAdjustment(KindShipping, "Shipping", d("5"), "H1"),
		NewAdjustment(KindTax, "VAT", d("1.20"), "rate"),
		NewAdjustment(KindPromotion, "Spring", d("-2"), "p1"),
		NewAdjustment(KindPromotion, "Spring", d("-1"), "p1"),
	}

	assert.True(t, d("5").Equal(o.ShipTotal()))
	assert.True(t, d("1.20").Equal(o.TaxTotal()))
	assert.True(t, d("-3").Equal(o.PriceAdjustmentTotals()["Spring"]))
	assert.Equal(t, "$5.00", o.DisplayShipTotal())
}

func TestOrder_RemoveShipmentDropsAdjustment(t *testing.T) {
	o := newTestOrder()
	s := NewShipment("ups", nil, d("5"))
	o.Shipments = []*Shipment{s}
	o.Adjustments = []*Adjustment{NewAdjustment(KindShipping, "Shipping", d("5"), s.Number)}
	o.InventoryUnits = []*InventoryUnit{{VariantID: "var-1", State: UnitSold, ShipmentNumber: s.Number}}

	o.RemoveShipment(s.Number)

	assert.Empty(t, o.Shipments)
	assert.Empty(t, o.Adjustments)
	assert.Empty(t, o.InventoryUnits[0].ShipmentNumber)
}

func TestOrder_UseBillingClones(t *testing.T) {
	o := newTestOrder()
	o.BillAddress = &Address{FirstName: "Ada", City: "Paris"}
	o.UseBilling()

	require.NotNil(t, o.ShipAddress)
	o.ShipAddress.City = "Lyon"
	assert.Equal(t, "Paris", o.BillAddress.City)
}

func TestOrder_CheckQuantityBelowShipped(t *testing.T) {
	o := completedOrder()
	li := NewLineItem("var-1", 3, d("1"), "USD")
	o.LineItems = []*LineItem{li}
	o.InventoryUnits = []*InventoryUnit{
		{VariantID: "var-1", State: UnitShipped},
		{VariantID: "var-1", State: UnitShipped},
		{VariantID: "var-1", State: UnitSold},
	}

	err := o.CheckQuantity(li, 1)
	assert.ErrorIs(t, err, ErrValidation)
	assert.NoError(t, o.CheckQuantity(li, 2))
	assert.ErrorIs(t, o.CheckQuantity(li, -1), ErrValidation)
}

// ============================================
// Validation
// ============================================

func TestOrder_Validate(t *testing.T) {
	o := newTestOrder()
	require.NoError(t, o.Validate())

	o.State = StateAddress
	assert.ErrorIs(t, o.Validate(), ErrValidation, "email required outside cart")

	o.Email = "buyer@example.com"
	o.LineItems = []*LineItem{NewLineItem("var-1", 1, d("1"), "USD"), NewLineItem("var-1", 1, d("1"), "USD")}
	assert.ErrorIs(t, o.Validate(), ErrValidation, "duplicate variant")

	o.LineItems = o.LineItems[:1]
	o.Currency = "nope"
	assert.True(t, errors.Is(o.Validate(), ErrValidation))
}

func TestAddress_Validate(t *testing.T) {
	var missing *Address
	assert.ErrorIs(t, missing.Validate(), ErrValidation)

	a := &Address{FirstName: "Ada", LastName: "Lovelace", Address1: "1 Main St", City: "London", Zipcode: "N1", Country: "GB"}
	err := a.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "phone")

	a.Phone = "555-0100"
	assert.NoError(t, a.Validate())
	assert.Equal(t, "Ada Lovelace", a.FullName())
}

func TestShipment_Transitions(t *testing.T) {
	s := NewShipment("ups", nil, d("5"))
	assert.Regexp(t, `^H\d{11}$`, s.Number)

	assert.ErrorIs(t, s.Ship(fixedNow), ErrValidation)
	require.NoError(t, s.Ready())
	require.NoError(t, s.Ship(fixedNow))
	assert.True(t, s.Shipped())
	assert.Equal(t, ShipmentShipped, s.DetermineState(newTestOrder()))
}

func TestNewNumber(t *testing.T) {
	assert.Regexp(t, `^R\d{9}$`, NewNumber())
}

func TestStateChange_IDsSortByTime(t *testing.T) {
	early := NewStateChange(DimensionOrder, "cart", "address", "", fixedNow)
	late := NewStateChange(DimensionOrder, "address", "delivery", "", fixedNow.Add(1000000000))
	assert.Less(t, early.ID, late.ID)
}
