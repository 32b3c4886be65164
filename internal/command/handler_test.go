package command

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/example/ec-checkout/internal/domain/catalog"
	"github.com/example/ec-checkout/internal/domain/checkout"
	"github.com/example/ec-checkout/internal/domain/inventory"
	"github.com/example/ec-checkout/internal/domain/order"
	"github.com/example/ec-checkout/internal/domain/payment"
	"github.com/example/ec-checkout/internal/domain/shipping"
	"github.com/example/ec-checkout/internal/domain/tax"
	"github.com/example/ec-checkout/internal/infrastructure/store"
	"github.com/example/ec-checkout/internal/infrastructure/store/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type testOptions struct {
	cfg     checkout.Config
	decline bool
	docs    store.DocumentStore
	gateway payment.Gateway
	tax     tax.Engine
}

type countingGateway struct {
	calls int
}

func (g *countingGateway) Process(_ context.Context, p *order.Payment) (string, error) {
	g.calls++
	return "AUTH-" + p.ID, nil
}

type recordingTax struct {
	orders []string
}

func (r *recordingTax) Adjust(_ context.Context, o *order.Order) error {
	r.orders = append(r.orders, o.Number)
	return nil
}

func newHandlerWith(opts testOptions) (*Handler, *mocks.MockEventStore) {
	eventStore := mocks.NewMockEventStore()
	if opts.docs == nil {
		opts.docs = mocks.NewMockDocumentStore()
	}
	if opts.gateway == nil {
		opts.gateway = &payment.BogusGateway{Decline: opts.decline}
	}
	if opts.tax == nil {
		opts.tax = tax.NewRateTable()
	}

	now := func() time.Time { return fixedNow }
	methods := shipping.NewCatalog(
		shipping.Method{ID: "ups", Name: "UPS Ground", Countries: []string{"US"}, Calculator: shipping.FlatRate{Amount: decimal.NewFromInt(10)}},
		shipping.Method{ID: "pickup", Name: "Pickup", Countries: []string{"US"}, Calculator: shipping.FlatRate{Amount: decimal.Zero}},
	)
	machine := checkout.NewMachine(checkout.Deps{
		Repo:     order.NewDocumentRepository(opts.docs),
		Updater:  order.NewUpdater(opts.cfg.UpdaterConfig(now)),
		Shipping: methods,
		Rates:    shipping.NewRateEngine(methods, nil),
		Payments: payment.NewProcessor(payment.NewRegistry(
			payment.Method{ID: "card", Name: "Credit Card", Active: true, Gateway: opts.gateway},
			payment.Method{ID: "retired", Name: "Old Card", Active: false},
		), nil),
		Tax:       opts.tax,
		Inventory: inventory.NewLedger(eventStore, opts.cfg.InventoryConfig(), nil),
		Now: now,
	}, opts.cfg)

	return NewHandler(machine, catalog.NewService(eventStore), eventStore, "USD", nil), eventStore
}

func newTestHandler() (*Handler, *mocks.MockEventStore) {
	return newHandlerWith(testOptions{cfg: checkout.Config{TrackInventoryLevels: true, AllowBackorders: true}})
}

func usAddress() *order.Address {
	return &order.Address{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Address1:  "1 Main St",
		City:      "Springfield",
		Zipcode:   "12345",
		Country:   "US",
		Phone:     "555-0100",
	}
}

func createVariant(t *testing.T, h *Handler, price string, stock int) string {
	t.Helper()
	v, err := h.CreateVariant(context.Background(), CreateVariant{
		SKU:    "SKU-1",
		Name:   "Mug",
		Prices: map[string]decimal.Decimal{"USD": decimal.RequireFromString(price)},
		Stock:  stock,
	})
	require.NoError(t, err)
	return v.ID
}

func createCart(t *testing.T, h *Handler, variantID string, quantity int) *order.Order {
	t.Helper()
	ctx := context.Background()
	o, err := h.Create(ctx, CreateOrder{Email: "ada@example.com"})
	require.NoError(t, err)
	_, o, err = h.AddVariant(ctx, AddVariant{OrderNumber: o.Number, VariantID: variantID, Quantity: quantity})
	require.NoError(t, err)
	return o
}

// checkoutOrder drives a cart to complete with a card payment.
func checkoutOrder(t *testing.T, h *Handler, number string) *order.Order {
	t.Helper()
	ctx := context.Background()

	_, err := h.UpdateAddress(ctx, UpdateAddress{OrderNumber: number, BillAddress: usAddress(), UseBilling: true})
	require.NoError(t, err)
	advance(t, h, number, order.StateAddress)
	advance(t, h, number, order.StateDelivery)
	_, err = h.SetShippingMethod(ctx, SetShippingMethod{OrderNumber: number, MethodID: "ups"})
	require.NoError(t, err)
	advance(t, h, number, order.StatePayment)
	_, _, err = h.AddPayment(ctx, AddPayment{OrderNumber: number, MethodID: "card"})
	require.NoError(t, err)
	return advance(t, h, number, order.StateComplete)
}

func advance(t *testing.T, h *Handler, number string, want order.State) *order.Order {
	t.Helper()
	o, err := h.Advance(context.Background(), number)
	require.NoError(t, err)
	require.Equal(t, want, o.State)
	return o
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// ============================================
// Catalog Tests
// ============================================

func TestHandler_CreateVariant_Success(t *testing.T) {
	handler, eventStore := newTestHandler()

	variantID := createVariant(t, handler, "10", 50)

	assert.Len(t, eventStore.AppendCalls, 2)
	assert.Equal(t, catalog.EventVariantCreated, eventStore.AppendCalls[0].EventType)
	assert.Equal(t, inventory.EventStockAdded, eventStore.AppendCalls[1].EventType)
	onHand, err := handler.OnHand(context.Background(), variantID)
	require.NoError(t, err)
	assert.Equal(t, 50, onHand)
}

func TestHandler_CreateVariant_InvalidName(t *testing.T) {
	handler, _ := newTestHandler()

	v, err := handler.CreateVariant(context.Background(), CreateVariant{Name: ""})

	assert.ErrorIs(t, err, catalog.ErrInvalidName)
	assert.Nil(t, v)
}

func TestHandler_AddStock_UnknownVariant(t *testing.T) {
	handler, _ := newTestHandler()

	err := handler.AddStock(context.Background(), AddStock{VariantID: "missing", Quantity: 1})

	assert.ErrorIs(t, err, catalog.ErrVariantNotFound)
}

// ============================================
// Create Tests
// ============================================

func TestHandler_Create_Success(t *testing.T) {
	handler, eventStore := newTestHandler()

	o, err := handler.Create(context.Background(), CreateOrder{Email: "ada@example.com", UserID: "user-1"})

	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^R\d{9}$`), o.Number)
	assert.Equal(t, order.StateCart, o.State)
	assert.Equal(t, "USD", o.Currency)
	assert.Equal(t, order.PaymentStateBalanceDue, o.PaymentState)
	assert.Equal(t, []string{order.EventOrderCreated}, eventStore.EventTypes(o.Number))

	stored, err := handler.Get(context.Background(), o.Number)
	require.NoError(t, err)
	assert.Equal(t, "user-1", stored.UserID)
}

func TestHandler_Create_AdjustsTaxes(t *testing.T) {
	taxes := &recordingTax{}
	handler, _ := newHandlerWith(testOptions{tax: taxes})

	o, err := handler.Create(context.Background(), CreateOrder{})

	require.NoError(t, err)
	assert.Equal(t, []string{o.Number}, taxes.orders)
}

func TestHandler_Create_InvalidCurrency(t *testing.T) {
	handler, _ := newTestHandler()

	_, err := handler.Create(context.Background(), CreateOrder{Currency: "XYZ"})

	assert.ErrorIs(t, err, order.ErrValidation)
}

func TestHandler_Create_RetriesOnCollision(t *testing.T) {
	docs := mocks.NewMockDocumentStore()
	docs.CreateErr = store.ErrDocumentExists
	handler, _ := newHandlerWith(testOptions{docs: docs})

	_, err := handler.Create(context.Background(), CreateOrder{})

	assert.ErrorIs(t, err, order.ErrDuplicateNumber)
	assert.Len(t, docs.CreateCalls, createAttempts)
}

func TestHandler_Get_NotFound(t *testing.T) {
	handler, _ := newTestHandler()

	_, err := handler.Get(context.Background(), "R000000000")

	assert.ErrorIs(t, err, order.ErrNotFound)
}

// ============================================
// Line Item Tests
// ============================================

func TestHandler_AddVariant(t *testing.T) {
	handler, _ := newTestHandler()
	variantID := createVariant(t, handler, "10", 50)
	o := createCart(t, handler, variantID, 2)

	line, o, err := handler.AddVariant(context.Background(), AddVariant{OrderNumber: o.Number, VariantID: variantID, Quantity: 1})

	require.NoError(t, err)
	require.Len(t, o.LineItems, 1)
	assert.Equal(t, 3, line.Quantity)
	assert.True(t, d("30").Equal(o.ItemTotal))
	assert.True(t, d("30").Equal(o.Total))
	assert.Empty(t, o.InventoryUnits)
}

func TestHandler_AddVariant_Errors(t *testing.T) {
	handler, _ := newTestHandler()
	variantID := createVariant(t, handler, "10", 50)
	usd := createCart(t, handler, variantID, 1)
	eur, err := handler.Create(context.Background(), CreateOrder{Currency: "EUR"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		cmd     AddVariant
		wantErr error
	}{
		{"unknown variant", AddVariant{OrderNumber: usd.Number, VariantID: "missing", Quantity: 1}, catalog.ErrVariantNotFound},
		{"no price in currency", AddVariant{OrderNumber: eur.Number, VariantID: variantID, Quantity: 1}, catalog.ErrNoPrice},
		{"zero quantity", AddVariant{OrderNumber: usd.Number, VariantID: variantID, Quantity: 0}, order.ErrValidation},
		{"unknown order", AddVariant{OrderNumber: "R000000000", VariantID: variantID, Quantity: 1}, order.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := handler.AddVariant(context.Background(), tt.cmd)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHandler_UpdateLineItem(t *testing.T) {
	handler, _ := newTestHandler()
	variantID := createVariant(t, handler, "10", 50)
	o := createCart(t, handler, variantID, 2)
	lineID := o.LineItems[0].ID

	o, err := handler.UpdateLineItem(context.Background(), UpdateLineItem{OrderNumber: o.Number, LineItemID: lineID, Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, o.LineItems[0].Quantity)
	assert.True(t, d("50").Equal(o.Total))

	o, err = handler.UpdateLineItem(context.Background(), UpdateLineItem{OrderNumber: o.Number, LineItemID: lineID, Quantity: 0})
	require.NoError(t, err)
	assert.Empty(t, o.LineItems)
	assert.True(t, o.Total.IsZero())
}

func TestHandler_UpdateLineItem_NotFound(t *testing.T) {
	handler, _ := newTestHandler()
	variantID := createVariant(t, handler, "10", 50)
	o := createCart(t, handler, variantID, 2)

	_, err := handler.UpdateLineItem(context.Background(), UpdateLineItem{OrderNumber: o.Number, LineItemID: "nope", Quantity: 1})

	assert.ErrorIs(t, err, ErrLineItemNotFound)
}

func TestHandler_UpdateLineItem_CompletedOrderAdjustsInventory(t *testing.T) {
	handler, _ := newTestHandler()
	ctx := context.Background()
	variantID := createVariant(t, handler, "10", 50)
	o := createCart(t, handler, variantID, 2)
	o = checkoutOrder(t, handler, o.Number)
	require.Len(t, o.InventoryUnits, 2)

	o, err := handler.UpdateLineItem(ctx, UpdateLineItem{OrderNumber: o.Number, LineItemID: o.LineItems[0].ID, Quantity: 4})
	require.NoError(t, err)
	assert.Len(t, o.InventoryUnits, 4)
	onHand, err := handler.OnHand(ctx, variantID)
	require.NoError(t, err)
	assert.Equal(t, 46, onHand)

	o, err = handler.UpdateLineItem(ctx, UpdateLineItem{OrderNumber: o.Number, LineItemID: o.LineItems[0].ID, Quantity: 1})
	require.NoError(t, err)
	assert.Len(t, o.InventoryUnits, 1)
	onHand, err = handler.OnHand(ctx, variantID)
	require.NoError(t, err)
	assert.Equal(t, 49, onHand)
}

func TestHandler_Empty(t *testing.T) {
	handler, _ := newTestHandler()
	variantID := createVariant(t, handler, "10", 50)
	o := createCart(t, handler, variantID, 2)

	o, err := handler.Empty(context.Background(), o.Number)

	require.NoError(t, err)
	assert.Empty(t, o.LineItems)
	assert.Empty(t, o.Adjustments)
	assert.True(t, o.Total.IsZero())
}

// ============================================
// Merge Tests
// ============================================

func TestHandler_Merge(t *testing.T) {
	handler, eventStore := newTestHandler()
	ctx := context.Background()
	mug := createVariant(t, handler, "10", 50)
	cup := createVariant(t, handler, "4", 50)
	into := createCart(t, handler, mug, 1)
	from := createCart(t, handler, mug, 2)
	_, _, err := handler.AddVariant(ctx, AddVariant{OrderNumber: from.Number, VariantID: cup, Quantity: 1})
	require.NoError(t, err)

	merged, err := handler.Merge(ctx, MergeOrders{Into: into.Number, From: from.Number})

	require.NoError(t, err)
	require.Len(t, merged.LineItems, 2)
	assert.Equal(t, 3, merged.QuantityOf(mug))
	assert.Equal(t, 1, merged.QuantityOf(cup))
	assert.True(t, d("34").Equal(merged.Total))

	_, err = handler.Get(ctx, from.Number)
	assert.ErrorIs(t, err, order.ErrNotFound)
	assert.Contains(t, eventStore.EventTypes(into.Number), order.EventOrderMerged)
}

func TestHandler_Merge_DropsOtherCurrency(t *testing.T) {
	handler, _ := newTestHandler()
	ctx := context.Background()
	v, err := handler.CreateVariant(ctx, CreateVariant{
		Name:   "Mug",
		Prices: map[string]decimal.Decimal{"USD": d("10"), "EUR": d("9")},
	})
	require.NoError(t, err)
	into := createCart(t, handler, v.ID, 1)
	from, err := handler.Create(ctx, CreateOrder{Currency: "EUR"})
	require.NoError(t, err)
	_, _, err = handler.AddVariant(ctx, AddVariant{OrderNumber: from.Number, VariantID: v.ID, Quantity: 5})
	require.NoError(t, err)

	merged, err := handler.Merge(ctx, MergeOrders{Into: into.Number, From: from.Number})

	require.NoError(t, err)
	assert.Equal(t, 1, merged.QuantityOf(v.ID))
}

func TestHandler_Merge_IntoItself(t *testing.T) {
	handler, _ := newTestHandler()

	_, err := handler.Merge(context.Background(), MergeOrders{Into: "R000000001", From: "R000000001"})

	assert.ErrorIs(t, err, order.ErrValidation)
}

// ============================================
// Checkout Tests
// ============================================

func TestHandler_Checkout(t *testing.T) {
	handler, eventStore := newTestHandler()
	variantID := createVariant(t, handler, "10", 50)
	o := createCart(t, handler, variantID, 2)

	o = checkoutOrder(t, handler, o.Number)

	require.NotNil(t, o.CompletedAt)
	assert.True(t, d("30").Equal(o.Total))
	assert.Equal(t, order.PaymentStatePaid, o.PaymentState)
	assert.Equal(t, order.ShipmentReady, o.ShipmentState)
	assert.Equal(t, []string{order.EventOrderCreated, order.EventOrderCompleted}, eventStore.EventTypes(o.Number))

	onHand, err := handler.OnHand(context.Background(), variantID)
	require.NoError(t, err)
	assert.Equal(t, 48, onHand)
}

func TestHandler_Advance_RejectedStillSavesPayment(t *testing.T) {
	handler, _ := newHandlerWith(testOptions{decline: true})
	ctx := context.Background()
	variantID := createVariant(t, handler, "10", 0)
	o := createCart(t, handler, variantID, 1)
	_, err := handler.UpdateAddress(ctx, UpdateAddress{OrderNumber: o.Number, BillAddress: usAddress(), UseBilling: true})
	require.NoError(t, err)
	advance(t, handler, o.Number, order.StateAddress)
	advance(t, handler, o.Number, order.StateDelivery)
	advance(t, handler, o.Number, order.StatePayment)
	_, _, err = handler.AddPayment(ctx, AddPayment{OrderNumber: o.Number, MethodID: "card"})
	require.NoError(t, err)

	_, err = handler.Advance(ctx, o.Number)

	assert.ErrorIs(t, err, checkout.ErrTransitionRejected)
	stored, err := handler.Get(ctx, o.Number)
	require.NoError(t, err)
	assert.Equal(t, order.StatePayment, stored.State)
	assert.Equal(t, order.PaymentFailed, stored.Payments[0].State)
}

func TestHandler_Advance_FailedCompletionKeepsCapturedPayment(t *testing.T) {
	gateway := &countingGateway{}
	handler, eventStore := newHandlerWith(testOptions{
		cfg:     checkout.Config{TrackInventoryLevels: true, AllowBackorders: true},
		gateway: gateway,
	})
	ctx := context.Background()
	variantID := createVariant(t, handler, "10", 50)
	o := createCart(t, handler, variantID, 2)
	_, err := handler.UpdateAddress(ctx, UpdateAddress{OrderNumber: o.Number, BillAddress: usAddress(), UseBilling: true})
	require.NoError(t, err)
	advance(t, handler, o.Number, order.StateAddress)
	advance(t, handler, o.Number, order.StateDelivery)
	_, err = handler.SetShippingMethod(ctx, SetShippingMethod{OrderNumber: o.Number, MethodID: "ups"})
	require.NoError(t, err)
	advance(t, handler, o.Number, order.StatePayment)
	_, _, err = handler.AddPayment(ctx, AddPayment{OrderNumber: o.Number, MethodID: "card"})
	require.NoError(t, err)

	eventStore.FailAppend = func(_, eventType string) error {
		if eventType == inventory.EventStockSold {
			return errors.New("event store down")
		}
		return nil
	}
	_, err = handler.Advance(ctx, o.Number)

	var te *checkout.TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, order.StatePayment, te.From)
	assert.Equal(t, order.StateComplete, te.To)
	assert.Equal(t, 1, gateway.calls)

	stored, err := handler.Get(ctx, o.Number)
	require.NoError(t, err)
	assert.Equal(t, order.StatePayment, stored.State)
	assert.Nil(t, stored.CompletedAt)
	assert.Equal(t, order.PaymentCompleted, stored.Payments[0].State)
	assert.True(t, d("30").Equal(stored.PaymentTotal))
	assert.Empty(t, stored.InventoryUnits)

	eventStore.FailAppend = nil
	completed := advance(t, handler, o.Number, order.StateComplete)

	assert.Equal(t, 1, gateway.calls)
	assert.Equal(t, order.PaymentStatePaid, completed.PaymentState)
	assert.Len(t, completed.InventoryUnits, 2)
	onHand, err := handler.OnHand(ctx, variantID)
	require.NoError(t, err)
	assert.Equal(t, 48, onHand)
}

func TestHandler_SetShippingMethod_Unavailable(t *testing.T) {
	handler, _ := newTestHandler()
	variantID := createVariant(t, handler, "10", 50)
	o := createCart(t, handler, variantID, 1)
	addr := usAddress()
	addr.Country = "JP"
	_, err := handler.UpdateAddress(context.Background(), UpdateAddress{OrderNumber: o.Number, ShipAddress: addr})
	require.NoError(t, err)

	_, err = handler.SetShippingMethod(context.Background(), SetShippingMethod{OrderNumber: o.Number, MethodID: "ups"})

	assert.ErrorIs(t, err, shipping.ErrMethodNotFound)
}

func TestHandler_AddPayment_Errors(t *testing.T) {
	handler, _ := newTestHandler()
	variantID := createVariant(t, handler, "10", 50)
	o := createCart(t, handler, variantID, 1)
	zero := decimal.Zero

	_, _, err := handler.AddPayment(context.Background(), AddPayment{OrderNumber: o.Number, MethodID: "retired"})
	assert.ErrorIs(t, err, payment.ErrMethodNotFound)

	_, _, err = handler.AddPayment(context.Background(), AddPayment{OrderNumber: o.Number, MethodID: "card", Amount: &zero})
	assert.ErrorIs(t, err, order.ErrValidation)
}

func TestHandler_Rates(t *testing.T) {
	handler, _ := newTestHandler()
	variantID := createVariant(t, handler, "10", 50)
	o := createCart(t, handler, variantID, 1)
	_, err := handler.UpdateAddress(context.Background(), UpdateAddress{OrderNumber: o.Number, ShipAddress: usAddress()})
	require.NoError(t, err)

	rates, err := handler.Rates(context.Background(), o.Number)

	require.NoError(t, err)
	require.Len(t, rates, 2)
	assert.Equal(t, "pickup", rates[0].MethodID)
	assert.Equal(t, "ups", rates[1].MethodID)
}

func TestHandler_AssociateUser(t *testing.T) {
	handler, eventStore := newTestHandler()
	o, err := handler.Create(context.Background(), CreateOrder{})
	require.NoError(t, err)

	o, err = handler.AssociateUser(context.Background(), AssociateUser{OrderNumber: o.Number, UserID: "user-9", Email: "nine@example.com"})

	require.NoError(t, err)
	assert.Equal(t, "user-9", o.UserID)
	assert.Equal(t, "nine@example.com", o.Email)
	assert.Equal(t, []string{order.EventOrderCreated, order.EventOrderAssociated}, eventStore.EventTypes(o.Number))
}

// ============================================
// Cancel / Resume Tests
// ============================================

func TestHandler_CancelAndResume(t *testing.T) {
	handler, eventStore := newTestHandler()
	ctx := context.Background()
	variantID := createVariant(t, handler, "10", 50)
	o := createCart(t, handler, variantID, 2)
	o = checkoutOrder(t, handler, o.Number)

	o, err := handler.Cancel(ctx, o.Number)
	require.NoError(t, err)
	assert.Equal(t, order.StateCanceled, o.State)
	assert.Equal(t, order.PaymentStateCreditOwed, o.PaymentState)
	onHand, err := handler.OnHand(ctx, variantID)
	require.NoError(t, err)
	assert.Equal(t, 50, onHand)

	o, err = handler.Resume(ctx, o.Number)
	require.NoError(t, err)
	assert.Equal(t, order.StateComplete, o.State)
	assert.Len(t, o.InventoryUnits, 2)
	onHand, err = handler.OnHand(ctx, variantID)
	require.NoError(t, err)
	assert.Equal(t, 48, onHand)

	assert.Equal(t, []string{
		order.EventOrderCreated,
		order.EventOrderCompleted,
		order.EventOrderCanceled,
		order.EventOrderResumed,
	}, eventStore.EventTypes(o.Number))
}

func TestHandler_Cancel_Cart(t *testing.T) {
	handler, _ := newTestHandler()
	o, err := handler.Create(context.Background(), CreateOrder{})
	require.NoError(t, err)

	_, err = handler.Cancel(context.Background(), o.Number)

	assert.ErrorIs(t, err, order.ErrCannotCancel)
}

// ============================================
// Fulfillment Tests
// ============================================

func TestHandler_ShipAndReturn(t *testing.T) {
	handler, _ := newTestHandler()
	ctx := context.Background()
	variantID := createVariant(t, handler, "10", 50)
	o := createCart(t, handler, variantID, 2)
	o = checkoutOrder(t, handler, o.Number)
	shipmentNumber := o.Shipments[0].Number

	o, err := handler.Ship(ctx, ShipShipment{OrderNumber: o.Number, ShipmentNumber: shipmentNumber, Tracking: "1Z999"})
	require.NoError(t, err)
	assert.Equal(t, order.ShipmentShipped, o.ShipmentState)
	assert.Equal(t, 2, o.ShippedUnits(variantID))
	assert.Equal(t, "1Z999", o.Shipments[0].Tracking)

	_, err = handler.RemoveLineItem(ctx, RemoveLineItem{OrderNumber: o.Number, LineItemID: o.LineItems[0].ID})
	assert.ErrorIs(t, err, order.ErrValidation)
	_, err = handler.UpdateLineItem(ctx, UpdateLineItem{OrderNumber: o.Number, LineItemID: o.LineItems[0].ID, Quantity: 1})
	assert.ErrorIs(t, err, order.ErrValidation)
	_, err = handler.Cancel(ctx, o.Number)
	assert.ErrorIs(t, err, order.ErrCannotCancel)

	ra, o, err := handler.AuthorizeReturn(ctx, AuthorizeReturn{OrderNumber: o.Number, Amount: d("20")})
	require.NoError(t, err)
	assert.Equal(t, order.StateAwaitingReturn, o.State)
	assert.True(t, o.AwaitingReturns())

	o, err = handler.ReceiveReturn(ctx, ReceiveReturn{OrderNumber: o.Number, RANumber: ra.Number, Items: map[string]int{variantID: 2}})
	require.NoError(t, err)
	assert.Equal(t, order.StateReturned, o.State)
	assert.False(t, o.AwaitingReturns())
	onHand, err := handler.OnHand(ctx, variantID)
	require.NoError(t, err)
	assert.Equal(t, 50, onHand)
}

func TestHandler_Ship_NotReady(t *testing.T) {
	handler, _ := newTestHandler()
	variantID := createVariant(t, handler, "10", 50)
	o := createCart(t, handler, variantID, 1)

	_, err := handler.Ship(context.Background(), ShipShipment{OrderNumber: o.Number, ShipmentNumber: "H00000000001"})

	assert.ErrorIs(t, err, order.ErrValidation)
}

// ============================================
// Concurrency Tests
// ============================================

func TestHandler_ConcurrentAddVariant(t *testing.T) {
	handler, _ := newHandlerWith(testOptions{docs: store.NewMemoryDocumentStore()})
	variantID := createVariant(t, handler, "1", 0)
	o, err := handler.Create(context.Background(), CreateOrder{})
	require.NoError(t, err)

	const workers = 20
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := handler.AddVariant(context.Background(), AddVariant{OrderNumber: o.Number, VariantID: variantID, Quantity: 1})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := handler.Get(context.Background(), o.Number)
	require.NoError(t, err)
	assert.Equal(t, workers, stored.QuantityOf(variantID))
	assert.Zero(t, handler.locks.size())
}
