package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/example/ec-checkout/internal/api/middleware"
	"github.com/example/ec-checkout/internal/auth"
	"github.com/example/ec-checkout/internal/command"
	"github.com/example/ec-checkout/internal/domain/order"
	"github.com/example/ec-checkout/internal/query"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Handlers struct {
	cmdHandler   *command.Handler
	queryHandler *query.Handler
	logger       *zap.Logger
}

func NewHandlers(cmdHandler *command.Handler, queryHandler *query.Handler, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{cmdHandler: cmdHandler, queryHandler: queryHandler, logger: logger.Named("api")}
}

// Catalog Handlers

func (h *Handlers) CreateVariant(w http.ResponseWriter, r *http.Request) {
	var cmd command.CreateVariant
	if !decode(w, r, &cmd) {
		return
	}
	variant, err := h.cmdHandler.CreateVariant(r.Context(), cmd)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, variant)
}

func (h *Handlers) GetVariant(w http.ResponseWriter, r *http.Request) {
	variant, err := h.cmdHandler.GetVariant(r.Context(), chi.URLParam(r, "variantID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, variant)
}

func (h *Handlers) SetVariantPrice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if !decode(w, r, &req) {
		return
	}
	cmd := command.SetVariantPrice{
		VariantID: chi.URLParam(r, "variantID"),
		Currency:  chi.URLParam(r, "currency"),
		Amount:    req.Amount,
	}
	if err := h.cmdHandler.SetVariantPrice(r.Context(), cmd); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) AddStock(w http.ResponseWriter, r *http.Request) {
	var cmd command.AddStock
	if !decode(w, r, &cmd) {
		return
	}
	cmd.VariantID = chi.URLParam(r, "variantID")
	if err := h.cmdHandler.AddStock(r.Context(), cmd); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.GetStock(w, r)
}

func (h *Handlers) GetStock(w http.ResponseWriter, r *http.Request) {
	variantID := chi.URLParam(r, "variantID")
	onHand, err := h.cmdHandler.OnHand(r.Context(), variantID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"variant_id": variantID, "on_hand": onHand})
}

// Order Handlers

func (h *Handlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var cmd command.CreateOrder
	if r.ContentLength != 0 && !decode(w, r, &cmd) {
		return
	}
	cmd.UserID = ""
	if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
		cmd.UserID = claims.UserID
		if cmd.Email == "" {
			cmd.Email = claims.Email
		}
	}
	o, err := h.cmdHandler.Create(r.Context(), cmd)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, o)
}

func (h *Handlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.cmdHandler.List(r.Context(), order.State(r.URL.Query().Get("state")))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.cmdHandler.Get(r.Context(), orderNumber(r))
	h.respondOrder(w, r, o, err)
}

func (h *Handlers) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	var cmd command.UpdateOrder
	if !decode(w, r, &cmd) {
		return
	}
	cmd.OrderNumber = orderNumber(r)
	o, err := h.cmdHandler.UpdateOrder(r.Context(), cmd)
	h.respondOrder(w, r, o, err)
}

func (h *Handlers) AssociateUser(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetUserFromContext(r.Context())
	cmd := command.AssociateUser{
		OrderNumber: orderNumber(r),
		UserID:      claims.UserID,
		Email:       claims.Email,
	}
	o, err := h.cmdHandler.AssociateUser(r.Context(), cmd)
	h.respondOrder(w, r, o, err)
}

func (h *Handlers) MergeOrders(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From string `json:"from"`
	}
	if !decode(w, r, &req) {
		return
	}
	from, err := h.cmdHandler.Get(r.Context(), req.From)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if !canAccess(r, from) {
		respondJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
		return
	}
	o, err := h.cmdHandler.Merge(r.Context(), command.MergeOrders{Into: orderNumber(r), From: req.From})
	h.respondOrder(w, r, o, err)
}

// Line Item Handlers

func (h *Handlers) AddLineItem(w http.ResponseWriter, r *http.Request) {
	var cmd command.AddVariant
	if !decode(w, r, &cmd) {
		return
	}
	cmd.OrderNumber = orderNumber(r)
	if cmd.Quantity == 0 {
		cmd.Quantity = 1
	}
	_, o, err := h.cmdHandler.AddVariant(r.Context(), cmd)
	h.respondOrder(w, r, o, err)
}

func (h *Handlers) UpdateLineItem(w http.ResponseWriter, r *http.Request) {
	var cmd command.UpdateLineItem
	if !decode(w, r, &cmd) {
		return
	}
	cmd.OrderNumber = orderNumber(r)
	cmd.LineItemID = chi.URLParam(r, "lineItemID")
	o, err := h.cmdHandler.UpdateLineItem(r.Context(), cmd)
	h.respondOrder(w, r, o, err)
}

func (h *Handlers) RemoveLineItem(w http.ResponseWriter, r *http.Request) {
	cmd := command.RemoveLineItem{
		OrderNumber: orderNumber(r),
		LineItemID:  chi.URLParam(r, "lineItemID"),
	}
	o, err := h.cmdHandler.RemoveLineItem(r.Context(), cmd)
	h.respondOrder(w, r, o, err)
}

func (h *Handlers) EmptyOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.cmdHandler.Empty(r.Context(), orderNumber(r))
	h.respondOrder(w, r, o, err)
}

// Checkout Handlers

func (h *Handlers) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	var cmd command.UpdateAddress
	if !decode(w, r, &cmd) {
		return
	}
	cmd.OrderNumber = orderNumber(r)
	o, err := h.cmdHandler.UpdateAddress(r.Context(), cmd)
	h.respondOrder(w, r, o, err)
}

func (h *Handlers) GetRates(w http.ResponseWriter, r *http.Request) {
	rates, err := h.cmdHandler.Rates(r.Context(), orderNumber(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rates)
}

func (h *Handlers) SetShippingMethod(w http.ResponseWriter, r *http.Request) {
	var cmd command.SetShippingMethod
	if !decode(w, r, &cmd) {
		return
	}
	cmd.OrderNumber = orderNumber(r)
	o, err := h.cmdHandler.SetShippingMethod(r.Context(), cmd)
	h.respondOrder(w, r, o, err)
}

func (h *Handlers) AddPayment(w http.ResponseWriter, r *http.Request) {
	var cmd command.AddPayment
	if !decode(w, r, &cmd) {
		return
	}
	cmd.OrderNumber = orderNumber(r)
	_, o, err := h.cmdHandler.AddPayment(r.Context(), cmd)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, o)
}

// AdvanceOrder moves the order one checkout step forward. A rejected
// transition answers 422 with the order state in the error body.
func (h *Handlers) AdvanceOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.cmdHandler.Advance(r.Context(), orderNumber(r))
	h.respondOrder(w, r, o, err)
}

func (h *Handlers) CancelOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.cmdHandler.Cancel(r.Context(), orderNumber(r))
	h.respondOrder(w, r, o, err)
}

func (h *Handlers) ResumeOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.cmdHandler.Resume(r.Context(), orderNumber(r))
	h.respondOrder(w, r, o, err)
}

// Fulfillment Handlers

func (h *Handlers) ShipShipment(w http.ResponseWriter, r *http.Request) {
	var cmd command.ShipShipment
	if r.ContentLength != 0 && !decode(w, r, &cmd) {
		return
	}
	cmd.OrderNumber = orderNumber(r)
	cmd.ShipmentNumber = chi.URLParam(r, "shipmentNumber")
	o, err := h.cmdHandler.Ship(r.Context(), cmd)
	h.respondOrder(w, r, o, err)
}

func (h *Handlers) AuthorizeReturn(w http.ResponseWriter, r *http.Request) {
	var cmd command.AuthorizeReturn
	if !decode(w, r, &cmd) {
		return
	}
	cmd.OrderNumber = orderNumber(r)
	ra, o, err := h.cmdHandler.AuthorizeReturn(r.Context(), cmd)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"return_authorization": ra, "order": o})
}

func (h *Handlers) ReceiveReturn(w http.ResponseWriter, r *http.Request) {
	var cmd command.ReceiveReturn
	if !decode(w, r, &cmd) {
		return
	}
	cmd.OrderNumber = orderNumber(r)
	cmd.RANumber = chi.URLParam(r, "raNumber")
	o, err := h.cmdHandler.ReceiveReturn(r.Context(), cmd)
	h.respondOrder(w, r, o, err)
}

// Read Model Handlers

// GetMyOrders lists the caller's order history from the projection.
func (h *Handlers) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.queryHandler.OrdersByUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) GetSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.queryHandler.Sales(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sales)
}

func (h *Handlers) GetStockReport(w http.ResponseWriter, r *http.Request) {
	level, err := h.queryHandler.StockLevel(r.Context(), chi.URLParam(r, "variantID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, level)
}

// orderAccess lets admins and the owning user reach an order. Guest orders
// are reachable by number.
func (h *Handlers) orderAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		o, err := h.cmdHandler.Get(r.Context(), orderNumber(r))
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		if !canAccess(r, o) {
			respondJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func canAccess(r *http.Request, o *order.Order) bool {
	if o.UserID == "" {
		return true
	}
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		return false
	}
	return claims.Role == auth.RoleAdmin || claims.UserID == o.UserID
}

// Helper functions

func (h *Handlers) respondOrder(w http.ResponseWriter, r *http.Request, o *order.Order, err error) {
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return false
	}
	return true
}

func orderNumber(r *http.Request) string {
	return chi.URLParam(r, "number")
}

func zapRequest(r *http.Request, err error) []zap.Field {
	return []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", chimw.GetReqID(r.Context())),
		zap.Error(err),
	}
}
