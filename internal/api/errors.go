package api

import (
	"errors"
	"net/http"

	"github.com/example/ec-checkout/internal/command"
	"github.com/example/ec-checkout/internal/domain/catalog"
	"github.com/example/ec-checkout/internal/domain/checkout"
	"github.com/example/ec-checkout/internal/domain/inventory"
	"github.com/example/ec-checkout/internal/domain/money"
	"github.com/example/ec-checkout/internal/domain/order"
	"github.com/example/ec-checkout/internal/domain/payment"
	"github.com/example/ec-checkout/internal/domain/shipping"
	"github.com/example/ec-checkout/internal/infrastructure/store"
	"github.com/example/ec-checkout/internal/query"
)

var errStatuses = []struct {
	target error
	status int
}{
	{order.ErrNotFound, http.StatusNotFound},
	{command.ErrLineItemNotFound, http.StatusNotFound},
	{catalog.ErrVariantNotFound, http.StatusNotFound},
	{shipping.ErrMethodNotFound, http.StatusNotFound},
	{payment.ErrMethodNotFound, http.StatusNotFound},
	{query.ErrStockLevelNotFound, http.StatusNotFound},
	{order.ErrDuplicateNumber, http.StatusConflict},
	{store.ErrVersionConflict, http.StatusConflict},
	{store.ErrDocumentExists, http.StatusConflict},
	{checkout.ErrTransitionRejected, http.StatusUnprocessableEntity},
	{order.ErrValidation, http.StatusUnprocessableEntity},
	{order.ErrCannotCancel, http.StatusUnprocessableEntity},
	{order.ErrCannotResume, http.StatusUnprocessableEntity},
	{catalog.ErrNoPrice, http.StatusUnprocessableEntity},
	{catalog.ErrInvalidPrice, http.StatusBadRequest},
	{catalog.ErrInvalidName, http.StatusBadRequest},
	{inventory.ErrInvalidQuantity, http.StatusBadRequest},
	{money.ErrInvalidCurrency, http.StatusBadRequest},
}

// statusFor maps domain errors onto HTTP statuses; a rejected transition is
// checked before its wrapped cause.
func statusFor(err error) int {
	for _, e := range errStatuses {
		if errors.Is(err, e.target) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

type errorResponse struct {
	Error  string `json:"error"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func (h *Handlers) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorResponse{Error: err.Error()}

	var te *checkout.TransitionError
	if errors.As(err, &te) {
		body.From = string(te.From)
		body.To = string(te.To)
		body.Reason = te.Reason
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zapRequest(r, err)...)
		body.Error = "internal error"
	}
	respondJSON(w, status, body)
}
