package notification

import (
	"context"
	"encoding/json"

	"github.com/example/ec-checkout/internal/domain/catalog"
	"github.com/example/ec-checkout/internal/email"
	"github.com/example/ec-checkout/internal/infrastructure/store"
	"go.uber.org/zap"
)

// Mailer sends customer mail
type Mailer interface {
	SendOrderConfirmation(to string, o email.Order) error
	SendOrderCancellation(to string, o email.Order) error
}

// VariantLookup resolves variant names for mail
type VariantLookup interface {
	Get(ctx context.Context, variantID string) (*catalog.Variant, error)
}

// Handler processes notification request events from Kafka
type Handler struct {
	mailer   Mailer
	variants VariantLookup
	logger   *zap.Logger
}

// NewHandler creates a new notification handler; variants may be nil
func NewHandler(mailer Mailer, variants VariantLookup, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{mailer: mailer, variants: variants, logger: logger.Named("notifier")}
}

// HandleEvent processes an event from Kafka
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var event store.Event
	if err := json.Unmarshal(value, &event); err != nil {
		h.logger.Error("failed to unmarshal event", zap.Error(err))
		return err
	}

	switch event.EventType {
	case EventConfirmationRequested, EventCancellationRequested:
	default:
		return nil
	}

	var req Requested
	if err := json.Unmarshal(event.Data, &req); err != nil {
		h.logger.Error("failed to unmarshal request",
			zap.String("event", event.EventType),
			zap.Error(err),
		)
		return err
	}

	msg := h.mailView(ctx, req)
	var err error
	if event.EventType == EventConfirmationRequested {
		err = h.mailer.SendOrderConfirmation(req.Email, msg)
	} else {
		err = h.mailer.SendOrderCancellation(req.Email, msg)
	}
	if err != nil {
		h.logger.Error("failed to send email",
			zap.String("order", req.OrderNumber),
			zap.String("to", req.Email),
			zap.Error(err),
		)
		return err
	}

	h.logger.Info("email sent",
		zap.String("order", req.OrderNumber),
		zap.String("event", event.EventType),
	)
	return nil
}

func (h *Handler) mailView(ctx context.Context, req Requested) email.Order {
	items := make([]email.OrderItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = email.OrderItem{
			VariantID: it.VariantID,
			Name:      h.variantName(ctx, it.VariantID),
			Quantity:  it.Quantity,
			Price:     it.Price,
			Amount:    it.Amount,
		}
	}
	return email.Order{
		Number:    req.OrderNumber,
		Items:     items,
		ItemTotal: req.ItemTotal,
		ShipTotal: req.ShipTotal,
		TaxTotal:  req.TaxTotal,
		Total:     req.Total,
	}
}

func (h *Handler) variantName(ctx context.Context, variantID string) string {
	if h.variants == nil {
		return ""
	}
	v, err := h.variants.Get(ctx, variantID)
	if err != nil {
		h.logger.Debug("variant name unavailable", zap.String("variant", variantID), zap.Error(err))
		return ""
	}
	return v.Name
}
