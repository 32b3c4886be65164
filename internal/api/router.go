package api

import (
	"net/http"

	"github.com/example/ec-checkout/internal/api/middleware"
	"github.com/example/ec-checkout/internal/auth"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Handlers      *Handlers
	Authenticator middleware.Authenticator
	Logger        *zap.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	h := cfg.Handlers
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.OptionalAuthMiddleware(cfg.Authenticator))
	r.Use(middleware.RequestLogger(cfg.Logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Catalog
	r.Get("/variants/{variantID}", h.GetVariant)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(auth.RoleAdmin))
		r.Post("/variants", h.CreateVariant)
		r.Put("/variants/{variantID}/prices/{currency}", h.SetVariantPrice)
		r.Post("/variants/{variantID}/stock", h.AddStock)
		r.Get("/variants/{variantID}/stock", h.GetStock)
	})

	// Read models
	r.With(middleware.AuthMiddleware(cfg.Authenticator)).Get("/me/orders", h.GetMyOrders)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(auth.RoleAdmin))
		r.Get("/reports/sales", h.GetSales)
		r.Get("/reports/stock/{variantID}", h.GetStockReport)
	})

	// Orders
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.CreateOrder)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Get("/", h.ListOrders)

		r.Route("/{number}", func(r chi.Router) {
			r.Use(h.orderAccess)

			r.Get("/", h.GetOrder)
			r.Patch("/", h.UpdateOrder)
			r.With(middleware.AuthMiddleware(cfg.Authenticator)).Post("/associate", h.AssociateUser)
			r.Post("/merge", h.MergeOrders)

			r.Post("/line_items", h.AddLineItem)
			r.Delete("/line_items", h.EmptyOrder)
			r.Patch("/line_items/{lineItemID}", h.UpdateLineItem)
			r.Delete("/line_items/{lineItemID}", h.RemoveLineItem)

			r.Put("/address", h.UpdateAddress)
			r.Get("/rates", h.GetRates)
			r.Put("/shipping_method", h.SetShippingMethod)
			r.Post("/payments", h.AddPayment)
			r.Post("/next", h.AdvanceOrder)
			r.Post("/cancel", h.CancelOrder)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(auth.RoleAdmin))
				r.Post("/resume", h.ResumeOrder)
				r.Post("/shipments/{shipmentNumber}/ship", h.ShipShipment)
				r.Post("/returns", h.AuthorizeReturn)
				r.Post("/returns/{raNumber}/receive", h.ReceiveReturn)
			})
		})
	})

	return r
}
