// Package handler exposes the POS domain over HTTP: the public menu and
// checkout endpoints, the staff order board, the admin discount surface,
// and the revenue reporting endpoints.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/buanay/pos/internal/domain/auth"
	"github.com/buanay/pos/internal/domain/catalog"
	"github.com/buanay/pos/internal/domain/discount"
	"github.com/buanay/pos/internal/domain/order"
	"github.com/buanay/pos/internal/domain/report"
)

// ReportDispatcher hands a computed report to the notification pipeline.
type ReportDispatcher interface {
	ReportReady(r *report.Report)
}

// Handler holds the domain services behind the HTTP API.
type Handler struct {
	products   catalog.Repository
	discounts  discount.AdminRepository
	validator  discount.Validator
	orders     *order.Service
	reports    *report.Service
	auth       *auth.Service
	dispatcher ReportDispatcher

	// triggerSecret guards the report dispatch endpoint, which is called
	// by an external scheduler rather than a logged-in user.
	triggerSecret []byte
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	products catalog.Repository,
	discounts discount.AdminRepository,
	validator discount.Validator,
	orders *order.Service,
	reports *report.Service,
	authService *auth.Service,
	dispatcher ReportDispatcher,
	triggerSecret []byte,
) *Handler {
	return &Handler{
		products:      products,
		discounts:     discounts,
		validator:     validator,
		orders:        orders,
		reports:       reports,
		auth:          authService,
		dispatcher:    dispatcher,
		triggerSecret: triggerSecret,
	}
}

// Routes builds the API router. Public routes serve the customer-facing
// menu and checkout; everything else requires a bearer token, with the
// admin surface further restricted by role.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.ListProducts)
		r.Get("/categories", h.ListCategories)
		r.Post("/orders", h.Checkout)
		r.Post("/discounts/validate", h.ValidateDiscount)
		r.Post("/auth/login", h.Login)
		r.Post("/reports/revenue/dispatch", h.DispatchReport)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth)

			r.Get("/orders", h.ListOrders)
			r.Get("/orders/{id}", h.GetOrder)
			r.Patch("/orders/{id}/status", h.UpdateOrderStatus)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireRole(auth.RoleAdmin))

				r.Post("/discounts", h.CreateDiscount)
				r.Get("/discounts", h.ListDiscounts)
				r.Patch("/discounts/{id}/active", h.SetDiscountActive)
				r.Get("/reports/revenue", h.GetRevenueReport)
			})
		})
	})

	return r
}

func requestActor(r *http.Request) order.Actor {
	if claims := claimsFromContext(r.Context()); claims != nil {
		return claims.Role.Actor()
	}
	return order.Actor{}
}
