// Package handler exposes the storefront JSON API over chi.
package handler

import (
	"github.com/go-chi/chi/v5"

	"github.com/giftnest/storefront/internal/domain/auth"
	"github.com/giftnest/storefront/internal/domain/catalog"
	"github.com/giftnest/storefront/internal/domain/contact"
	"github.com/giftnest/storefront/internal/domain/order"
)

// Handler wires the domain services to HTTP routes.
type Handler struct {
	products catalog.Repository
	orders   *order.Service
	contacts contact.Repository
	auth     *auth.Service
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	products catalog.Repository,
	orders *order.Service,
	contacts contact.Repository,
	authSvc *auth.Service,
) *Handler {
	return &Handler{
		products: products,
		orders:   orders,
		contacts: contacts,
		auth:     authSvc,
	}
}

// Routes registers all API routes on the given router.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.listProducts)
		r.Get("/products/{id}", h.getProduct)
		r.Post("/orders", h.createOrder)
		r.Post("/contact", h.createContact)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.login)

			r.Group(func(r chi.Router) {
				r.Use(h.requireAdmin)
				r.Get("/products", h.listProducts)
				r.Post("/products", h.createProduct)
				r.Get("/orders", h.listOrders)
				r.Get("/orders/{id}", h.getOrder)
				r.Put("/orders/{id}", h.updateOrderStatus)
				r.Get("/contact", h.listContact)
			})
		})
	})
}
