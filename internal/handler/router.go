package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	custommiddleware "github.com/burhani/shop-system/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware магазина.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.Compress(5, "application/json", "text/html"))
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)

		r.Get("/categories", h.GetCategories)
		r.Get("/products", h.GetProducts)
		r.Get("/products/{id}", h.GetProduct)

		// Оформление заказа доступно и гостям: cookie учитывается, если есть.
		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.OptionalMiddleware)

			r.Post("/orders", h.CreateOrder)
			r.Post("/orders/whatsapp", h.CreateWhatsAppOrder)
			r.Get("/orders/{id}", h.GetOrder)

			r.Post("/orders/gateway/create", h.CreateGatewayOrder)
			r.Post("/orders/gateway/verify", h.VerifyPayment)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)

			r.Get("/orders", h.GetOrders)
			r.Put("/admin/orders/{id}/status", h.UpdateOrderStatus)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
