package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pay-aware/pay_aware/internal/subscription"
)

// RegisterSubscriptionRoutes wires the subscription CRUD endpoints.
func RegisterSubscriptionRoutes(r fiber.Router, h *subscription.Handler) {
	r.Post("/subscriptions", h.Create)
	r.Get("/subscriptions", h.List)
	r.Get("/subscriptions/:id", h.Get)
	r.Put("/subscriptions/:id", h.Update)
	r.Delete("/subscriptions/:id", h.Delete)
}
