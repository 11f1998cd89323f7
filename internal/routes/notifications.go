package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pay-aware/pay_aware/internal/notifier"
)

// RegisterNotificationRoutes wires the notification history endpoints.
func RegisterNotificationRoutes(r fiber.Router, h *notifier.Handler) {
	r.Get("/notifications", h.List)
	r.Post("/notifications/:id/read", h.MarkRead)
}
