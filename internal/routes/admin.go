package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/pay-aware/pay_aware/internal/middleware"
)

// cachePrefixes lists the key families the cache-clear endpoint sweeps.
var cachePrefixes = []string{
	"subscriptions:user:*",
	"notification_sent:subscription:*",
	"idempotency:v1:*",
}

// RegisterAdminRoutes wires operational endpoints behind the internal access
// token.
func RegisterAdminRoutes(app *fiber.App, d Deps) {
	admin := app.Group("/admin", middleware.InternalAccess(d.Cfg.InternalAccessToken))

	admin.Post("/clear-cache", func(c *fiber.Ctx) error {
		if d.Cache == nil {
			return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{"error": "cache not configured"})
		}

		var deleted int64
		for _, prefix := range cachePrefixes {
			iter := d.Cache.Scan(c.UserContext(), 0, prefix, 100).Iterator()
			for iter.Next(c.UserContext()) {
				if err := d.Cache.Del(c.UserContext(), iter.Val()).Err(); err == nil {
					deleted++
				}
			}
			if err := iter.Err(); err != nil {
				d.Logger.Error("cache sweep failed", "pattern", prefix, "error", err)
				return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "cache sweep failed"})
			}
		}

		d.Logger.Info("cache cleared", "keys_deleted", deleted)
		return c.JSON(fiber.Map{"message": "cache cleared", "keys_deleted": deleted})
	})

	// Exercises the Expo path end to end without waiting for a reminder.
	admin.Post("/test-push", func(c *fiber.Ctx) error {
		var req struct {
			DeviceToken string `json:"device_token"`
			Message     string `json:"message"`
		}
		if err := c.BodyParser(&req); err != nil || req.DeviceToken == "" {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "device_token is required"})
		}
		if req.Message == "" {
			req.Message = "This is a test push notification"
		}

		if err := d.Pusher.Push(req.DeviceToken, "Test notification", req.Message); err != nil {
			d.Logger.Error("test push failed", "error", err)
			return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "failed to send notification"})
		}
		return c.JSON(fiber.Map{"message": "notification sent"})
	})
}
