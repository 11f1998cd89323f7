package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pay-aware/pay_aware/internal/user"
)

// RegisterUserRoutes wires the unauthenticated account endpoints.
func RegisterUserRoutes(r fiber.Router, h *user.Handler, rateLimiter fiber.Handler) {
	r.Post("/users", h.Register)
	if rateLimiter != nil {
		r.Post("/users/login", rateLimiter, h.Login)
		r.Post("/users/login-with-pin", rateLimiter, h.LoginWithPin)
	} else {
		r.Post("/users/login", h.Login)
		r.Post("/users/login-with-pin", h.LoginWithPin)
	}
	r.Post("/users/forgot-password", h.ForgotPassword)
	r.Post("/users/reset-password", h.ResetPassword)
	// Landing page for the emailed reset link; bounces into the app.
	r.Get("/reset-password", h.ResetRedirect)
}

// RegisterAccountRoutes wires endpoints that require an authenticated session.
func RegisterAccountRoutes(r fiber.Router, h *user.Handler) {
	r.Get("/me", h.Profile)
	r.Put("/users/device-token", h.UpdateDeviceToken)
	r.Post("/users/pin", h.SetPin)
	r.Delete("/users/pin", h.ClearPin)
}
