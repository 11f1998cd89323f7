package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/pay-aware/pay_aware/internal/config"
	"github.com/pay-aware/pay_aware/internal/token"
)

// expiredTokenMessage is the exact body the mobile client matches on to
// distinguish an expired session from other auth failures. Do not change it
// without a coordinated client release.
const expiredTokenMessage = "Token has expired"

// JWTAuth validates the bearer token and stores the user id in request
// locals.
func JWTAuth(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "missing bearer token"})
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])

		userID, err := token.Verify(tokenStr, []byte(cfg.JWTSecret))
		if err != nil {
			if errors.Is(err, token.ErrExpired) {
				return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": expiredTokenMessage})
			}
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}
