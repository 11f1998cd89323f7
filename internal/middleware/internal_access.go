package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

const internalAccessHeader = "X-Internal-Access-Token"

// InternalAccess guards operational endpoints behind a shared secret. When
// no secret is configured the endpoints are disabled rather than open.
func InternalAccess(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secret == "" {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}
		provided := c.Get(internalAccessHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		return c.Next()
	}
}
