package httpapi

import (
	"github.com/gofiber/fiber/v2"
)

// APIKeyRequired rejects requests whose X-API-Key header does not match the
// configured secret. The health endpoint is registered outside this guard.
func APIKeyRequired(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get("X-API-Key")
		if key == "" || key != secret {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "Unauthorized",
				"message": "Invalid or missing API key",
			})
		}
		return c.Next()
	}
}
