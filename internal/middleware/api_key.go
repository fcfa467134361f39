package middleware

import (
	"errors"

	"chatstack_backend/pkg/apikey"
	"chatstack_backend/pkg/database"

	"github.com/gofiber/fiber/v2"
)

var apiKeySecret string

func InitAPIKeyMiddleware(secret string) {
	apiKeySecret = secret
}

// APIKeyMiddleware authenticates programmatic callers via the X-API-Key
// header and stores the resolved identity in request locals.
func APIKeyMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rawKey := c.Get("X-API-Key")
		if rawKey == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Please provide an API key",
			})
		}

		claims, err := apikey.Verify(database.GetDB(), apiKeySecret, rawKey)
		if err != nil {
			switch {
			case errors.Is(err, apikey.ErrKeyExpired):
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error": "API key has expired",
				})
			case errors.Is(err, apikey.ErrKeyMissing):
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "API key not found",
				})
			default:
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid API key",
				})
			}
		}

		c.Locals("apiUserID", claims.UserID)
		c.Locals("apiPlanType", claims.PlanType)
		return c.Next()
	}
}
