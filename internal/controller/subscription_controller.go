package controller

import (
	"errors"

	"chatstack_backend/pkg/database"
	"chatstack_backend/pkg/subscription"
	"chatstack_backend/pkg/utils/jwt"

	"github.com/gofiber/fiber/v2"
)

// GetMySubscription returns the newest active subscription, its plan, and the
// derived remaining balance.
func GetMySubscription(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	sub, err := subscription.ActiveForUser(database.GetDB(), claims.UserID)
	if err != nil {
		if errors.Is(err, subscription.ErrNoActiveSubscription) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "No active subscription found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch subscription",
		})
	}

	return c.JSON(fiber.Map{
		"subscription": sub,
		"plan":         sub.Plan,
		"credits_left": sub.CreditsLeft(),
	})
}

func CancelSubscription(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	sub, err := subscription.Cancel(database.GetDB(), claims.UserID)
	if err != nil {
		if errors.Is(err, subscription.ErrNoActiveSubscription) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "No active subscription found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not cancel subscription",
		})
	}

	return c.JSON(fiber.Map{
		"message":      "Subscription cancelled successfully",
		"subscription": sub,
	})
}
