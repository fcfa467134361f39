package controller

import (
	"errors"
	"strconv"

	"chatstack_backend/internal/model"
	"chatstack_backend/pkg/database"
	"chatstack_backend/pkg/plan"
	"chatstack_backend/pkg/utils/jwt"

	"github.com/gofiber/fiber/v2"
)

func ListPlans(c *fiber.Ctx) error {
	var plans []model.Plan
	if err := database.GetDB().Preload("Features").Find(&plans).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch plans",
		})
	}
	return c.JSON(plans)
}

func GetPlan(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Please provide a valid plan id",
		})
	}

	p, err := plan.ByID(database.GetDB(), uint(id))
	if err != nil {
		if errors.Is(err, plan.ErrPlanNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Plan not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch plan",
		})
	}
	return c.JSON(p)
}

// GetMyPlan returns the authenticated user's active plan.
func GetMyPlan(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var user model.User
	if err := database.GetDB().Preload("ActivePlan.Features").First(&user, claims.UserID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}
	if user.ActivePlan == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No active plan found",
		})
	}

	return c.JSON(fiber.Map{
		"plan":            user.ActivePlan,
		"plan_expires_at": user.PlanExpiresAt,
	})
}
