package controller

import (
	"errors"

	"chatstack_backend/internal/model"
	"chatstack_backend/pkg/credits"
	"chatstack_backend/pkg/database"
	"chatstack_backend/pkg/logger"
	"chatstack_backend/pkg/plan"
	"chatstack_backend/pkg/resources"
	"chatstack_backend/pkg/utils/jwt"
	"chatstack_backend/pkg/utils/validation"
	"chatstack_backend/pkg/vector"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type URLInput struct {
	URL string `json:"url" validate:"required,url"`
}

// UploadURL meters a url_upload unit and records the page in the user's
// collection. Like file upload, the deduction comes first.
func UploadURL(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := new(URLInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}
	if err := validation.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Please provide a valid URL",
		})
	}

	db := database.GetDB()

	planID, err := activePlanID(db, claims.UserID)
	if err != nil {
		return creditError(c, err)
	}

	cost, err := plan.UnitCost(db, planID, model.FeatureURLUpload)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not resolve feature cost",
		})
	}

	remaining, err := credits.AuthorizeAndDeduct(db, claims.UserID, planID, cost)
	if err != nil {
		return creditError(c, err)
	}

	entry, err := resources.AddURL(db, claims.UserID, input.URL)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not upload URL",
		})
	}

	return c.JSON(fiber.Map{
		"success":           true,
		"message":           "URL uploaded successfully",
		"url":               entry,
		"remaining_credits": remaining,
	})
}

func ListURLs(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	urls, err := resources.ListURLs(database.GetDB(), claims.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch URLs",
		})
	}
	return c.JSON(fiber.Map{"urls": urls})
}

func SetActiveURL(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := new(URLInput)
	if err := c.BodyParser(input); err != nil || input.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Please provide a URL",
		})
	}

	if err := resources.SetActiveURL(database.GetDB(), claims.UserID, input.URL); err != nil {
		if errors.Is(err, resources.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "URL not found in user's website URLs",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not mark URL as active",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "URL marked as active",
	})
}

func DeleteURL(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := new(URLInput)
	if err := c.BodyParser(input); err != nil || input.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Please provide a URL",
		})
	}

	if err := resources.DeleteURL(database.GetDB(), claims.UserID, input.URL); err != nil {
		if errors.Is(err, resources.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "URL not found in user's list",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete URL",
		})
	}

	if vectors != nil {
		if err := vectors.Drop(c.Context(), vector.CollectionName("url", input.URL)); err != nil {
			logger.Get().Warn("could not drop vector collection",
				zap.String("url", input.URL), zap.Error(err))
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "URL deleted successfully",
	})
}
