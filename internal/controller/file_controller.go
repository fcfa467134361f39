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
	"chatstack_backend/pkg/utils/storage"
	"chatstack_backend/pkg/vector"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SetActiveFileInput struct {
	Name string `json:"name" validate:"required"`
}

// activePlanID resolves the plan every metered action bills against.
func activePlanID(db *gorm.DB, userID uint) (uint, error) {
	var user model.User
	if err := db.First(&user, userID).Error; err != nil {
		return 0, err
	}
	if user.ActivePlanID == nil {
		return 0, credits.ErrNoActiveSubscription
	}
	return *user.ActivePlanID, nil
}

// creditError translates metering failures to HTTP responses. Insufficient
// balance is a business rejection, not a client mistake.
func creditError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, credits.ErrInsufficientCredits):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not enough credits",
		})
	case errors.Is(err, credits.ErrNoActiveSubscription):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No active subscription found",
		})
	case errors.Is(err, credits.ErrInvalidRequest):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request",
		})
	case errors.Is(err, credits.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Concurrent update, please retry",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not process credits",
		})
	}
}

// UploadFile meters a pdf_upload unit, then stores the payload and records
// the file. The deduction strictly precedes the storage write; a rejected
// balance never uploads anything.
func UploadFile(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file uploaded",
		})
	}

	contentType := file.Header.Get("Content-Type")
	if contentType != "application/pdf" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Only PDF files are allowed",
		})
	}
	if file.Size > storage.MaxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File size too large. Maximum size is 10MB",
		})
	}

	db := database.GetDB()

	planID, err := activePlanID(db, claims.UserID)
	if err != nil {
		return creditError(c, err)
	}

	cost, err := plan.UnitCost(db, planID, model.FeaturePDFUpload)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not resolve feature cost",
		})
	}

	remaining, err := credits.AuthorizeAndDeduct(db, claims.UserID, planID, cost)
	if err != nil {
		return creditError(c, err)
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not read uploaded file",
		})
	}
	defer src.Close()

	locator, err := fileStore.Store(c.Context(), claims.UserID, file.Filename, src, contentType)
	if err != nil {
		logger.Get().Error("file storage failed", zap.Error(err))
		if cfg.Credits.RefundOnFailure {
			if rerr := credits.Refund(db, claims.UserID, planID, cost); rerr != nil {
				logger.Get().Error("credit refund failed", zap.Error(rerr))
			}
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Could not store file",
		})
	}

	saved, err := resources.AddFile(db, claims.UserID, file.Filename, locator, contentType)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save file record",
		})
	}

	return c.JSON(fiber.Map{
		"message":           "File uploaded successfully",
		"file":              saved,
		"remaining_credits": remaining,
	})
}

func ListFiles(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	files, err := resources.ListFiles(database.GetDB(), claims.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch files",
		})
	}
	return c.JSON(fiber.Map{"files": files})
}

func SetActiveFile(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := new(SetActiveFileInput)
	if err := c.BodyParser(input); err != nil || input.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Please provide a file name",
		})
	}

	if err := resources.SetActiveFile(database.GetDB(), claims.UserID, input.Name); err != nil {
		if errors.Is(err, resources.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "File not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not mark file as active",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "File marked as active",
	})
}

// DeleteFile removes the stored payload and the record together. The vector
// collection for the file is dropped best-effort afterwards.
func DeleteFile(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)
	name := c.Params("name")

	err := resources.DeleteFile(c.Context(), database.GetDB(), fileStore, claims.UserID, name)
	if err != nil {
		if errors.Is(err, resources.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "File not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete file",
		})
	}

	if vectors != nil {
		if err := vectors.Drop(c.Context(), vector.CollectionName("file", name)); err != nil {
			logger.Get().Warn("could not drop vector collection",
				zap.String("file", name), zap.Error(err))
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "File deleted successfully",
	})
}
