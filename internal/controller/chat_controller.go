package controller

import (
	"errors"
	"fmt"

	"chatstack_backend/internal/model"
	"chatstack_backend/pkg/apikey"
	"chatstack_backend/pkg/credits"
	"chatstack_backend/pkg/database"
	"chatstack_backend/pkg/logger"
	"chatstack_backend/pkg/plan"
	"chatstack_backend/pkg/resources"
	"chatstack_backend/pkg/utils/jwt"
	"chatstack_backend/pkg/utils/pdfext"
	"chatstack_backend/pkg/utils/scrape"
	"chatstack_backend/pkg/vector"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type QueryInput struct {
	Prompt string `json:"prompt" validate:"required"`
}

type VerifyKeyInput struct {
	APIKey string `json:"apiKey" validate:"required"`
}

// QueryAI answers a question against the caller's active resource. The
// credit deduction happens after the active resource is resolved but before
// the embedding/search/completion pipeline runs, so a rejected check never
// costs an external call.
func QueryAI(c *fiber.Ctx) error {
	userID := c.Locals("apiUserID").(uint)

	input := new(QueryInput)
	if err := c.BodyParser(input); err != nil || input.Prompt == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Please provide a prompt",
		})
	}

	db := database.GetDB()

	// Resolve which resource will provide context before billing; having
	// none is a precondition failure, not a billable attempt. Only the
	// database is touched here.
	activeFile, fileErr := resources.ActiveFile(db, userID)
	var activeURL *model.WebsiteURL
	if fileErr != nil {
		var urlErr error
		activeURL, urlErr = resources.ActiveURL(db, userID)
		if urlErr != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "No active file or URL found",
			})
		}
	}

	planID, err := activePlanID(db, userID)
	if err != nil {
		return creditError(c, err)
	}

	cost, err := plan.UnitCost(db, planID, model.FeatureAIMessage)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not resolve feature cost",
		})
	}

	remaining, err := credits.AuthorizeAndDeduct(db, userID, planID, cost)
	if err != nil {
		return creditError(c, err)
	}

	// Everything from here on is external work already paid for. The refund
	// policy decides whether a failure gives the credits back.
	answer, err := answerFromResource(c, activeFile, activeURL, input.Prompt)
	if err != nil {
		logger.Get().Error("retrieval pipeline failed",
			zap.Uint("user_id", userID), zap.Error(err))
		if cfg.Credits.RefundOnFailure {
			if rerr := credits.Refund(db, userID, planID, cost); rerr != nil {
				logger.Get().Error("credit refund failed", zap.Error(rerr))
			}
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Something went wrong answering the question",
		})
	}

	return c.JSON(fiber.Map{
		"reply":             answer,
		"remaining_credits": remaining,
	})
}

// answerFromResource loads the active resource's text and runs the
// chunk-embed-store-retrieve-answer pipeline over it.
func answerFromResource(c *fiber.Ctx, file *model.File, url *model.WebsiteURL, prompt string) (string, error) {
	ctx := c.Context()

	if file != nil {
		data, err := fileStore.Fetch(ctx, file.URL)
		if err != nil {
			return "", fmt.Errorf("active file payload not found: %w", err)
		}
		text, err := pdfext.ExtractText(data)
		if err != nil {
			return "", fmt.Errorf("could not extract text from %s: %w", file.Name, err)
		}
		return rag.Answer(ctx, vector.CollectionName("file", file.Name), text, prompt)
	}

	text, err := scrape.Website(ctx, url.URL)
	if err != nil {
		return "", fmt.Errorf("could not fetch %s: %w", url.URL, err)
	}
	return rag.Answer(ctx, vector.CollectionName("url", url.URL), text, prompt)
}

// VerifyAPIKey lets integrators check a key without consuming credits.
func VerifyAPIKey(c *fiber.Ctx) error {
	input := new(VerifyKeyInput)
	if err := c.BodyParser(input); err != nil || input.APIKey == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Please provide an API key",
		})
	}

	claims, err := apikey.Verify(database.GetDB(), cfg.JWT.APIKeySecret, input.APIKey)
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

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"userId":   claims.UserID,
			"planType": claims.PlanType,
			"orderId":  claims.OrderID,
		},
	})
}

// ListAPIKeys returns the authenticated user's own keys only.
func ListAPIKeys(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	keys, err := apikey.ListForUser(database.GetDB(), claims.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch API keys",
		})
	}
	return c.JSON(fiber.Map{"keys": keys})
}
