package controller

import (
	"errors"
	"time"

	"chatstack_backend/internal/model"
	"chatstack_backend/pkg/database"
	"chatstack_backend/pkg/email"
	"chatstack_backend/pkg/logger"
	"chatstack_backend/pkg/payment"
	"chatstack_backend/pkg/plan"
	"chatstack_backend/pkg/subscription"
	"chatstack_backend/pkg/utils/jwt"
	"chatstack_backend/pkg/utils/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CreateOrderInput struct {
	Amount   int64  `json:"amount" validate:"required,gt=0"`
	Currency string `json:"currency" validate:"required,len=3"`
}

type VerifyOrderInput struct {
	OrderID           string `json:"orderId" validate:"required"`
	RazorpayPaymentID string `json:"razorpayPaymentId" validate:"required"`
	RazorpaySignature string `json:"razorpaySignature" validate:"required"`
	PlanID            uint   `json:"planId" validate:"required"`
}

func CreateOrder(c *fiber.Ctx) error {
	input := new(CreateOrderInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}
	if err := validation.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Amount and currency are required",
		})
	}

	orderID, err := payment.CreateOrder(razorClient, input.Amount, input.Currency)
	if err != nil {
		logger.Get().Error("razorpay order creation failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Unable to create order",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"orderId": orderID,
	})
}

// VerifyOrder is the sole gate between a claimed payment and a paid
// subscription. The signature check runs before anything is created; plan
// identity, credits, and price all come from the catalog, never the request.
func VerifyOrder(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := new(VerifyOrderInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}
	if err := validation.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required parameters",
		})
	}

	err := payment.VerifySignature(cfg.Razorpay.KeySecret,
		input.OrderID, input.RazorpayPaymentID, input.RazorpaySignature)
	if err != nil {
		logger.Get().Warn("payment verification failed",
			zap.Uint("user_id", claims.UserID),
			zap.String("order_id", input.OrderID))
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Invalid payment signature",
		})
	}

	db := database.GetDB()

	paidPlan, err := plan.ByID(db, input.PlanID)
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

	sub, key, err := subscription.StartPaid(db, cfg.JWT.APIKeySecret, claims.UserID, paidPlan,
		input.OrderID, &model.PaymentInfo{
			TransactionID:  input.RazorpayPaymentID,
			PaymentGateway: "razorpay",
			PaidOn:         time.Now(),
			AmountPaid:     paidPlan.Price,
		})
	if err != nil {
		logger.Get().Error("could not activate paid subscription",
			zap.Uint("user_id", claims.UserID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create subscription",
		})
	}

	if email.GlobalEmailService != nil {
		err := email.GlobalEmailService.SendSubscriptionStartedEmail(claims.Email, email.SubscriptionStartedData{
			Name:         claims.Name,
			PlanName:     paidPlan.Name,
			Duration:     paidPlan.DurationInDays,
			Price:        paidPlan.Price,
			TotalCredits: paidPlan.TotalCredits,
			ExpiresAt:    sub.SubscriptionEnd,
		})
		if err != nil {
			logger.Get().Error("could not send subscription started email",
				zap.String("email", claims.Email), zap.Error(err))
		}
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"message":      "Payment verified successfully",
		"apiKey":       key,
		"subscription": sub,
		"expiresAt":    sub.SubscriptionEnd,
	})
}
