package cron

import (
	"time"

	"chatstack_backend/internal/model"
	"chatstack_backend/pkg/apikey"
	"chatstack_backend/pkg/database"
	"chatstack_backend/pkg/email"
	"chatstack_backend/pkg/logger"
	"chatstack_backend/pkg/subscription"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func InitSubscriptionExpiryCron() {
	c := cron.New()

	_, err := c.AddFunc("0 9 * * *", func() {
		runExpirySweep()
		sendExpiryWarnings()
	})

	if err != nil {
		logger.Get().Error("could not initialize subscription expiry cron", zap.Error(err))
		return
	}

	c.Start()
}

// runExpirySweep is the only bulk mutation outside per-request metering. It
// is safe to run repeatedly.
func runExpirySweep() {
	db := database.GetDB()

	expired, err := subscription.ExpireOverdue(db)
	if err != nil {
		logger.Get().Error("expiry sweep failed", zap.Error(err))
		return
	}
	logger.Get().Info("expiry sweep complete", zap.Int64("expired", expired))

	swept, err := apikey.SweepExpired(db)
	if err != nil {
		logger.Get().Error("api key sweep failed", zap.Error(err))
		return
	}
	if swept > 0 {
		logger.Get().Info("expired api keys removed", zap.Int64("count", swept))
	}
}

func sendExpiryWarnings() {
	if email.GlobalEmailService == nil {
		return
	}

	db := database.GetDB()
	warningDays := []int{7, 3}

	for _, days := range warningDays {
		windowStart := time.Now().AddDate(0, 0, days).Truncate(24 * time.Hour)
		windowEnd := windowStart.Add(24 * time.Hour)

		var subs []model.Subscription
		err := db.Where("status = ? AND subscription_end >= ? AND subscription_end < ?",
			model.SubscriptionActive, windowStart, windowEnd).
			Preload("User").
			Preload("Plan").
			Find(&subs).Error
		if err != nil {
			logger.Get().Error("could not fetch expiring subscriptions", zap.Error(err))
			continue
		}

		for _, sub := range subs {
			err := email.GlobalEmailService.SendSubscriptionExpiryWarning(sub.User.Email, email.ExpiryWarningData{
				Name:       sub.User.Name,
				PlanName:   sub.Plan.Name,
				DaysLeft:   days,
				ExpiryDate: sub.SubscriptionEnd,
			})
			if err != nil {
				logger.Get().Error("could not send expiry warning",
					zap.String("email", sub.User.Email), zap.Error(err))
			}
		}
	}
}
