// Package subscription owns the subscription state machine: creation at
// signup or verified payment, the time-triggered expiry sweep, and explicit
// cancellation. States only move active -> expired or active -> cancelled.
package subscription

import (
	"encoding/json"
	"errors"
	"time"

	"chatstack_backend/internal/model"
	"chatstack_backend/pkg/apikey"
	"chatstack_backend/pkg/plan"

	"gorm.io/gorm"
)

var ErrNoActiveSubscription = errors.New("no active subscription found")

// Start creates a subscription under the given plan, copying the credit
// allotment from the catalog at creation time. A still-active subscription
// for the same (user, plan) is expired first so history is preserved and the
// partial unique index holds. The user's active plan pointer is updated in
// the same transaction.
func Start(db *gorm.DB, userID uint, p *model.Plan, payment *model.PaymentInfo) (*model.Subscription, error) {
	now := time.Now()
	end := now.AddDate(0, 0, p.DurationInDays)

	sub := model.Subscription{
		UserID:            userID,
		PlanID:            p.ID,
		SubscriptionStart: now,
		SubscriptionEnd:   end,
		TotalCredits:      p.TotalCredits,
		CreditsUsed:       0,
		Status:            model.SubscriptionActive,
	}

	if payment != nil {
		raw, err := json.Marshal(payment)
		if err != nil {
			return nil, err
		}
		sub.PaymentInfo = raw
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Subscription{}).
			Where("user_id = ? AND plan_id = ? AND status = ?",
				userID, p.ID, model.SubscriptionActive).
			Update("status", model.SubscriptionExpired).Error; err != nil {
			return err
		}

		if err := tx.Create(&sub).Error; err != nil {
			return err
		}

		return tx.Model(&model.User{}).Where("id = ?", userID).
			Updates(map[string]interface{}{
				"active_plan_id":  p.ID,
				"plan_expires_at": end,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// StartPaid creates the subscription and issues the plan-scoped API key in
// one transaction. A failure in either leaves no trace of the other, so a
// user can never hold a live key without the subscription it was paid for.
func StartPaid(db *gorm.DB, keySecret string, userID uint, p *model.Plan, orderID string, payment *model.PaymentInfo) (*model.Subscription, *model.APIKey, error) {
	var sub *model.Subscription
	var key *model.APIKey

	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		sub, err = Start(tx, userID, p, payment)
		if err != nil {
			return err
		}

		ttl := time.Duration(p.DurationInDays) * 24 * time.Hour
		key, err = apikey.Issue(tx, keySecret, userID, p.Name, orderID, ttl)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return sub, key, nil
}

// StartFree activates the free tier for a new account.
func StartFree(db *gorm.DB, userID uint) (*model.Subscription, error) {
	freePlan, err := plan.ByName(db, model.PlanFree)
	if err != nil {
		return nil, err
	}
	return Start(db, userID, freePlan, nil)
}

// Cancel flips the user's newest active subscription to cancelled.
func Cancel(db *gorm.DB, userID uint) (*model.Subscription, error) {
	sub, err := ActiveForUser(db, userID)
	if err != nil {
		return nil, err
	}
	if err := db.Model(sub).Update("status", model.SubscriptionCancelled).Error; err != nil {
		return nil, err
	}
	return sub, nil
}

// ActiveForUser returns the user's most recently started active subscription
// with its plan preloaded.
func ActiveForUser(db *gorm.DB, userID uint) (*model.Subscription, error) {
	var sub model.Subscription
	err := db.Where("user_id = ? AND status = ?", userID, model.SubscriptionActive).
		Order("subscription_start DESC").
		Preload("Plan").
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoActiveSubscription
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ExpireOverdue transitions every active subscription whose end has passed to
// expired and reports how many rows changed. Re-running it is a no-op, and it
// never touches credits_used.
func ExpireOverdue(db *gorm.DB) (int64, error) {
	res := db.Model(&model.Subscription{}).
		Where("status = ? AND subscription_end < ?", model.SubscriptionActive, time.Now()).
		Update("status", model.SubscriptionExpired)
	return res.RowsAffected, res.Error
}
