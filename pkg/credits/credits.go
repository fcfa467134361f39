// Package credits gates every credit-consuming action behind a balance check
// and records the consumption in the same statement, so two concurrent
// requests can never both spend the last unit.
package credits

import (
	"errors"

	"chatstack_backend/internal/model"

	"gorm.io/gorm"
)

var (
	ErrInvalidRequest       = errors.New("invalid metering request")
	ErrNoActiveSubscription = errors.New("no active subscription found")
	ErrInsufficientCredits  = errors.New("not enough credits")
	ErrConflict             = errors.New("concurrent credit update, retry")
)

// AuthorizeAndDeduct charges unitCost credits against the user's active
// subscription for the given plan and returns the remaining balance. The
// balance check and the increment run as one guarded UPDATE; zero rows
// affected means the guard failed, and the row is re-read to tell why.
//
// Callers must invoke this before performing the billed side effect (storage
// write, external call); a failure here means the action must not happen.
func AuthorizeAndDeduct(db *gorm.DB, userID, planID uint, unitCost int64) (int64, error) {
	if planID == 0 || unitCost < 0 {
		return 0, ErrInvalidRequest
	}

	sub, err := activeSubscription(db, userID, planID)
	if err != nil {
		return 0, err
	}

	res := db.Model(&model.Subscription{}).
		Where("id = ? AND status = ? AND credits_used + ? <= total_credits",
			sub.ID, model.SubscriptionActive, unitCost).
		UpdateColumn("credits_used", gorm.Expr("credits_used + ?", unitCost))
	if res.Error != nil {
		return 0, res.Error
	}

	if res.RowsAffected == 0 {
		// The guard rejected the update: either the balance was short, or the
		// subscription changed state between the lookup and the update.
		var current model.Subscription
		if err := db.First(&current, sub.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, ErrNoActiveSubscription
			}
			return 0, err
		}
		if current.Status != model.SubscriptionActive {
			return 0, ErrNoActiveSubscription
		}
		if current.CreditsLeft() < unitCost {
			return 0, ErrInsufficientCredits
		}
		return 0, ErrConflict
	}

	var updated model.Subscription
	if err := db.First(&updated, sub.ID).Error; err != nil {
		return 0, err
	}
	return updated.CreditsLeft(), nil
}

// Refund returns previously deducted credits. Only the configurable
// refund-on-failure policy calls this; nothing refunds automatically.
func Refund(db *gorm.DB, userID, planID uint, amount int64) error {
	if planID == 0 || amount < 0 {
		return ErrInvalidRequest
	}

	sub, err := activeSubscription(db, userID, planID)
	if err != nil {
		return err
	}

	res := db.Model(&model.Subscription{}).
		Where("id = ? AND credits_used - ? >= 0", sub.ID, amount).
		UpdateColumn("credits_used", gorm.Expr("credits_used - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func activeSubscription(db *gorm.DB, userID, planID uint) (*model.Subscription, error) {
	var sub model.Subscription
	err := db.Where("user_id = ? AND plan_id = ? AND status = ?",
		userID, planID, model.SubscriptionActive).
		Order("subscription_start DESC").
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoActiveSubscription
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
