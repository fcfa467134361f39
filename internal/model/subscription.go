package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SubscriptionActive    = "active"
	SubscriptionExpired   = "expired"
	SubscriptionCancelled = "cancelled"
)

// PaymentInfo is stored as a JSON column on the subscription. It is only
// present on subscriptions created through a verified payment.
type PaymentInfo struct {
	TransactionID  string    `json:"transaction_id"`
	PaymentGateway string    `json:"payment_gateway"`
	PaidOn         time.Time `json:"paid_on"`
	AmountPaid     float64   `json:"amount_paid"`
}

type Subscription struct {
	gorm.Model
	UserID            uint           `json:"user_id" gorm:"index;not null"`
	PlanID            uint           `json:"plan_id" gorm:"index;not null"`
	SubscriptionStart time.Time      `json:"subscription_start"`
	SubscriptionEnd   time.Time      `json:"subscription_end" gorm:"not null"`
	TotalCredits      int64          `json:"total_credits" gorm:"not null"`
	CreditsUsed       int64          `json:"credits_used" gorm:"default:0"`
	Status            string         `json:"status" gorm:"default:'active';index"`
	PaymentInfo       datatypes.JSON `json:"payment_info"`

	User User `json:"-" gorm:"foreignKey:UserID"`
	Plan Plan `json:"-" gorm:"foreignKey:PlanID"`
}

func (s *Subscription) CreditsLeft() int64 {
	left := s.TotalCredits - s.CreditsUsed
	if left < 0 {
		return 0
	}
	return left
}
