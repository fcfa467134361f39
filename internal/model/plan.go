package model

import "gorm.io/gorm"

// Plan tiers and meterable features are closed sets. Seeding and input
// validation both check against them.
const (
	PlanFree       = "Free"
	PlanPro        = "Pro"
	PlanEnterprise = "Enterprise"
)

const (
	FeatureAIMessage = "ai_message"
	FeaturePDFUpload = "pdf_upload"
	FeatureURLUpload = "url_upload"
)

type Plan struct {
	gorm.Model
	Name           string  `json:"name" gorm:"uniqueIndex;not null"`
	Price          float64 `json:"price" gorm:"not null"`
	DurationInDays int     `json:"duration_in_days" gorm:"not null"`
	TotalCredits   int64   `json:"total_credits" gorm:"not null"`
	IsActive       bool    `json:"is_active" gorm:"default:true"`

	// A plan carries at least one feature row.
	Features []PlanFeature `json:"features"`
}

type PlanFeature struct {
	gorm.Model
	PlanID            uint   `json:"plan_id" gorm:"index;not null"`
	Name              string `json:"name" gorm:"not null"`
	PerUnitCreditCost int64  `json:"per_unit_credit_cost" gorm:"not null"`
	MaxUnitsAllowed   int64  `json:"max_units_allowed" gorm:"not null"`
	AllocatedCredits  int64  `json:"allocated_credits" gorm:"not null"`
}
