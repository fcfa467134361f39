package plan

import (
	"errors"
	"fmt"

	"chatstack_backend/internal/model"

	"gorm.io/gorm"
)

var (
	ErrPlanNotFound    = errors.New("plan not found")
	ErrFeatureNotFound = errors.New("feature not offered by plan")
)

var allowedPlanNames = map[string]bool{
	model.PlanFree:       true,
	model.PlanPro:        true,
	model.PlanEnterprise: true,
}

var allowedFeatures = map[string]bool{
	model.FeatureAIMessage: true,
	model.FeaturePDFUpload: true,
	model.FeatureURLUpload: true,
}

func IsValidPlanName(name string) bool {
	return allowedPlanNames[name]
}

func IsValidFeature(name string) bool {
	return allowedFeatures[name]
}

// UnitCost resolves the per-unit credit cost of a feature from the plan
// catalog. Costs always come from here, never from the request body.
func UnitCost(db *gorm.DB, planID uint, feature string) (int64, error) {
	if !IsValidFeature(feature) {
		return 0, fmt.Errorf("%w: %s", ErrFeatureNotFound, feature)
	}

	var row model.PlanFeature
	err := db.Where("plan_id = ? AND name = ?", planID, feature).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrFeatureNotFound
	}
	if err != nil {
		return 0, err
	}
	return row.PerUnitCreditCost, nil
}

// ByName fetches a plan with its features.
func ByName(db *gorm.DB, name string) (*model.Plan, error) {
	var p model.Plan
	err := db.Preload("Features").Where("name = ?", name).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ByID fetches a plan with its features.
func ByID(db *gorm.DB, id uint) (*model.Plan, error) {
	var p model.Plan
	err := db.Preload("Features").First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
