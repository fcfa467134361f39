package seed

import (
	"chatstack_backend/internal/model"
	"chatstack_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func SeedPlans(db *gorm.DB) {
	plans := []model.Plan{
		{
			Name:           model.PlanFree,
			Price:          0,
			DurationInDays: 7,
			TotalCredits:   100,
			IsActive:       true,
			Features: []model.PlanFeature{
				{Name: model.FeatureAIMessage, PerUnitCreditCost: 1, MaxUnitsAllowed: 50, AllocatedCredits: 50},
				{Name: model.FeaturePDFUpload, PerUnitCreditCost: 10, MaxUnitsAllowed: 3, AllocatedCredits: 30},
				{Name: model.FeatureURLUpload, PerUnitCreditCost: 5, MaxUnitsAllowed: 4, AllocatedCredits: 20},
			},
		},
		{
			Name:           model.PlanPro,
			Price:          499,
			DurationInDays: 30,
			TotalCredits:   1000,
			IsActive:       true,
			Features: []model.PlanFeature{
				{Name: model.FeatureAIMessage, PerUnitCreditCost: 1, MaxUnitsAllowed: 600, AllocatedCredits: 600},
				{Name: model.FeaturePDFUpload, PerUnitCreditCost: 10, MaxUnitsAllowed: 25, AllocatedCredits: 250},
				{Name: model.FeatureURLUpload, PerUnitCreditCost: 5, MaxUnitsAllowed: 30, AllocatedCredits: 150},
			},
		},
		{
			Name:           model.PlanEnterprise,
			Price:          1999,
			DurationInDays: 90,
			TotalCredits:   10000,
			IsActive:       true,
			Features: []model.PlanFeature{
				{Name: model.FeatureAIMessage, PerUnitCreditCost: 1, MaxUnitsAllowed: 7000, AllocatedCredits: 7000},
				{Name: model.FeaturePDFUpload, PerUnitCreditCost: 10, MaxUnitsAllowed: 150, AllocatedCredits: 1500},
				{Name: model.FeatureURLUpload, PerUnitCreditCost: 5, MaxUnitsAllowed: 300, AllocatedCredits: 1500},
			},
		},
	}

	for _, p := range plans {
		var existing model.Plan
		if err := db.Where("name = ?", p.Name).First(&existing).Error; err == nil {
			continue
		}
		if err := db.Create(&p).Error; err != nil {
			logger.Get().Error("could not seed plan", zap.String("plan", p.Name), zap.Error(err))
		}
	}

	logger.Get().Info("subscription plans seeded")
}
