// Package testutil opens throwaway in-memory databases for package tests.
package testutil

import (
	"testing"

	"chatstack_backend/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenTestDB returns an isolated in-memory database with the full schema.
// The pool is capped at one connection so concurrent test traffic exercises
// the SQL-level atomicity of updates rather than SQLite locking.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("could not open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("could not get database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&model.User{},
		&model.Plan{},
		&model.PlanFeature{},
		&model.Subscription{},
		&model.File{},
		&model.WebsiteURL{},
		&model.APIKey{},
	)
	if err != nil {
		t.Fatalf("could not migrate test schema: %v", err)
	}

	return db
}

// CreatePlan inserts a plan with one feature per closed-set name at the
// given unit costs.
func CreatePlan(t *testing.T, db *gorm.DB, name string, durationDays int, totalCredits int64) *model.Plan {
	t.Helper()

	p := model.Plan{
		Name:           name,
		Price:          499,
		DurationInDays: durationDays,
		TotalCredits:   totalCredits,
		IsActive:       true,
		Features: []model.PlanFeature{
			{Name: model.FeatureAIMessage, PerUnitCreditCost: 1, MaxUnitsAllowed: 100, AllocatedCredits: totalCredits / 2},
			{Name: model.FeaturePDFUpload, PerUnitCreditCost: 10, MaxUnitsAllowed: 10, AllocatedCredits: totalCredits / 4},
			{Name: model.FeatureURLUpload, PerUnitCreditCost: 5, MaxUnitsAllowed: 10, AllocatedCredits: totalCredits / 4},
		},
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("could not create plan: %v", err)
	}
	return &p
}

// CreateUser inserts a bare user account.
func CreateUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()

	u := model.User{Name: "Test User", Email: email}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("could not create user: %v", err)
	}
	return &u
}
