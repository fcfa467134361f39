package subscription

import (
	"errors"
	"testing"
	"time"

	"chatstack_backend/internal/model"
	"chatstack_backend/internal/testutil"
	"chatstack_backend/pkg/apikey"
)

func TestStartCopiesPlanAllotment(t *testing.T) {
	db := testutil.OpenTestDB(t)
	user := testutil.CreateUser(t, db, "start@example.com")
	p := testutil.CreatePlan(t, db, model.PlanPro, 30, 1000)

	sub, err := Start(db, user.ID, p, nil)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if sub.TotalCredits != 1000 {
		t.Errorf("total credits = %d, want 1000", sub.TotalCredits)
	}
	if sub.CreditsUsed != 0 {
		t.Errorf("credits used = %d, want 0", sub.CreditsUsed)
	}
	if sub.Status != model.SubscriptionActive {
		t.Errorf("status = %q, want active", sub.Status)
	}

	wantEnd := time.Now().AddDate(0, 0, 30)
	if sub.SubscriptionEnd.Before(wantEnd.Add(-time.Minute)) || sub.SubscriptionEnd.After(wantEnd.Add(time.Minute)) {
		t.Errorf("subscription end = %v, want about %v", sub.SubscriptionEnd, wantEnd)
	}

	var reloaded model.User
	db.First(&reloaded, user.ID)
	if reloaded.ActivePlanID == nil || *reloaded.ActivePlanID != p.ID {
		t.Errorf("user active plan not updated, got %v", reloaded.ActivePlanID)
	}
	if reloaded.PlanExpiresAt == nil {
		t.Error("user plan expiry not set")
	}
}

func TestStartFree(t *testing.T) {
	db := testutil.OpenTestDB(t)
	user := testutil.CreateUser(t, db, "free@example.com")
	testutil.CreatePlan(t, db, model.PlanFree, 7, 100)

	sub, err := StartFree(db, user.ID)
	if err != nil {
		t.Fatalf("StartFree failed: %v", err)
	}
	if sub.TotalCredits != 100 {
		t.Errorf("total credits = %d, want 100", sub.TotalCredits)
	}
	if len(sub.PaymentInfo) != 0 {
		t.Errorf("free subscription carries payment info: %s", sub.PaymentInfo)
	}
}

// A second Start for the same plan keeps the old record as history and
// leaves exactly one active subscription.
func TestStartPreservesHistory(t *testing.T) {
	db := testutil.OpenTestDB(t)
	user := testutil.CreateUser(t, db, "history@example.com")
	p := testutil.CreatePlan(t, db, model.PlanPro, 30, 1000)

	first, err := Start(db, user.ID, p, nil)
	if err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	second, err := Start(db, user.ID, p, &model.PaymentInfo{
		TransactionID:  "pay_123",
		PaymentGateway: "razorpay",
		PaidOn:         time.Now(),
		AmountPaid:     499,
	})
	if err != nil {
		t.Fatalf("second Start failed: %v", err)
	}

	var count int64
	db.Model(&model.Subscription{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 2 {
		t.Fatalf("subscription count = %d, want 2 (history preserved)", count)
	}

	var activeCount int64
	db.Model(&model.Subscription{}).
		Where("user_id = ? AND status = ?", user.ID, model.SubscriptionActive).
		Count(&activeCount)
	if activeCount != 1 {
		t.Errorf("active subscription count = %d, want 1", activeCount)
	}

	var reloadedFirst model.Subscription
	db.First(&reloadedFirst, first.ID)
	if reloadedFirst.Status == model.SubscriptionActive {
		t.Error("previous subscription still active")
	}

	active, err := ActiveForUser(db, user.ID)
	if err != nil {
		t.Fatalf("ActiveForUser failed: %v", err)
	}
	if active.ID != second.ID {
		t.Errorf("active subscription id = %d, want %d", active.ID, second.ID)
	}
	if len(active.PaymentInfo) == 0 {
		t.Error("paid subscription missing payment info")
	}
}

func TestStartPaid(t *testing.T) {
	db := testutil.OpenTestDB(t)
	user := testutil.CreateUser(t, db, "paid@example.com")
	p := testutil.CreatePlan(t, db, model.PlanPro, 30, 1000)

	sub, key, err := StartPaid(db, "key-secret", user.ID, p, "order_123", &model.PaymentInfo{
		TransactionID:  "pay_123",
		PaymentGateway: "razorpay",
		PaidOn:         time.Now(),
		AmountPaid:     499,
	})
	if err != nil {
		t.Fatalf("StartPaid failed: %v", err)
	}
	if sub.TotalCredits != 1000 {
		t.Errorf("total credits = %d, want 1000", sub.TotalCredits)
	}

	claims, err := apikey.Verify(db, "key-secret", key.Key)
	if err != nil {
		t.Fatalf("issued key does not verify: %v", err)
	}
	if claims.UserID != user.ID || claims.PlanType != model.PlanPro || claims.OrderID != "order_123" {
		t.Errorf("key claims = %+v", claims)
	}
}

// A failure issuing the key must roll back the subscription too; a user can
// never hold a live key without the subscription, or the reverse.
func TestStartPaidAtomic(t *testing.T) {
	db := testutil.OpenTestDB(t)
	user := testutil.CreateUser(t, db, "atomic@example.com")
	p := testutil.CreatePlan(t, db, model.PlanPro, 30, 1000)

	// Force key persistence to fail after the subscription insert succeeds.
	if err := db.Migrator().DropTable(&model.APIKey{}); err != nil {
		t.Fatalf("could not drop api_keys table: %v", err)
	}

	_, _, err := StartPaid(db, "key-secret", user.ID, p, "order_123", &model.PaymentInfo{
		TransactionID:  "pay_123",
		PaymentGateway: "razorpay",
		PaidOn:         time.Now(),
		AmountPaid:     499,
	})
	if err == nil {
		t.Fatal("StartPaid succeeded without an api_keys table")
	}

	var subCount int64
	db.Model(&model.Subscription{}).Where("user_id = ?", user.ID).Count(&subCount)
	if subCount != 0 {
		t.Errorf("subscription count = %d, want 0 after rollback", subCount)
	}

	var reloaded model.User
	db.First(&reloaded, user.ID)
	if reloaded.ActivePlanID != nil {
		t.Errorf("user active plan set to %d despite rollback", *reloaded.ActivePlanID)
	}
}

func TestCancel(t *testing.T) {
	db := testutil.OpenTestDB(t)
	user := testutil.CreateUser(t, db, "cancel@example.com")
	p := testutil.CreatePlan(t, db, model.PlanPro, 30, 1000)
	if _, err := Start(db, user.ID, p, nil); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	sub, err := Cancel(db, user.ID)
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	var reloaded model.Subscription
	db.First(&reloaded, sub.ID)
	if reloaded.Status != model.SubscriptionCancelled {
		t.Errorf("status = %q, want cancelled", reloaded.Status)
	}

	if _, err := Cancel(db, user.ID); !errors.Is(err, ErrNoActiveSubscription) {
		t.Errorf("second cancel err = %v, want ErrNoActiveSubscription", err)
	}
}

func TestExpireOverdue(t *testing.T) {
	db := testutil.OpenTestDB(t)
	user := testutil.CreateUser(t, db, "expire@example.com")
	p := testutil.CreatePlan(t, db, model.PlanPro, 30, 1000)

	overdue := model.Subscription{
		UserID:            user.ID,
		PlanID:            p.ID,
		SubscriptionStart: time.Now().AddDate(0, 0, -40),
		SubscriptionEnd:   time.Now().AddDate(0, 0, -10),
		TotalCredits:      1000,
		CreditsUsed:       123,
		Status:            model.SubscriptionActive,
	}
	current := model.Subscription{
		UserID:            user.ID,
		PlanID:            p.ID,
		SubscriptionStart: time.Now(),
		SubscriptionEnd:   time.Now().AddDate(0, 0, 30),
		TotalCredits:      1000,
		Status:            model.SubscriptionActive,
	}
	if err := db.Create(&overdue).Error; err != nil {
		t.Fatalf("could not create overdue subscription: %v", err)
	}
	if err := db.Create(&current).Error; err != nil {
		t.Fatalf("could not create current subscription: %v", err)
	}

	expired, err := ExpireOverdue(db)
	if err != nil {
		t.Fatalf("ExpireOverdue failed: %v", err)
	}
	if expired != 1 {
		t.Errorf("expired count = %d, want 1", expired)
	}

	var reloaded model.Subscription
	db.First(&reloaded, overdue.ID)
	if reloaded.Status != model.SubscriptionExpired {
		t.Errorf("overdue status = %q, want expired", reloaded.Status)
	}
	if reloaded.CreditsUsed != 123 {
		t.Errorf("sweep touched credits_used: got %d, want 123", reloaded.CreditsUsed)
	}

	var untouched model.Subscription
	db.First(&untouched, current.ID)
	if untouched.Status != model.SubscriptionActive {
		t.Errorf("current subscription status = %q, want active", untouched.Status)
	}

	// Running the sweep again must be a no-op.
	expired, err = ExpireOverdue(db)
	if err != nil {
		t.Fatalf("second ExpireOverdue failed: %v", err)
	}
	if expired != 0 {
		t.Errorf("second sweep expired %d subscriptions, want 0", expired)
	}
}
