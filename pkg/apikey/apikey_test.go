package apikey

import (
	"errors"
	"testing"
	"time"

	"chatstack_backend/internal/model"
	"chatstack_backend/internal/testutil"
)

const testSecret = "apikey-test-secret"

func TestIssueAndVerify(t *testing.T) {
	db := testutil.OpenTestDB(t)
	user := testutil.CreateUser(t, db, "keys@example.com")

	key, err := Issue(db, testSecret, user.ID, model.PlanPro, "order_123", 30*24*time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := Verify(db, testSecret, key.Key)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("claims user = %d, want %d", claims.UserID, user.ID)
	}
	if claims.PlanType != model.PlanPro {
		t.Errorf("claims plan = %q, want %q", claims.PlanType, model.PlanPro)
	}
	if claims.OrderID != "order_123" {
		t.Errorf("claims order = %q, want order_123", claims.OrderID)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	db := testutil.OpenTestDB(t)
	user := testutil.CreateUser(t, db, "wrongsecret@example.com")

	key, err := Issue(db, testSecret, user.ID, model.PlanPro, "order_123", time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := Verify(db, "other-secret", key.Key); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("err = %v, want ErrInvalidKey", err)
	}
}

// A well-signed token with no backing row does not verify.
func TestVerifyRevokedKey(t *testing.T) {
	db := testutil.OpenTestDB(t)
	user := testutil.CreateUser(t, db, "revoked@example.com")

	key, err := Issue(db, testSecret, user.ID, model.PlanPro, "order_123", time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if err := db.Delete(&model.APIKey{}, key.ID).Error; err != nil {
		t.Fatalf("could not delete key row: %v", err)
	}

	if _, err := Verify(db, testSecret, key.Key); !errors.Is(err, ErrKeyMissing) {
		t.Errorf("err = %v, want ErrKeyMissing", err)
	}
}

func TestVerifyExpiredKey(t *testing.T) {
	db := testutil.OpenTestDB(t)
	user := testutil.CreateUser(t, db, "expired@example.com")

	key, err := Issue(db, testSecret, user.ID, model.PlanPro, "order_123", time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	// Age the row past expiry; the JWT itself may still be within its window.
	if err := db.Model(&model.APIKey{}).Where("id = ?", key.ID).
		Update("expires_in", time.Now().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("could not backdate key: %v", err)
	}

	if _, err := Verify(db, testSecret, key.Key); !errors.Is(err, ErrKeyExpired) {
		t.Errorf("err = %v, want ErrKeyExpired", err)
	}
}

func TestSweepExpired(t *testing.T) {
	db := testutil.OpenTestDB(t)
	user := testutil.CreateUser(t, db, "sweep@example.com")

	live, err := Issue(db, testSecret, user.ID, model.PlanPro, "order_live", time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	stale, err := Issue(db, testSecret, user.ID, model.PlanFree, "order_stale", time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if err := db.Model(&model.APIKey{}).Where("id = ?", stale.ID).
		Update("expires_in", time.Now().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("could not backdate key: %v", err)
	}

	swept, err := SweepExpired(db)
	if err != nil {
		t.Fatalf("SweepExpired failed: %v", err)
	}
	if swept != 1 {
		t.Errorf("swept = %d, want 1", swept)
	}

	keys, err := ListForUser(db, user.ID)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(keys) != 1 || keys[0].ID != live.ID {
		t.Errorf("surviving keys = %v, want only the live key", keys)
	}
}
