// Package apikey issues and verifies the signed API keys handed out at
// payment verification. A key is a JWT over (user, plan type, order) backed
// by a database row; both must check out for a request to pass.
package apikey

import (
	"errors"
	"fmt"
	"time"

	"chatstack_backend/internal/model"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

var (
	ErrInvalidKey = errors.New("invalid API key")
	ErrKeyExpired = errors.New("API key has expired")
	ErrKeyMissing = errors.New("API key not found")
)

type Claims struct {
	UserID   uint   `json:"user_id"`
	PlanType string `json:"plan_type"`
	OrderID  string `json:"order_id"`
	jwt.RegisteredClaims
}

// Issue signs a new key expiring with the plan and persists it attached to
// the user. Keys are immutable after creation.
func Issue(db *gorm.DB, secret string, userID uint, planType, orderID string, ttl time.Duration) (*model.APIKey, error) {
	expiry := time.Now().Add(ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:   userID,
		PlanType: planType,
		OrderID:  orderID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiry),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, err
	}

	key := model.APIKey{
		Name:      fmt.Sprintf("%s-plan", planType),
		Key:       signed,
		ExpiresIn: expiry,
		CreatedBy: userID,
	}
	if err := db.Create(&key).Error; err != nil {
		return nil, err
	}
	return &key, nil
}

// Verify checks the signature, the backing row, and the expiry, in that
// order. The row lookup is scoped to the user the token names so a key copied
// onto another account never verifies.
func Verify(db *gorm.DB, secret, rawKey string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(rawKey, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidKey
	}

	var stored model.APIKey
	err = db.Where("key = ? AND created_by = ?", rawKey, claims.UserID).First(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrKeyMissing
	}
	if err != nil {
		return nil, err
	}

	if stored.IsExpired() {
		return nil, ErrKeyExpired
	}
	return claims, nil
}

// ListForUser returns the user's keys, newest first.
func ListForUser(db *gorm.DB, userID uint) ([]model.APIKey, error) {
	var keys []model.APIKey
	err := db.Where("created_by = ?", userID).Order("created_at DESC").Find(&keys).Error
	return keys, err
}

// SweepExpired deletes keys past their expiry. The verification path already
// rejects them; this keeps the table from growing unbounded.
func SweepExpired(db *gorm.DB) (int64, error) {
	res := db.Where("expires_in < ?", time.Now()).Delete(&model.APIKey{})
	return res.RowsAffected, res.Error
}
