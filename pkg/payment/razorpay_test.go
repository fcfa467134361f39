package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
)

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := "test_secret"
	orderID := "order_Abc123"
	paymentID := "pay_Xyz789"

	if err := VerifySignature(secret, orderID, paymentID, sign(secret, orderID, paymentID)); err != nil {
		t.Errorf("valid signature rejected: %v", err)
	}
}

func TestVerifySignatureTampered(t *testing.T) {
	secret := "test_secret"
	orderID := "order_Abc123"
	paymentID := "pay_Xyz789"
	good := sign(secret, orderID, paymentID)

	cases := []struct {
		name              string
		orderID, payID    string
		signature, secret string
	}{
		{"forged signature", orderID, paymentID, "deadbeef" + good[8:], secret},
		{"different order", "order_Other", paymentID, good, secret},
		{"different payment", orderID, "pay_Other", good, secret},
		{"wrong secret", orderID, paymentID, good, "other_secret"},
		{"empty signature", orderID, paymentID, "", secret},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := VerifySignature(tc.secret, tc.orderID, tc.payID, tc.signature)
			if !errors.Is(err, ErrSignatureMismatch) {
				t.Errorf("err = %v, want ErrSignatureMismatch", err)
			}
		})
	}
}
