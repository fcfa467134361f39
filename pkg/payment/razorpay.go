// Package payment wraps the Razorpay order API and the signature check that
// gates every paid subscription. Nothing downstream of a failed verification
// may create state.
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	razorpay "github.com/razorpay/razorpay-go"
)

var (
	ErrSignatureMismatch = errors.New("razorpay signature mismatch")
	ErrOrderFailed       = errors.New("could not create razorpay order")
)

func NewClient(keyID, keySecret string) *razorpay.Client {
	return razorpay.NewClient(keyID, keySecret)
}

// CreateOrder opens a Razorpay order and returns its id. Amount is in the
// currency's smallest unit, per the gateway's convention.
func CreateOrder(client *razorpay.Client, amount int64, currency string) (string, error) {
	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  fmt.Sprintf("receipt_%s", uuid.NewString()),
	}

	order, err := client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrOrderFailed, err)
	}

	orderID, ok := order["id"].(string)
	if !ok || orderID == "" {
		return "", ErrOrderFailed
	}
	return orderID, nil
}

// VerifySignature recomputes HMAC-SHA256(secret, orderID|paymentID) and
// compares it in constant time against the signature the gateway supplied.
func VerifySignature(secret, orderID, paymentID, signature string) error {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureMismatch
	}
	return nil
}
