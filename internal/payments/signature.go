package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifySignature checks the checkout callback signature: HMAC-SHA256 over
// "order_id|payment_id" keyed with the gateway secret, hex encoded. The
// scheme must match Razorpay bit-exactly or no payment ever verifies.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	payload := orderID + "|" + paymentID

	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(payload))
	expected := hex.EncodeToString(h.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
