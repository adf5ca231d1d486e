package lifecycle

import (
	"testing"

	"kl-decors-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func order(status, payStatus, method string) models.Order {
	return models.Order{Status: status, PaymentStatus: payStatus, PaymentMethod: method}
}

func TestDeriveBadges(t *testing.T) {
	cases := []struct {
		name    string
		o       models.Order
		label   string
		actions []Action
	}{
		{"fresh cod", order(models.StatusPending, models.PayPending, models.PaymentCOD), "pending", []Action{ActionCancel, ActionMarkPaid}},
		{"blank status treated as pending", order("", models.PayPending, models.PaymentCOD), "pending", []Action{ActionCancel, ActionMarkPaid}},
		{"confirmed paid", order(models.StatusConfirmed, models.PayPaid, models.PaymentOnline), "confirmed", []Action{ActionCancel}},
		{"completed unpaid", order(models.StatusCompleted, models.PayPending, models.PaymentCOD), "completed", []Action{ActionReturn, ActionCancel, ActionMarkPaid}},
		{"cancelled cod", order(models.StatusCancelled, models.PayPending, models.PaymentCOD), "cancelled", nil},
		{"cancelled online paid awaits gateway", order(models.StatusCancelled, models.PayPaid, models.PaymentOnline), "refund-pending", nil},
		{"cancelled online refunded", order(models.StatusCancelled, models.PayRefunded, models.PaymentOnline), "refunded", nil},
		{"returned", order(models.StatusReturned, models.PayPaid, models.PaymentOnline), "returned", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := Derive(tc.o)
			assert.Equal(t, tc.label, b.Label)
			assert.Equal(t, tc.actions, b.Actions)
			assert.NotEmpty(t, b.Tone)
		})
	}
}

func TestDeriveIsTotal(t *testing.T) {
	// junk values must still render something, never drop the row
	b := Derive(order("held", "weird", "GIFTCARD"))
	assert.Equal(t, "held", b.Label)
	assert.Empty(t, b.Actions)
}

func TestCancelLegality(t *testing.T) {
	assert.True(t, CanCancel(order(models.StatusPending, models.PayPending, models.PaymentCOD)))
	assert.True(t, CanCancel(order(models.StatusCompleted, models.PayPaid, models.PaymentOnline)))
	assert.False(t, CanCancel(order(models.StatusCancelled, models.PayPending, models.PaymentCOD)))
	assert.False(t, CanCancel(order(models.StatusReturned, models.PayPaid, models.PaymentOnline)))
}

func TestReturnOnlyFromCompleted(t *testing.T) {
	assert.True(t, CanReturn(order(models.StatusCompleted, models.PayPaid, models.PaymentOnline)))
	for _, s := range []string{models.StatusPending, models.StatusConfirmed, models.StatusCancelled, models.StatusReturned} {
		assert.False(t, CanReturn(order(s, models.PayPaid, models.PaymentOnline)), s)
	}
}

func TestMarkPaidLegality(t *testing.T) {
	assert.True(t, CanMarkPaid(order(models.StatusPending, models.PayPending, models.PaymentCOD)))
	assert.False(t, CanMarkPaid(order(models.StatusPending, models.PayPaid, models.PaymentCOD)))
	assert.False(t, CanMarkPaid(order(models.StatusCancelled, models.PayPending, models.PaymentCOD)))
}

func TestNeedsRefund(t *testing.T) {
	assert.True(t, NeedsRefund(order(models.StatusCompleted, models.PayPaid, models.PaymentOnline)))
	assert.True(t, NeedsRefund(order(models.StatusPending, "success", models.PaymentOnline)))
	assert.False(t, NeedsRefund(order(models.StatusCompleted, models.PayPaid, models.PaymentCOD)))
	assert.False(t, NeedsRefund(order(models.StatusPending, models.PayPending, models.PaymentOnline)))
}
