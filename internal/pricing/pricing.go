// Package pricing is the single place money figures are computed. Every
// surface that shows or persists a rupee amount (cart, payout, checkout,
// payment initiation) goes through Compute so the numbers can never drift
// apart.
package pricing

import (
	"errors"
	"fmt"

	"kl-decors-backend/internal/models"

	"github.com/shopspring/decimal"
)

// CouponCoinsRequired is the loyalty-coin balance that unlocks the coupon.
const CouponCoinsRequired = 150

var (
	// CouponDiscount is the fixed rupee discount the coupon grants.
	CouponDiscount = decimal.NewFromInt(1500)

	// advancePercent is the partial payment taken to reserve a booking.
	advancePercent = decimal.New(20, -2) // 0.20
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrInvalidItem      = errors.New("cart item has invalid price or quantity")
	ErrCouponIneligible = errors.New("not enough coins to use coupon")
	ErrInvalidPayable   = errors.New("invalid payable amount")
)

// Quote carries every figure shown to the user and persisted on the order.
// All amounts are rupees with paise precision; Advance is a whole rupee.
type Quote struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	FinalTotal decimal.Decimal `json:"final_total"`
	Advance    decimal.Decimal `json:"advance"`
	PayableNow decimal.Decimal `json:"payable_now"`
}

// EligibleForCoupon reports whether a coin balance unlocks the coupon.
func EligibleForCoupon(coins int) bool {
	return coins >= CouponCoinsRequired
}

// ApplyCoupon is the apply-time guard. The same check runs again inside
// Compute at submission time, in case the balance changed mid-session.
func ApplyCoupon(coins int) error {
	if !EligibleForCoupon(coins) {
		return ErrCouponIneligible
	}
	return nil
}

// ValidateCart rejects carts that must block checkout outright.
func ValidateCart(items []models.CartItem) error {
	if len(items) == 0 {
		return ErrEmptyCart
	}
	for _, it := range items {
		if it.Price.IsNegative() || it.Qty < 1 {
			return fmt.Errorf("%w: %q", ErrInvalidItem, it.Name)
		}
	}
	return nil
}

// AdvanceOf is the 20% reservation amount for a final total, rounded
// half-up to the nearest rupee. Reproduced exactly before initiating a
// partial payment and again when refunding one.
func AdvanceOf(finalTotal decimal.Decimal) decimal.Decimal {
	return finalTotal.Mul(advancePercent).Round(0)
}

// Subtotal is Σ(price * qty) rounded to the paisa. Never negative for a
// cart that passes ValidateCart.
func Subtotal(items []models.CartItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Qty))))
	}
	return sum.Round(2)
}

// Compute turns a cart snapshot, coupon choice and payment selection into a
// Quote. Pure; all persistence happens in the calling workflow.
//
// couponApplied is re-validated against coins here, not only at apply time:
// the balance may have refreshed between applying and submitting.
func Compute(items []models.CartItem, couponApplied bool, coins int, method, onlineType string) (Quote, error) {
	if err := ValidateCart(items); err != nil {
		return Quote{}, err
	}
	if couponApplied && !EligibleForCoupon(coins) {
		return Quote{}, ErrCouponIneligible
	}

	subtotal := Subtotal(items)

	discount := decimal.Zero
	if couponApplied {
		// discount never exceeds subtotal
		discount = decimal.Min(CouponDiscount, subtotal)
	}

	finalTotal := subtotal.Sub(discount)
	if finalTotal.IsNegative() {
		finalTotal = decimal.Zero
	}
	finalTotal = finalTotal.Round(2)

	advance := AdvanceOf(finalTotal)

	q := Quote{
		Subtotal:   subtotal,
		Discount:   discount,
		FinalTotal: finalTotal,
		Advance:    advance,
	}

	switch method {
	case models.PaymentOnline:
		if onlineType == models.OnlineAdvance {
			q.PayableNow = advance
		} else {
			q.PayableNow = finalTotal
		}
		// zero is never a valid amount to send to the gateway
		if !q.PayableNow.IsPositive() {
			return Quote{}, ErrInvalidPayable
		}
	default:
		// COD: collected at event time, nothing payable now
		q.PayableNow = decimal.Zero
	}

	return q, nil
}
