package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"

	"kl-decors-backend/internal/database"
	"kl-decors-backend/internal/models"
	"kl-decors-backend/internal/payments"
	"kl-decors-backend/internal/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testKeySecret = "test_key_secret"

// fakeGateway records calls instead of hitting Razorpay.
type fakeGateway struct {
	orders       int
	refunds      int
	lastAmount   int64
	refundStatus string
	fail         bool
}

func (f *fakeGateway) CreateOrder(_ context.Context, amountPaise int64, receipt string, _ map[string]interface{}) (*payments.GatewayOrder, error) {
	if f.fail {
		return nil, fmt.Errorf("gateway unavailable")
	}
	f.orders++
	f.lastAmount = amountPaise
	return &payments.GatewayOrder{ID: fmt.Sprintf("order_fake%d", f.orders), Amount: amountPaise, Currency: "INR"}, nil
}

func (f *fakeGateway) Refund(_ context.Context, paymentID string, amountPaise int64) (*payments.RefundResult, error) {
	if f.fail {
		return nil, fmt.Errorf("gateway unavailable")
	}
	f.refunds++
	f.lastAmount = amountPaise
	status := f.refundStatus
	if status == "" {
		status = "processed"
	}
	return &payments.RefundResult{ID: "rfnd_fake1", Status: status}, nil
}

func newTestService(t *testing.T) (*OrderService, *fakeGateway, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	gw := &fakeGateway{}
	return NewOrderService(db, gw, testKeySecret), gw, db
}

func seedCheckout(t *testing.T, db *gorm.DB, coins int) (uuid.UUID, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	require.NoError(t, db.Create(&models.Profile{
		ID: userID, Email: fmt.Sprintf("%s@example.com", userID), FullName: "Priya", Phone: "9566061075", Coins: coins,
	}).Error)

	require.NoError(t, db.Create(&models.CartItem{
		ID: uuid.New(), UserID: userID, PackageID: 1, Name: "Birthday Stall", Price: decimal.NewFromInt(5000), Qty: 1,
	}).Error)

	payoutID := uuid.New()
	require.NoError(t, db.Create(&models.PayoutDetails{
		ID: payoutID, UserID: userID, Name: "Priya", Phone: "9566061075",
		EventDate: "2026-09-12", EventTime: "17:00", EventPlace: "Chennai",
		Address: "12 Beach Rd", Pincode: "603109",
		PaymentMethod: models.PaymentOnline, OnlineType: models.OnlineAdvance,
	}).Error)

	return userID, payoutID
}

func signPayload(orderID, paymentID string) string {
	h := hmac.New(sha256.New, []byte(testKeySecret))
	h.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(h.Sum(nil))
}

func TestPlaceCODOrder(t *testing.T) {
	svc, _, db := newTestService(t)
	userID, payoutID := seedCheckout(t, db, 200)
	ctx := context.Background()

	order, err := svc.PlaceCODOrder(ctx, userID, payoutID, true)
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, models.PayPending, order.PaymentStatus)
	assert.Equal(t, models.PaymentCOD, order.PaymentMethod)
	assert.True(t, order.DiscountApplied)
	assert.Equal(t, "5000.00", order.Total.StringFixed(2))
	assert.Equal(t, "1500.00", order.DiscountAmount.StringFixed(2))
	assert.Equal(t, "3500.00", order.FinalTotal.StringFixed(2))
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Birthday Stall", order.Items[0].Name)

	// checkout consumed the cart
	var remaining int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("user_id = ?", userID).Count(&remaining).Error)
	assert.Zero(t, remaining)
}

func TestPlaceCODOrderRevalidatesCoupon(t *testing.T) {
	svc, _, db := newTestService(t)
	userID, payoutID := seedCheckout(t, db, 50) // below threshold

	_, err := svc.PlaceCODOrder(context.Background(), userID, payoutID, true)
	assert.ErrorIs(t, err, pricing.ErrCouponIneligible)

	// nothing persisted, cart untouched
	var orders, cart int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, db.Model(&models.CartItem{}).Where("user_id = ?", userID).Count(&cart).Error)
	assert.Zero(t, orders)
	assert.Equal(t, int64(1), cart)
}

func TestPlaceCODOrderEmptyCart(t *testing.T) {
	svc, _, db := newTestService(t)
	userID, payoutID := seedCheckout(t, db, 200)
	require.NoError(t, db.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error)

	_, err := svc.PlaceCODOrder(context.Background(), userID, payoutID, false)
	assert.ErrorIs(t, err, pricing.ErrEmptyCart)
}

func TestCreatePaymentOrderAdvance(t *testing.T) {
	svc, gw, db := newTestService(t)
	userID, _ := seedCheckout(t, db, 200)

	gwOrder, err := svc.CreatePaymentOrder(context.Background(), userID, true, models.OnlineAdvance)
	require.NoError(t, err)

	// final 3500, advance 700 → 70000 paise
	assert.Equal(t, int64(70000), gw.lastAmount)
	assert.Equal(t, "INR", gwOrder.Currency)
	assert.NotEmpty(t, gwOrder.ID)
}

func TestCreatePaymentOrderZeroPayableNeverCallsGateway(t *testing.T) {
	svc, gw, db := newTestService(t)
	userID, _ := seedCheckout(t, db, 200)

	// shrink the cart so the coupon swallows the whole total
	require.NoError(t, db.Model(&models.CartItem{}).
		Where("user_id = ?", userID).
		Update("price", decimal.NewFromInt(1000)).Error)

	_, err := svc.CreatePaymentOrder(context.Background(), userID, true, models.OnlineFull)
	assert.ErrorIs(t, err, pricing.ErrInvalidPayable)
	assert.Zero(t, gw.orders)
}

func TestVerifyPayment(t *testing.T) {
	svc, _, db := newTestService(t)
	userID, payoutID := seedCheckout(t, db, 200)

	req := VerifyRequest{
		RazorpayOrderID:   "order_IluGWxBm9U8zJ8",
		RazorpayPaymentID: "pay_G8VQzjPLoAvm6D",
		UserID:            userID,
		PaymentType:       models.OnlineAdvance,
		PayoutID:          payoutID,
		CouponUsed:        true,
	}
	req.RazorpaySignature = signPayload(req.RazorpayOrderID, req.RazorpayPaymentID)

	order, err := svc.VerifyPayment(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, models.PayPaid, order.PaymentStatus)
	assert.Equal(t, models.StatusConfirmed, order.Status)
	assert.Equal(t, models.OnlineAdvance, order.PaymentType)
	assert.Equal(t, req.RazorpayOrderID, order.RazorpayOrderID)
	assert.Equal(t, req.RazorpayPaymentID, order.RazorpayPaymentID)
	assert.Equal(t, "3500.00", order.FinalTotal.StringFixed(2))
}

func TestVerifyPaymentRejectsBadSignature(t *testing.T) {
	svc, _, db := newTestService(t)
	userID, payoutID := seedCheckout(t, db, 200)

	req := VerifyRequest{
		RazorpayOrderID:   "order_1",
		RazorpayPaymentID: "pay_1",
		RazorpaySignature: "deadbeef",
		UserID:            userID,
		PayoutID:          payoutID,
	}
	_, err := svc.VerifyPayment(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	var orders int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)
}

func TestVerifyPaymentMissingFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.VerifyPayment(context.Background(), VerifyRequest{RazorpayOrderID: "order_1"})
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestVerifyPaymentRejectsUnknownPaymentType(t *testing.T) {
	svc, _, db := newTestService(t)
	userID, payoutID := seedCheckout(t, db, 200)

	req := VerifyRequest{
		RazorpayOrderID:   "order_1",
		RazorpayPaymentID: "pay_1",
		UserID:            userID,
		PaymentType:       "WEEKLY",
		PayoutID:          payoutID,
	}
	req.RazorpaySignature = signPayload(req.RazorpayOrderID, req.RazorpayPaymentID)

	_, err := svc.VerifyPayment(context.Background(), req)
	assert.ErrorIs(t, err, ErrBadPaymentType)
}

func TestVerifyPaymentReplayDoesNotMintSecondOrder(t *testing.T) {
	svc, _, db := newTestService(t)
	userID, payoutID := seedCheckout(t, db, 200)

	req := VerifyRequest{
		RazorpayOrderID:   "order_once",
		RazorpayPaymentID: "pay_once",
		UserID:            userID,
		PaymentType:       models.OnlineFull,
		PayoutID:          payoutID,
	}
	req.RazorpaySignature = signPayload(req.RazorpayOrderID, req.RazorpayPaymentID)

	_, err := svc.VerifyPayment(context.Background(), req)
	require.NoError(t, err)

	// refill the cart and resubmit the identical signed payload; the
	// signature still checks out but the payment is spent
	require.NoError(t, db.Create(&models.CartItem{
		ID: uuid.New(), UserID: userID, PackageID: 2, Name: "Grand Pavilion", Price: decimal.NewFromInt(9000), Qty: 1,
	}).Error)

	_, err = svc.VerifyPayment(context.Background(), req)
	assert.ErrorIs(t, err, ErrPaymentRecorded)

	var paid int64
	require.NoError(t, db.Model(&models.Order{}).
		Where("razorpay_payment_id = ? AND payment_status = ?", req.RazorpayPaymentID, models.PayPaid).
		Count(&paid).Error)
	assert.Equal(t, int64(1), paid)

	// the refilled cart survives the rejected replay
	var cart int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("user_id = ?", userID).Count(&cart).Error)
	assert.Equal(t, int64(1), cart)
}

func seedPaidOnlineOrder(t *testing.T, db *gorm.DB, userID uuid.UUID, status string) uuid.UUID {
	t.Helper()
	orderID := uuid.New()
	require.NoError(t, db.Create(&models.Order{
		ID: orderID, UserID: userID,
		Total: decimal.NewFromInt(5000), FinalTotal: decimal.NewFromInt(3500),
		DiscountApplied: true, DiscountAmount: decimal.NewFromInt(1500),
		PaymentMethod: models.PaymentOnline, PaymentType: models.OnlineFull,
		PaymentStatus: models.PayPaid, Status: status,
		RazorpayOrderID: "order_" + orderID.String(), RazorpayPaymentID: "pay_" + orderID.String(),
	}).Error)
	return orderID
}

func TestCancelPaidOnlineOrderTriggersRefund(t *testing.T) {
	svc, gw, db := newTestService(t)
	userID, _ := seedCheckout(t, db, 200)
	orderID := seedPaidOnlineOrder(t, db, userID, models.StatusCompleted)

	order, err := svc.Cancel(context.Background(), orderID, userID, false)
	require.NoError(t, err)

	assert.Equal(t, models.StatusCancelled, order.Status)
	assert.Equal(t, 1, gw.refunds)
	assert.Equal(t, int64(350000), gw.lastAmount)
	assert.Equal(t, "rfnd_fake1", order.RefundID)
	assert.Equal(t, "processed", order.RefundStatus)
	assert.Equal(t, models.PayRefunded, order.PaymentStatus)
}

func TestCancelIsOneWay(t *testing.T) {
	svc, gw, db := newTestService(t)
	userID, _ := seedCheckout(t, db, 200)
	orderID := seedPaidOnlineOrder(t, db, userID, models.StatusCompleted)

	_, err := svc.Cancel(context.Background(), orderID, userID, false)
	require.NoError(t, err)

	// a second cancel must not raise a second refund
	_, err = svc.Cancel(context.Background(), orderID, userID, false)
	assert.ErrorIs(t, err, ErrNotCancellable)
	assert.Equal(t, 1, gw.refunds)
}

func TestCancelAdvanceRefundsOnlyTheAdvance(t *testing.T) {
	svc, gw, db := newTestService(t)
	userID, _ := seedCheckout(t, db, 200)

	orderID := uuid.New()
	require.NoError(t, db.Create(&models.Order{
		ID: orderID, UserID: userID,
		Total: decimal.NewFromInt(5000), FinalTotal: decimal.NewFromInt(3500),
		PaymentMethod: models.PaymentOnline, PaymentType: models.OnlineAdvance,
		PaymentStatus: models.PayPaid, Status: models.StatusConfirmed,
		RazorpayPaymentID: "pay_adv",
	}).Error)

	_, err := svc.Cancel(context.Background(), orderID, userID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(70000), gw.lastAmount) // 20% of 3500 in paise
}

func TestCancelRefundFailureLeavesRefundPending(t *testing.T) {
	svc, gw, db := newTestService(t)
	userID, _ := seedCheckout(t, db, 200)
	orderID := seedPaidOnlineOrder(t, db, userID, models.StatusConfirmed)
	gw.fail = true

	order, err := svc.Cancel(context.Background(), orderID, userID, false)
	require.NoError(t, err)

	// cancelled stands, refund fields wait for a successful retry
	assert.Equal(t, models.StatusCancelled, order.Status)
	assert.Equal(t, models.PayPaid, order.PaymentStatus)
	assert.Empty(t, order.RefundID)
}

func TestCancelCODNeverRefunds(t *testing.T) {
	svc, gw, db := newTestService(t)
	userID, payoutID := seedCheckout(t, db, 200)

	order, err := svc.PlaceCODOrder(context.Background(), userID, payoutID, false)
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), order.ID, userID, false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Zero(t, gw.refunds)
}

func TestCancelBlockedWhileInFlight(t *testing.T) {
	svc, gw, db := newTestService(t)
	userID, _ := seedCheckout(t, db, 200)
	orderID := seedPaidOnlineOrder(t, db, userID, models.StatusConfirmed)

	require.True(t, svc.acquire(orderID))
	_, err := svc.Cancel(context.Background(), orderID, userID, false)
	assert.ErrorIs(t, err, ErrTransitionInFlight)
	assert.Zero(t, gw.refunds)
	svc.release(orderID)

	_, err = svc.Cancel(context.Background(), orderID, userID, false)
	require.NoError(t, err)
}

func TestCancelForeignOrderLooksMissing(t *testing.T) {
	svc, _, db := newTestService(t)
	userID, _ := seedCheckout(t, db, 200)
	orderID := seedPaidOnlineOrder(t, db, userID, models.StatusConfirmed)

	_, err := svc.Cancel(context.Background(), orderID, uuid.New(), false)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	// admin may cancel anyone's order
	_, err = svc.Cancel(context.Background(), orderID, uuid.New(), true)
	assert.NoError(t, err)
}

func TestReturnOnlyFromCompleted(t *testing.T) {
	svc, _, db := newTestService(t)
	userID, _ := seedCheckout(t, db, 200)

	pendingID := seedPaidOnlineOrder(t, db, userID, models.StatusPending)
	_, err := svc.Return(context.Background(), pendingID, userID)
	assert.ErrorIs(t, err, ErrNotReturnable)

	completedID := seedPaidOnlineOrder(t, db, userID, models.StatusCompleted)
	order, err := svc.Return(context.Background(), completedID, userID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReturned, order.Status)
}

func TestMarkPaid(t *testing.T) {
	svc, _, db := newTestService(t)
	userID, payoutID := seedCheckout(t, db, 200)

	order, err := svc.PlaceCODOrder(context.Background(), userID, payoutID, false)
	require.NoError(t, err)

	paid, err := svc.MarkPaid(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PayPaid, paid.PaymentStatus)

	_, err = svc.MarkPaid(context.Background(), order.ID)
	assert.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestAdvanceStatus(t *testing.T) {
	svc, _, db := newTestService(t)
	userID, payoutID := seedCheckout(t, db, 200)

	order, err := svc.PlaceCODOrder(context.Background(), userID, payoutID, false)
	require.NoError(t, err)

	confirmed, err := svc.Advance(context.Background(), order.ID, models.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)

	_, err = svc.Advance(context.Background(), order.ID, models.StatusCancelled)
	assert.ErrorIs(t, err, ErrBadStatusTarget)

	cancelled, err := svc.Cancel(context.Background(), order.ID, userID, false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)

	_, err = svc.Advance(context.Background(), order.ID, models.StatusCompleted)
	assert.ErrorIs(t, err, ErrBadStatusTarget)
}

func TestAdminListOrdersJoinsProfiles(t *testing.T) {
	svc, _, db := newTestService(t)
	userID, payoutID := seedCheckout(t, db, 200)

	_, err := svc.PlaceCODOrder(context.Background(), userID, payoutID, false)
	require.NoError(t, err)

	rows, err := svc.AdminListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Priya", rows[0].CustomerName)
	assert.Equal(t, "9566061075", rows[0].CustomerPhone)
}
