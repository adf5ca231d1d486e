package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"kl-decors-backend/internal/lifecycle"
	"kl-decors-backend/internal/models"
	"kl-decors-backend/internal/payments"
	"kl-decors-backend/internal/pricing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// gatewayTimeout bounds every call to the payment provider. The source had
// no timeout at all; 15s with an error back to the user replaces that gap.
const gatewayTimeout = 15 * time.Second

var (
	ErrPayoutNotFound     = errors.New("event details not found, fill the payout form first")
	ErrOrderNotFound      = errors.New("order not found")
	ErrNotCancellable     = errors.New("order can no longer be cancelled")
	ErrNotReturnable      = errors.New("only completed orders can be returned")
	ErrAlreadyPaid        = errors.New("order is already marked paid")
	ErrBadStatusTarget    = errors.New("order cannot move to that status")
	ErrInvalidSignature   = errors.New("invalid payment signature")
	ErrMissingFields      = errors.New("missing required payment fields")
	ErrBadPaymentType     = errors.New("payment_type must be FULL or ADVANCE")
	ErrPaymentRecorded    = errors.New("this payment has already been recorded")
	ErrTransitionInFlight = errors.New("another update for this order is still in progress")
)

// OrderService owns every order state transition. Transitions write inside a
// transaction and always hand back the authoritative row, never a locally
// flipped copy.
type OrderService struct {
	db        *gorm.DB
	gateway   payments.Gateway
	keySecret string

	// per-order in-flight set so a double-tapped cancel cannot raise a
	// second refund while the first request is still outstanding
	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

func NewOrderService(db *gorm.DB, gateway payments.Gateway, razorpayKeySecret string) *OrderService {
	return &OrderService{
		db:        db,
		gateway:   gateway,
		keySecret: razorpayKeySecret,
		inFlight:  make(map[uuid.UUID]struct{}),
	}
}

func (s *OrderService) acquire(orderID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[orderID]; busy {
		return false
	}
	s.inFlight[orderID] = struct{}{}
	return true
}

func (s *OrderService) release(orderID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, orderID)
}

// checkoutState is everything a checkout needs in one load.
type checkoutState struct {
	profile models.Profile
	cart    []models.CartItem
	payout  models.PayoutDetails
}

func (s *OrderService) loadCheckout(ctx context.Context, userID uuid.UUID, payoutID *uuid.UUID) (*checkoutState, error) {
	var st checkoutState

	if err := s.db.WithContext(ctx).First(&st.profile, "id = ?", userID).Error; err != nil {
		return nil, errors.Wrap(err, "load profile")
	}

	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&st.cart).Error; err != nil {
		return nil, errors.Wrap(err, "load cart")
	}

	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if payoutID != nil {
		q = q.Where("id = ?", *payoutID)
	}
	if err := q.Order("created_at desc").First(&st.payout).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPayoutNotFound
		}
		return nil, errors.Wrap(err, "load payout details")
	}

	return &st, nil
}

func snapshotItems(cart []models.CartItem) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(cart))
	for _, c := range cart {
		items = append(items, models.OrderItem{
			PackageID: c.PackageID,
			Name:      c.Name,
			Price:     c.Price,
			Qty:       c.Qty,
		})
	}
	return items
}

// createOrder persists the order and clears the cart atomically, then
// re-reads the row with its items.
func (s *OrderService) createOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return errors.Wrap(err, "create order")
		}
		if err := tx.Where("user_id = ?", order.UserID).Delete(&models.CartItem{}).Error; err != nil {
			return errors.Wrap(err, "clear cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.getOrder(ctx, order.ID)
}

func (s *OrderService) getOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, errors.Wrap(err, "load order")
	}
	return &order, nil
}

// PlaceCODOrder books the cart against the latest payout snapshot with
// payment collected on the event day.
func (s *OrderService) PlaceCODOrder(ctx context.Context, userID uuid.UUID, payoutID uuid.UUID, couponUsed bool) (*models.Order, error) {
	st, err := s.loadCheckout(ctx, userID, &payoutID)
	if err != nil {
		return nil, err
	}

	quote, err := pricing.Compute(st.cart, couponUsed, st.profile.Coins, models.PaymentCOD, "")
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:              uuid.New(),
		UserID:          userID,
		PayoutID:        st.payout.ID,
		Items:           snapshotItems(st.cart),
		Total:           quote.Subtotal,
		DiscountApplied: couponUsed,
		DiscountAmount:  quote.Discount,
		FinalTotal:      quote.FinalTotal,
		PaymentMethod:   models.PaymentCOD,
		PaymentStatus:   models.PayPending,
		Status:          models.StatusPending,
	}
	return s.createOrder(ctx, order)
}

// CreatePaymentOrder computes the exact payable amount and raises a gateway
// order for it. No order row exists yet; that happens at verification.
func (s *OrderService) CreatePaymentOrder(ctx context.Context, userID uuid.UUID, couponUsed bool, onlineType string) (*payments.GatewayOrder, error) {
	st, err := s.loadCheckout(ctx, userID, nil)
	if err != nil {
		return nil, err
	}
	if onlineType == "" {
		onlineType = st.payout.OnlineType
	}

	quote, err := pricing.Compute(st.cart, couponUsed, st.profile.Coins, models.PaymentOnline, onlineType)
	if err != nil {
		return nil, err
	}

	gctx, cancel := context.WithTimeout(ctx, gatewayTimeout)
	defer cancel()

	receipt := fmt.Sprintf("rcpt_%d", time.Now().Unix())
	return s.gateway.CreateOrder(gctx, payments.ToPaise(quote.PayableNow), receipt, map[string]interface{}{
		"user_id": userID.String(),
	})
}

// VerifyRequest is the payment-verification callback payload.
type VerifyRequest struct {
	RazorpayOrderID   string    `json:"razorpay_order_id"`
	RazorpayPaymentID string    `json:"razorpay_payment_id"`
	RazorpaySignature string    `json:"razorpay_signature"`
	UserID            uuid.UUID `json:"user_id"`
	PaymentType       string    `json:"payment_type"` // FULL | ADVANCE
	PayoutID          uuid.UUID `json:"payout_id"`
	CouponUsed        bool      `json:"coupon_used"`
}

// VerifyPayment validates the checkout signature and, only then, creates the
// paid order row from the cart + payout snapshot. A gateway order/payment
// pair is good for exactly one order: the signature stays valid forever, so
// a replayed callback must not mint a second paid order from whatever is in
// the cart by then.
func (s *OrderService) VerifyPayment(ctx context.Context, req VerifyRequest) (*models.Order, error) {
	if req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" || req.RazorpaySignature == "" {
		return nil, ErrMissingFields
	}
	if !payments.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature, s.keySecret) {
		return nil, ErrInvalidSignature
	}

	paymentType := req.PaymentType
	if paymentType == "" {
		paymentType = models.OnlineFull
	}
	if paymentType != models.OnlineFull && paymentType != models.OnlineAdvance {
		return nil, ErrBadPaymentType
	}

	st, err := s.loadCheckout(ctx, req.UserID, &req.PayoutID)
	if err != nil {
		return nil, err
	}

	quote, err := pricing.Compute(st.cart, req.CouponUsed, st.profile.Coins, models.PaymentOnline, paymentType)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:                uuid.New(),
		UserID:            req.UserID,
		PayoutID:          st.payout.ID,
		Items:             snapshotItems(st.cart),
		Total:             quote.Subtotal,
		DiscountApplied:   req.CouponUsed,
		DiscountAmount:    quote.Discount,
		FinalTotal:        quote.FinalTotal,
		PaymentMethod:     models.PaymentOnline,
		PaymentType:       paymentType,
		PaymentStatus:     models.PayPaid,
		Status:            models.StatusConfirmed,
		RazorpayOrderID:   req.RazorpayOrderID,
		RazorpayPaymentID: req.RazorpayPaymentID,
	}

	// single-use check and create share one transaction; the partial unique
	// index on razorpay_order_id backs it up against concurrent replays
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var used int64
		err := tx.Model(&models.Order{}).
			Where("razorpay_order_id = ? OR razorpay_payment_id = ?", req.RazorpayOrderID, req.RazorpayPaymentID).
			Count(&used).Error
		if err != nil {
			return errors.Wrap(err, "check payment reuse")
		}
		if used > 0 {
			return ErrPaymentRecorded
		}
		if err := tx.Create(order).Error; err != nil {
			return errors.Wrap(err, "create order")
		}
		if err := tx.Where("user_id = ?", order.UserID).Delete(&models.CartItem{}).Error; err != nil {
			return errors.Wrap(err, "clear cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.getOrder(ctx, order.ID)
}

// Cancel flips the order to cancelled (one-way) and, for paid online orders,
// raises a refund. Refund fields are only written from the gateway's answer;
// until then the row reads as refund-pending.
func (s *OrderService) Cancel(ctx context.Context, orderID, userID uuid.UUID, isAdmin bool) (*models.Order, error) {
	if !s.acquire(orderID) {
		return nil, ErrTransitionInFlight
	}
	defer s.release(orderID)

	order, err := s.ownedOrder(ctx, orderID, userID, isAdmin)
	if err != nil {
		return nil, err
	}
	if !lifecycle.CanCancel(*order) {
		return nil, ErrNotCancellable
	}

	err = s.db.WithContext(ctx).Model(order).Updates(map[string]interface{}{
		"status":     models.StatusCancelled,
		"updated_at": time.Now(),
	}).Error
	if err != nil {
		return nil, errors.Wrap(err, "cancel order")
	}
	order.Status = models.StatusCancelled

	if lifecycle.NeedsRefund(*order) {
		s.refund(ctx, order)
	}

	return s.getOrder(ctx, orderID)
}

// refund asks the gateway for the money back and persists whatever it
// confirms. A failed call leaves the row cancelled with no refund fields;
// the badge stays refund-pending and the request can be retried by support.
func (s *OrderService) refund(ctx context.Context, order *models.Order) {
	// refund what was actually collected: the advance for partial
	// payments, the full amount otherwise
	amount := order.FinalTotal
	if order.PaymentType == models.OnlineAdvance {
		amount = pricing.AdvanceOf(order.FinalTotal)
	}

	gctx, cancel := context.WithTimeout(ctx, gatewayTimeout)
	defer cancel()

	res, err := s.gateway.Refund(gctx, order.RazorpayPaymentID, payments.ToPaise(amount))
	if err != nil {
		logrus.WithError(err).WithField("order_id", order.ID).Warn("refund request failed, order left refund-pending")
		return
	}

	updates := map[string]interface{}{
		"refund_id":     res.ID,
		"refund_status": res.Status,
		"updated_at":    time.Now(),
	}
	if res.Status == "processed" {
		updates["payment_status"] = models.PayRefunded
	}
	if err := s.db.WithContext(ctx).Model(order).Updates(updates).Error; err != nil {
		logrus.WithError(err).WithField("order_id", order.ID).Error("failed to persist refund confirmation")
	}
}

// Return requests a return; legal only for completed orders.
func (s *OrderService) Return(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	if !s.acquire(orderID) {
		return nil, ErrTransitionInFlight
	}
	defer s.release(orderID)

	order, err := s.ownedOrder(ctx, orderID, userID, false)
	if err != nil {
		return nil, err
	}
	if !lifecycle.CanReturn(*order) {
		return nil, ErrNotReturnable
	}

	err = s.db.WithContext(ctx).Model(order).Updates(map[string]interface{}{
		"status":     models.StatusReturned,
		"updated_at": time.Now(),
	}).Error
	if err != nil {
		return nil, errors.Wrap(err, "return order")
	}
	return s.getOrder(ctx, orderID)
}

// MarkPaid is the admin action for COD money collected on the day.
func (s *OrderService) MarkPaid(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !lifecycle.CanMarkPaid(*order) {
		return nil, ErrAlreadyPaid
	}

	err = s.db.WithContext(ctx).Model(order).Updates(map[string]interface{}{
		"payment_status": models.PayPaid,
		"updated_at":     time.Now(),
	}).Error
	if err != nil {
		return nil, errors.Wrap(err, "mark paid")
	}
	return s.getOrder(ctx, orderID)
}

// Advance moves an active order forward (pending → confirmed → completed).
func (s *OrderService) Advance(ctx context.Context, orderID uuid.UUID, target string) (*models.Order, error) {
	if target != models.StatusConfirmed && target != models.StatusCompleted {
		return nil, ErrBadStatusTarget
	}

	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !lifecycle.CanCancel(*order) { // cancelled/returned rows never move again
		return nil, ErrBadStatusTarget
	}

	err = s.db.WithContext(ctx).Model(order).Updates(map[string]interface{}{
		"status":     target,
		"updated_at": time.Now(),
	}).Error
	if err != nil {
		return nil, errors.Wrap(err, "advance order")
	}
	return s.getOrder(ctx, orderID)
}

func (s *OrderService) ownedOrder(ctx context.Context, orderID, userID uuid.UUID, isAdmin bool) (*models.Order, error) {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListOrders returns a user's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&orders).Error
	return orders, errors.Wrap(err, "list orders")
}

// AdminOrder is an order joined with the customer it belongs to.
type AdminOrder struct {
	models.Order
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
}

// AdminListOrders returns every order with the owning profile's name and
// phone attached.
func (s *OrderService) AdminListOrders(ctx context.Context) ([]AdminOrder, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).Preload("Items").Order("created_at desc").Find(&orders).Error
	if err != nil {
		return nil, errors.Wrap(err, "list all orders")
	}

	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.UserID)
	}
	var profiles []models.Profile
	if len(ids) > 0 {
		if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&profiles).Error; err != nil {
			return nil, errors.Wrap(err, "load profiles")
		}
	}
	byID := make(map[uuid.UUID]models.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	out := make([]AdminOrder, 0, len(orders))
	for _, o := range orders {
		row := AdminOrder{Order: o, CustomerName: "Customer", CustomerPhone: "-"}
		if p, ok := byID[o.UserID]; ok {
			if p.FullName != "" {
				row.CustomerName = p.FullName
			}
			if p.Phone != "" {
				row.CustomerPhone = p.Phone
			}
		}
		out = append(out, row)
	}
	return out, nil
}
