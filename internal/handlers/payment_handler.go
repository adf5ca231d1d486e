package handlers

import (
	"net/http"

	"kl-decors-backend/internal/lifecycle"
	"kl-decors-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PaymentHandler struct {
	orders *service.OrderService
	keyID  string
}

func NewPaymentHandler(orders *service.OrderService, razorpayKeyID string) *PaymentHandler {
	return &PaymentHandler{orders: orders, keyID: razorpayKeyID}
}

type CreatePaymentRequest struct {
	CouponUsed bool   `json:"coupon_used"`
	OnlineType string `json:"online_type" binding:"required"`
}

// --- POST: Create a Razorpay order for the current cart ---
// The amount is computed server-side from the cart; the client never sends
// a figure to charge.
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	gwOrder, err := h.orders.CreatePaymentOrder(c.Request.Context(), currentUser(c), req.CouponUsed, req.OnlineType)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": gin.H{
			"id":       gwOrder.ID,
			"amount":   gwOrder.Amount,
			"currency": gwOrder.Currency,
		},
		"key_id": h.keyID,
	})
}

type VerifyPaymentRequest struct {
	RazorpayOrderID   string    `json:"razorpay_order_id"`
	RazorpayPaymentID string    `json:"razorpay_payment_id"`
	RazorpaySignature string    `json:"razorpay_signature"`
	PayoutID          uuid.UUID `json:"payout_id"`
	PaymentType       string    `json:"payment_type"`
	CouponUsed        bool      `json:"coupon_used"`
}

// --- POST: Verify the checkout callback signature and record the order ---
func (h *PaymentHandler) Verify(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid input"})
		return
	}

	order, err := h.orders.VerifyPayment(c.Request.Context(), service.VerifyRequest{
		RazorpayOrderID:   req.RazorpayOrderID,
		RazorpayPaymentID: req.RazorpayPaymentID,
		RazorpaySignature: req.RazorpaySignature,
		UserID:            currentUser(c),
		PaymentType:       req.PaymentType,
		PayoutID:          req.PayoutID,
		CouponUsed:        req.CouponUsed,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"order":   order,
		"badge":   lifecycle.Derive(*order),
	})
}
