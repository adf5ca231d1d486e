package handlers

import (
	"net/http"
	"time"

	"kl-decors-backend/internal/database"
	"kl-decors-backend/internal/lifecycle"
	"kl-decors-backend/internal/models"
	"kl-decors-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderHandler struct {
	db     *gorm.DB
	orders *service.OrderService
}

func NewOrderHandler(db *gorm.DB, orders *service.OrderService) *OrderHandler {
	return &OrderHandler{db: db, orders: orders}
}

// orderView pairs an order with its derived badge so the frontend renders
// state without re-deriving it.
type orderView struct {
	models.Order
	Badge lifecycle.Badge `json:"badge"`
}

func withBadges(orders []models.Order) []orderView {
	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, orderView{Order: o, Badge: lifecycle.Derive(o)})
	}
	return views
}

// --- GET: Current user's orders, newest first ---
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context(), currentUser(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	c.JSON(http.StatusOK, withBadges(orders))
}

type PlaceCODRequest struct {
	PayoutID   uuid.UUID `json:"payout_id" binding:"required"`
	CouponUsed bool      `json:"coupon_used"`
}

// --- POST: Place a cash-on-delivery order ---
func (h *OrderHandler) PlaceCOD(c *gin.Context) {
	var req PlaceCODRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	order, err := h.orders.PlaceCODOrder(c.Request.Context(), currentUser(c), req.PayoutID, req.CouponUsed)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, orderView{Order: *order, Badge: lifecycle.Derive(*order)})
}

// --- POST: Cancel an order. Paid online orders are refunded. ---
func (h *OrderHandler) Cancel(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	order, err := h.orders.Cancel(c.Request.Context(), orderID, currentUser(c), isAdmin(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orderView{Order: *order, Badge: lifecycle.Derive(*order)})
}

// --- POST: Return a completed order ---
func (h *OrderHandler) Return(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	order, err := h.orders.Return(c.Request.Context(), orderID, currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orderView{Order: *order, Badge: lifecycle.Derive(*order)})
}

// ============================================
// Admin endpoints
// ============================================

// --- GET: All orders with customer info ---
func (h *OrderHandler) AdminList(c *gin.Context) {
	orders, err := h.orders.AdminListOrders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	type adminView struct {
		service.AdminOrder
		Badge lifecycle.Badge `json:"badge"`
	}
	views := make([]adminView, 0, len(orders))
	for _, o := range orders {
		views = append(views, adminView{AdminOrder: o, Badge: lifecycle.Derive(o.Order)})
	}
	c.JSON(http.StatusOK, views)
}

// --- POST: Record that an order has been paid offline ---
func (h *OrderHandler) MarkPaid(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	order, err := h.orders.MarkPaid(c.Request.Context(), orderID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orderView{Order: *order, Badge: lifecycle.Derive(*order)})
}

type AdvanceRequest struct {
	Status string `json:"status" binding:"required"`
}

// --- POST: Move an order to confirmed or completed ---
func (h *OrderHandler) Advance(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var req AdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	order, err := h.orders.Advance(c.Request.Context(), orderID, req.Status)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orderView{Order: *order, Badge: lifecycle.Derive(*order)})
}

// --- GET: Revenue report ---
// Accepts ?start=2026-01-01&end=2026-01-31; defaults to the last 30 days.
func (h *OrderHandler) Report(c *gin.Context) {
	end := time.Now()
	start := end.AddDate(0, 0, -30)

	if s := c.Query("start"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start date, use YYYY-MM-DD"})
			return
		}
		start = parsed
	}
	if e := c.Query("end"); e != "" {
		parsed, err := time.Parse("2006-01-02", e)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end date, use YYYY-MM-DD"})
			return
		}
		// inclusive end date
		end = parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start date must not be after end date"})
		return
	}

	revenue, err := database.GetRevenueReport(h.db, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate report"})
		return
	}

	// Top packages by booked quantity within the range
	type topPackage struct {
		Name     string `json:"name"`
		Quantity int    `json:"quantity"`
	}
	var top []topPackage
	err = h.db.Model(&models.OrderItem{}).
		Select("order_items.name, SUM(order_items.qty) AS quantity").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.created_at BETWEEN ? AND ?", start, end).
		Where("orders.status <> ?", models.StatusCancelled).
		Group("order_items.name").
		Order("quantity DESC").
		Limit(5).
		Scan(&top).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate report"})
		return
	}

	var recent []models.Order
	if err := h.db.Preload("Items").Order("created_at DESC").Limit(10).Find(&recent).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate report"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"start":         start.Format("2006-01-02"),
		"end":           end.Format("2006-01-02"),
		"total_revenue": revenue.TotalRevenue,
		"total_orders":  revenue.TotalCount,
		"top_packages":  top,
		"recent_orders": withBadges(recent),
	})
}
