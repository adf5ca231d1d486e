package handlers

import (
	"net/http"

	"kl-decors-backend/internal/models"
	"kl-decors-backend/internal/pricing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CartHandler struct {
	db *gorm.DB
}

func NewCartHandler(db *gorm.DB) *CartHandler {
	return &CartHandler{db: db}
}

// --- GET: Cart contents with subtotal ---
func (h *CartHandler) GetCart(c *gin.Context) {
	userID := currentUser(c)

	var cart []models.CartItem
	if err := h.db.Where("user_id = ?", userID).Order("created_at").Find(&cart).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":    cart,
		"subtotal": pricing.Subtotal(cart),
	})
}

type AddToCartRequest struct {
	PackageID uint `json:"package_id" binding:"required"`
	Qty       int  `json:"qty"`
}

// --- POST: Add a package to the cart ---
// Name and price are snapshotted from the catalog at add time.
func (h *CartHandler) AddToCart(c *gin.Context) {
	userID := currentUser(c)

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if req.Qty < 1 {
		req.Qty = 1
	}

	var pkg models.Package
	if err := h.db.Where("is_active = ?", true).First(&pkg, req.PackageID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Package not found"})
		return
	}

	// same package twice bumps the quantity instead of duplicating the row
	var existing models.CartItem
	err := h.db.Where("user_id = ? AND package_id = ?", userID, pkg.ID).First(&existing).Error
	if err == nil {
		existing.Qty += req.Qty
		if err := h.db.Save(&existing).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
			return
		}
		c.JSON(http.StatusOK, existing)
		return
	}

	item := models.CartItem{
		ID:        uuid.New(),
		UserID:    userID,
		PackageID: pkg.ID,
		Name:      pkg.Title,
		Price:     pkg.Price,
		Qty:       req.Qty,
		ImageURL:  pkg.ImageURL,
	}
	if err := h.db.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add to cart"})
		return
	}
	c.JSON(http.StatusCreated, item)
}

type UpdateQtyRequest struct {
	Qty int `json:"qty" binding:"required"`
}

// --- PUT: Change quantity (minimum 1) ---
func (h *CartHandler) UpdateQty(c *gin.Context) {
	userID := currentUser(c)
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cart item ID"})
		return
	}

	var req UpdateQtyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Qty < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity must be at least 1"})
		return
	}

	result := h.db.Model(&models.CartItem{}).
		Where("id = ? AND user_id = ?", itemID, userID).
		Update("qty", req.Qty)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update quantity"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Quantity updated"})
}

// --- DELETE: Remove an item ---
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID := currentUser(c)
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cart item ID"})
		return
	}

	if err := h.db.Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.CartItem{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove item"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed"})
}

// --- GET: Bill preview for the checkout screen ---
// Every figure comes from the one pricing calculator; the client never does
// its own arithmetic.
func (h *CartHandler) Quote(c *gin.Context) {
	userID := currentUser(c)

	var cart []models.CartItem
	if err := h.db.Where("user_id = ?", userID).Order("created_at").Find(&cart).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
		return
	}

	var profile models.Profile
	if err := h.db.First(&profile, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}

	couponApplied := c.Query("coupon") == "true"
	method := c.DefaultQuery("method", models.PaymentCOD)
	onlineType := c.DefaultQuery("type", models.OnlineFull)

	quote, err := pricing.Compute(cart, couponApplied, profile.Coins, method, onlineType)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"quote":           quote,
		"coins":           profile.Coins,
		"coupon_eligible": pricing.EligibleForCoupon(profile.Coins),
	})
}
