package handlers

import (
	"net/http"
	"strings"

	"kl-decors-backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PayoutHandler struct {
	db *gorm.DB
}

func NewPayoutHandler(db *gorm.DB) *PayoutHandler {
	return &PayoutHandler{db: db}
}

type PayoutRequest struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	EventDate      string `json:"event_date"`
	EventTime      string `json:"event_time"`
	EventPlace     string `json:"event_place"`
	Address        string `json:"address"`
	Pincode        string `json:"pincode"`
	NearbyLocation string `json:"nearby_location"`
	PaymentMethod  string `json:"payment_method"`
	OnlineType     string `json:"online_type"`
}

// --- POST: Save event/delivery details for checkout ---
func (h *PayoutHandler) Create(c *gin.Context) {
	userID := currentUser(c)

	var req PayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	// nearby_location is the only optional field on the form
	required := map[string]string{
		"name":        req.Name,
		"phone":       req.Phone,
		"event_date":  req.EventDate,
		"event_time":  req.EventTime,
		"event_place": req.EventPlace,
		"address":     req.Address,
		"pincode":     req.Pincode,
	}
	var missing []string
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields", "fields": missing})
		return
	}

	method := strings.ToUpper(req.PaymentMethod)
	if method != models.PaymentCOD && method != models.PaymentOnline {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment_method must be COD or ONLINE"})
		return
	}
	onlineType := strings.ToUpper(req.OnlineType)
	if method == models.PaymentOnline {
		if onlineType != models.OnlineFull && onlineType != models.OnlineAdvance {
			c.JSON(http.StatusBadRequest, gin.H{"error": "online_type must be FULL or ADVANCE"})
			return
		}
	} else {
		onlineType = ""
	}

	payout := models.PayoutDetails{
		ID:             uuid.New(),
		UserID:         userID,
		Name:           req.Name,
		Phone:          req.Phone,
		EventDate:      req.EventDate,
		EventTime:      req.EventTime,
		EventPlace:     req.EventPlace,
		Address:        req.Address,
		Pincode:        req.Pincode,
		NearbyLocation: req.NearbyLocation,
		PaymentMethod:  method,
		OnlineType:     onlineType,
	}
	if err := h.db.Create(&payout).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save payout details"})
		return
	}
	c.JSON(http.StatusCreated, payout)
}

// --- GET: Most recent payout details for the current user ---
func (h *PayoutHandler) GetLatest(c *gin.Context) {
	userID := currentUser(c)

	var payout models.PayoutDetails
	err := h.db.Where("user_id = ?", userID).Order("created_at DESC").First(&payout).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No payout details found"})
		return
	}
	c.JSON(http.StatusOK, payout)
}
