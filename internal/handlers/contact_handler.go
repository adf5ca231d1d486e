package handlers

import (
	"fmt"
	"net/http"

	"kl-decors-backend/internal/mailer"
	"kl-decors-backend/internal/models"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ContactHandler struct {
	db    *gorm.DB
	mail  mailer.Sender
	inbox string
}

func NewContactHandler(db *gorm.DB, mail mailer.Sender, inbox string) *ContactHandler {
	return &ContactHandler{db: db, mail: mail, inbox: inbox}
}

type ContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
}

// --- POST: Contact form submission ---
// The message is persisted first; mail delivery is best-effort and never
// fails the request.
func (h *ContactHandler) Submit(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name, email and message are required"})
		return
	}

	msg := models.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	}
	if err := h.db.Create(&msg).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save message"})
		return
	}

	if h.mail != nil && h.inbox != "" {
		subject := fmt.Sprintf("New enquiry from %s", req.Name)
		body := fmt.Sprintf("From: %s <%s>\n\n%s", req.Name, req.Email, req.Message)
		if err := h.mail.Send(req.Email, h.inbox, subject, body); err != nil {
			log.Warnf("⚠️ Contact mail delivery failed: %v", err)
		}
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Thanks for reaching out! We'll get back to you soon."})
}

// --- GET: All contact messages (admin) ---
func (h *ContactHandler) AdminList(c *gin.Context) {
	var messages []models.ContactMessage
	if err := h.db.Order("created_at DESC").Find(&messages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}
	c.JSON(http.StatusOK, messages)
}
