package handlers

import (
	"net/http"

	"kl-decors-backend/internal/chat"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	bot *chat.Responder
}

func NewChatHandler(bot *chat.Responder) *ChatHandler {
	return &ChatHandler{bot: bot}
}

type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// --- POST: Storefront chatbot ---
func (h *ChatHandler) Ask(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	reply, err := h.bot.Reply(c.Request.Context(), req.Message)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Assistant is unavailable right now, please try again"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}
