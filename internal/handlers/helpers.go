package handlers

import (
	"net/http"

	"kl-decors-backend/internal/pricing"
	"kl-decors-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// currentUser pulls the authenticated user id set by the auth middleware.
func currentUser(c *gin.Context) uuid.UUID {
	return c.MustGet("userID").(uuid.UUID)
}

func isAdmin(c *gin.Context) bool {
	v, _ := c.Get("isAdmin")
	return v == true
}

// fail translates domain errors into HTTP responses. Validation problems are
// the caller's fault; everything else is ours.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pricing.ErrEmptyCart),
		errors.Is(err, pricing.ErrInvalidItem),
		errors.Is(err, pricing.ErrCouponIneligible),
		errors.Is(err, pricing.ErrInvalidPayable),
		errors.Is(err, service.ErrMissingFields),
		errors.Is(err, service.ErrBadPaymentType),
		errors.Is(err, service.ErrBadStatusTarget):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidSignature):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrPayoutNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotCancellable),
		errors.Is(err, service.ErrNotReturnable),
		errors.Is(err, service.ErrAlreadyPaid),
		errors.Is(err, service.ErrPaymentRecorded),
		errors.Is(err, service.ErrTransitionInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
	}
}
