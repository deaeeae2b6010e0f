package handlers

import (
	"net/http"

	"timeswap/middleware"
	"timeswap/models"
	"timeswap/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var reasonStatus = map[models.Reason]int{
	models.ReasonNotFound:        http.StatusNotFound,
	models.ReasonBookingNotFound: http.StatusNotFound,
	models.ReasonUserNotFound:    http.StatusNotFound,

	models.ReasonForbidden:    http.StatusForbidden,
	models.ReasonSelfBooking:  http.StatusForbidden,
	models.ReasonUserInactive: http.StatusForbidden,

	models.ReasonFull:              http.StatusConflict,
	models.ReasonInactive:          http.StatusConflict,
	models.ReasonExpired:           http.StatusConflict,
	models.ReasonDuplicateBooking:  http.StatusConflict,
	models.ReasonInvalidTransition: http.StatusConflict,
	models.ReasonAlreadyReviewed:   http.StatusConflict,
	models.ReasonDuplicateRequest:  http.StatusConflict,
	models.ReasonSlotLocked:        http.StatusConflict,
	models.ReasonUsernameTaken:     http.StatusConflict,

	models.ReasonInsufficientFunds: http.StatusPaymentRequired,

	models.ReasonInvalidAmount: http.StatusBadRequest,
	models.ReasonInvalidRating: http.StatusBadRequest,
	models.ReasonInvalidRole:   http.StatusBadRequest,
	models.ReasonInvalidSlot:   http.StatusBadRequest,
	models.ReasonInvalidInput:  http.StatusBadRequest,

	models.ReasonTransientConflict: http.StatusServiceUnavailable,
}

// StatusFor maps a service error to its HTTP status.
func StatusFor(err error) int {
	if reason, ok := models.ReasonOf(err); ok {
		if status, known := reasonStatus[reason]; known {
			return status
		}
	}
	return http.StatusInternalServerError
}

// respondError writes a rejection as {"error", "reason"} and anything else as
// a generic 500.
func respondError(c *gin.Context, err error, msg string) {
	reason, ok := models.ReasonOf(err)
	if !ok {
		getLogger(c).Error(msg, zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, msg, "")
		return
	}
	c.JSON(StatusFor(err), gin.H{"error": err.Error(), "reason": reason})
}

// actorID returns the authenticated user or aborts with 401.
func actorID(c *gin.Context) (string, bool) {
	id := c.GetString(middleware.ActorKey)
	if id == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return "", false
	}
	return id, true
}
