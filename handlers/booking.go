package handlers

import (
	"net/http"

	"timeswap/models"
	"timeswap/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyHeader lets clients retry a booking request safely.
const IdempotencyHeader = "Idempotency-Key"

type BookingHandler struct {
	Bookings booking.BookingService
}

func NewBookingHandler(bookings booking.BookingService) *BookingHandler {
	return &BookingHandler{Bookings: bookings}
}

// CreateBookingHandler reserves a seat and debits the student.
func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	student, ok := actorID(c)
	if !ok {
		return
	}
	var req struct {
		SlotID string `json:"slotId" binding:"required"`
		Notes  string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	b, err := h.Bookings.Create(c.Request.Context(), booking.CreateInput{
		StudentID:      student,
		SlotID:         req.SlotID,
		Notes:          req.Notes,
		IdempotencyKey: c.GetHeader(IdempotencyHeader),
	})
	if err != nil {
		getLogger(c).Debug("booking rejected", zap.String("slotId", req.SlotID), zap.Error(err))
		respondError(c, err, "Failed to create booking")
		return
	}
	c.JSON(http.StatusCreated, b)
}

// ListBookingsHandler accepts ?role=student|mentor; no role lists both sides.
func (h *BookingHandler) ListBookingsHandler(c *gin.Context) {
	user, ok := actorID(c)
	if !ok {
		return
	}
	role := models.ReviewRole(c.Query("role"))
	if role != "" && !role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be student or mentor"})
		return
	}
	bookings, err := h.Bookings.ListForUser(c.Request.Context(), user, role)
	if err != nil {
		respondError(c, err, "Failed to list bookings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	user, ok := actorID(c)
	if !ok {
		return
	}
	b, err := h.Bookings.Get(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		respondError(c, err, "Failed to load booking")
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) ConfirmBookingHandler(c *gin.Context) {
	user, ok := actorID(c)
	if !ok {
		return
	}
	b, err := h.Bookings.Confirm(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		respondError(c, err, "Failed to confirm booking")
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) CompleteBookingHandler(c *gin.Context) {
	user, ok := actorID(c)
	if !ok {
		return
	}
	b, err := h.Bookings.Complete(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		respondError(c, err, "Failed to complete booking")
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) CancelBookingHandler(c *gin.Context) {
	user, ok := actorID(c)
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	// body is optional
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}
	}
	b, err := h.Bookings.Cancel(c.Request.Context(), c.Param("id"), user, req.Reason)
	if err != nil {
		respondError(c, err, "Failed to cancel booking")
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) ReviewBookingHandler(c *gin.Context) {
	user, ok := actorID(c)
	if !ok {
		return
	}
	var req struct {
		Role    models.ReviewRole `json:"role"`
		Rating  int               `json:"rating"`
		Comment string            `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	out, err := h.Bookings.SubmitReview(c.Request.Context(), booking.ReviewInput{
		BookingID: c.Param("id"),
		ActorID:   user,
		Role:      req.Role,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		respondError(c, err, "Failed to submit review")
		return
	}
	c.JSON(http.StatusOK, out)
}
