package handlers

import (
	"net/http"
	"strconv"
	"time"

	"timeswap/models"
	"timeswap/services/slot"

	"github.com/gin-gonic/gin"
)

const defaultListLimit = 50

type SlotHandler struct {
	Slots slot.SlotService
}

func NewSlotHandler(slots slot.SlotService) *SlotHandler {
	return &SlotHandler{Slots: slots}
}

type updateSlotRequest struct {
	Title           *string    `json:"title"`
	DateTime        *time.Time `json:"dateTime"`
	Duration        *int       `json:"duration"`
	Cost            *int64     `json:"cost"`
	MaxParticipants *int       `json:"maxParticipants"`
}

func (r updateSlotRequest) patch() models.SlotPatch {
	return models.SlotPatch{
		Title:           r.Title,
		DateTime:        r.DateTime,
		Duration:        r.Duration,
		Cost:            r.Cost,
		MaxParticipants: r.MaxParticipants,
	}
}

func (h *SlotHandler) CreateSlotHandler(c *gin.Context) {
	owner, ok := actorID(c)
	if !ok {
		return
	}
	var in slot.CreateSlotInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	s, err := h.Slots.CreateSlot(c.Request.Context(), owner, in)
	if err != nil {
		respondError(c, err, "Failed to create slot")
		return
	}
	c.JSON(http.StatusCreated, s)
}

// ListSlotsHandler returns bookable slots, soonest first.
func (h *SlotHandler) ListSlotsHandler(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	slots, err := h.Slots.ListAvailable(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err, "Failed to list slots")
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

func (h *SlotHandler) ListMySlotsHandler(c *gin.Context) {
	owner, ok := actorID(c)
	if !ok {
		return
	}
	slots, err := h.Slots.ListByOwner(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err, "Failed to list slots")
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

func (h *SlotHandler) GetSlotHandler(c *gin.Context) {
	s, err := h.Slots.GetSlot(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to load slot")
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *SlotHandler) UpdateSlotHandler(c *gin.Context) {
	owner, ok := actorID(c)
	if !ok {
		return
	}
	var req updateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	s, err := h.Slots.UpdateSlot(c.Request.Context(), c.Param("id"), owner, req.patch())
	if err != nil {
		respondError(c, err, "Failed to update slot")
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *SlotHandler) DeactivateSlotHandler(c *gin.Context) {
	owner, ok := actorID(c)
	if !ok {
		return
	}
	if err := h.Slots.DeactivateSlot(c.Request.Context(), c.Param("id"), owner); err != nil {
		respondError(c, err, "Failed to deactivate slot")
		return
	}
	c.Status(http.StatusNoContent)
}
