package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// User endpoints
	SignupHandler       gin.HandlerFunc
	GetMeHandler        gin.HandlerFunc
	DeactivateMeHandler gin.HandlerFunc
	GetUserByIDHandler  gin.HandlerFunc

	// Slot endpoints
	CreateSlotHandler     gin.HandlerFunc
	ListSlotsHandler      gin.HandlerFunc
	ListMySlotsHandler    gin.HandlerFunc
	GetSlotHandler        gin.HandlerFunc
	UpdateSlotHandler     gin.HandlerFunc
	DeactivateSlotHandler gin.HandlerFunc

	// Booking endpoints
	CreateBookingHandler   gin.HandlerFunc
	ListBookingsHandler    gin.HandlerFunc
	GetBookingHandler      gin.HandlerFunc
	ConfirmBookingHandler  gin.HandlerFunc
	CompleteBookingHandler gin.HandlerFunc
	CancelBookingHandler   gin.HandlerFunc
	ReviewBookingHandler   gin.HandlerFunc
}

// NewHandlerBundle wires the three handler groups into a bundle.
func NewHandlerBundle(users *UserHandler, slots *SlotHandler, bookings *BookingHandler) *HandlerBundle {
	return &HandlerBundle{
		SignupHandler:       users.SignupHandler,
		GetMeHandler:        users.GetMeHandler,
		DeactivateMeHandler: users.DeactivateMeHandler,
		GetUserByIDHandler:  users.GetUserByIDHandler,

		CreateSlotHandler:     slots.CreateSlotHandler,
		ListSlotsHandler:      slots.ListSlotsHandler,
		ListMySlotsHandler:    slots.ListMySlotsHandler,
		GetSlotHandler:        slots.GetSlotHandler,
		UpdateSlotHandler:     slots.UpdateSlotHandler,
		DeactivateSlotHandler: slots.DeactivateSlotHandler,

		CreateBookingHandler:   bookings.CreateBookingHandler,
		ListBookingsHandler:    bookings.ListBookingsHandler,
		GetBookingHandler:      bookings.GetBookingHandler,
		ConfirmBookingHandler:  bookings.ConfirmBookingHandler,
		CompleteBookingHandler: bookings.CompleteBookingHandler,
		CancelBookingHandler:   bookings.CancelBookingHandler,
		ReviewBookingHandler:   bookings.ReviewBookingHandler,
	}
}
