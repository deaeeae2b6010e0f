package routes

import (
	"timeswap/handlers"
	"timeswap/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterSlotRoutes registers slot browsing and owner management.
func RegisterSlotRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/slots")
	{
		api.GET("", hb.ListSlotsHandler)

		protected := api.Group("")
		protected.Use(middleware.JWTAuthMiddleware())
		protected.GET("/mine", hb.ListMySlotsHandler)
		protected.POST("", hb.CreateSlotHandler)
		protected.PATCH("/:id", hb.UpdateSlotHandler)
		protected.DELETE("/:id", hb.DeactivateSlotHandler)

		api.GET("/:id", hb.GetSlotHandler)
	}
}

// RegisterBookingRoutes registers the booking lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	bookingGroup := r.Group("/api/bookings")
	{
		bookingGroup.Use(middleware.JWTAuthMiddleware())
		bookingGroup.POST("", hb.CreateBookingHandler)
		bookingGroup.GET("", hb.ListBookingsHandler)
		bookingGroup.GET("/:id", hb.GetBookingHandler)
		bookingGroup.POST("/:id/confirm", hb.ConfirmBookingHandler)
		bookingGroup.POST("/:id/complete", hb.CompleteBookingHandler)
		bookingGroup.POST("/:id/cancel", hb.CancelBookingHandler)
		bookingGroup.POST("/:id/review", hb.ReviewBookingHandler)
	}
}
