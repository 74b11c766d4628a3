package routes

import (
	"haulgo/internal/middleware"

	handlers "haulgo/internal/handlers/shared"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes wires the customer-facing booking endpoints
func SetupBookingRoutes(r *gin.RouterGroup, bookingHandler *handlers.BookingHandler, jwtSecret string) {
	bookings := r.Group("/bookings")
	bookings.Use(middleware.AuthRequired(jwtSecret))
	{
		bookings.POST("", bookingHandler.CreateBooking)
		bookings.GET("", bookingHandler.ListBookings)
		bookings.GET("/:id", bookingHandler.GetBooking)
		bookings.PUT("/:id/cancel", bookingHandler.CancelBooking)
		bookings.PUT("/:id/assign-driver", middleware.CompanyRequired(), bookingHandler.AssignDriver)
		bookings.PUT("/:id/status", bookingHandler.UpdateStatus)
		bookings.POST("/:id/rate", bookingHandler.RateBooking)
	}

	// Quotes need no account
	r.POST("/estimates", bookingHandler.EstimatePrice)
}
