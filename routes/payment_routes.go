package routes

import (
	"haulgo/internal/middleware"

	handlers "haulgo/internal/handlers/shared"

	"github.com/gin-gonic/gin"
)

// SetupPaymentRoutes wires the payment reconciliation endpoints. The
// gateway-facing writes carry an extra per-user budget on top of the
// global per-IP limit.
func SetupPaymentRoutes(r *gin.RouterGroup, paymentHandler *handlers.PaymentHandler, jwtSecret string, gatewayLimit gin.HandlerFunc) {
	payments := r.Group("/payments")
	payments.Use(middleware.AuthRequired(jwtSecret))
	{
		payments.POST("/initialize", gatewayLimit, paymentHandler.InitializePayment)
		payments.GET("/verify/:reference", paymentHandler.VerifyPayment)
		payments.GET("/mine", paymentHandler.ListMyPayments)
		payments.GET("/:id", paymentHandler.GetPayment)
		payments.GET("/bookings/:bookingId", paymentHandler.ListBookingPayments)
		// Ownership is enforced in the service; the payer refunds their own
		// payment, admins refund anyone's.
		payments.POST("/:id/refund", paymentHandler.RefundPayment)
	}

	cash := r.Group("/payments/cash")
	cash.Use(middleware.AuthRequired(jwtSecret), middleware.DriverRequired())
	{
		cash.POST("/:bookingId", gatewayLimit, paymentHandler.RecordCashPayment)
	}
}
