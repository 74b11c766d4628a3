package handlers

import (
	"haulgo/internal/middleware"
	"haulgo/internal/models"
	"haulgo/internal/repositories/interfaces"
	"haulgo/internal/services"
	"haulgo/internal/utils"
	"haulgo/internal/validators"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService services.PaymentService
}

func NewPaymentHandler(paymentService services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// InitializePayment opens a gateway transaction for a booking
func (h *PaymentHandler) InitializePayment(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request services.InitializePaymentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if err := validators.ValidateInitializePayment(&request); err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	response, err := h.paymentService.InitializePayment(c.Request.Context(), actor, &request)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Payment initialized successfully", response)
}

// VerifyPayment reconciles a reference against the gateway
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	reference := c.Param("reference")
	if err := validators.ValidatePaymentReference(reference); err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	payment, err := h.paymentService.VerifyPayment(c.Request.Context(), actor, reference)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Payment verified successfully", payment)
}

// RecordCashPayment settles a booking in cash, driver only
func (h *PaymentHandler) RecordCashPayment(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	bookingID, err := validators.ParseObjectID(c.Param("bookingId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid booking ID")
		return
	}

	payment, err := h.paymentService.RecordCashPayment(c.Request.Context(), actor, bookingID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Cash payment recorded successfully", payment)
}

// RefundPayment reverses a paid record, admin only
func (h *PaymentHandler) RefundPayment(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	paymentID, err := validators.ParseObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid payment ID")
		return
	}

	var request struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if err := validators.ValidateRefundReason(request.Reason); err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	payment, err := h.paymentService.RefundPayment(c.Request.Context(), actor, paymentID, request.Reason)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Payment refunded successfully", payment)
}

// GetPayment retrieves one payment record
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	paymentID, err := validators.ParseObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid payment ID")
		return
	}

	payment, err := h.paymentService.GetPayment(c.Request.Context(), actor, paymentID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Payment retrieved successfully", payment)
}

// ListMyPayments returns the caller's payment history; ?status= and
// ?method= narrow it
func (h *PaymentHandler) ListMyPayments(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	params := utils.GetPaginationParams(c)

	filter := &interfaces.PaymentFilter{}
	if raw := c.Query("status"); raw != "" {
		status := models.PaymentStatus(raw)
		filter.Status = &status
	}
	if raw := c.Query("method"); raw != "" {
		method := models.PaymentMethod(raw)
		filter.Method = &method
	}

	payments, total, err := h.paymentService.ListUserPayments(c.Request.Context(), actor, filter, params)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Payments retrieved successfully", payments, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

// ListBookingPayments returns the ledger rows tied to one booking
func (h *PaymentHandler) ListBookingPayments(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	bookingID, err := validators.ParseObjectID(c.Param("bookingId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid booking ID")
		return
	}

	payments, err := h.paymentService.ListBookingPayments(c.Request.Context(), actor, bookingID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Booking payments retrieved successfully", payments)
}
