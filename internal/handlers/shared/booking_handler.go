package handlers

import (
	"haulgo/internal/middleware"
	"haulgo/internal/models"
	"haulgo/internal/services"
	"haulgo/internal/utils"
	"haulgo/internal/validators"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	bookingService    services.BookingService
	assignmentService services.AssignmentService
}

func NewBookingHandler(bookingService services.BookingService, assignmentService services.AssignmentService) *BookingHandler {
	return &BookingHandler{
		bookingService:    bookingService,
		assignmentService: assignmentService,
	}
}

// CreateBooking opens a new delivery request
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request services.CreateBookingRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if err := validators.ValidateCreateBooking(&request); err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), actor, &request)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Booking created successfully", booking)
}

// GetBooking retrieves one booking
func (h *BookingHandler) GetBooking(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	bookingID, err := validators.ParseObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid booking ID")
		return
	}

	booking, err := h.bookingService.GetBooking(c.Request.Context(), actor, bookingID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Booking retrieved successfully", booking)
}

// ListBookings returns the caller's bookings, optionally filtered by status
func (h *BookingHandler) ListBookings(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	params := utils.GetPaginationParams(c)

	var status *models.BookingStatus
	if raw := c.Query("status"); raw != "" {
		s := models.BookingStatus(raw)
		status = &s
	}

	bookings, total, err := h.bookingService.ListCustomerBookings(c.Request.Context(), actor, status, params)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Bookings retrieved successfully", bookings, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

// CancelBooking cancels a pending or accepted booking
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	bookingID, err := validators.ParseObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid booking ID")
		return
	}

	var request struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&request); err != nil && err.Error() != "EOF" {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if err := validators.ValidateCancelReason(request.Reason); err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	booking, err := h.bookingService.CancelBooking(c.Request.Context(), actor, bookingID, request.Reason)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Booking cancelled successfully", booking)
}

// AssignDriver hands a pending booking to a specific driver
func (h *BookingHandler) AssignDriver(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	bookingID, err := validators.ParseObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid booking ID")
		return
	}

	var request struct {
		DriverID string `json:"driver_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "driver_id is required")
		return
	}

	driverID, err := validators.ParseObjectID(request.DriverID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid driver ID")
		return
	}

	booking, err := h.assignmentService.AssignDriver(c.Request.Context(), actor, bookingID, driverID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Driver assigned successfully", booking)
}

// UpdateStatus moves a booking along its lifecycle on the operator's behalf
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	bookingID, err := validators.ParseObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid booking ID")
		return
	}

	var request struct {
		Status      models.BookingStatus `json:"status" binding:"required"`
		ActualPrice *float64             `json:"actual_price"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "status is required")
		return
	}

	booking, err := h.bookingService.UpdateStatus(c.Request.Context(), actor, bookingID, request.Status, request.ActualPrice)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Booking status updated successfully", booking)
}

// RateBooking records the customer's rating for a completed booking
func (h *BookingHandler) RateBooking(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	bookingID, err := validators.ParseObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid booking ID")
		return
	}

	var request struct {
		Rating int    `json:"rating"`
		Review string `json:"review"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if err := validators.ValidateRating(request.Rating, request.Review); err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	booking, err := h.bookingService.RateBooking(c.Request.Context(), actor, bookingID, request.Rating, request.Review)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Booking rated successfully", booking)
}

// EstimatePrice quotes a trip without creating a booking
func (h *BookingHandler) EstimatePrice(c *gin.Context) {
	var request services.EstimateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if err := validators.ValidateEstimate(&request); err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	estimate, err := h.bookingService.EstimatePrice(c.Request.Context(), &request)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Estimate calculated successfully", estimate)
}
