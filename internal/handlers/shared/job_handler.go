package handlers

import (
	"time"

	"haulgo/internal/middleware"
	"haulgo/internal/models"
	"haulgo/internal/services"
	"haulgo/internal/utils"
	"haulgo/internal/validators"

	"github.com/gin-gonic/gin"
)

// JobHandler exposes the driver-side job board.
type JobHandler struct {
	assignmentService services.AssignmentService
	bookingService    services.BookingService
}

func NewJobHandler(assignmentService services.AssignmentService, bookingService services.BookingService) *JobHandler {
	return &JobHandler{
		assignmentService: assignmentService,
		bookingService:    bookingService,
	}
}

// ListOpenJobs returns pending bookings the driver's vehicle can serve
func (h *JobHandler) ListOpenJobs(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	params := utils.GetPaginationParams(c)

	jobs, total, err := h.assignmentService.ListOpenJobs(c.Request.Context(), actor, params)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Open jobs retrieved successfully", jobs, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

// ListMyJobs returns the driver's own jobs; ?filter=active|completed
func (h *JobHandler) ListMyJobs(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	params := utils.GetPaginationParams(c)

	var statuses []models.BookingStatus
	switch c.Query("filter") {
	case "active":
		statuses = []models.BookingStatus{models.BookingStatusAccepted, models.BookingStatusInProgress}
	case "completed":
		statuses = []models.BookingStatus{models.BookingStatusCompleted}
	case "":
	default:
		utils.BadRequestResponse(c, "filter must be one of: active, completed")
		return
	}

	jobs, total, err := h.assignmentService.ListDriverJobs(c.Request.Context(), actor, statuses, params)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Jobs retrieved successfully", jobs, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

// AcceptJob claims a pending booking for the driver
func (h *JobHandler) AcceptJob(c *gin.Context) {
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

	booking, err := h.assignmentService.AcceptBooking(c.Request.Context(), actor, bookingID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Job accepted successfully", booking)
}

// StartJob moves an accepted booking to in progress
func (h *JobHandler) StartJob(c *gin.Context) {
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

	booking, err := h.bookingService.StartTrip(c.Request.Context(), actor, bookingID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Trip started successfully", booking)
}

// CompleteJob finishes an in-progress booking
func (h *JobHandler) CompleteJob(c *gin.Context) {
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
		ActualPrice *float64 `json:"actual_price"`
	}
	if err := c.ShouldBindJSON(&request); err != nil && err.Error() != "EOF" {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	booking, err := h.bookingService.CompleteTrip(c.Request.Context(), actor, bookingID, request.ActualPrice)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Trip completed successfully", booking)
}

// Earnings summarizes the driver's completed-trip revenue;
// ?period=today|week|month|all
func (h *JobHandler) Earnings(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var since *time.Time
	now := time.Now()
	switch c.Query("period") {
	case "today":
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		since = &start
	case "week":
		start := now.AddDate(0, 0, -7)
		since = &start
	case "month":
		start := now.AddDate(0, -1, 0)
		since = &start
	case "", "all":
	default:
		utils.BadRequestResponse(c, "period must be one of: today, week, month, all")
		return
	}

	summary, err := h.assignmentService.DriverEarnings(c.Request.Context(), actor, since)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Earnings retrieved successfully", summary)
}

// SetAvailability toggles whether the driver appears in dispatch
func (h *JobHandler) SetAvailability(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request struct {
		Available *bool `json:"available" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "available is required")
		return
	}

	if err := h.assignmentService.SetDriverAvailability(c.Request.Context(), actor, *request.Available); err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Availability updated successfully", gin.H{"available": *request.Available})
}
