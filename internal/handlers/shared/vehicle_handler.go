package handlers

import (
	"haulgo/internal/middleware"
	"haulgo/internal/models"
	"haulgo/internal/services"
	"haulgo/internal/utils"
	"haulgo/internal/validators"

	"github.com/gin-gonic/gin"
)

type VehicleHandler struct {
	vehicleService    services.VehicleService
	assignmentService services.AssignmentService
}

func NewVehicleHandler(vehicleService services.VehicleService, assignmentService services.AssignmentService) *VehicleHandler {
	return &VehicleHandler{
		vehicleService:    vehicleService,
		assignmentService: assignmentService,
	}
}

// CreateVehicle registers a vehicle in the caller's fleet
func (h *VehicleHandler) CreateVehicle(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request services.CreateVehicleRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if err := validators.ValidateCreateVehicle(&request); err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	vehicle, err := h.vehicleService.CreateVehicle(c.Request.Context(), actor, &request)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Vehicle registered successfully", vehicle)
}

// GetVehicle retrieves one vehicle
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	vehicleID, err := validators.ParseObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid vehicle ID")
		return
	}

	vehicle, err := h.vehicleService.GetVehicle(c.Request.Context(), actor, vehicleID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Vehicle retrieved successfully", vehicle)
}

// UpdateVehicle edits fleet vehicle details
func (h *VehicleHandler) UpdateVehicle(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	vehicleID, err := validators.ParseObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid vehicle ID")
		return
	}

	var request services.UpdateVehicleRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if err := validators.ValidateUpdateVehicle(&request); err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	vehicle, err := h.vehicleService.UpdateVehicle(c.Request.Context(), actor, vehicleID, &request)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Vehicle updated successfully", vehicle)
}

// DeactivateVehicle retires a vehicle from the fleet
func (h *VehicleHandler) DeactivateVehicle(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	vehicleID, err := validators.ParseObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid vehicle ID")
		return
	}

	if err := h.vehicleService.DeactivateVehicle(c.Request.Context(), actor, vehicleID); err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Vehicle deactivated successfully", nil)
}

// ListCompanyVehicles returns the caller's fleet
func (h *VehicleHandler) ListCompanyVehicles(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	params := utils.GetPaginationParams(c)

	vehicles, total, err := h.vehicleService.ListCompanyVehicles(c.Request.Context(), actor, params)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Vehicles retrieved successfully", vehicles, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

// ListAvailableVehicles returns idle active vehicles; ?category= filters
func (h *VehicleHandler) ListAvailableVehicles(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	var category *models.VehicleCategory
	if raw := c.Query("category"); raw != "" {
		cat := models.VehicleCategory(raw)
		category = &cat
	}

	vehicles, total, err := h.vehicleService.ListAvailableVehicles(c.Request.Context(), category, params)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Available vehicles retrieved successfully", vehicles, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

// AssignDriver pairs the vehicle with a driver
func (h *VehicleHandler) AssignDriver(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	vehicleID, err := validators.ParseObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid vehicle ID")
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

	vehicle, err := h.assignmentService.AssignVehicle(c.Request.Context(), actor, vehicleID, driverID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Driver assigned successfully", vehicle)
}

// UnassignDriver detaches the vehicle's current driver
func (h *VehicleHandler) UnassignDriver(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	vehicleID, err := validators.ParseObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid vehicle ID")
		return
	}

	vehicle, err := h.assignmentService.UnassignVehicle(c.Request.Context(), actor, vehicleID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Driver unassigned successfully", vehicle)
}
