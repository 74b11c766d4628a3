package routes

import (
	"haulgo/internal/middleware"

	handlers "haulgo/internal/handlers/shared"

	"github.com/gin-gonic/gin"
)

// SetupVehicleRoutes wires fleet management
func SetupVehicleRoutes(r *gin.RouterGroup, vehicleHandler *handlers.VehicleHandler, jwtSecret string) {
	vehicles := r.Group("/vehicles")
	vehicles.Use(middleware.AuthRequired(jwtSecret))
	{
		vehicles.GET("/available", vehicleHandler.ListAvailableVehicles)
		vehicles.GET("/:id", vehicleHandler.GetVehicle)
	}

	fleet := r.Group("/vehicles")
	fleet.Use(middleware.AuthRequired(jwtSecret), middleware.CompanyRequired())
	{
		fleet.POST("", vehicleHandler.CreateVehicle)
		fleet.GET("", vehicleHandler.ListCompanyVehicles)
		fleet.PUT("/:id", vehicleHandler.UpdateVehicle)
		fleet.DELETE("/:id", vehicleHandler.DeactivateVehicle)
		fleet.PUT("/:id/assign", vehicleHandler.AssignDriver)
		fleet.PUT("/:id/unassign", vehicleHandler.UnassignDriver)
	}
}
