package routes

import (
	"haulgo/internal/middleware"

	handlers "haulgo/internal/handlers/shared"

	"github.com/gin-gonic/gin"
)

// SetupJobRoutes wires the driver job board
func SetupJobRoutes(r *gin.RouterGroup, jobHandler *handlers.JobHandler, jwtSecret string) {
	jobs := r.Group("/jobs")
	jobs.Use(middleware.AuthRequired(jwtSecret), middleware.DriverRequired())
	{
		jobs.GET("/available", jobHandler.ListOpenJobs)
		jobs.GET("/mine", jobHandler.ListMyJobs)
		jobs.PUT("/:id/accept", jobHandler.AcceptJob)
		jobs.PUT("/:id/start", jobHandler.StartJob)
		jobs.PUT("/:id/complete", jobHandler.CompleteJob)
		jobs.GET("/earnings", jobHandler.Earnings)
		jobs.PUT("/availability", jobHandler.SetAvailability)
	}
}
