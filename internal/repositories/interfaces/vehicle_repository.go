package interfaces

import (
	"context"

	"haulgo/internal/models"
	"haulgo/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VehicleRepository persists vehicles. Reserve, Release, AssignDriver and
// UnassignDriver are compare-and-set operations: they return (nil, nil)
// when the stored document no longer satisfies the precondition.
type VehicleRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, vehicle *models.Vehicle) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error)
	GetByPlateNumber(ctx context.Context, plateNumber string) (*models.Vehicle, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Availability
	Reserve(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error)
	Release(ctx context.Context, id primitive.ObjectID) error

	// Assignment
	AssignDriver(ctx context.Context, vehicleID, driverID primitive.ObjectID) (*models.Vehicle, error)
	UnassignDriver(ctx context.Context, vehicleID, driverID primitive.ObjectID) (*models.Vehicle, error)

	// Trip statistics
	IncrementTripStats(ctx context.Context, id primitive.ObjectID, revenue float64) error

	// Queries
	ListByCompany(ctx context.Context, companyID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Vehicle, int64, error)
	ListAvailable(ctx context.Context, category *models.VehicleCategory, params *utils.PaginationParams) ([]*models.Vehicle, int64, error)
}
