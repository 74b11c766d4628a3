package interfaces

import (
	"context"

	"haulgo/internal/models"
	"haulgo/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DriverRepository persists driver profiles, keyed by the driver's user ID.
// SetAssignedVehicle and ClearAssignedVehicle are compare-and-set; they
// return (nil, nil) when the precondition failed.
type DriverRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, profile *models.DriverProfile) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.DriverProfile, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.DriverProfile, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error

	// Vehicle assignment
	SetAssignedVehicle(ctx context.Context, userID, vehicleID primitive.ObjectID, companyID *primitive.ObjectID) (*models.DriverProfile, error)
	ClearAssignedVehicle(ctx context.Context, userID, vehicleID primitive.ObjectID) (*models.DriverProfile, error)

	// Availability
	SetAvailability(ctx context.Context, userID primitive.ObjectID, available bool) error

	// Queries
	ListByCompany(ctx context.Context, companyID primitive.ObjectID, params *utils.PaginationParams) ([]*models.DriverProfile, int64, error)
	ListAvailable(ctx context.Context, params *utils.PaginationParams) ([]*models.DriverProfile, int64, error)
}
