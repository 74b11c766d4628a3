package interfaces

import (
	"context"

	"haulgo/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CompanyRepository interface {
	Create(ctx context.Context, profile *models.CompanyProfile) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.CompanyProfile, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.CompanyProfile, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error

	// IncrementCounters adjusts the fleet and roster tallies kept on the
	// company document.
	IncrementCounters(ctx context.Context, userID primitive.ObjectID, vehiclesDelta, driversDelta int) error
}
