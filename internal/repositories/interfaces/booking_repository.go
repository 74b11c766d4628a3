package interfaces

import (
	"context"
	"time"

	"haulgo/internal/models"
	"haulgo/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DriverEarnings aggregates completed-trip revenue for a driver.
type DriverEarnings struct {
	TotalEarnings  float64 `bson:"total_earnings" json:"total_earnings"`
	CompletedTrips int64   `bson:"completed_trips" json:"completed_trips"`
}

// BookingRepository persists bookings. Conditional mutators (Claim,
// Transition, SetRating) apply their update only when the stored document
// still satisfies the given precondition; they return (nil, nil) when no
// document matched, so callers can distinguish a lost race from a storage
// failure.
type BookingRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Conditional mutations
	Claim(ctx context.Context, id primitive.ObjectID, assignment *models.Assignment, acceptedAt time.Time) (*models.Booking, error)
	Transition(ctx context.Context, id primitive.ObjectID, from []models.BookingStatus, updates map[string]interface{}) (*models.Booking, error)
	SetRating(ctx context.Context, id, customerID primitive.ObjectID, rating int, review string) (*models.Booking, error)

	// Queries
	List(ctx context.Context, status *models.BookingStatus, params *utils.PaginationParams) ([]*models.Booking, int64, error)
	ListByCustomer(ctx context.Context, customerID primitive.ObjectID, status *models.BookingStatus, params *utils.PaginationParams) ([]*models.Booking, int64, error)
	ListByDriver(ctx context.Context, driverID primitive.ObjectID, statuses []models.BookingStatus, params *utils.PaginationParams) ([]*models.Booking, int64, error)
	ListPendingByCategories(ctx context.Context, categories []models.VehicleCategory, params *utils.PaginationParams) ([]*models.Booking, int64, error)

	// Scheduling and workload checks
	CountActiveByDriver(ctx context.Context, driverID primitive.ObjectID) (int64, error)
	HasScheduleConflict(ctx context.Context, driverID primitive.ObjectID, scheduledAt time.Time, window time.Duration) (bool, error)

	// Aggregations
	EarningsByDriver(ctx context.Context, driverID primitive.ObjectID, since *time.Time) (*DriverEarnings, error)
}
