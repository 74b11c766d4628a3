package interfaces

import (
	"context"

	"haulgo/internal/models"
	"haulgo/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentFilter narrows payment listings; nil fields match everything.
type PaymentFilter struct {
	Status *models.PaymentStatus
	Method *models.PaymentMethod
}

// PaymentRepository persists payment records. CreatePending relies on the
// partial unique index over open payments per booking; a duplicate insert
// surfaces as a conflict error.
type PaymentRepository interface {
	// Basic CRUD operations
	CreatePending(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error)
	GetByReference(ctx context.Context, reference string) (*models.Payment, error)
	GetByBookingID(ctx context.Context, bookingID primitive.ObjectID) (*models.Payment, error)
	// GetOpenByBooking returns the booking's payment in pending or paid
	// state, nil when every attempt has failed or been refunded.
	GetOpenByBooking(ctx context.Context, bookingID primitive.ObjectID) (*models.Payment, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error

	// Conditional mutations; (nil, nil) when the status precondition failed.
	Transition(ctx context.Context, id primitive.ObjectID, from []models.PaymentStatus, updates map[string]interface{}) (*models.Payment, error)

	// Queries
	ListByUser(ctx context.Context, userID primitive.ObjectID, filter *PaymentFilter, params *utils.PaginationParams) ([]*models.Payment, int64, error)
	ListByBooking(ctx context.Context, bookingID primitive.ObjectID) ([]*models.Payment, error)
}
