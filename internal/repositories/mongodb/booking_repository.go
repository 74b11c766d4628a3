package mongodb

import (
	"context"
	"fmt"
	"time"

	"haulgo/internal/models"
	"haulgo/internal/repositories/interfaces"
	"haulgo/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type bookingRepository struct {
	collection *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) interfaces.BookingRepository {
	return &bookingRepository{
		collection: db.Collection("bookings"),
	}
}

// Basic CRUD operations
func (r *bookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	booking.ID = primitive.NewObjectID()
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt

	_, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	var booking models.Booking
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return &booking, nil
}

func (r *bookingRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	return nil
}

func (r *bookingRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	return nil
}

// Conditional mutations
//
// Claim moves a pending, unassigned booking to accepted and records the
// assignment in one round trip. The filter carries the precondition, so two
// drivers racing for the same job resolve on the server: exactly one update
// matches.
func (r *bookingRepository) Claim(ctx context.Context, id primitive.ObjectID, assignment *models.Assignment, acceptedAt time.Time) (*models.Booking, error) {
	filter := bson.M{
		"_id":       id,
		"status":    models.BookingStatusPending,
		"driver_id": nil,
	}

	updates := bson.M{
		"status":      models.BookingStatusAccepted,
		"driver_id":   assignment.DriverID,
		"vehicle_id":  assignment.VehicleID,
		"accepted_at": acceptedAt,
		"updated_at":  time.Now(),
	}
	if assignment.CompanyID != nil {
		updates["company_id"] = *assignment.CompanyID
	}

	return r.findOneAndUpdate(ctx, filter, bson.M{"$set": updates})
}

// Transition applies updates only while the booking is still in one of the
// given source states.
func (r *bookingRepository) Transition(ctx context.Context, id primitive.ObjectID, from []models.BookingStatus, updates map[string]interface{}) (*models.Booking, error) {
	updates["updated_at"] = time.Now()

	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$in": from},
	}

	return r.findOneAndUpdate(ctx, filter, bson.M{"$set": updates})
}

func (r *bookingRepository) SetRating(ctx context.Context, id, customerID primitive.ObjectID, rating int, review string) (*models.Booking, error) {
	filter := bson.M{
		"_id":         id,
		"customer_id": customerID,
		"status":      models.BookingStatusCompleted,
		"rating":      nil,
	}

	updates := bson.M{
		"rating":     rating,
		"review":     review,
		"updated_at": time.Now(),
	}

	return r.findOneAndUpdate(ctx, filter, bson.M{"$set": updates})
}

func (r *bookingRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.Booking, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking models.Booking
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&booking)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	return &booking, nil
}

// Queries
func (r *bookingRepository) List(ctx context.Context, status *models.BookingStatus, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	filter := bson.M{}
	if status != nil {
		filter["status"] = *status
	}

	return r.list(ctx, filter, params)
}

func (r *bookingRepository) ListByCustomer(ctx context.Context, customerID primitive.ObjectID, status *models.BookingStatus, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	filter := bson.M{"customer_id": customerID}
	if status != nil {
		filter["status"] = *status
	}

	return r.list(ctx, filter, params)
}

func (r *bookingRepository) ListByDriver(ctx context.Context, driverID primitive.ObjectID, statuses []models.BookingStatus, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	filter := bson.M{"driver_id": driverID}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}

	return r.list(ctx, filter, params)
}

func (r *bookingRepository) ListPendingByCategories(ctx context.Context, categories []models.VehicleCategory, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	filter := bson.M{
		"status":    models.BookingStatusPending,
		"driver_id": nil,
	}
	if len(categories) > 0 {
		filter["vehicle_category"] = bson.M{"$in": categories}
	}

	return r.list(ctx, filter, params)
}

func (r *bookingRepository) list(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, 0, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, total, nil
}

// Scheduling and workload checks
func (r *bookingRepository) CountActiveByDriver(ctx context.Context, driverID primitive.ObjectID) (int64, error) {
	filter := bson.M{
		"driver_id": driverID,
		"status": bson.M{"$in": []models.BookingStatus{
			models.BookingStatusAccepted,
			models.BookingStatusInProgress,
		}},
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count active bookings: %w", err)
	}

	return count, nil
}

func (r *bookingRepository) HasScheduleConflict(ctx context.Context, driverID primitive.ObjectID, scheduledAt time.Time, window time.Duration) (bool, error) {
	filter := bson.M{
		"driver_id": driverID,
		"status": bson.M{"$in": []models.BookingStatus{
			models.BookingStatusAccepted,
			models.BookingStatusInProgress,
		}},
		"scheduled_at": bson.M{
			"$gt": scheduledAt.Add(-window),
			"$lt": scheduledAt.Add(window),
		},
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to check schedule conflict: %w", err)
	}

	return count > 0, nil
}

// Aggregations
func (r *bookingRepository) EarningsByDriver(ctx context.Context, driverID primitive.ObjectID, since *time.Time) (*interfaces.DriverEarnings, error) {
	match := bson.M{
		"driver_id": driverID,
		"status":    models.BookingStatusCompleted,
	}
	if since != nil {
		match["completed_at"] = bson.M{"$gte": *since}
	}

	pipeline := []bson.M{
		{"$match": match},
		{"$group": bson.M{
			"_id":             nil,
			"total_earnings":  bson.M{"$sum": "$actual_price"},
			"completed_trips": bson.M{"$sum": 1},
		}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate earnings: %w", err)
	}
	defer cursor.Close(ctx)

	var results []interfaces.DriverEarnings
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode earnings: %w", err)
	}

	if len(results) == 0 {
		return &interfaces.DriverEarnings{}, nil
	}

	return &results[0], nil
}
