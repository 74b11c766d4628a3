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

type vehicleRepository struct {
	collection *mongo.Collection
}

func NewVehicleRepository(db *mongo.Database) interfaces.VehicleRepository {
	return &vehicleRepository{
		collection: db.Collection("vehicles"),
	}
}

// Basic CRUD operations
func (r *vehicleRepository) Create(ctx context.Context, vehicle *models.Vehicle) error {
	vehicle.ID = primitive.NewObjectID()
	vehicle.CreatedAt = time.Now()
	vehicle.UpdatedAt = vehicle.CreatedAt

	_, err := r.collection.InsertOne(ctx, vehicle)
	if err != nil {
		return fmt.Errorf("failed to create vehicle: %w", err)
	}

	return nil
}

func (r *vehicleRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&vehicle)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}

	return &vehicle, nil
}

func (r *vehicleRepository) GetByPlateNumber(ctx context.Context, plateNumber string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.collection.FindOne(ctx, bson.M{"plate_number": plateNumber}).Decode(&vehicle)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vehicle by plate: %w", err)
	}

	return &vehicle, nil
}

func (r *vehicleRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update vehicle: %w", err)
	}

	return nil
}

func (r *vehicleRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	// Soft delete keeps trip history intact.
	return r.Update(ctx, id, map[string]interface{}{"is_active": false})
}

// Availability
//
// Reserve flips an idle vehicle to busy; the filter is the precondition, so
// two concurrent accepts of jobs needing the same vehicle settle on the
// server with a single winner.
func (r *vehicleRepository) Reserve(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error) {
	filter := bson.M{
		"_id":          id,
		"is_active":    true,
		"is_available": true,
	}

	update := bson.M{"$set": bson.M{
		"is_available": false,
		"updated_at":   time.Now(),
	}}

	return r.findOneAndUpdate(ctx, filter, update)
}

func (r *vehicleRepository) Release(ctx context.Context, id primitive.ObjectID) error {
	return r.Update(ctx, id, map[string]interface{}{"is_available": true})
}

// Assignment
func (r *vehicleRepository) AssignDriver(ctx context.Context, vehicleID, driverID primitive.ObjectID) (*models.Vehicle, error) {
	filter := bson.M{
		"_id":         vehicleID,
		"is_active":   true,
		"is_assigned": false,
	}

	update := bson.M{"$set": bson.M{
		"is_assigned":        true,
		"assigned_driver_id": driverID,
		"updated_at":         time.Now(),
	}}

	return r.findOneAndUpdate(ctx, filter, update)
}

func (r *vehicleRepository) UnassignDriver(ctx context.Context, vehicleID, driverID primitive.ObjectID) (*models.Vehicle, error) {
	filter := bson.M{
		"_id":                vehicleID,
		"assigned_driver_id": driverID,
	}

	update := bson.M{
		"$set": bson.M{
			"is_assigned": false,
			"updated_at":  time.Now(),
		},
		"$unset": bson.M{"assigned_driver_id": ""},
	}

	return r.findOneAndUpdate(ctx, filter, update)
}

// Trip statistics
func (r *vehicleRepository) IncrementTripStats(ctx context.Context, id primitive.ObjectID, revenue float64) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{
				"total_trips":   1,
				"total_revenue": revenue,
			},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to increment trip stats: %w", err)
	}

	return nil
}

func (r *vehicleRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.Vehicle, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var vehicle models.Vehicle
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&vehicle)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update vehicle: %w", err)
	}

	return &vehicle, nil
}

// Queries
func (r *vehicleRepository) ListByCompany(ctx context.Context, companyID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Vehicle, int64, error) {
	return r.list(ctx, bson.M{"company_id": companyID, "is_active": true}, params)
}

func (r *vehicleRepository) ListAvailable(ctx context.Context, category *models.VehicleCategory, params *utils.PaginationParams) ([]*models.Vehicle, int64, error) {
	filter := bson.M{
		"is_active":    true,
		"is_available": true,
	}
	if category != nil {
		filter["category"] = *category
	}

	return r.list(ctx, filter, params)
}

func (r *vehicleRepository) list(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Vehicle, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count vehicles: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer cursor.Close(ctx)

	var vehicles []*models.Vehicle
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, 0, fmt.Errorf("failed to decode vehicles: %w", err)
	}

	return vehicles, total, nil
}
