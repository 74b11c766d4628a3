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

type driverRepository struct {
	collection *mongo.Collection
}

func NewDriverRepository(db *mongo.Database) interfaces.DriverRepository {
	return &driverRepository{
		collection: db.Collection("driver_profiles"),
	}
}

func (r *driverRepository) Create(ctx context.Context, profile *models.DriverProfile) error {
	profile.ID = primitive.NewObjectID()
	profile.CreatedAt = time.Now()
	profile.UpdatedAt = profile.CreatedAt

	_, err := r.collection.InsertOne(ctx, profile)
	if err != nil {
		return fmt.Errorf("failed to create driver profile: %w", err)
	}

	return nil
}

func (r *driverRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.DriverProfile, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *driverRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.DriverProfile, error) {
	return r.findOne(ctx, bson.M{"user_id": userID})
}

func (r *driverRepository) findOne(ctx context.Context, filter bson.M) (*models.DriverProfile, error) {
	var profile models.DriverProfile
	err := r.collection.FindOne(ctx, filter).Decode(&profile)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get driver profile: %w", err)
	}

	return &profile, nil
}

func (r *driverRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update driver profile: %w", err)
	}

	return nil
}

// Vehicle assignment
//
// SetAssignedVehicle succeeds only while the driver has no vehicle. When
// the vehicle belongs to a company the driver is affiliated to it in the
// same update.
func (r *driverRepository) SetAssignedVehicle(ctx context.Context, userID, vehicleID primitive.ObjectID, companyID *primitive.ObjectID) (*models.DriverProfile, error) {
	filter := bson.M{
		"user_id":             userID,
		"assigned_vehicle_id": nil,
	}

	set := bson.M{
		"assigned_vehicle_id": vehicleID,
		"updated_at":          time.Now(),
	}
	if companyID != nil {
		set["company_id"] = *companyID
	}

	return r.findOneAndUpdate(ctx, filter, bson.M{"$set": set})
}

func (r *driverRepository) ClearAssignedVehicle(ctx context.Context, userID, vehicleID primitive.ObjectID) (*models.DriverProfile, error) {
	filter := bson.M{
		"user_id":             userID,
		"assigned_vehicle_id": vehicleID,
	}

	update := bson.M{
		"$set":   bson.M{"updated_at": time.Now()},
		"$unset": bson.M{"assigned_vehicle_id": ""},
	}

	return r.findOneAndUpdate(ctx, filter, update)
}

func (r *driverRepository) findOneAndUpdate(ctx context.Context, filter bson.M, update bson.M) (*models.DriverProfile, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var profile models.DriverProfile
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&profile)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update driver profile: %w", err)
	}

	return &profile, nil
}

// Availability
func (r *driverRepository) SetAvailability(ctx context.Context, userID primitive.ObjectID, available bool) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{
			"is_available": available,
			"updated_at":   time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to set driver availability: %w", err)
	}

	return nil
}

// Queries
func (r *driverRepository) ListByCompany(ctx context.Context, companyID primitive.ObjectID, params *utils.PaginationParams) ([]*models.DriverProfile, int64, error) {
	return r.list(ctx, bson.M{"company_id": companyID}, params)
}

func (r *driverRepository) ListAvailable(ctx context.Context, params *utils.PaginationParams) ([]*models.DriverProfile, int64, error) {
	return r.list(ctx, bson.M{"is_available": true, "is_verified": true}, params)
}

func (r *driverRepository) list(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.DriverProfile, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count driver profiles: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list driver profiles: %w", err)
	}
	defer cursor.Close(ctx)

	var profiles []*models.DriverProfile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, 0, fmt.Errorf("failed to decode driver profiles: %w", err)
	}

	return profiles, total, nil
}
