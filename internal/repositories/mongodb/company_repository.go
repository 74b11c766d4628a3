package mongodb

import (
	"context"
	"fmt"
	"time"

	"haulgo/internal/models"
	"haulgo/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type companyRepository struct {
	collection *mongo.Collection
}

func NewCompanyRepository(db *mongo.Database) interfaces.CompanyRepository {
	return &companyRepository{
		collection: db.Collection("company_profiles"),
	}
}

func (r *companyRepository) Create(ctx context.Context, profile *models.CompanyProfile) error {
	profile.ID = primitive.NewObjectID()
	profile.CreatedAt = time.Now()
	profile.UpdatedAt = profile.CreatedAt

	_, err := r.collection.InsertOne(ctx, profile)
	if err != nil {
		return fmt.Errorf("failed to create company profile: %w", err)
	}

	return nil
}

func (r *companyRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.CompanyProfile, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *companyRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.CompanyProfile, error) {
	return r.findOne(ctx, bson.M{"user_id": userID})
}

func (r *companyRepository) findOne(ctx context.Context, filter bson.M) (*models.CompanyProfile, error) {
	var profile models.CompanyProfile
	err := r.collection.FindOne(ctx, filter).Decode(&profile)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company profile: %w", err)
	}

	return &profile, nil
}

func (r *companyRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update company profile: %w", err)
	}

	return nil
}

func (r *companyRepository) IncrementCounters(ctx context.Context, userID primitive.ObjectID, vehiclesDelta, driversDelta int) error {
	inc := bson.M{}
	if vehiclesDelta != 0 {
		inc["total_vehicles"] = vehiclesDelta
	}
	if driversDelta != 0 {
		inc["total_drivers"] = driversDelta
	}
	if len(inc) == 0 {
		return nil
	}

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"user_id": userID},
		bson.M{
			"$inc": inc,
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to increment company counters: %w", err)
	}

	return nil
}
