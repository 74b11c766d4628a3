package mongodb

import (
	"context"
	"fmt"
	"time"

	"haulgo/internal/apperrors"
	"haulgo/internal/models"
	"haulgo/internal/repositories/interfaces"
	"haulgo/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type paymentRepository struct {
	collection *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) interfaces.PaymentRepository {
	return &paymentRepository{
		collection: db.Collection("payments"),
	}
}

// CreatePending inserts a new open payment for a booking. The partial unique
// index on booking_id (open statuses only) makes concurrent initialize
// attempts race on the insert itself; the loser gets a duplicate key error,
// reported as a conflict.
func (r *paymentRepository) CreatePending(ctx context.Context, payment *models.Payment) error {
	payment.ID = primitive.NewObjectID()
	payment.Status = models.PaymentStatusPending
	payment.CreatedAt = time.Now()
	payment.UpdatedAt = payment.CreatedAt

	_, err := r.collection.InsertOne(ctx, payment)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Conflict("an open payment already exists for this booking")
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	var payment models.Payment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&payment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return &payment, nil
}

func (r *paymentRepository) GetByReference(ctx context.Context, reference string) (*models.Payment, error) {
	var payment models.Payment
	err := r.collection.FindOne(ctx, bson.M{"reference": reference}).Decode(&payment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment by reference: %w", err)
	}

	return &payment, nil
}

func (r *paymentRepository) GetByBookingID(ctx context.Context, bookingID primitive.ObjectID) (*models.Payment, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var payment models.Payment
	err := r.collection.FindOne(ctx, bson.M{"booking_id": bookingID}, opts).Decode(&payment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment by booking: %w", err)
	}

	return &payment, nil
}

func (r *paymentRepository) GetOpenByBooking(ctx context.Context, bookingID primitive.ObjectID) (*models.Payment, error) {
	filter := bson.M{
		"booking_id": bookingID,
		"status": bson.M{"$in": []models.PaymentStatus{
			models.PaymentStatusPending,
			models.PaymentStatusPaid,
		}},
	}

	var payment models.Payment
	err := r.collection.FindOne(ctx, filter).Decode(&payment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get open payment: %w", err)
	}

	return &payment, nil
}

func (r *paymentRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}

	return nil
}

func (r *paymentRepository) Transition(ctx context.Context, id primitive.ObjectID, from []models.PaymentStatus, updates map[string]interface{}) (*models.Payment, error) {
	updates["updated_at"] = time.Now()

	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$in": from},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var payment models.Payment
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": updates}, opts).Decode(&payment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to transition payment: %w", err)
	}

	return &payment, nil
}

func (r *paymentRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, listFilter *interfaces.PaymentFilter, params *utils.PaginationParams) ([]*models.Payment, int64, error) {
	filter := bson.M{"user_id": userID}
	if listFilter != nil {
		if listFilter.Status != nil {
			filter["status"] = *listFilter.Status
		}
		if listFilter.Method != nil {
			filter["method"] = *listFilter.Method
		}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}
	defer cursor.Close(ctx)

	var payments []*models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, 0, fmt.Errorf("failed to decode payments: %w", err)
	}

	return payments, total, nil
}

func (r *paymentRepository) ListByBooking(ctx context.Context, bookingID primitive.ObjectID) ([]*models.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"booking_id": bookingID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list booking payments: %w", err)
	}
	defer cursor.Close(ctx)

	var payments []*models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("failed to decode payments: %w", err)
	}

	return payments, nil
}
