package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CompanyProfile struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID         primitive.ObjectID `json:"user_id" bson:"user_id" validate:"required"`
	EnterpriseName string             `json:"enterprise_name" bson:"enterprise_name" validate:"required"`
	ContactEmail   string             `json:"contact_email" bson:"contact_email"`
	TotalVehicles  int64              `json:"total_vehicles" bson:"total_vehicles"`
	TotalDrivers   int64              `json:"total_drivers" bson:"total_drivers"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}
