package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DriverProfile is one-to-one with a driver User account. CompanyID is nil
// for independent drivers.
type DriverProfile struct {
	ID                primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	UserID            primitive.ObjectID  `json:"user_id" bson:"user_id" validate:"required"`
	FirstName         string              `json:"first_name" bson:"first_name" validate:"required"`
	LastName          string              `json:"last_name" bson:"last_name" validate:"required"`
	Phone             string              `json:"phone" bson:"phone"`
	IsAvailable       bool                `json:"is_available" bson:"is_available"`
	IsVerified        bool                `json:"is_verified" bson:"is_verified"`
	CompanyID         *primitive.ObjectID `json:"company_id" bson:"company_id"`
	AssignedVehicleID *primitive.ObjectID `json:"assigned_vehicle_id" bson:"assigned_vehicle_id"`
	CreatedAt         time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at" bson:"updated_at"`
}

func (d *DriverProfile) FullName() string {
	return d.FirstName + " " + d.LastName
}
