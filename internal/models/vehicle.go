package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VehicleCategory string

const (
	VehicleCategoryBike   VehicleCategory = "bike"
	VehicleCategoryVan    VehicleCategory = "van"
	VehicleCategoryPickup VehicleCategory = "pickup"
	VehicleCategoryTruck  VehicleCategory = "truck"
)

func (c VehicleCategory) Valid() bool {
	switch c {
	case VehicleCategoryBike, VehicleCategoryVan, VehicleCategoryPickup, VehicleCategoryTruck:
		return true
	}
	return false
}

type Vehicle struct {
	ID               primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	CompanyID        *primitive.ObjectID `json:"company_id" bson:"company_id"` // nil for independent-driver vehicles
	Category         VehicleCategory     `json:"category" bson:"category" validate:"required"`
	Name             string              `json:"name" bson:"name" validate:"required"`
	Model            string              `json:"model" bson:"model" validate:"required"`
	Color            string              `json:"color" bson:"color"`
	PlateNumber      string              `json:"plate_number" bson:"plate_number"`
	BasePrice        float64             `json:"base_price" bson:"base_price"`
	IsActive         bool                `json:"is_active" bson:"is_active"`
	IsAvailable      bool                `json:"is_available" bson:"is_available"`
	IsAssigned       bool                `json:"is_assigned" bson:"is_assigned"`
	AssignedDriverID *primitive.ObjectID `json:"assigned_driver_id" bson:"assigned_driver_id"`
	TotalTrips       int64               `json:"total_trips" bson:"total_trips"`
	TotalRevenue     float64             `json:"total_revenue" bson:"total_revenue"`
	CreatedAt        time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at" bson:"updated_at"`
}
