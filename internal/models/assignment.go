package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Assignment binds a booking to the driver and vehicle that will serve it.
// CompanyID is set when the vehicle belongs to a fleet operator.
type Assignment struct {
	DriverID  primitive.ObjectID  `bson:"driver_id" json:"driver_id"`
	VehicleID primitive.ObjectID  `bson:"vehicle_id" json:"vehicle_id"`
	CompanyID *primitive.ObjectID `bson:"company_id,omitempty" json:"company_id,omitempty"`
}
