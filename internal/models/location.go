package models

type Location struct {
	// required would reject 0, a valid coordinate on the equator or
	// prime meridian; range checks are enough.
	Latitude  float64 `json:"latitude" bson:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" bson:"longitude" validate:"min=-180,max=180"`
	Address   string  `json:"address" bson:"address" validate:"required"`
}
