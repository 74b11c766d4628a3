package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStatus string
type PaymentStatus string
type PaymentMethod string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusAccepted   BookingStatus = "accepted"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"

	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"

	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodWallet   PaymentMethod = "wallet"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodUSSD     PaymentMethod = "ussd"
)

// IsTerminal reports whether no further lifecycle transition is allowed.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// IsActive reports whether the booking occupies its driver.
func (s BookingStatus) IsActive() bool {
	return s == BookingStatusAccepted || s == BookingStatusInProgress
}

type Booking struct {
	ID              primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	CustomerID      primitive.ObjectID  `json:"customer_id" bson:"customer_id" validate:"required"`
	DriverID        *primitive.ObjectID `json:"driver_id" bson:"driver_id"`
	VehicleID       *primitive.ObjectID `json:"vehicle_id" bson:"vehicle_id"`
	CompanyID       *primitive.ObjectID `json:"company_id" bson:"company_id"`
	PickupLocation  Location            `json:"pickup_location" bson:"pickup_location" validate:"required"`
	DropoffLocation Location            `json:"dropoff_location" bson:"dropoff_location" validate:"required"`
	Distance        float64             `json:"distance" bson:"distance"` // kilometers
	VehicleCategory VehicleCategory     `json:"vehicle_category" bson:"vehicle_category" validate:"required"`
	EstimatedPrice  float64             `json:"estimated_price" bson:"estimated_price"`
	ActualPrice     float64             `json:"actual_price" bson:"actual_price"`
	Status          BookingStatus       `json:"status" bson:"status"`
	PaymentStatus   PaymentStatus       `json:"payment_status" bson:"payment_status"`
	PaymentMethod   PaymentMethod       `json:"payment_method" bson:"payment_method"`
	ScheduledAt     time.Time           `json:"scheduled_at" bson:"scheduled_at"`
	AcceptedAt      *time.Time          `json:"accepted_at" bson:"accepted_at"`
	StartedAt       *time.Time          `json:"started_at" bson:"started_at"`
	CompletedAt     *time.Time          `json:"completed_at" bson:"completed_at"`
	CancelledAt     *time.Time          `json:"cancelled_at" bson:"cancelled_at"`
	CancelReason    string              `json:"cancel_reason" bson:"cancel_reason"`
	Notes           string              `json:"notes" bson:"notes"`
	Rating          *int                `json:"rating" bson:"rating"`
	Review          string              `json:"review" bson:"review"`
	CreatedAt       time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at" bson:"updated_at"`
}
