package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CardDetails struct {
	Brand string `json:"brand" bson:"brand"`
	Last4 string `json:"last4" bson:"last4"`
	Bank  string `json:"bank" bson:"bank"`
}

// Payment is one attempt to settle a booking. A booking may accumulate failed
// attempts but holds at most one payment in pending or paid state.
type Payment struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	BookingID        primitive.ObjectID `json:"booking_id" bson:"booking_id" validate:"required"`
	UserID           primitive.ObjectID `json:"user_id" bson:"user_id" validate:"required"`
	Amount           float64            `json:"amount" bson:"amount"`
	Currency         string             `json:"currency" bson:"currency"`
	Method           PaymentMethod      `json:"method" bson:"method"`
	Status           PaymentStatus      `json:"status" bson:"status"`
	Reference        string             `json:"reference" bson:"reference"`
	GatewayReference string             `json:"gateway_reference" bson:"gateway_reference"`
	AccessCode       string             `json:"access_code" bson:"access_code"`
	AuthorizationURL string             `json:"authorization_url" bson:"authorization_url"`
	TransactionID    string             `json:"transaction_id" bson:"transaction_id"`
	Channel          string             `json:"channel" bson:"channel"`
	CardDetails      *CardDetails       `json:"card_details" bson:"card_details"`
	RefundReason     string             `json:"refund_reason" bson:"refund_reason"`
	RefundedAt       *time.Time         `json:"refunded_at" bson:"refunded_at"`
	PaidAt           *time.Time         `json:"paid_at" bson:"paid_at"`
	CreatedAt        time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at" bson:"updated_at"`
}
