package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AccountType string

const (
	AccountTypeIndividual AccountType = "individual"
	AccountTypeCompany    AccountType = "company"
	AccountTypeDriver     AccountType = "driver"
	AccountTypeAdmin      AccountType = "admin"
)

// User is the identity record issued by the auth collaborator. The core only
// reads it for ownership checks and payment receipts.
type User struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Email       string             `json:"email" bson:"email"`
	PhoneNumber string             `json:"phone_number" bson:"phone_number"`
	AccountType AccountType        `json:"account_type" bson:"account_type"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// Actor is the authenticated principal resolved by the auth middleware.
type Actor struct {
	UserID primitive.ObjectID
	Role   AccountType
}

func (a Actor) IsAdmin() bool { return a.Role == AccountTypeAdmin }
