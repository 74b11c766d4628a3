package payment

import (
	"context"
)

// Gateway is the external card-payment collaborator. Implementations create a
// transaction intent before any local payment record is written, and are the
// authoritative source for a payment's final status.
type Gateway interface {
	CreateIntent(ctx context.Context, request *IntentRequest) (*IntentResponse, error)
	Verify(ctx context.Context, reference string) (*VerifyResponse, error)
}

type IntentRequest struct {
	Email       string                 `json:"email"`
	Amount      float64                `json:"amount"` // major currency units
	Currency    string                 `json:"currency"`
	Reference   string                 `json:"reference"`
	CallbackURL string                 `json:"callback_url"`
	Metadata    map[string]interface{} `json:"metadata"`
}

type IntentResponse struct {
	Reference        string `json:"reference"`
	AccessCode       string `json:"access_code"`
	AuthorizationURL string `json:"authorization_url"`
}

type VerifyResponse struct {
	Status          string             `json:"status"` // success, failed, abandoned, pending
	TransactionID   string             `json:"transaction_id"`
	Channel         string             `json:"channel"`
	Amount          float64            `json:"amount"`
	Currency        string             `json:"currency"`
	GatewayResponse string             `json:"gateway_response"`
	Authorization   *CardAuthorization `json:"authorization"`
}

type CardAuthorization struct {
	Brand string `json:"brand"`
	Last4 string `json:"last4"`
	Bank  string `json:"bank"`
}

// IsSuccess reports whether the gateway settled the transaction.
func (v *VerifyResponse) IsSuccess() bool {
	return v.Status == "success"
}

// IsFinal reports whether the gateway will never change this status again.
func (v *VerifyResponse) IsFinal() bool {
	return v.Status == "success" || v.Status == "failed" || v.Status == "abandoned"
}
