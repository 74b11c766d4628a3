package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const defaultPaystackBaseURL = "https://api.paystack.co"

type PaystackGateway struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

func NewPaystackGateway(secretKey string, timeout time.Duration) *PaystackGateway {
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &PaystackGateway{
		secretKey: secretKey,
		baseURL:   defaultPaystackBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type paystackInitializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type paystackVerifyData struct {
	ID              int64   `json:"id"`
	Status          string  `json:"status"`
	Reference       string  `json:"reference"`
	Amount          int64   `json:"amount"` // subunits
	Currency        string  `json:"currency"`
	Channel         string  `json:"channel"`
	GatewayResponse string  `json:"gateway_response"`
	Authorization   *struct {
		Brand string `json:"brand"`
		Last4 string `json:"last4"`
		Bank  string `json:"bank"`
	} `json:"authorization"`
}

func (p *PaystackGateway) CreateIntent(ctx context.Context, request *IntentRequest) (*IntentResponse, error) {
	payload := map[string]interface{}{
		"email":     request.Email,
		"amount":    int64(request.Amount * 100), // convert to subunits
		"currency":  request.Currency,
		"reference": request.Reference,
		"metadata":  request.Metadata,
	}
	if request.CallbackURL != "" {
		payload["callback_url"] = request.CallbackURL
	}

	var data paystackInitializeData
	err := p.do(ctx, http.MethodPost, "/transaction/initialize", payload, &data)
	if err != nil {
		return nil, err
	}

	return &IntentResponse{
		Reference:        data.Reference,
		AccessCode:       data.AccessCode,
		AuthorizationURL: data.AuthorizationURL,
	}, nil
}

func (p *PaystackGateway) Verify(ctx context.Context, reference string) (*VerifyResponse, error) {
	var data paystackVerifyData
	err := p.do(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &data)
	if err != nil {
		return nil, err
	}

	response := &VerifyResponse{
		Status:          data.Status,
		TransactionID:   strconv.FormatInt(data.ID, 10),
		Channel:         data.Channel,
		Amount:          float64(data.Amount) / 100,
		Currency:        data.Currency,
		GatewayResponse: data.GatewayResponse,
	}

	if data.Authorization != nil {
		response.Authorization = &CardAuthorization{
			Brand: data.Authorization.Brand,
			Last4: data.Authorization.Last4,
			Bank:  data.Authorization.Bank,
		}
	}

	return response, nil
}

func (p *PaystackGateway) do(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode gateway request: %w", err)
		}
		body = bytes.NewBuffer(data)
	} else {
		body = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	var envelope paystackEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}

	if !envelope.Status {
		return fmt.Errorf("gateway error: %s", envelope.Message)
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to decode gateway payload: %w", err)
		}
	}

	return nil
}
