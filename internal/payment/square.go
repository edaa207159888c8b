package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const squareVersion = "2024-06-04"

// SquareConfig carries the credentials for the Square Connect v2 API.
// AccessToken and LocationID come from the Square developer dashboard.
type SquareConfig struct {
	BaseURL     string // https://connect.squareup.com or the sandbox URL
	AccessToken string
	LocationID  string
	Timeout     time.Duration
}

func (c SquareConfig) IsConfigured() bool {
	return c.AccessToken != "" && c.LocationID != ""
}

// SquareGateway implements Gateway against the Square REST API.
type SquareGateway struct {
	client     *http.Client
	baseURL    string
	token      string
	locationID string
}

func NewSquareGateway(cfg SquareConfig) *SquareGateway {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://connect.squareup.com"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &SquareGateway{
		client:     &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		token:      cfg.AccessToken,
		locationID: cfg.LocationID,
	}
}

type squareMoney struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type squarePaymentRequest struct {
	SourceID       string      `json:"source_id"`
	IdempotencyKey string      `json:"idempotency_key"`
	AmountMoney    squareMoney `json:"amount_money"`
	LocationID     string      `json:"location_id"`
	CustomerID     string      `json:"customer_id,omitempty"`
	Autocomplete   bool        `json:"autocomplete"`
	Note           string      `json:"note,omitempty"`
}

type squarePayment struct {
	ID          string      `json:"id"`
	Status      string      `json:"status"`
	CustomerID  string      `json:"customer_id"`
	AmountMoney squareMoney `json:"amount_money"`
	ReceiptURL  string      `json:"receipt_url"`
}

type squareError struct {
	Category string `json:"category"`
	Code     string `json:"code"`
	Detail   string `json:"detail"`
}

type squareErrorBody struct {
	Errors []squareError `json:"errors"`
}

func (g *SquareGateway) CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*Payment, error) {
	body := squarePaymentRequest{
		SourceID:       req.SourceID,
		IdempotencyKey: req.IdempotencyKey,
		AmountMoney:    squareMoney{Amount: req.Amount.Amount, Currency: req.Amount.Currency},
		LocationID:     g.locationID,
		CustomerID:     req.CustomerID,
		Autocomplete:   req.Autocomplete,
		Note:           req.Note,
	}

	var resp struct {
		Payment squarePayment `json:"payment"`
	}
	if err := g.post(ctx, "/v2/payments", body, &resp); err != nil {
		return nil, err
	}

	return &Payment{
		ID:         resp.Payment.ID,
		Status:     resp.Payment.Status,
		CustomerID: resp.Payment.CustomerID,
		Amount:     Money{Amount: resp.Payment.AmountMoney.Amount, Currency: resp.Payment.AmountMoney.Currency},
		ReceiptURL: resp.Payment.ReceiptURL,
	}, nil
}

func (g *SquareGateway) CreateCustomer(ctx context.Context, req *CreateCustomerRequest) (*Customer, error) {
	body := map[string]string{}
	if req.GivenName != "" {
		body["given_name"] = req.GivenName
	}
	if req.EmailAddress != "" {
		body["email_address"] = req.EmailAddress
	}
	if req.ReferenceID != "" {
		body["reference_id"] = req.ReferenceID
	}

	var resp struct {
		Customer struct {
			ID string `json:"id"`
		} `json:"customer"`
	}
	if err := g.post(ctx, "/v2/customers", body, &resp); err != nil {
		return nil, err
	}
	return &Customer{ID: resp.Customer.ID}, nil
}

func (g *SquareGateway) CreatePaymentLink(ctx context.Context, amountCents int64, currency, description string) (string, error) {
	body := map[string]interface{}{
		"idempotency_key": uuid.NewString(),
		"quick_pay": map[string]interface{}{
			"name":        description,
			"price_money": squareMoney{Amount: amountCents, Currency: currency},
			"location_id": g.locationID,
		},
	}

	var resp struct {
		PaymentLink struct {
			URL string `json:"url"`
		} `json:"payment_link"`
	}
	if err := g.post(ctx, "/v2/online-checkout/payment-links", body, &resp); err != nil {
		return "", err
	}
	return resp.PaymentLink.URL, nil
}

func (g *SquareGateway) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal square request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build square request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("Square-Version", squareVersion)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("square %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read square response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseSquareError(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode square response: %w", err)
	}
	return nil
}

func parseSquareError(status int, data []byte) error {
	var body squareErrorBody
	if err := json.Unmarshal(data, &body); err == nil && len(body.Errors) > 0 {
		first := body.Errors[0]
		return &ProcessorError{
			StatusCode: status,
			Category:   first.Category,
			Code:       first.Code,
			Detail:     first.Detail,
		}
	}
	return fmt.Errorf("square returned status %d", status)
}
