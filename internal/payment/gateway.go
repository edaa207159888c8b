package payment

import (
	"context"
	"fmt"
)

// Money is an amount in integer minor currency units (cents for USD).
// Integer arithmetic keeps floating-point rounding out of charges.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// CreatePaymentRequest describes one charge. SourceID is either a one-time
// card tokenization nonce or a saved card id (with CustomerID set).
type CreatePaymentRequest struct {
	SourceID       string
	IdempotencyKey string
	Amount         Money
	CustomerID     string
	Autocomplete   bool
	Note           string
}

type Payment struct {
	ID         string
	Status     string
	CustomerID string
	Amount     Money
	ReceiptURL string
}

type CreateCustomerRequest struct {
	GivenName    string
	EmailAddress string
	ReferenceID  string
}

type Customer struct {
	ID string
}

// Gateway is the processor-agnostic interface the checkout and deposit
// flows talk to. To add a new processor, implement this interface.
type Gateway interface {
	// CreatePayment exchanges a source (nonce or saved card) for a charge.
	// The processor deduplicates retried requests sharing IdempotencyKey.
	CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*Payment, error)

	// CreateCustomer creates a customer record for card-on-file charges.
	CreateCustomer(ctx context.Context, req *CreateCustomerRequest) (*Customer, error)

	// CreatePaymentLink provisions a hosted checkout URL for an exact amount.
	CreatePaymentLink(ctx context.Context, amountCents int64, currency, description string) (string, error)
}

// ProcessorError is a structured error the processor signalled (declined
// card, bad nonce). It is recoverable: the buyer can retry with corrected
// input, so handlers map it to 400 rather than 500.
type ProcessorError struct {
	StatusCode int    // HTTP status from the processor
	Category   string // e.g. PAYMENT_METHOD_ERROR
	Code       string // e.g. CARD_DECLINED
	Detail     string
}

func (e *ProcessorError) Error() string {
	return fmt.Sprintf("processor error %s (%s): %s", e.Code, e.Category, e.Detail)
}
