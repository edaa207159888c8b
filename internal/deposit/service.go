package deposit

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/keaunie/elev8kitchens-backend/internal/payment"
)

// MinDepositCents is the smallest accepted deposit: $1,000.00.
const MinDepositCents = 100000

var (
	ErrNonceRequired      = errors.New("card nonce is required")
	ErrAmountNotPositive  = errors.New("deposit amount must be a positive integer of minor currency units")
	ErrAmountBelowMinimum = fmt.Errorf("minimum deposit is %d minor units ($1,000.00)", MinDepositCents)
	ErrCustomerRequired   = errors.New("customer id is required")
	ErrCardRequired       = errors.New("card id is required")
)

// Recorder persists settled charges. Recording happens after the money
// moved, so a recording failure is logged and never fails the request.
type Recorder interface {
	// RecordCharge stores the record and queues its outbox event.
	// Returns ErrDuplicateAttempt when the attempt id was already recorded.
	RecordCharge(ctx context.Context, rec *Record) error
}

// NopRecorder is used when no database is configured.
type NopRecorder struct{}

func (NopRecorder) RecordCharge(context.Context, *Record) error { return nil }

type Service struct {
	gateway  payment.Gateway
	recorder Recorder
}

func NewService(gateway payment.Gateway, recorder Recorder) *Service {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &Service{gateway: gateway, recorder: recorder}
}

type CreateDepositRequest struct {
	Nonce       string
	CustomerID  string
	Currency    string
	AmountCents int64
	// AttemptID is the client-generated id of the logical checkout
	// attempt; reusing it across retries makes them safe. When absent a
	// fresh key is generated per request and retries may double-charge.
	AttemptID string
}

type CreateDepositResult struct {
	PaymentID  string
	CustomerID string
	ReceiptURL string
}

// CreateDeposit validates the request, charges the tokenized card, and
// ensures a customer record exists for the later balance charge.
func (s *Service) CreateDeposit(ctx context.Context, req *CreateDepositRequest) (*CreateDepositResult, error) {
	if req.Nonce == "" {
		return nil, ErrNonceRequired
	}
	if req.AmountCents <= 0 {
		return nil, ErrAmountNotPositive
	}
	if req.AmountCents < MinDepositCents {
		return nil, ErrAmountBelowMinimum
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	key := req.AttemptID
	if key == "" {
		key = uuid.NewString()
	}

	p, err := s.gateway.CreatePayment(ctx, &payment.CreatePaymentRequest{
		SourceID:       req.Nonce,
		IdempotencyKey: key,
		Amount:         payment.Money{Amount: req.AmountCents, Currency: currency},
		CustomerID:     req.CustomerID,
		Autocomplete:   true,
		Note:           "Elev8 Kitchens deposit",
	})
	if err != nil {
		return nil, err
	}

	customerID := p.CustomerID
	if customerID == "" {
		customerID = req.CustomerID
	}
	if customerID == "" {
		// The charge did not attach a customer and none was supplied;
		// create one so staff can charge the remaining balance later.
		// Not atomic with the charge: a failure here still leaves a
		// settled payment, so it must not fail the request.
		customer, custErr := s.gateway.CreateCustomer(ctx, &payment.CreateCustomerRequest{
			ReferenceID: key,
		})
		if custErr != nil {
			log.Printf("customer creation after deposit %s failed: %v", p.ID, custErr)
		} else {
			customerID = customer.ID
		}
	}

	s.record(ctx, &Record{
		ID:          uuid.New(),
		AttemptID:   key,
		PaymentID:   p.ID,
		CustomerID:  customerID,
		AmountCents: req.AmountCents,
		Currency:    currency,
		Kind:        KindDeposit,
	})

	return &CreateDepositResult{
		PaymentID:  p.ID,
		CustomerID: customerID,
		ReceiptURL: p.ReceiptURL,
	}, nil
}

type ChargeRemainingRequest struct {
	CustomerID  string
	CardID      string
	AmountCents int64
	Currency    string
	Note        string
	AttemptID   string
}

// ChargeRemaining charges the remaining balance to a card already on file.
func (s *Service) ChargeRemaining(ctx context.Context, req *ChargeRemainingRequest) (*payment.Payment, error) {
	if req.CustomerID == "" {
		return nil, ErrCustomerRequired
	}
	if req.CardID == "" {
		return nil, ErrCardRequired
	}
	if req.AmountCents <= 0 {
		return nil, ErrAmountNotPositive
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}
	note := req.Note
	if note == "" {
		note = "Elev8 Kitchens remaining balance"
	}

	key := req.AttemptID
	if key == "" {
		key = uuid.NewString()
	}

	p, err := s.gateway.CreatePayment(ctx, &payment.CreatePaymentRequest{
		SourceID:       req.CardID,
		IdempotencyKey: key,
		Amount:         payment.Money{Amount: req.AmountCents, Currency: currency},
		CustomerID:     req.CustomerID,
		Autocomplete:   true,
		Note:           note,
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, &Record{
		ID:          uuid.New(),
		AttemptID:   key,
		PaymentID:   p.ID,
		CustomerID:  req.CustomerID,
		AmountCents: req.AmountCents,
		Currency:    currency,
		Kind:        KindRemainder,
	})

	return p, nil
}

func (s *Service) record(ctx context.Context, rec *Record) {
	err := s.recorder.RecordCharge(ctx, rec)
	if errors.Is(err, ErrDuplicateAttempt) {
		// The gateway already deduplicated by idempotency key; the first
		// recording of this attempt stands.
		log.Printf("duplicate attempt %s already recorded", rec.AttemptID)
		return
	}
	if err != nil {
		log.Printf("failed to record %s charge %s: %v", rec.Kind, rec.PaymentID, err)
	}
}
