package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/keaunie/elev8kitchens-backend/internal/deposit"
	"github.com/keaunie/elev8kitchens-backend/internal/payment"
)

// PaymentHandler exposes the two payment endpoints in the style of
// standalone serverless functions: each handler answers its own preflight,
// accepts POST, and rejects every other method itself.
type PaymentHandler struct {
	deposits *deposit.Service // nil when the gateway is not configured
}

func NewPaymentHandler(deposits *deposit.Service) *PaymentHandler {
	return &PaymentHandler{deposits: deposits}
}

type CreateDepositsRequestDTO struct {
	Nonce         string      `json:"nonce"`
	CustomerID    string      `json:"customerId"`
	Currency      string      `json:"currency"`
	DepositAmount MinorAmount `json:"depositAmount"`
	AttemptID     string      `json:"attemptId"`
}

type CreateDepositsResponseDTO struct {
	Success    bool   `json:"success"`
	PaymentID  string `json:"paymentId"`
	CustomerID string `json:"customerId"`
	ReceiptURL string `json:"receiptUrl,omitempty"`
}

type ChargeRemainingRequestDTO struct {
	CustomerID      string      `json:"customerId"`
	CardID          string      `json:"cardId"`
	RemainingAmount MinorAmount `json:"remainingAmount"`
	Currency        string      `json:"currency"`
	Note            string      `json:"note"`
	AttemptID       string      `json:"attemptId"`
}

type PaymentDTO struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	CustomerID string `json:"customerId,omitempty"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	ReceiptURL string `json:"receiptUrl,omitempty"`
}

type ChargeRemainingResponseDTO struct {
	Success bool       `json:"success"`
	Payment PaymentDTO `json:"payment"`
}

func (h *PaymentHandler) CreateDeposits(w http.ResponseWriter, r *http.Request) {
	if done := h.route(w, r); done {
		return
	}

	var req CreateDepositsRequestDTO
	if !decodePaymentBody(w, r, &req) {
		return
	}

	res, err := h.deposits.CreateDeposit(r.Context(), &deposit.CreateDepositRequest{
		Nonce:       req.Nonce,
		CustomerID:  req.CustomerID,
		Currency:    req.Currency,
		AmountCents: req.DepositAmount.Int64(),
		AttemptID:   req.AttemptID,
	})
	if err != nil {
		handlePaymentError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, CreateDepositsResponseDTO{
		Success:    true,
		PaymentID:  res.PaymentID,
		CustomerID: res.CustomerID,
		ReceiptURL: res.ReceiptURL,
	})
}

func (h *PaymentHandler) ChargeRemaining(w http.ResponseWriter, r *http.Request) {
	if done := h.route(w, r); done {
		return
	}

	var req ChargeRemainingRequestDTO
	if !decodePaymentBody(w, r, &req) {
		return
	}

	p, err := h.deposits.ChargeRemaining(r.Context(), &deposit.ChargeRemainingRequest{
		CustomerID:  req.CustomerID,
		CardID:      req.CardID,
		AmountCents: req.RemainingAmount.Int64(),
		Currency:    req.Currency,
		Note:        req.Note,
		AttemptID:   req.AttemptID,
	})
	if err != nil {
		handlePaymentError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ChargeRemainingResponseDTO{
		Success: true,
		Payment: PaymentDTO{
			ID:         p.ID,
			Status:     p.Status,
			CustomerID: p.CustomerID,
			Amount:     p.Amount.Amount,
			Currency:   p.Amount.Currency,
			ReceiptURL: p.ReceiptURL,
		},
	})
}

// route handles everything that is not the POST business logic. Returns
// true when the request was already answered.
func (h *PaymentHandler) route(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	switch r.Method {
	case http.MethodOptions:
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.WriteHeader(http.StatusNoContent)
		return true
	case http.MethodPost:
		if h.deposits == nil {
			respondError(w, http.StatusServiceUnavailable, "gateway_not_configured", "payment gateway not configured")
			return true
		}
		return false
	default:
		respondError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return true
	}
}

func decodePaymentBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, errNotMinorUnits) {
			respondError(w, http.StatusBadRequest, "invalid_amount", errNotMinorUnits.Error())
			return false
		}
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

func handlePaymentError(w http.ResponseWriter, err error) {
	var procErr *payment.ProcessorError
	switch {
	case errors.Is(err, deposit.ErrNonceRequired),
		errors.Is(err, deposit.ErrAmountNotPositive),
		errors.Is(err, deposit.ErrAmountBelowMinimum),
		errors.Is(err, deposit.ErrCustomerRequired),
		errors.Is(err, deposit.ErrCardRequired):
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.As(err, &procErr):
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   procErr.Detail,
			Code:    procErr.Code,
			Details: procErr.Category,
		})
	default:
		log.Printf("payment request failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
