package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/keaunie/elev8kitchens-backend/internal/cart"
	"github.com/keaunie/elev8kitchens-backend/internal/checkout"
)

type CheckoutHandler struct {
	carts  *cart.Service
	router *checkout.Router
}

func NewCheckoutHandler(carts *cart.Service, router *checkout.Router) *CheckoutHandler {
	return &CheckoutHandler{carts: carts, router: router}
}

type CheckoutRequestDTO struct {
	Mode              string      `json:"mode"`
	Amount            MinorAmount `json:"amount"`
	QuoteAcknowledged bool        `json:"quoteAcknowledged"`
	SkipQuote         bool        `json:"skipQuote"`
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "missing cart session")
		return
	}

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, errNotMinorUnits) {
			respondError(w, http.StatusBadRequest, "invalid_amount", errNotMinorUnits.Error())
			return
		}
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	c, err := h.carts.Get(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load cart")
		return
	}

	decision, err := h.router.Decide(r.Context(), c, checkout.Request{
		Mode:              checkout.Mode(req.Mode),
		CustomAmountCents: req.Amount.Int64(),
		QuoteAcknowledged: req.QuoteAcknowledged,
		SkipQuote:         req.SkipQuote,
	})
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, decision)
}

func handleCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
	case errors.Is(err, checkout.ErrUnknownMode):
		respondError(w, http.StatusBadRequest, "unknown_mode", err.Error())
	case errors.Is(err, checkout.ErrDepositNotPositive),
		errors.Is(err, checkout.ErrDepositExceedsTotal):
		respondError(w, http.StatusBadRequest, "invalid_deposit", err.Error())
	case errors.Is(err, checkout.ErrQuoteNotAcknowledged):
		respondError(w, http.StatusBadRequest, "quote_not_acknowledged", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
