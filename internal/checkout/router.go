package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/keaunie/elev8kitchens-backend/internal/cart"
)

type Mode string

const (
	// ModeFull pays the entire total now.
	ModeFull Mode = "full"
	// ModeSplit pays a 20% deposit; the balance is invoiced by staff.
	ModeSplit Mode = "split"
	// ModeCustom pays a buyer-chosen deposit within (0, total].
	ModeCustom Mode = "custom"
)

// SplitDepositPercent is the fixed deposit share for ModeSplit.
const SplitDepositPercent = 20

type Status string

const (
	StatusIdle      Status = "IDLE"
	StatusReviewing Status = "REVIEWING"
	StatusRedirect  Status = "REDIRECT"   // single-SKU fast path, no modal
	StatusModalOpen Status = "MODAL_OPEN" // confirmation modal before navigation
	StatusConfirmed Status = "CONFIRMED"
)

func (s Status) IsTerminal() bool {
	return s == StatusConfirmed
}

// CanTransitionTo validates the checkout flow ordering.
func CanTransitionTo(from, to Status) bool {
	switch from {
	case StatusIdle:
		return to == StatusReviewing
	case StatusReviewing:
		return to == StatusRedirect || to == StatusModalOpen
	case StatusModalOpen:
		return to == StatusConfirmed || to == StatusReviewing
	case StatusRedirect:
		return to == StatusConfirmed
	default:
		return false
	}
}

var (
	ErrEmptyCart            = errors.New("cart is empty, nothing to checkout")
	ErrUnknownMode          = errors.New("unknown checkout mode")
	ErrDepositNotPositive   = errors.New("deposit must be greater than zero")
	ErrDepositExceedsTotal  = errors.New("deposit cannot be greater than the cart total")
	ErrQuoteNotAcknowledged = errors.New("shipping quote notice must be acknowledged before checkout")
)

// LinkCreator generates a hosted checkout link for an exact amount. The old
// storefront redirected split and custom deposits to one fixed link whose
// pre-configured amount could disagree with the amount shown; generating a
// link per decision keeps the two equal.
type LinkCreator interface {
	CreatePaymentLink(ctx context.Context, amountCents int64, currency, description string) (string, error)
}

// Request is the buyer's checkout choice for one decision.
type Request struct {
	Mode              Mode
	CustomAmountCents int64
	// QuoteAcknowledged confirms the buyer saw the manual shipping quote
	// notice; SkipQuote is the explicit bypass link.
	QuoteAcknowledged bool
	SkipQuote         bool
}

// Decision is an ephemeral value describing where checkout goes next. It is
// never persisted; the client navigates to TargetURL and the flow ends.
type Decision struct {
	Status         Status         `json:"status"`
	Mode           Mode           `json:"mode"`
	AmountDueCents int64          `json:"amount_due_cents"`
	Currency       string         `json:"currency"`
	TargetURL      string         `json:"target_url"`
	Lines          []HydratedLine `json:"lines"`
	Summary        Summary        `json:"summary"`
}

// Router turns a hydrated cart and a checkout request into a Decision.
type Router struct {
	hydrator    *Hydrator
	links       LinkCreator // nil when no gateway is configured
	fallbackURL string      // pre-provisioned multi-item hosted checkout
	currency    string
}

func NewRouter(hydrator *Hydrator, links LinkCreator, fallbackURL, currency string) *Router {
	if currency == "" {
		currency = "USD"
	}
	return &Router{
		hydrator:    hydrator,
		links:       links,
		fallbackURL: fallbackURL,
		currency:    currency,
	}
}

// Decide runs the checkout decision flow:
//
//	reviewing -> redirect      single distinct SKU with its own payment link
//	reviewing -> modal-open    everything else, amount per mode
func (r *Router) Decide(ctx context.Context, c *cart.Cart, req Request) (*Decision, error) {
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	lines, summary := r.hydrator.Hydrate(c)

	if !req.QuoteAcknowledged && !req.SkipQuote {
		return nil, ErrQuoteNotAcknowledged
	}

	// Fast path: one distinct SKU and the variant carries its own
	// pre-provisioned link, so generic checkout is skipped entirely.
	if c.DistinctSKUs() == 1 && !lines[0].Unavailable && lines[0].PaymentLink != "" {
		return &Decision{
			Status:         StatusRedirect,
			Mode:           ModeFull,
			AmountDueCents: summary.TotalCents,
			Currency:       r.currency,
			TargetURL:      lines[0].PaymentLink,
			Lines:          lines,
			Summary:        summary,
		}, nil
	}

	amount, err := amountForMode(req, summary.TotalCents)
	if err != nil {
		return nil, err
	}

	target, err := r.targetURL(ctx, req.Mode, amount)
	if err != nil {
		return nil, err
	}

	return &Decision{
		Status:         StatusModalOpen,
		Mode:           req.Mode,
		AmountDueCents: amount,
		Currency:       r.currency,
		TargetURL:      target,
		Lines:          lines,
		Summary:        summary,
	}, nil
}

func amountForMode(req Request, total int64) (int64, error) {
	switch req.Mode {
	case ModeFull:
		return total, nil
	case ModeSplit:
		return SplitDeposit(total), nil
	case ModeCustom:
		if req.CustomAmountCents <= 0 {
			return 0, ErrDepositNotPositive
		}
		if req.CustomAmountCents > total {
			return 0, ErrDepositExceedsTotal
		}
		return req.CustomAmountCents, nil
	default:
		return 0, ErrUnknownMode
	}
}

// SplitDeposit returns 20% of total in minor units, rounded to the nearest
// cent. It is <= total for any non-negative total.
func SplitDeposit(total int64) int64 {
	return (total*SplitDepositPercent + 50) / 100
}

func (r *Router) targetURL(ctx context.Context, mode Mode, amount int64) (string, error) {
	if r.links == nil {
		return r.fallbackURL, nil
	}

	url, err := r.links.CreatePaymentLink(ctx, amount, r.currency, description(mode))
	if err != nil {
		if r.fallbackURL != "" {
			// The fixed link amount may not match the decision amount;
			// still better than a dead checkout button.
			log.Printf("payment link creation failed, using fallback checkout url: %v", err)
			return r.fallbackURL, nil
		}
		return "", fmt.Errorf("create payment link: %w", err)
	}
	return url, nil
}

func description(mode Mode) string {
	switch mode {
	case ModeSplit:
		return "Elev8 Kitchens 20% deposit"
	case ModeCustom:
		return "Elev8 Kitchens custom deposit"
	default:
		return "Elev8 Kitchens order"
	}
}
