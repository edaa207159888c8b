package deposit

import (
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	// KindDeposit is the upfront partial payment securing an order.
	KindDeposit Kind = "DEPOSIT"
	// KindRemainder is the balance charged later to a saved card.
	KindRemainder Kind = "REMAINDER"
)

// Record is one settled charge. AttemptID is the idempotency key of the
// logical checkout attempt: client retries of the same attempt reuse it, so
// the processor and the unique column both collapse duplicates.
type Record struct {
	ID          uuid.UUID
	AttemptID   string
	PaymentID   string
	CustomerID  string
	AmountCents int64
	Currency    string
	Kind        Kind
	CreatedAt   time.Time
}
