package deposit

import (
	"context"
	"errors"
	"time"
)

var (
	ErrDuplicateAttempt = errors.New("attempt already recorded")
	ErrRecordNotFound   = errors.New("charge record not found")
)

// OutboxEvent is a queued notification written in the same transaction as
// its charge record; the poller publishes it to Kafka for staff follow-up.
type OutboxEvent struct {
	ID          int64
	AggregateID string // attempt id, used as the Kafka message key
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
}

// Repository is the persistence interface for charge records and their
// outbox events.
type Repository interface {
	Recorder

	GetByAttemptID(ctx context.Context, attemptID string) (*Record, error)
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
	Close() error
}
