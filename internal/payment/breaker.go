package payment

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerGateway wraps a Gateway with a circuit breaker so a processor
// outage fails fast instead of tying up request handlers on timeouts.
// ProcessorError is a business refusal, not an outage, and never trips
// the breaker.
type BreakerGateway struct {
	inner Gateway
	cb    *gobreaker.CircuitBreaker[any]
}

func NewBreakerGateway(inner Gateway) *BreakerGateway {
	settings := gobreaker.Settings{
		Name:    "payment-gateway",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var pe *ProcessorError
			return errors.As(err, &pe)
		},
	}
	return &BreakerGateway{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker[any](settings),
	}
}

func (g *BreakerGateway) CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*Payment, error) {
	v, err := g.cb.Execute(func() (any, error) {
		return g.inner.CreatePayment(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Payment), nil
}

func (g *BreakerGateway) CreateCustomer(ctx context.Context, req *CreateCustomerRequest) (*Customer, error) {
	v, err := g.cb.Execute(func() (any, error) {
		return g.inner.CreateCustomer(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Customer), nil
}

func (g *BreakerGateway) CreatePaymentLink(ctx context.Context, amountCents int64, currency, description string) (string, error) {
	v, err := g.cb.Execute(func() (any, error) {
		return g.inner.CreatePaymentLink(ctx, amountCents, currency, description)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
