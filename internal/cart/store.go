package cart

import (
	"context"
	"errors"
)

var ErrCartNotFound = errors.New("cart not found")

// Store persists session carts for the lifetime of the browsing session.
type Store interface {
	// Get returns the cart with the given id, or ErrCartNotFound.
	Get(ctx context.Context, id string) (*Cart, error)

	// Save upserts the cart and refreshes its session TTL.
	Save(ctx context.Context, cart *Cart) error

	// Delete drops the cart. No-op when absent.
	Delete(ctx context.Context, id string) error
}
