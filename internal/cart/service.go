package cart

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"
)

// Service wraps a Store with the session cart semantics the handlers need:
// reading a cart that does not exist yet yields a fresh empty cart.
type Service struct {
	store Store
	sfg   singleflight.Group // Prevents concurrent loads of the same cart
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, id string) (*Cart, error) {
	v, err, _ := s.sfg.Do(id, func() (interface{}, error) {
		cart, err := s.store.Get(ctx, id)
		if errors.Is(err, ErrCartNotFound) {
			return New(id), nil
		}
		if err != nil {
			return nil, err
		}
		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	// Clone so concurrent callers sharing a singleflight result never
	// mutate the same lines slice.
	return v.(*Cart).Clone(), nil
}

func (s *Service) AddItem(ctx context.Context, id string, line Line) (*Cart, error) {
	return s.mutate(ctx, id, func(c *Cart) {
		c.AddLine(line)
	})
}

func (s *Service) UpdateQty(ctx context.Context, id, sku string, qty int) (*Cart, error) {
	return s.mutate(ctx, id, func(c *Cart) {
		c.UpdateQty(sku, qty)
	})
}

func (s *Service) RemoveItem(ctx context.Context, id, sku string) (*Cart, error) {
	return s.mutate(ctx, id, func(c *Cart) {
		c.RemoveLine(sku)
	})
}

func (s *Service) Clear(ctx context.Context, id string) (*Cart, error) {
	if err := s.store.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}
	return New(id), nil
}

func (s *Service) mutate(ctx context.Context, id string, fn func(*Cart)) (*Cart, error) {
	cart, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fn(cart)

	if err := s.store.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return cart, nil
}
