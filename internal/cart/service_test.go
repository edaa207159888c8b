package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockStore implements Store for testing
type MockStore struct {
	Carts     map[string]*Cart
	GetErr    error
	SaveErr   error
	DeleteErr error
	Saved     *Cart // Captures the cart passed to Save
}

func NewMockStore() *MockStore {
	return &MockStore{Carts: make(map[string]*Cart)}
}

func (m *MockStore) Get(_ context.Context, id string) (*Cart, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	c, ok := m.Carts[id]
	if !ok {
		return nil, ErrCartNotFound
	}
	return c.Clone(), nil
}

func (m *MockStore) Save(_ context.Context, cart *Cart) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Saved = cart.Clone()
	m.Carts[cart.ID] = cart.Clone()
	return nil
}

func (m *MockStore) Delete(_ context.Context, id string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.Carts, id)
	return nil
}

func TestServiceGet_MissingCartIsEmptyCart(t *testing.T) {
	svc := NewService(NewMockStore())

	c, err := svc.Get(context.Background(), "session-1")
	require.NoError(t, err)
	assert.Equal(t, "session-1", c.ID)
	assert.True(t, c.IsEmpty())
}

func TestServiceGet_StoreError(t *testing.T) {
	store := NewMockStore()
	store.GetErr = errors.New("redis down")
	svc := NewService(store)

	_, err := svc.Get(context.Background(), "session-1")
	assert.ErrorContains(t, err, "redis down")
}

func TestServiceAddItem_CreatesAndSaves(t *testing.T) {
	store := NewMockStore()
	svc := NewService(store)

	c, err := svc.AddItem(context.Background(), "session-1", Line{SKU: "A", Qty: 2})
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)

	require.NotNil(t, store.Saved)
	assert.Equal(t, 2, store.Saved.Lines[0].Qty)
}

func TestServiceAddItem_MergesExistingLine(t *testing.T) {
	store := NewMockStore()
	svc := NewService(store)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "session-1", Line{SKU: "A", Qty: 1})
	require.NoError(t, err)
	c, err := svc.AddItem(ctx, "session-1", Line{SKU: "A", Qty: 3})
	require.NoError(t, err)

	require.Len(t, c.Lines, 1)
	assert.Equal(t, 4, c.Lines[0].Qty)
}

func TestServiceUpdateQty_RemovalPersisted(t *testing.T) {
	store := NewMockStore()
	svc := NewService(store)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "session-1", Line{SKU: "A", Qty: 1})
	require.NoError(t, err)

	c, err := svc.UpdateQty(ctx, "session-1", "A", 0)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
	assert.True(t, store.Saved.IsEmpty())
}

func TestServiceClear_DeletesFromStore(t *testing.T) {
	store := NewMockStore()
	svc := NewService(store)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "session-1", Line{SKU: "A", Qty: 1})
	require.NoError(t, err)

	c, err := svc.Clear(ctx, "session-1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	_, exists := store.Carts["session-1"]
	assert.False(t, exists)
}

func TestServiceSaveError_Propagates(t *testing.T) {
	store := NewMockStore()
	store.SaveErr = errors.New("write failed")
	svc := NewService(store)

	_, err := svc.AddItem(context.Background(), "session-1", Line{SKU: "A", Qty: 1})
	assert.ErrorContains(t, err, "save cart")
}
