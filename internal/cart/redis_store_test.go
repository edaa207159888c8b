package cart

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisStore instance
func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	store := NewRedisStore(client)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return store, mr, cleanup
}

func TestRedisStore_Get(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	c := New("session-1")
	c.AddLine(Line{ProductID: 1, SKU: "SUM-10-GR", Qty: 2})

	cartJSON, _ := json.Marshal(c)
	mr.Set(cartKey("session-1"), string(cartJSON))

	got, err := store.Get(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, "session-1", got.ID)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "SUM-10-GR", got.Lines[0].SKU)
}

func TestRedisStore_GetMissing(t *testing.T) {
	store, _, cleanup := setupTestRedis(t)
	defer cleanup()

	got, err := store.Get(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.Nil(t, got)
}

func TestRedisStore_GetInvalidJSON(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	require.NoError(t, mr.Set(cartKey("session-1"), `{"id":"sess`))

	_, err := store.Get(context.Background(), "session-1")
	require.ErrorContains(t, err, "unmarshal cart failed")
}

func TestRedisStore_Save(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	c := New("session-2")
	c.AddLine(Line{SKU: "RDG-8-GR", Qty: 1})

	require.NoError(t, store.Save(context.Background(), c))

	stored, err := mr.Get(cartKey("session-2"))
	require.NoError(t, err)

	var storedCart Cart
	require.NoError(t, json.Unmarshal([]byte(stored), &storedCart))
	assert.Equal(t, "session-2", storedCart.ID)
	assert.Len(t, storedCart.Lines, 1)
}

func TestRedisStore_SaveSetsTTL(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	require.NoError(t, store.Save(context.Background(), New("session-3")))

	ttl := mr.TTL(cartKey("session-3"))
	assert.True(t, ttl >= SessionTTL, "TTL should be at least the session TTL")
	assert.True(t, ttl <= SessionTTL+5*time.Minute, "TTL should be session TTL + max jitter")
}

func TestRedisStore_Delete(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, New("session-4")))
	assert.True(t, mr.Exists(cartKey("session-4")))

	require.NoError(t, store.Delete(ctx, "session-4"))
	assert.False(t, mr.Exists(cartKey("session-4")))

	assert.NoError(t, store.Delete(ctx, "session-4"))
}

func TestCartKey_Format(t *testing.T) {
	assert.Equal(t, "cart:abc123", cartKey("abc123"))
}
