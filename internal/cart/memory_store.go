package cart

import (
	"context"
	"sync"
	"time"
)

const (
	// SessionTTL is how long an idle cart survives before it is dropped
	SessionTTL = 2 * time.Hour

	// CleanupInterval is how often the background cleanup runs
	CleanupInterval = 5 * time.Minute
)

// MemoryStore implements Store with in-memory storage. Carts expire after
// SessionTTL of inactivity, mirroring a browsing session.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]*memoryEntry
	ttl   time.Duration

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

type memoryEntry struct {
	cart      *Cart
	expiresAt time.Time
}

// NewMemoryStore creates a new in-memory cart store
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		carts:       make(map[string]*memoryEntry),
		ttl:         SessionTTL,
		stopCleanup: make(chan struct{}),
	}

	// Start background cleanup goroutine
	s.wg.Add(1)
	go s.cleanupLoop()

	return s
}

func (s *MemoryStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.expireCarts()
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *MemoryStore) expireCarts() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.carts {
		if now.After(entry.expiresAt) {
			delete(s.carts, id)
		}
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.carts[id]
	if !exists || time.Now().After(entry.expiresAt) {
		return nil, ErrCartNotFound
	}
	return entry.cart.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, cart *Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[cart.ID] = &memoryEntry{
		cart:      cart.Clone(),
		expiresAt: time.Now().Add(s.ttl),
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, id)
	return nil
}

// Close stops the background cleanup and waits for it to finish
func (s *MemoryStore) Close() error {
	close(s.stopCleanup)
	s.wg.Wait()
	return nil
}
