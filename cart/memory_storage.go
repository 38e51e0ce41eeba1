package cart

import (
	"context"
	"sync"

	"goflare.io/catering/models"
)

var _ Storage = (*MemoryStorage)(nil)

// MemoryStorage keeps the encoded blob in process memory. It runs the same
// codec as the Redis adapter, so round-trip behavior matches.
type MemoryStorage struct {
	mu           sync.Mutex
	blob         []byte
	pendingClear bool
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Load(_ context.Context) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.blob == nil {
		return nil, ErrNotFound
	}
	return decodeCart(s.blob)
}

func (s *MemoryStorage) Save(_ context.Context, cart *models.Cart) error {
	data, err := encodeCart(cart)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = data
	return nil
}

func (s *MemoryStorage) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = nil
	return nil
}

func (s *MemoryStorage) SetPendingClear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingClear = true
	return nil
}

func (s *MemoryStorage) PendingClear(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingClear, nil
}

func (s *MemoryStorage) ClearPendingClear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingClear = false
	return nil
}
