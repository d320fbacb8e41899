package credentials

import (
	"context"
	"sync"
)

// Pair is an access credential together with the refresh credential that
// was issued with it.
type Pair struct {
	Access  string
	Refresh string
}

// IsZero reports whether p carries no credential at all.
func (p Pair) IsZero() bool {
	return p.Access == "" && p.Refresh == ""
}

// Store is the contract of a credential holder.
//
// Get returns ok=false when nothing is stored. Clear on an empty store is
// a no-op.
type Store interface {
	Get(ctx context.Context) (pair Pair, ok bool, err error)
	Set(ctx context.Context, pair Pair) error
	Clear(ctx context.Context) error
}

// MemoryStore is a Store living in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	pair Pair
	set  bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(ctx context.Context) (Pair, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair, s.set, nil
}

func (s *MemoryStore) Set(ctx context.Context, pair Pair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = pair
	s.set = true
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = Pair{}
	s.set = false
	return nil
}
