package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Store is the in-process KV used when no shared cache is configured.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

func NewStore() *Store {
	return NewStoreWithClock(time.Now)
}

// NewStoreWithClock builds a Store whose expiry follows the given clock.
func NewStoreWithClock(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		entries: make(map[string]entry),
		now:     now,
	}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, nil
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && !e.expiresAt.After(s.now()) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false, nil
	}

	return append([]byte(nil), e.value...), true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return nil
	}

	expiresAt := time.Time{}
	if ttl > 0 {
		expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[key] = entry{
		value:     append([]byte(nil), value...),
		expiresAt: expiresAt,
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	if key == "" {
		return nil
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
