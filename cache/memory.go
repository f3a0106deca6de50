package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store backed by a mutex-protected map.
// Expiry is lazy: entries are dropped when a read finds them stale, or when
// Purge is called explicitly.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry

	now func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]Entry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if entry.Expired(s.now()) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return "", false, nil
	}
	return entry.Body, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	now := s.now()
	s.mu.Lock()
	s.entries[key] = Entry{
		Body:      value,
		StoredAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.entries = make(map[string]Entry)
	s.mu.Unlock()
	return nil
}

// Purge removes all expired entries and returns how many were dropped.
// Useful for long-lived processes that want bounded memory without waiting
// for lazy expiry on read.
func (s *MemoryStore) Purge() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for key, entry := range s.entries {
		if entry.Expired(now) {
			delete(s.entries, key)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of entries currently held, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
