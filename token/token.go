// Package token manages the credential pair an authenticated HTTP client
// needs: a short-lived access token and the refresh token used to renew it.
package token

import (
	"context"
	"sync"
)

// Store holds a credential pair. Reads are synchronous so the client can
// build request headers without blocking; writes may hit durable storage.
type Store interface {
	// AccessToken returns the current access token, empty if none.
	AccessToken() string

	// RefreshToken returns the current refresh token, empty if none.
	RefreshToken() string

	// SetAccessToken replaces the access token, keeping the refresh token.
	SetAccessToken(ctx context.Context, access string) error

	// SetTokens replaces both tokens, e.g. after sign-in.
	SetTokens(ctx context.Context, access, refresh string) error

	// Clear drops both tokens, forcing re-authentication.
	Clear(ctx context.Context) error
}

// MemoryStore keeps the credential pair in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	access  string
	refresh string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

func (s *MemoryStore) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

func (s *MemoryStore) SetAccessToken(_ context.Context, access string) error {
	s.mu.Lock()
	s.access = access
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) SetTokens(_ context.Context, access, refresh string) error {
	s.mu.Lock()
	s.access = access
	s.refresh = refresh
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.access = ""
	s.refresh = ""
	s.mu.Unlock()
	return nil
}
