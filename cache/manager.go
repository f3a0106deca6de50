package cache

import (
	"context"

	"github.com/rs/zerolog"
)

// Request carries the request identity and caller intent the manager needs
// to make a cache decision.
type Request struct {
	Method       string
	URL          string
	Query        map[string]string
	Headers      map[string]string
	UseCache     bool
	ForceRefresh bool
}

// Manager orchestrates a Store, KeyStrategy and Policy behind two
// operations. Caching is an optimization, never a correctness requirement:
// store failures degrade to a miss on read and a no-op on write, so no error
// ever reaches the caller.
type Manager struct {
	store  Store
	keys   KeyStrategy
	policy Policy
	log    zerolog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithKeyStrategy overrides the default method+URL key strategy.
func WithKeyStrategy(s KeyStrategy) Option {
	return func(m *Manager) { m.keys = s }
}

// WithPolicy overrides the default fixed-TTL policy.
func WithPolicy(p Policy) Option {
	return func(m *Manager) { m.policy = p }
}

// WithLogger sets the logger for debug-level cache events.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// NewManager creates a manager over the given store. Defaults: method+URL
// key strategy and a GET-only fixed-TTL policy.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		keys:   DefaultKeyStrategy{},
		policy: NewFixedTTLPolicy(DefaultTTL),
		log:    zerolog.Nop(),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// TryRead returns the cached raw body for the request, if the policy permits
// a read and the store holds a live entry. Any store failure is treated as a
// miss.
func (m *Manager) TryRead(ctx context.Context, req Request) (string, bool) {
	if m.store == nil || !m.policy.CanRead(req.Method, req.UseCache, req.ForceRefresh) {
		return "", false
	}

	key := m.keys.Key(req.Method, req.URL, req.Query, req.Headers)
	body, ok, err := m.store.Get(ctx, key)
	if err != nil {
		m.log.Debug().Err(err).Str("key", key).Msg("cache read failed, treating as miss")
		return "", false
	}
	return body, ok
}

// TryWrite stores the response body for the request if the policy permits a
// write for this method and status. Failures are logged and dropped.
func (m *Manager) TryWrite(ctx context.Context, req Request, status int, body string) {
	if m.store == nil || !m.policy.CanWrite(req.Method, status, req.UseCache) {
		return
	}

	key := m.keys.Key(req.Method, req.URL, req.Query, req.Headers)
	ttl := m.policy.TTL(req.Method, req.URL)
	if err := m.store.Set(ctx, key, body, ttl); err != nil {
		m.log.Debug().Err(err).Str("key", key).Msg("cache write failed, dropping")
	}
}
