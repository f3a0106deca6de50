// Package cache provides response caching for HTTP clients: key derivation
// from request identity, TTL-based policy decisions, and swappable key-value
// storage behind a narrow interface.
package cache

import (
	"context"
	"time"
)

// Entry represents a stored cache entry with its expiry metadata.
type Entry struct {
	Body      string    `json:"body"`
	StoredAt  time.Time `json:"stored_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the entry is past its expiry at the given time.
func (e *Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Store defines the storage interface for cache entries.
// An expired entry must behave identically to a missing one on read.
type Store interface {
	// Get retrieves the raw body for a key.
	// Returns false if the key is missing or expired.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores a body under a key with the given TTL.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Remove deletes a single entry.
	Remove(ctx context.Context, key string) error

	// Clear deletes all entries.
	Clear(ctx context.Context) error
}

// KeyStrategy derives a deterministic cache key from request identity.
// Implementations must be pure: no I/O, identical inputs (regardless of map
// ordering) produce identical keys.
type KeyStrategy interface {
	Key(method, rawURL string, query map[string]string, headers map[string]string) string
}

// Policy decides whether a request may be served from or written to cache,
// and how long a written entry lives.
type Policy interface {
	// CanRead reports whether a cache read is permitted for this request.
	CanRead(method string, useCache, forceRefresh bool) bool

	// CanWrite reports whether a response with this status may be cached.
	CanWrite(method string, status int, useCache bool) bool

	// TTL returns the time-to-live to apply to a cache write.
	TTL(method, rawURL string) time.Duration
}
