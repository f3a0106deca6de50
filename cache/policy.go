package cache

import (
	"net/http"
	"strings"
	"time"
)

// DefaultTTL is applied by FixedTTLPolicy when no TTL is configured.
const DefaultTTL = 5 * time.Minute

// FixedTTLPolicy applies a single TTL to every cache write and gates
// cacheability by HTTP method. Only GET is cacheable unless additional
// methods are opted in; error responses are never cached.
type FixedTTLPolicy struct {
	ttl     time.Duration
	methods map[string]bool
}

// NewFixedTTLPolicy creates a policy with the given TTL. Additional methods
// beyond GET can be allowed via extraMethods (e.g. "POST"); callers still
// have to pass useCache=true per request for those to take effect.
func NewFixedTTLPolicy(ttl time.Duration, extraMethods ...string) *FixedTTLPolicy {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	methods := map[string]bool{http.MethodGet: true}
	for _, m := range extraMethods {
		methods[strings.ToUpper(m)] = true
	}
	return &FixedTTLPolicy{ttl: ttl, methods: methods}
}

// CanRead permits reads only when the caller asked for caching and did not
// force a refresh, and the method is in the cacheable set.
func (p *FixedTTLPolicy) CanRead(method string, useCache, forceRefresh bool) bool {
	if !useCache || forceRefresh {
		return false
	}
	return p.methods[strings.ToUpper(method)]
}

// CanWrite permits writes only for 2xx responses on opted-in methods.
// 4xx and 5xx are never cached regardless of configuration.
func (p *FixedTTLPolicy) CanWrite(method string, status int, useCache bool) bool {
	if !useCache {
		return false
	}
	if status < 200 || status > 299 {
		return false
	}
	return p.methods[strings.ToUpper(method)]
}

// TTL returns the configured fixed duration for every write.
func (p *FixedTTLPolicy) TTL(_, _ string) time.Duration {
	return p.ttl
}
