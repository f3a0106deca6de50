package cache

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

// failingStore errors on every operation, standing in for a broken backend.
type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("backend down")
}
func (failingStore) Set(context.Context, string, string, time.Duration) error {
	return errors.New("backend down")
}
func (failingStore) Remove(context.Context, string) error { return errors.New("backend down") }
func (failingStore) Clear(context.Context) error          { return errors.New("backend down") }

func getRequest(url string) Request {
	return Request{Method: http.MethodGet, URL: url, UseCache: true}
}

func TestManagerRoundTrip(t *testing.T) {
	m := NewManager(NewMemoryStore())
	ctx := context.Background()
	req := getRequest("https://api/x")

	_, ok := m.TryRead(ctx, req)
	require.False(t, ok, "cold cache must miss")

	m.TryWrite(ctx, req, 200, `{"id":1}`)

	body, ok := m.TryRead(ctx, req)
	require.True(t, ok)
	require.Equal(t, `{"id":1}`, body)
}

func TestManagerNeverCachesErrors(t *testing.T) {
	m := NewManager(NewMemoryStore())
	ctx := context.Background()
	req := getRequest("https://api/x")

	m.TryWrite(ctx, req, 500, `{"message":"boom"}`)

	_, ok := m.TryRead(ctx, req)
	require.False(t, ok)
}

func TestManagerWriteGatingByMethod(t *testing.T) {
	ctx := context.Background()

	t.Run("POST not cached by default policy", func(t *testing.T) {
		m := NewManager(NewMemoryStore())
		req := Request{Method: http.MethodPost, URL: "https://api/x", UseCache: true}
		m.TryWrite(ctx, req, 200, "v")
		_, ok := m.TryRead(ctx, req)
		require.False(t, ok)
	})

	t.Run("POST cached when policy opts it in", func(t *testing.T) {
		m := NewManager(NewMemoryStore(),
			WithPolicy(NewFixedTTLPolicy(time.Minute, http.MethodPost)))
		req := Request{Method: http.MethodPost, URL: "https://api/x", UseCache: true}
		m.TryWrite(ctx, req, 200, "v")
		body, ok := m.TryRead(ctx, req)
		require.True(t, ok)
		require.Equal(t, "v", body)
	})

	t.Run("POST with useCache=false never cached", func(t *testing.T) {
		m := NewManager(NewMemoryStore(),
			WithPolicy(NewFixedTTLPolicy(time.Minute, http.MethodPost)))
		req := Request{Method: http.MethodPost, URL: "https://api/x", UseCache: false}
		m.TryWrite(ctx, req, 200, "v")
		req.UseCache = true
		_, ok := m.TryRead(ctx, req)
		require.False(t, ok)
	})
}

func TestManagerForceRefreshBypassesRead(t *testing.T) {
	m := NewManager(NewMemoryStore())
	ctx := context.Background()
	req := getRequest("https://api/x")

	m.TryWrite(ctx, req, 200, "v")

	req.ForceRefresh = true
	_, ok := m.TryRead(ctx, req)
	require.False(t, ok)
}

func TestManagerDegradesToMissOnStoreFailure(t *testing.T) {
	m := NewManager(failingStore{})
	ctx := context.Background()
	req := getRequest("https://api/x")

	_, ok := m.TryRead(ctx, req)
	require.False(t, ok)

	// Writes must swallow store errors too.
	require.NotPanics(t, func() { m.TryWrite(ctx, req, 200, "v") })
}

func TestManagerNilStore(t *testing.T) {
	m := NewManager(nil)
	ctx := context.Background()
	req := getRequest("https://api/x")

	_, ok := m.TryRead(ctx, req)
	require.False(t, ok)
	require.NotPanics(t, func() { m.TryWrite(ctx, req, 200, "v") })
}

func TestManagerHeaderAwareStrategy(t *testing.T) {
	m := NewManager(NewMemoryStore(), WithKeyStrategy(HeaderKeyStrategy{}))
	ctx := context.Background()

	en := getRequest("https://api/x")
	en.Headers = map[string]string{"Accept-Language": "en"}
	de := getRequest("https://api/x")
	de.Headers = map[string]string{"Accept-Language": "de"}

	m.TryWrite(ctx, en, 200, "english")

	_, ok := m.TryRead(ctx, de)
	require.False(t, ok, "locales must not share entries")

	body, ok := m.TryRead(ctx, en)
	require.True(t, ok)
	require.Equal(t, "english", body)
}
