package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultKeyStrategy(t *testing.T) {
	s := DefaultKeyStrategy{}

	t.Run("method and url only", func(t *testing.T) {
		key := s.Key("get", "https://api.example.com/x", nil, nil)
		require.Equal(t, "GET https://api.example.com/x", key)
	})

	t.Run("query sorted by key", func(t *testing.T) {
		key := s.Key("GET", "https://api/x", map[string]string{"b": "2", "a": "1"}, nil)
		require.Equal(t, "GET https://api/x?a=1&b=2", key)
	})

	t.Run("deterministic across map ordering", func(t *testing.T) {
		first := s.Key("GET", "https://api/x", map[string]string{"b": "2", "a": "1", "c": "3"}, nil)
		second := s.Key("GET", "https://api/x", map[string]string{"c": "3", "a": "1", "b": "2"}, nil)
		require.Equal(t, first, second)
	})

	t.Run("headers ignored", func(t *testing.T) {
		plain := s.Key("GET", "https://api/x", nil, nil)
		withAuth := s.Key("GET", "https://api/x", nil, map[string]string{"Authorization": "Bearer abc"})
		require.Equal(t, plain, withAuth)
	})

	t.Run("different inputs do not collide", func(t *testing.T) {
		get := s.Key("GET", "https://api/x", nil, nil)
		post := s.Key("POST", "https://api/x", nil, nil)
		other := s.Key("GET", "https://api/y", nil, nil)
		require.NotEqual(t, get, post)
		require.NotEqual(t, get, other)
	})
}

func TestHeaderKeyStrategy(t *testing.T) {
	s := HeaderKeyStrategy{}

	t.Run("locale separates entries", func(t *testing.T) {
		en := s.Key("GET", "https://api/x", nil, map[string]string{"Accept-Language": "en"})
		de := s.Key("GET", "https://api/x", nil, map[string]string{"Accept-Language": "de"})
		require.NotEqual(t, en, de)
	})

	t.Run("auth presence separates entries", func(t *testing.T) {
		anon := s.Key("GET", "https://api/x", nil, nil)
		authed := s.Key("GET", "https://api/x", nil, map[string]string{"Authorization": "Bearer abc"})
		require.NotEqual(t, anon, authed)
	})

	t.Run("header lookup is case-insensitive", func(t *testing.T) {
		lower := s.Key("GET", "https://api/x", nil, map[string]string{"accept-language": "en"})
		canonical := s.Key("GET", "https://api/x", nil, map[string]string{"Accept-Language": "en"})
		require.Equal(t, lower, canonical)
	})
}
