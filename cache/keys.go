package cache

import (
	"sort"
	"strings"
)

// DefaultKeyStrategy derives keys from method, URL and query only.
// Headers are ignored, so two sessions (or locales) requesting the same
// resource share an entry.
type DefaultKeyStrategy struct{}

// Key builds a stable key of the form "METHOD url?a=1&b=2".
// Query parameters are sorted by key so that map iteration order never
// changes the result.
func (DefaultKeyStrategy) Key(method, rawURL string, query map[string]string, _ map[string]string) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(method))
	b.WriteByte(' ')
	b.WriteString(rawURL)
	if len(query) > 0 {
		b.WriteByte('?')
		b.WriteString(canonicalQuery(query))
	}
	return b.String()
}

// HeaderKeyStrategy extends the default key with Accept-Language and an
// auth-presence flag, preventing cross-locale and cross-session pollution
// when the same store is shared between users.
type HeaderKeyStrategy struct {
	base DefaultKeyStrategy
}

func (s HeaderKeyStrategy) Key(method, rawURL string, query map[string]string, headers map[string]string) string {
	key := s.base.Key(method, rawURL, query, nil)

	lang := headerValue(headers, "Accept-Language")
	auth := headerValue(headers, "Authorization") != ""

	var b strings.Builder
	b.WriteString(key)
	b.WriteString(" lang=")
	b.WriteString(lang)
	if auth {
		b.WriteString(" auth")
	}
	return b.String()
}

func canonicalQuery(query map[string]string) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+query[k])
	}
	return strings.Join(pairs, "&")
}

// headerValue looks up a header case-insensitively, since callers supply
// plain maps rather than http.Header.
func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
