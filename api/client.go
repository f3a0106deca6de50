// Package api implements an authenticated HTTP client with integrated
// response caching and a one-shot token refresh on authorization failure.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/corander/httpkit/cache"
	"github.com/corander/httpkit/token"
)

// DefaultTimeout bounds each request, including the refresh+retry sequence.
const DefaultTimeout = 120 * time.Second

const redactedAuth = "Bearer [redacted]"

// Client issues authenticated requests with optional response caching.
// A nil cache manager disables caching entirely; every probe and fill step
// is skipped.
type Client struct {
	http       *http.Client
	tokens     token.Store
	cache      *cache.Manager
	refreshURL string
	timeout    time.Duration
	log        zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport, e.g. for tests or
// custom TLS settings. Its own timeout then takes precedence.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithCache attaches a cache manager. Passing nil keeps caching disabled.
func WithCache(m *cache.Manager) Option {
	return func(c *Client) { c.cache = m }
}

// WithRefreshURL sets the endpoint POSTed to when a request hits a 401.
func WithRefreshURL(rawURL string) Option {
	return func(c *Client) { c.refreshURL = rawURL }
}

// WithTimeout overrides the default per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger used for debug-level request traces.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a client over the given token store.
func New(tokens token.Store, opts ...Option) *Client {
	c := &Client{
		tokens:  tokens,
		timeout: DefaultTimeout,
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	return c
}

// Response is the per-call envelope returned alongside the decoded value.
type Response struct {
	StatusCode int
	Body       []byte
	FromCache  bool
}

type requestOptions struct {
	query        map[string]string
	headers      map[string]string
	body         any
	useCache     bool
	forceRefresh bool
	decoder      Decoder
	onComplete   func()
}

// RequestOption configures a single request.
type RequestOption func(*requestOptions)

// WithQuery sets the query parameters for the request.
func WithQuery(query map[string]string) RequestOption {
	return func(o *requestOptions) { o.query = query }
}

// WithHeaders replaces the default headers. The current auth header is
// still injected if the map carries none.
func WithHeaders(headers map[string]string) RequestOption {
	return func(o *requestOptions) { o.headers = headers }
}

// WithBody sets the request payload. Strings and byte slices are sent
// as-is; anything else is JSON-encoded.
func WithBody(body any) RequestOption {
	return func(o *requestOptions) { o.body = body }
}

// WithUseCache overrides the method default (true for GET, false for the
// rest) for this request.
func WithUseCache(use bool) RequestOption {
	return func(o *requestOptions) { o.useCache = use }
}

// WithForceRefresh bypasses the cache read while still allowing the
// response to refill it.
func WithForceRefresh() RequestOption {
	return func(o *requestOptions) { o.forceRefresh = true }
}

// WithDecoder prepends a custom decoder to the decode chain.
func WithDecoder(d Decoder) RequestOption {
	return func(o *requestOptions) { o.decoder = d }
}

// Get issues a GET request, decoding the response into out when non-nil.
func (c *Client) Get(ctx context.Context, rawURL string, out any, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodGet, rawURL, out, opts...)
}

// Post issues a POST request. Use WithBody to attach a payload.
func (c *Client) Post(ctx context.Context, rawURL string, out any, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodPost, rawURL, out, opts...)
}

// Put issues a PUT request.
func (c *Client) Put(ctx context.Context, rawURL string, out any, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodPut, rawURL, out, opts...)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, rawURL string, out any, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodDelete, rawURL, out, opts...)
}

func (c *Client) do(ctx context.Context, method, rawURL string, out any, opts ...RequestOption) (*Response, error) {
	ro := &requestOptions{useCache: method == http.MethodGet}
	for _, o := range opts {
		o(ro)
	}

	creq := cache.Request{
		Method:       method,
		URL:          rawURL,
		Query:        ro.query,
		Headers:      ro.headers,
		UseCache:     ro.useCache,
		ForceRefresh: ro.forceRefresh,
	}

	// Cache probe. A hit short-circuits the network entirely.
	if c.cache != nil {
		if body, ok := c.cache.TryRead(ctx, creq); ok {
			if err := decodeBody([]byte(body), out, ro.decoder); err != nil {
				return nil, err
			}
			return &Response{StatusCode: http.StatusOK, Body: []byte(body), FromCache: true}, nil
		}
	}

	status, body, err := c.execute(ctx, method, rawURL, ro)
	if err != nil {
		return nil, err
	}

	if status < 200 || status > 299 {
		return nil, errorFromStatus(status, body)
	}

	if c.cache != nil {
		c.cache.TryWrite(ctx, creq, status, string(body))
	}

	if err := decodeBody(body, out, ro.decoder); err != nil {
		return nil, err
	}
	return &Response{StatusCode: status, Body: body}, nil
}

// attemptState makes the "at most one retry" invariant structural: a
// request is either on its first attempt or has already been retried after
// a refresh, and the second state never transitions anywhere.
type attemptState int

const (
	firstAttempt attemptState = iota
	retriedAfterRefresh
)

// execute runs the network half of the pipeline: one authenticated attempt,
// and on a 401 a single refresh followed by a single retry with freshly
// built headers. A failed refresh clears the stored tokens and the original
// 401 comes back un-retried.
func (c *Client) execute(ctx context.Context, method, rawURL string, ro *requestOptions) (int, []byte, error) {
	state := firstAttempt
	for {
		status, body, err := c.roundTrip(ctx, method, rawURL, ro)
		if err != nil {
			return 0, nil, err
		}

		if status == http.StatusUnauthorized && state == firstAttempt {
			if refreshErr := c.refresh(ctx); refreshErr != nil {
				c.log.Debug().Err(refreshErr).Msg("token refresh failed")
				return status, body, nil
			}
			state = retriedAfterRefresh
			continue
		}

		return status, body, nil
	}
}

// roundTrip performs one network attempt and reads the full body.
func (c *Client) roundTrip(ctx context.Context, method, rawURL string, ro *requestOptions) (int, []byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0, nil, &Error{Kind: KindUnexpected, Message: "invalid url: " + err.Error(), cause: err}
	}
	if len(ro.query) > 0 {
		q := u.Query()
		for k, v := range ro.query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	reqBody, err := encodeBody(ro.body)
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return 0, nil, &Error{Kind: KindUnexpected, Message: err.Error(), cause: err}
	}

	headers := c.buildHeaders(ro.headers)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, transportError(err)
	}

	c.logRequest(u.String(), headers, resp.StatusCode, body)

	return resp.StatusCode, body, nil
}

// buildHeaders constructs the headers for one attempt. Caller-supplied
// headers are used as-is apart from injecting the current auth header when
// none is present; default headers carry Content-Type and, only when a
// non-empty access token exists, the bearer token. An empty token never
// produces a bare Authorization header.
func (c *Client) buildHeaders(custom map[string]string) map[string]string {
	headers := make(map[string]string, len(custom)+2)
	if custom != nil {
		for k, v := range custom {
			headers[k] = v
		}
	} else {
		headers["Content-Type"] = "application/json"
	}

	if headerValue(headers, "Authorization") == "" {
		if tok := c.tokens.AccessToken(); tok != "" {
			headers["Authorization"] = "Bearer " + tok
		}
	}
	return headers
}

func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if http.CanonicalHeaderKey(k) == http.CanonicalHeaderKey(name) {
			return v
		}
	}
	return ""
}

func encodeBody(body any) (io.Reader, error) {
	switch v := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return bytes.NewReader(v), nil
	case string:
		return bytes.NewReader([]byte(v)), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, &Error{Kind: KindUnexpected, Message: "encode request body: " + err.Error(), cause: err}
		}
		return bytes.NewReader(data), nil
	}
}

// logRequest emits a debug-level trace of one attempt. The Authorization
// value is replaced with a fixed placeholder and the body preview is capped
// at 200 bytes, so a live token never reaches the log stream.
func (c *Client) logRequest(rawURL string, headers map[string]string, status int, body []byte) {
	if c.log.GetLevel() > zerolog.DebugLevel {
		return
	}

	redacted := make(map[string]string, len(headers))
	for k, v := range headers {
		if http.CanonicalHeaderKey(k) == "Authorization" {
			redacted[k] = redactedAuth
			continue
		}
		redacted[k] = v
	}

	preview := body
	if len(preview) > 200 {
		preview = preview[:200]
	}

	c.log.Debug().
		Str("url", rawURL).
		Interface("headers", redacted).
		Int("status", status).
		Str("body", string(preview)).
		Msg("request")
}
