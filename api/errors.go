package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind classifies a request failure. The set is closed: callers switch on
// it rather than parsing error strings.
type Kind int

const (
	// KindUnexpected covers any non-2xx status without a more specific kind.
	KindUnexpected Kind = iota
	// KindUnauthorized is a 401 that survived the one-shot refresh+retry.
	KindUnauthorized
	// KindNotFound is a 404.
	KindNotFound
	// KindTimeout is a server 408 or a client-side timeout elapsing.
	KindTimeout
	// KindNetwork is a transport failure with no response at all.
	KindNetwork
	// KindMalformedResponse is a body that does not match the shape the
	// call site requires.
	KindMalformedResponse
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not found"
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network"
	case KindMalformedResponse:
		return "malformed response"
	default:
		return "unexpected"
	}
}

// Error is the typed failure surfaced by every client operation.
type Error struct {
	Kind    Kind
	Status  int // 0 when no response was received
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("api: %s (status %d): %s", e.Kind, e.Status, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("api: %s: %s", e.Kind, e.Message)
	}
	return "api: " + e.Kind.String()
}

func (e *Error) Unwrap() error { return e.cause }

// HasKind reports whether err is an api.Error of the given kind.
func HasKind(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// errorFromStatus maps a non-2xx response to its typed error, extracting a
// human-readable message from the body's "message" or "detail" fields when
// present. A malformed body never raises a secondary error here.
func errorFromStatus(status int, body []byte) *Error {
	kind := KindUnexpected
	switch status {
	case http.StatusUnauthorized:
		kind = KindUnauthorized
	case http.StatusNotFound:
		kind = KindNotFound
	case http.StatusRequestTimeout:
		kind = KindTimeout
	}
	return &Error{Kind: kind, Status: status, Message: extractMessage(status, body)}
}

func extractMessage(status int, body []byte) string {
	var fields struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(body, &fields); err == nil {
		if fields.Message != "" {
			return fields.Message
		}
		if fields.Detail != "" {
			return fields.Detail
		}
	}
	return http.StatusText(status)
}

// transportError maps a failure from the HTTP transport itself. Timeouts
// (client-side deadline or context expiry) get their own kind so callers can
// tell "slow" from "unreachable".
func transportError(err error) *Error {
	var netErr net.Error
	if (errors.As(err, &netErr) && netErr.Timeout()) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: err.Error(), cause: err}
	}
	return &Error{Kind: KindNetwork, Message: err.Error(), cause: err}
}
