package api

import (
	"context"
	"encoding/json"
)

type signInResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// SignIn POSTs credentials to a sign-in endpoint and persists the returned
// token pair. The response must strictly contain non-empty string fields
// "access" and "refresh"; anything else is a MalformedResponse rather than
// a partial recovery.
func (c *Client) SignIn(ctx context.Context, rawURL string, credentials any) error {
	status, body, err := c.postUnauthenticated(ctx, rawURL, credentials)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return errorFromStatus(status, body)
	}

	var sr signInResponse
	if err := json.Unmarshal(body, &sr); err != nil || sr.Access == "" || sr.Refresh == "" {
		return &Error{Kind: KindMalformedResponse, Message: "sign-in response missing access or refresh token"}
	}

	if err := c.tokens.SetTokens(ctx, sr.Access, sr.Refresh); err != nil {
		return &Error{Kind: KindUnexpected, Message: "persist tokens: " + err.Error(), cause: err}
	}
	return nil
}
