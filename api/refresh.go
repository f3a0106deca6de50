package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access string `json:"access"`
}

// refresh renews the access token by POSTing the stored refresh token to
// the refresh endpoint with unauthenticated headers. Any failure (missing
// refresh token, transport error, non-2xx, missing or empty "access" field)
// clears both stored tokens so the caller knows to re-authenticate.
func (c *Client) refresh(ctx context.Context) error {
	refreshToken := c.tokens.RefreshToken()
	if refreshToken == "" {
		_ = c.tokens.Clear(ctx)
		return errors.New("no refresh token stored")
	}
	if c.refreshURL == "" {
		_ = c.tokens.Clear(ctx)
		return errors.New("no refresh endpoint configured")
	}

	status, body, err := c.postUnauthenticated(ctx, c.refreshURL, refreshRequest{Refresh: refreshToken})
	if err != nil {
		_ = c.tokens.Clear(ctx)
		return errors.Wrap(err, "refresh request")
	}
	if status != http.StatusOK {
		_ = c.tokens.Clear(ctx)
		return errors.Errorf("refresh endpoint returned %d", status)
	}

	var rr refreshResponse
	if err := json.Unmarshal(body, &rr); err != nil || rr.Access == "" {
		_ = c.tokens.Clear(ctx)
		return errors.New("refresh response missing access token")
	}

	return errors.Wrap(c.tokens.SetAccessToken(ctx, rr.Access), "persist access token")
}

// postUnauthenticated issues a JSON POST that deliberately carries no
// Authorization header, for the refresh and sign-in endpoints.
func (c *Client) postUnauthenticated(ctx context.Context, rawURL string, payload any) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(data))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, transportError(err)
	}

	c.logRequest(rawURL, map[string]string{"Content-Type": "application/json"}, resp.StatusCode, nil)

	return resp.StatusCode, body, nil
}
