package api

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// WithCompletion registers a callback invoked after a download has been
// fully written to its destination. It reports completion only; this client
// does not stream incremental progress.
func WithCompletion(fn func()) RequestOption {
	return func(o *requestOptions) { o.onComplete = fn }
}

// Download fetches a URL as a byte stream and writes it to dest, with the
// same auth-header and refresh-retry semantics as the other verbs. The file
// is fully written (via temp file and rename) before any completion
// callback fires. Downloads are never cached.
func (c *Client) Download(ctx context.Context, rawURL, dest string, opts ...RequestOption) error {
	ro := &requestOptions{}
	for _, o := range opts {
		o(ro)
	}

	status, body, err := c.execute(ctx, http.MethodGet, rawURL, ro)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return errorFromStatus(status, body)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return &Error{Kind: KindUnexpected, Message: "create destination dir: " + err.Error(), cause: err}
	}
	tmp := dest + ".part." + uuid.NewString()
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		return &Error{Kind: KindUnexpected, Message: "write download: " + err.Error(), cause: err}
	}
	if err := os.Rename(tmp, dest); err != nil {
		return &Error{Kind: KindUnexpected, Message: "commit download: " + err.Error(), cause: err}
	}

	if ro.onComplete != nil {
		ro.onComplete()
	}
	return nil
}
