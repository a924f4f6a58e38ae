package image

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// HTTPSource fetches images over http and https.
type HTTPSource struct {
	client *http.Client
}

// NewHTTPSource returns an HTTPSource. A nil client uses a client without
// an overall timeout, since cloud images are large; cancellation goes
// through the context.
func NewHTTPSource(client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPSource{client: client}
}

// Open issues a GET request and returns the response body.
func (s *HTTPSource) Open(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", u.Redacted(), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("GET %s: unexpected status %s", u.Redacted(), resp.Status)
	}
	return resp.Body, nil
}
