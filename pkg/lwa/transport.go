package lwa

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Poster performs the token exchange POST. Implementations return the HTTP
// status code and raw response body; err is reserved for transport-level
// failures (connection errors, timeouts), which are always retryable.
type Poster interface {
	Post(ctx context.Context, endpoint string, form url.Values) (status int, body []byte, err error)
}

// HTTPPoster is the production Poster backed by net/http. A rate limiter
// spaces calls to the token endpoint so a misconfigured backoff can never
// hammer the authorization server.
type HTTPPoster struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPPoster creates an HTTPPoster with a 30 second request timeout and
// a floor of one token request per second.
func NewHTTPPoster() *HTTPPoster {
	return &HTTPPoster{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// Post sends a form-encoded POST to the token endpoint and returns the
// status code plus the full response body.
func (p *HTTPPoster) Post(ctx context.Context, endpoint string, form url.Values) (int, []byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		endpoint,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return resp.StatusCode, body, nil
}
