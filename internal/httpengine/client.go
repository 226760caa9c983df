// Package httpengine implements the service's single HTTP transport:
// synchronous GET/POST with a per-attempt timeout, linear backoff
// retry, and uniform detection of transport failures, HTTP-level
// failures, and body-level rate limiting.
package httpengine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/goware/logger"
	"github.com/goware/superr"

	"github.com/evmscope/evmscope/internal/apperr"
)

// Client is the shared, stateless-per-call HTTP transport used by
// both the explorer and JSON-RPC clients. Retry timing uses a fixed
// linear-backoff formula under direct control of this package, rather
// than a generic breaker policy, so the per-status-code retry decision
// stays precise.
type Client struct {
	log            logger.Logger
	httpClient     *http.Client
	timeout        time.Duration
	maxRetries     int
	backoffSeconds float64
}

// New builds a Client. timeout bounds a single attempt; maxRetries is
// the total attempt budget (1..maxRetries); backoffSeconds scales
// linearly with the attempt number between retries.
func New(log logger.Logger, timeout time.Duration, maxRetries int, backoffSeconds float64) *Client {
	if log == nil {
		log = logger.NewLogger(logger.LogLevel_INFO)
	}
	return &Client{
		log:            log,
		httpClient:     &http.Client{Timeout: timeout},
		timeout:        timeout,
		maxRetries:     maxRetries,
		backoffSeconds: backoffSeconds,
	}
}

// Get sends a GET request with the given query parameters and
// decodes the JSON body, applying the retry algorithm in full.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values) (any, error) {
	full := rawURL
	if len(params) > 0 {
		full = rawURL + "?" + params.Encode()
	}
	return c.do(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	})
}

// Post sends a POST request with a JSON-encoded body and decodes the
// JSON response, applying the retry algorithm in full.
func (c *Client) Post(ctx context.Context, rawURL string, jsonBody any) (any, error) {
	encoded, err := sonic.Marshal(jsonBody)
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling request body: %v", apperr.ErrInvalidInput, err)
	}
	return c.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(encoded))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
}

func (c *Client) do(ctx context.Context, build func(context.Context) (*http.Request, error)) (any, error) {
	requestID := uuid.NewString()
	var lastErr error

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		payload, retry, err := c.attempt(ctx, requestID, build)
		if err == nil {
			return payload, nil
		}
		lastErr = err
		if !retry || attempt == c.maxRetries {
			break
		}
		c.log.Debug(fmt.Sprintf("httpengine: request %s attempt %d/%d failed, retrying: %v", requestID, attempt, c.maxRetries, err))
		sleep := time.Duration(c.backoffSeconds*float64(attempt)) * time.Second
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sleep):
		}
	}
	return nil, lastErr
}

// attempt runs one HTTP round trip and reports whether the failure
// (if any) is retryable.
func (c *Client) attempt(ctx context.Context, requestID string, build func(context.Context) (*http.Request, error)) (any, bool, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := build(attemptCtx)
	if err != nil {
		return nil, false, fmt.Errorf("%w: building request: %v", apperr.ErrInvalidInput, err)
	}
	req.Header.Set("X-Request-Id", requestID)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, superr.Wrap(apperr.ErrTransient, fmt.Errorf("transport error: %w", err))
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, true, superr.Wrap(apperr.ErrTransient, fmt.Errorf("reading response body: %w", err))
	}

	if res.StatusCode >= 500 || res.StatusCode == http.StatusTooManyRequests {
		return nil, true, superr.Wrap(apperr.ErrTransient, fmt.Errorf("http status %d", res.StatusCode))
	}
	if res.StatusCode >= 400 {
		return nil, false, superr.Wrap(apperr.ErrUpstream, fmt.Errorf("http status %d: %s", res.StatusCode, truncate(body, 200)))
	}

	var payload any
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return nil, true, superr.Wrap(apperr.ErrTransient, fmt.Errorf("decoding json: %w", err))
	}

	if isRateLimited(payload) {
		return nil, true, superr.Wrap(apperr.ErrTransient, fmt.Errorf("rate limited"))
	}

	return payload, false, nil
}

func truncate(body []byte, n int) string {
	if len(body) <= n {
		return string(body)
	}
	return string(body[:n]) + "…"
}
