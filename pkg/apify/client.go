// Package apify provides a client for running Apify actors and collecting
// their dataset items.
package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client defines the Apify actor operations.
type Client interface {
	// RunActor starts an actor run with the given input, waits for it to
	// finish and returns the items from its default dataset.
	RunActor(ctx context.Context, actorID string, input any) ([]map[string]any, error)
}

// Option configures the Apify client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit throttles actor runs to n requests per second.
func WithRateLimit(n float64) Option {
	return func(c *httpClient) {
		if n > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(n), 1)
		}
	}
}

type httpClient struct {
	token   string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a new Apify client.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: "https://api.apify.com",
		http: &http.Client{
			Timeout: 5 * time.Minute,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// retryableStatusCode returns true if the HTTP status code should trigger a retry.
func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

// retryDo executes an HTTP request with exponential backoff retries on
// transient failures (429, 500, 502, 503). Returns the response body and
// status code on success, or the last error after exhausting retries.
func (c *httpClient) retryDo(ctx context.Context, method, reqURL string, payload []byte) ([]byte, int, error) {
	const maxAttempts = 3
	backoff := 2 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, reqURL, bytes.NewReader(payload))
		if err != nil {
			return nil, 0, eris.Wrap(err, "apify: create request")
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			if attempt < maxAttempts {
				select {
				case <-ctx.Done():
					return nil, 0, ctx.Err()
				case <-time.After(backoff):
				}
				backoff *= 2
				continue
			}
			return nil, 0, lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, resp.StatusCode, eris.Wrap(readErr, "apify: read response body")
		}

		if retryableStatusCode(resp.StatusCode) && attempt < maxAttempts {
			lastErr = eris.Errorf("apify: status %d: %s", resp.StatusCode, string(body))
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			continue
		}

		return body, resp.StatusCode, nil
	}

	return nil, 0, lastErr
}

func (c *httpClient) RunActor(ctx context.Context, actorID string, input any) ([]map[string]any, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "apify: rate limit wait")
		}
	}

	payload, err := json.Marshal(input)
	if err != nil {
		return nil, eris.Wrap(err, "apify: marshal actor input")
	}

	// run-sync-get-dataset-items blocks until the run finishes and returns
	// the default dataset in a single call.
	reqURL := fmt.Sprintf("%s/v2/acts/%s/run-sync-get-dataset-items?token=%s&format=json",
		c.baseURL, url.PathEscape(actorID), url.QueryEscape(c.token))

	body, statusCode, err := c.retryDo(ctx, http.MethodPost, reqURL, payload)
	if err != nil {
		return nil, eris.Wrapf(err, "apify: run actor %s", actorID)
	}

	if statusCode != http.StatusOK && statusCode != http.StatusCreated {
		return nil, eris.Errorf("apify: actor %s unexpected status %d: %s", actorID, statusCode, string(body))
	}

	var items []map[string]any
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, eris.Wrapf(err, "apify: unmarshal dataset items for %s", actorID)
	}

	return items, nil
}
