// Package rest is the shared HTTP GET path for the indexer and swap-quote
// APIs: rate limiting, bounded bodies, retries and API error mapping.
package rest

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/metrics"
	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

const (
	httpTimeout     = 30 * time.Second
	maxResponseBody = 4 << 20
)

// Client performs JSON GET requests against one API base URL.
type Client struct {
	name        string
	baseURL     string
	httpClient  *http.Client
	rateLimiter *chain.RateLimiter
	retry       chain.RetryConfig
	headers     map[string]string
	query       url.Values
}

// Options configures a Client. Zero values select defaults.
type Options struct {
	// HTTPClient overrides the default client (TLS 1.2+, 30s timeout).
	HTTPClient *http.Client
	// RateLimiter is shared across clients; requests are keyed by Name.
	RateLimiter *chain.RateLimiter
	// Retry overrides chain.DefaultRetryConfig.
	Retry *chain.RetryConfig
	// Headers are sent with every request, e.g. an API key header.
	Headers map[string]string
	// Query parameters are appended to every request, e.g. an apikey param.
	Query url.Values
}

// New creates a client named name (used for metrics and errors).
func New(name, baseURL string, opts *Options) *Client {
	c := &Client{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: httpTimeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			},
		},
		rateLimiter: chain.NewRateLimiter(5, 5),
		retry:       chain.DefaultRetryConfig(),
		headers:     map[string]string{"Accept": "application/json"},
		query:       url.Values{},
	}
	if opts == nil {
		return c
	}
	if opts.HTTPClient != nil {
		c.httpClient = opts.HTTPClient
	}
	if opts.RateLimiter != nil {
		c.rateLimiter = opts.RateLimiter
	}
	if opts.Retry != nil {
		c.retry = *opts.Retry
	}
	for k, v := range opts.Headers {
		c.headers[k] = v
	}
	for k, vs := range opts.Query {
		for _, v := range vs {
			c.query.Add(k, v)
		}
	}
	return c
}

// Name returns the client label.
func (c *Client) Name() string {
	return c.name
}

// StatusError carries a non-2xx response that callers may want to inspect,
// such as a 400 body with a machine-readable reason.
type StatusError struct {
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, TruncateBody(string(e.Body), 256))
}

// GetJSON fetches path with query and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	start := time.Now()
	body, err := chain.RetryWithConfig(ctx, c.retry, func() ([]byte, error) {
		return c.get(ctx, path, query)
	})
	metrics.Global.RecordRPCCall(c.name, time.Since(start), err)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return janitorerr.WithDetails(janitorerr.ErrAPIError, map[string]string{
			"provider": c.name,
			"reason":   "parsing response: " + err.Error(),
		})
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx, c.name); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{}
	for k, vs := range c.query {
		params[k] = append([]string(nil), vs...)
	}
	for k, vs := range query {
		params[k] = append(params[k], vs...)
	}
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req) //nolint:gosec // URL is built from configuration
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, chain.WrapRetryable(janitorerr.WithDetails(janitorerr.ErrNetworkError, map[string]string{
			"provider": c.name,
			"reason":   err.Error(),
		}))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, chain.WrapRetryable(fmt.Errorf("reading response: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &chain.RetryAfterError{
			Wait: chain.ParseRetryAfter(resp.Header.Get("Retry-After")),
			Err:  janitorerr.WithDetails(janitorerr.ErrRateLimited, map[string]string{"provider": c.name}),
		}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, janitorerr.WithDetails(janitorerr.ErrAPIKeyRequired, map[string]string{
			"provider": c.name,
			"status":   strconv.Itoa(resp.StatusCode),
		})
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, chain.WrapRetryable(janitorerr.WithDetails(janitorerr.ErrAPIError, map[string]string{
			"provider": c.name,
			"status":   strconv.Itoa(resp.StatusCode),
		}))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &StatusError{Status: resp.StatusCode, Body: body}
	}
	return body, nil
}

// TruncateBody shortens s to maxLen bytes for error details.
func TruncateBody(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
