// Package jsonrpc provides a small JSON-RPC 2.0 client over HTTP with
// batching, rate limiting and retries. It backs the Base and Solana node
// clients and the external wallet provider.
package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/metrics"
	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

const (
	defaultTimeout  = 30 * time.Second
	maxResponseBody = 16 << 20
)

// Well-known error codes.
const (
	CodeMethodNotFound    = -32601
	CodeUserRejected      = 4001
	CodeUnauthorized      = 4100
	CodeUnsupportedMethod = 4200
)

// ErrInvalidResponse indicates a response that is not valid JSON-RPC.
var ErrInvalidResponse = &janitorerr.JanitorError{
	Code:     "RPC_INVALID_RESPONSE",
	Message:  "invalid RPC response",
	ExitCode: janitorerr.ExitGeneral,
}

// Error is an error object returned by the remote endpoint.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// ErrorCode returns the JSON-RPC error code carried by err, if any.
func ErrorCode(err error) (int, bool) {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr.Code, true
	}
	return 0, false
}

// Client is a JSON-RPC 2.0 client.
type Client struct {
	url        string
	provider   string
	httpClient *http.Client
	headers    map[string]string
	limiter    *chain.RateLimiter
	retry      chain.RetryConfig
	idCounter  atomic.Uint64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimiter shares a rate limiter across clients. Requests are keyed by host.
func WithRateLimiter(rl *chain.RateLimiter) Option {
	return func(c *Client) { c.limiter = rl }
}

// WithRetry sets the retry policy for transport failures, 429 and 5xx responses.
func WithRetry(cfg chain.RetryConfig) Option {
	return func(c *Client) { c.retry = cfg }
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers[key] = value }
}

// WithProvider sets the label used in metrics.
func WithProvider(name string) Option {
	return func(c *Client) { c.provider = name }
}

// New creates a client for the given endpoint.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		url:        endpoint,
		provider:   "rpc",
		httpClient: &http.Client{Timeout: defaultTimeout},
		headers:    map[string]string{},
		retry:      chain.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the endpoint.
func (c *Client) URL() string {
	return c.url
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      uint64 `json:"id"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error,omitempty"`
}

// Call performs a JSON-RPC call and decodes the result into result, which may be nil.
func (c *Client) Call(ctx context.Context, result any, method string, params ...any) error {
	if params == nil {
		params = []any{}
	}
	req := request{JSONRPC: "2.0", Method: method, Params: params, ID: c.idCounter.Add(1)}

	body, err := c.post(ctx, req)
	if err != nil {
		return err
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return janitorerr.Wrap(ErrInvalidResponse, "%s: %v", method, err)
	}
	if resp.Error != nil {
		return resp.Error
	}
	return decodeResult(method, resp.Result, result)
}

// BatchElem is one call in a batch. Error is set per element, so one
// failing element does not fail the others.
type BatchElem struct {
	Method string
	Params []any
	Result any
	Error  error
}

// BatchCall sends all elements in a single HTTP request. The returned error
// covers transport failures only; per-call failures land in each elem.Error.
func (c *Client) BatchCall(ctx context.Context, elems []BatchElem) error {
	if len(elems) == 0 {
		return nil
	}

	reqs := make([]request, len(elems))
	byID := make(map[uint64]int, len(elems))
	for i, e := range elems {
		params := e.Params
		if params == nil {
			params = []any{}
		}
		id := c.idCounter.Add(1)
		reqs[i] = request{JSONRPC: "2.0", Method: e.Method, Params: params, ID: id}
		byID[id] = i
	}

	body, err := c.post(ctx, reqs)
	if err != nil {
		return err
	}

	var resps []response
	if err := json.Unmarshal(body, &resps); err != nil {
		// Some endpoints answer a batch with a single error object.
		var single response
		if json.Unmarshal(body, &single) == nil && single.Error != nil {
			for i := range elems {
				elems[i].Error = single.Error
			}
			return nil
		}
		return janitorerr.Wrap(ErrInvalidResponse, "batch: %v", err)
	}

	seen := make([]bool, len(elems))
	for _, r := range resps {
		i, ok := byID[r.ID]
		if !ok {
			continue
		}
		seen[i] = true
		if r.Error != nil {
			elems[i].Error = r.Error
			continue
		}
		elems[i].Error = decodeResult(elems[i].Method, r.Result, elems[i].Result)
	}
	for i, ok := range seen {
		if !ok {
			elems[i].Error = janitorerr.Wrap(ErrInvalidResponse, "%s: missing from batch response", elems[i].Method)
		}
	}
	return nil
}

func decodeResult(method string, raw json.RawMessage, result any) error {
	if result == nil {
		return nil
	}
	if len(raw) == 0 {
		return janitorerr.Wrap(ErrInvalidResponse, "%s: empty result", method)
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return janitorerr.Wrap(ErrInvalidResponse, "%s: %v", method, err)
	}
	return nil
}

// post sends payload and returns the raw body, retrying transient failures.
func (c *Client) post(ctx context.Context, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	start := time.Now()
	resp, err := chain.RetryWithConfig(ctx, c.retry, func() ([]byte, error) {
		return c.do(ctx, body)
	})
	metrics.Global.RecordRPCCall(c.provider, time.Since(start), err)
	return resp, err
}

func (c *Client) do(ctx context.Context, body []byte) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, c.limiterKey()); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, chain.WrapRetryable(janitorerr.Wrap(janitorerr.ErrNetworkError, "%s", err.Error()))
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, chain.WrapRetryable(fmt.Errorf("reading response body: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &chain.RetryAfterError{
			Wait: chain.ParseRetryAfter(resp.Header.Get("Retry-After")),
			Err:  janitorerr.WithDetails(janitorerr.ErrRateLimited, map[string]string{"provider": c.provider}),
		}
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, chain.WrapRetryable(janitorerr.WithDetails(janitorerr.ErrNetworkError, map[string]string{
			"status": resp.Status,
		}))
	case resp.StatusCode != http.StatusOK && len(data) == 0:
		return nil, janitorerr.WithDetails(janitorerr.ErrNetworkError, map[string]string{"status": resp.Status})
	}
	// Non-200 statuses with a body usually still carry a JSON-RPC error object.
	return data, nil
}

func (c *Client) limiterKey() string {
	if u, err := url.Parse(c.url); err == nil && u.Host != "" {
		return u.Host
	}
	return c.url
}
