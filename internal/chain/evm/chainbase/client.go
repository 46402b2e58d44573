// Package chainbase is a client for the Chainbase Web3 data API: native
// balances, paginated ERC-20 holdings with prices, and token metadata.
package chainbase

import (
	"context"
	"math/big"
	"net/url"
	"strconv"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/chain/rest"
	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

// DefaultBaseURL is the Chainbase API base URL.
const DefaultBaseURL = "https://api.chainbase.online"

// MaxPageSize is the largest page the tokens endpoint returns.
const MaxPageSize = 100

// ErrAPIKeyRequired indicates the Chainbase API key was not provided.
var ErrAPIKeyRequired = &janitorerr.JanitorError{
	Code:       "CHAINBASE_API_KEY_REQUIRED",
	Message:    "Chainbase API key is required",
	Suggestion: "set JANITOR_CHAINBASE_API_KEY or switch networks.base.scan_provider to blockscout",
	ExitCode:   janitorerr.ExitInput,
}

// Client is a Chainbase API client bound to one chain.
type Client struct {
	http    *rest.Client
	chainID string
}

// NewClient creates a client. baseURL may be empty for the public endpoint.
func NewClient(apiKey, baseURL string, chainID int64, opts *rest.Options) (*Client, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	o := rest.Options{}
	if opts != nil {
		o = *opts
	}
	headers := map[string]string{"x-api-key": apiKey}
	for k, v := range o.Headers {
		headers[k] = v
	}
	o.Headers = headers

	return &Client{
		http:    rest.New("chainbase", baseURL, &o),
		chainID: strconv.FormatInt(chainID, 10),
	}, nil
}

// envelope wraps every Chainbase response.
type envelope[T any] struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Data     T      `json:"data"`
	NextPage int    `json:"next_page"`
	Count    int    `json:"count"`
}

// Logo is a token image reference.
type Logo struct {
	URI string `json:"uri"`
}

// Token is one entry of /v1/account/tokens.
type Token struct {
	ContractAddress string  `json:"contract_address"`
	Name            string  `json:"name"`
	Symbol          string  `json:"symbol"`
	Decimals        int     `json:"decimals"`
	Balance         string  `json:"balance"`
	CurrentUSDPrice float64 `json:"current_usd_price"`
	Logos           []Logo  `json:"logos"`
}

// Metadata is the payload of /v1/token/metadata.
type Metadata struct {
	ContractAddress string `json:"contract_address"`
	Name            string `json:"name"`
	Symbol          string `json:"symbol"`
	Decimals        int    `json:"decimals"`
	Logos           []Logo `json:"logos"`
}

// LogoURL returns the first logo, or "".
func LogoURL(logos []Logo) string {
	if len(logos) == 0 {
		return ""
	}
	return logos[0].URI
}

// NativeBalance returns the owner's native balance in wei.
func (c *Client) NativeBalance(ctx context.Context, owner string) (*big.Int, error) {
	var resp envelope[string]
	if err := c.get(ctx, "/v1/account/balance", url.Values{"address": {owner}}, &resp); err != nil {
		return nil, err
	}
	v, ok := chain.ParseQuantity(resp.Data)
	if !ok {
		return nil, janitorerr.WithDetails(janitorerr.ErrAPIError, map[string]string{
			"provider": "chainbase",
			"reason":   "malformed balance " + rest.TruncateBody(resp.Data, 64),
		})
	}
	return v, nil
}

// Tokens returns one page (1-based) of the owner's ERC-20 holdings.
func (c *Client) Tokens(ctx context.Context, owner string, page, limit int) ([]Token, error) {
	q := url.Values{
		"address": {owner},
		"limit":   {strconv.Itoa(limit)},
		"page":    {strconv.Itoa(page)},
	}
	var resp envelope[[]Token]
	if err := c.get(ctx, "/v1/account/tokens", q, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// TokenMetadata returns metadata for a contract. A contract Chainbase does
// not know returns ErrTokenNotFound.
func (c *Client) TokenMetadata(ctx context.Context, contract string) (*Metadata, error) {
	var resp envelope[*Metadata]
	if err := c.get(ctx, "/v1/token/metadata", url.Values{"contract_address": {contract}}, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, janitorerr.WithDetails(janitorerr.ErrTokenNotFound, map[string]string{"token": contract})
	}
	return resp.Data, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out interface{ apiError() error }) error {
	q.Set("chain_id", c.chainID)
	if err := c.http.GetJSON(ctx, path, q, out); err != nil {
		return err
	}
	return out.apiError()
}

func (e *envelope[T]) apiError() error {
	if e.Code == 0 {
		return nil
	}
	return janitorerr.WithDetails(janitorerr.ErrAPIError, map[string]string{
		"provider": "chainbase",
		"code":     strconv.Itoa(e.Code),
		"message":  e.Message,
	})
}
