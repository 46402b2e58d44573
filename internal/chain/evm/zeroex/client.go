// Package zeroex requests swap quotes from the 0x API. A quote is a
// ready-to-submit call; a reason or a missing target means no route.
package zeroex

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/url"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/chain/rest"
	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

// DefaultBaseURL is the 0x API base URL.
const DefaultBaseURL = "https://api.0x.org"

// DefaultFeePercentage is the integrator fee as a fraction of the bought
// amount (0.01 is 1%).
const DefaultFeePercentage = 0.01

// Client is a 0x swap API client.
type Client struct {
	http          *rest.Client
	chainID       int64
	buyToken      string
	feeRecipient  string
	feePercentage float64
}

// Options configures quote parameters shared by every request.
type Options struct {
	BaseURL       string
	BuyToken      string
	FeeRecipient  string
	FeePercentage float64
	HTTP          *rest.Options
}

// NewClient creates a client for chainID. Swap quotes are never retried.
func NewClient(apiKey string, chainID int64, opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	buyToken := opts.BuyToken
	if buyToken == "" {
		buyToken = "ETH"
	}

	httpOpts := rest.Options{}
	if opts.HTTP != nil {
		httpOpts = *opts.HTTP
	}
	noRetry := chain.RetryConfig{MaxAttempts: 1}
	httpOpts.Retry = &noRetry
	if apiKey != "" {
		headers := map[string]string{"0x-api-key": apiKey}
		for k, v := range httpOpts.Headers {
			headers[k] = v
		}
		httpOpts.Headers = headers
	}

	return &Client{
		http:          rest.New("0x", baseURL, &httpOpts),
		chainID:       chainID,
		buyToken:      buyToken,
		feeRecipient:  opts.FeeRecipient,
		feePercentage: opts.FeePercentage,
	}
}

// Quote is the subset of /swap/v1/quote used to submit a swap.
type Quote struct {
	To         string `json:"to"`
	Data       string `json:"data"`
	Value      string `json:"value"`
	BuyAmount  string `json:"buyAmount"`
	SellAmount string `json:"sellAmount"`
	Reason     string `json:"reason"`
}

// Routable reports whether the quote can be submitted.
func (q *Quote) Routable() bool {
	return q.Reason == "" && q.To != "" && common.IsHexAddress(q.To)
}

// SkipReason explains why an unroutable quote was skipped.
func (q *Quote) SkipReason() string {
	if q.Reason != "" {
		return q.Reason
	}
	return "no quote found"
}

// Quote requests a swap of sellAmount of sellToken into the configured buy
// token for taker. An unroutable answer is returned as a Quote, not an error.
func (c *Client) Quote(ctx context.Context, sellToken, taker string, sellAmount *big.Int) (*Quote, error) {
	q := url.Values{
		"chainId":      {strconv.FormatInt(c.chainID, 10)},
		"sellToken":    {sellToken},
		"buyToken":     {c.buyToken},
		"sellAmount":   {sellAmount.String()},
		"takerAddress": {taker},
	}
	if c.feeRecipient != "" {
		q.Set("feeRecipient", c.feeRecipient)
		q.Set("buyTokenPercentageFee", strconv.FormatFloat(c.feePercentage, 'f', -1, 64))
	}

	var quote Quote
	err := c.http.GetJSON(ctx, "/swap/v1/quote", q, &quote)
	if err == nil {
		return &quote, nil
	}

	// Validation failures come back as 400 with a reason; that is a skip.
	var statusErr *rest.StatusError
	if errors.As(err, &statusErr) {
		var rejected Quote
		if json.Unmarshal(statusErr.Body, &rejected) == nil && rejected.Reason != "" {
			return &rejected, nil
		}
		return nil, janitorerr.WithDetails(janitorerr.ErrAPIError, map[string]string{
			"provider": "0x",
			"status":   strconv.Itoa(statusErr.Status),
			"body":     rest.TruncateBody(string(statusErr.Body), 256),
		})
	}
	return nil, err
}

// Call converts a routable quote into call fields.
func (q *Quote) Call() (to common.Address, data []byte, value *big.Int, err error) {
	if !q.Routable() {
		return common.Address{}, nil, nil, janitorerr.WithDetails(janitorerr.ErrNoRoute, map[string]string{"reason": q.SkipReason()})
	}
	data, err = decodeHex(q.Data)
	if err != nil {
		return common.Address{}, nil, nil, janitorerr.Wrap(janitorerr.ErrAPIError, "quote data: %v", err)
	}
	value, ok := chain.ParseQuantity(q.Value)
	if !ok {
		return common.Address{}, nil, nil, janitorerr.Wrap(janitorerr.ErrAPIError, "quote value %q", q.Value)
	}
	return common.HexToAddress(q.To), data, value, nil
}
