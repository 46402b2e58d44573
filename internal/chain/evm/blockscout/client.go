// Package blockscout is a client for the Blockscout v2 REST API on Base:
// token balances and ERC-20 approvals of an address.
package blockscout

import (
	"context"
	"net/url"

	"github.com/mrz1836/janitor/internal/chain/rest"
)

// DefaultBaseURL is the Base mainnet Blockscout instance.
const DefaultBaseURL = "https://base.blockscout.com"

// Client is a Blockscout API client. The API key is optional.
type Client struct {
	http *rest.Client
}

// NewClient creates a client. An empty baseURL selects DefaultBaseURL.
func NewClient(apiKey, baseURL string, opts *rest.Options) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	o := rest.Options{}
	if opts != nil {
		o = *opts
	}
	if apiKey != "" {
		q := url.Values{}
		for k, v := range o.Query {
			q[k] = v
		}
		q.Set("apikey", apiKey)
		o.Query = q
	}
	return &Client{http: rest.New("blockscout", baseURL, &o)}
}

// TokenInfo is the token object Blockscout embeds in balances and approvals.
// Decimals and the exchange rate arrive as strings and may be null.
type TokenInfo struct {
	Address      string  `json:"address"`
	AddressHash  string  `json:"address_hash"`
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	Decimals     *string `json:"decimals"`
	ExchangeRate *string `json:"exchange_rate"`
	IconURL      *string `json:"icon_url"`
	Type         string  `json:"type"`
}

// ContractAddress returns the token address from either field name the
// API has used.
func (t *TokenInfo) ContractAddress() string {
	if t.Address != "" {
		return t.Address
	}
	return t.AddressHash
}

// TokenBalance is one entry of /token-balances.
type TokenBalance struct {
	Token TokenInfo `json:"token"`
	Value string    `json:"value"`
}

// Approval is one candidate from /approvals. The amount is indexer state
// and must be re-read on-chain before it is trusted.
type Approval struct {
	Token   TokenInfo
	Spender string
	Amount  string
}

// TokenBalances returns every token balance Blockscout knows for owner.
func (c *Client) TokenBalances(ctx context.Context, owner string) ([]TokenBalance, error) {
	var out []TokenBalance
	if err := c.http.GetJSON(ctx, "/api/v2/addresses/"+url.PathEscape(owner)+"/token-balances", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type approvalsPage struct {
	Items []approvalItem `json:"items"`
}

type approvalItem struct {
	Token   TokenInfo `json:"token"`
	Spender struct {
		Hash    string `json:"hash"`
		Address string `json:"address"`
	} `json:"spender"`
	Amount string `json:"amount"`
}

// Approvals returns the ERC-20 approval candidates for owner.
func (c *Client) Approvals(ctx context.Context, owner string) ([]Approval, error) {
	var page approvalsPage
	q := url.Values{"type": {"ERC-20"}}
	if err := c.http.GetJSON(ctx, "/api/v2/addresses/"+url.PathEscape(owner)+"/approvals", q, &page); err != nil {
		return nil, err
	}

	out := make([]Approval, 0, len(page.Items))
	for _, item := range page.Items {
		spender := item.Spender.Hash
		if spender == "" {
			spender = item.Spender.Address
		}
		out = append(out, Approval{
			Token:   item.Token,
			Spender: spender,
			Amount:  item.Amount,
		})
	}
	return out, nil
}
