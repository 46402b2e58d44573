package scan

import (
	"context"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/chain/evm/blockscout"
	"github.com/mrz1836/janitor/internal/chain/evm/chainbase"
	"github.com/mrz1836/janitor/internal/holding"
)

// defaultDecimals is assumed when an indexer omits decimals.
const defaultDecimals = 18

// maxDecimals bounds decimals to what fits in a uint256 amount.
const maxDecimals = 77

// ChainbaseSource adapts the Chainbase API to TokenSource, NativeSource
// and MetadataSource.
type ChainbaseSource struct {
	client *chainbase.Client
}

// NewChainbaseSource wraps client.
func NewChainbaseSource(client *chainbase.Client) *ChainbaseSource {
	return &ChainbaseSource{client: client}
}

// Name returns the provider name.
func (s *ChainbaseSource) Name() string {
	return "chainbase"
}

// TokenPage returns one page of non-zero token balances.
func (s *ChainbaseSource) TokenPage(ctx context.Context, owner string, page, limit int) (Page, error) {
	tokens, err := s.client.Tokens(ctx, owner, page, limit)
	if err != nil {
		return Page{}, err
	}
	out := Page{Items: len(tokens)}
	for _, t := range tokens {
		raw, ok := chain.ParseQuantity(t.Balance)
		if !ok || raw.Sign() == 0 || t.ContractAddress == "" {
			continue
		}
		h := holding.New(chain.Base, t.ContractAddress, symbolOrUnknown(t.Symbol),
			decimalsOrDefault(t.Decimals), raw, holding.SourcePrimary)
		h.Name = t.Name
		h.IconURL = chainbase.LogoURL(t.Logos)
		out.Holdings = append(out.Holdings, h.WithPrice(decimal.NewFromFloat(t.CurrentUSDPrice)))
	}
	return out, nil
}

// NativeBalance returns the owner's ETH balance in wei.
func (s *ChainbaseSource) NativeBalance(ctx context.Context, owner string) (*big.Int, error) {
	return s.client.NativeBalance(ctx, owner)
}

// TokenMetadata returns metadata for contract. Missing symbol and
// decimals are left empty for the caller to default.
func (s *ChainbaseSource) TokenMetadata(ctx context.Context, contract string) (TokenMeta, error) {
	m, err := s.client.TokenMetadata(ctx, contract)
	if err != nil {
		return TokenMeta{}, err
	}
	meta := TokenMeta{Symbol: m.Symbol, Name: m.Name, IconURL: chainbase.LogoURL(m.Logos)}
	if m.Decimals > 0 && m.Decimals <= maxDecimals {
		meta.Decimals = uint8(m.Decimals)
	}
	return meta, nil
}

// BlockscoutSource adapts the Blockscout v2 API to TokenSource. The
// endpoint is not paginated by page number, so every balance arrives on
// page one.
type BlockscoutSource struct {
	client *blockscout.Client
}

// NewBlockscoutSource wraps client.
func NewBlockscoutSource(client *blockscout.Client) *BlockscoutSource {
	return &BlockscoutSource{client: client}
}

// Name returns the provider name.
func (s *BlockscoutSource) Name() string {
	return "blockscout"
}

// TokenPage returns the owner's non-zero ERC-20 balances on page 1.
func (s *BlockscoutSource) TokenPage(ctx context.Context, owner string, page, _ int) (Page, error) {
	if page > 1 {
		return Page{}, nil
	}
	balances, err := s.client.TokenBalances(ctx, owner)
	if err != nil {
		return Page{}, err
	}
	out := Page{Items: len(balances)}
	for _, b := range balances {
		if b.Token.Type != "" && b.Token.Type != "ERC-20" {
			continue
		}
		addr := b.Token.ContractAddress()
		raw, ok := chain.ParseQuantity(b.Value)
		if !ok || raw.Sign() == 0 || addr == "" {
			continue
		}
		h := holding.New(chain.Base, addr, symbolOrUnknown(b.Token.Symbol),
			parseDecimals(b.Token.Decimals), raw, holding.SourcePrimary)
		h.Name = b.Token.Name
		if b.Token.IconURL != nil {
			h.IconURL = *b.Token.IconURL
		}
		if b.Token.ExchangeRate != nil {
			if price, err := decimal.NewFromString(*b.Token.ExchangeRate); err == nil {
				h = h.WithPrice(price)
			}
		}
		out.Holdings = append(out.Holdings, h)
	}
	return out, nil
}

func symbolOrUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return holding.UnknownSymbol
	}
	return s
}

func decimalsOrDefault(d int) uint8 {
	if d <= 0 || d > maxDecimals {
		return defaultDecimals
	}
	return uint8(d)
}

func parseDecimals(s *string) uint8 {
	if s == nil {
		return defaultDecimals
	}
	d, err := strconv.Atoi(strings.TrimSpace(*s))
	if err != nil || d < 0 || d > maxDecimals {
		return defaultDecimals
	}
	return uint8(d)
}
