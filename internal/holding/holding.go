// Package holding defines the normalized token holding and approval records
// produced by a scan. Indexer and RPC payloads are converted into these
// types at the client boundary; nothing downstream sees raw JSON.
package holding

import (
	"encoding/json"
	"math/big"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mrz1836/janitor/internal/chain"
)

// NativeAddress is the address key of a chain's gas token.
const NativeAddress = "native"

// displayPlaces bounds the fractional digits of DisplayValue.
const displayPlaces = 6

// Source records where a holding came from.
type Source string

// Holding sources.
const (
	SourcePrimary  Source = "primary_indexer"
	SourceFallback Source = "fallback_rpc"
	SourceImported Source = "user_imported"
)

// TokenHolding is one token balance of the scanned owner. Values are
// created per scan; use the With* helpers to derive a modified copy.
type TokenHolding struct {
	Chain        chain.ID            `json:"chain"`
	Address      string              `json:"address"`
	Symbol       string              `json:"symbol"`
	Name         string              `json:"name,omitempty"`
	Decimals     uint8               `json:"decimals"`
	RawValue     *big.Int            `json:"-"`
	DisplayValue string              `json:"display_value"`
	USDValue     decimal.NullDecimal `json:"usd_value"`
	PriceUSD     decimal.NullDecimal `json:"price_usd"`
	Source       Source              `json:"source"`
	IconURL      string              `json:"icon_url,omitempty"`
	Priority     bool                `json:"priority,omitempty"`

	// Solana token account fields.
	Account         string   `json:"account,omitempty"`
	Delegate        string   `json:"delegate,omitempty"`
	DelegatedAmount *big.Int `json:"-"`
	Lamports        uint64   `json:"lamports,omitempty"`
	Frozen          bool     `json:"frozen,omitempty"`
}

// New builds a holding and fills in its display value.
func New(chainID chain.ID, address, symbol string, decimals uint8, raw *big.Int, source Source) TokenHolding {
	if raw == nil {
		raw = new(big.Int)
	}
	return TokenHolding{
		Chain:        chainID,
		Address:      address,
		Symbol:       symbol,
		Decimals:     decimals,
		RawValue:     raw,
		DisplayValue: chain.FormatDisplayAmount(raw, decimals, displayPlaces),
		Source:       source,
	}
}

// IsNative reports whether the holding is the chain's gas token.
func (h TokenHolding) IsNative() bool {
	return h.Address == NativeAddress
}

// Amount returns the balance in display units.
func (h TokenHolding) Amount() decimal.Decimal {
	return chain.ToDecimal(h.RawValue, h.Decimals)
}

// IsZero reports whether the raw balance is zero.
func (h TokenHolding) IsZero() bool {
	return h.RawValue == nil || h.RawValue.Sign() == 0
}

// HasDelegate reports whether a delegate can still move tokens.
func (h TokenHolding) HasDelegate() bool {
	return h.Delegate != "" && h.DelegatedAmount != nil && h.DelegatedAmount.Sign() > 0
}

// Key returns the identity of the holding's token for de-duplication and
// the hidden set. EVM addresses are case-insensitive.
func (h TokenHolding) Key() string {
	return Key(h.Chain, h.Address)
}

// Key normalizes a token address for chainID.
func Key(chainID chain.ID, address string) string {
	address = strings.TrimSpace(address)
	if chainID.IsEVM() {
		return strings.ToLower(address)
	}
	return address
}

// WithPrice returns a copy priced at price per display unit.
func (h TokenHolding) WithPrice(price decimal.Decimal) TokenHolding {
	h.PriceUSD = decimal.NewNullDecimal(price)
	h.USDValue = decimal.NewNullDecimal(h.Amount().Mul(price).Round(2))
	return h
}

// USD returns the USD value, or zero when unknown.
func (h TokenHolding) USD() decimal.Decimal {
	if !h.USDValue.Valid {
		return decimal.Zero
	}
	return h.USDValue.Decimal
}

// MarshalJSON renders big integers as decimal strings.
func (h TokenHolding) MarshalJSON() ([]byte, error) {
	type plain TokenHolding
	out := struct {
		plain
		RawValue        string `json:"raw_value"`
		DelegatedAmount string `json:"delegated_amount,omitempty"`
	}{plain: plain(h)}
	if h.RawValue != nil {
		out.RawValue = h.RawValue.String()
	} else {
		out.RawValue = "0"
	}
	if h.DelegatedAmount != nil {
		out.DelegatedAmount = h.DelegatedAmount.String()
	}
	return json.Marshal(out)
}

// Sort orders holdings for display: priority tokens first whatever their
// value, then by USD value descending. The native token gets no special
// rank. Symbol breaks ties.
func Sort(holdings []TokenHolding) {
	sort.SliceStable(holdings, func(i, j int) bool {
		a, b := holdings[i], holdings[j]
		if a.Priority != b.Priority {
			return a.Priority
		}
		if c := a.USD().Cmp(b.USD()); c != 0 {
			return c > 0
		}
		return a.Symbol < b.Symbol
	})
}

// Find returns the holding with the given token address.
func Find(holdings []TokenHolding, chainID chain.ID, address string) (TokenHolding, bool) {
	key := Key(chainID, address)
	for _, h := range holdings {
		if h.Key() == key {
			return h, true
		}
	}
	return TokenHolding{}, false
}
