package holding

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PriorityToken is a token that is always read directly from chain when
// the indexer does not report it.
type PriorityToken struct {
	Symbol   string
	Address  string
	Decimals uint8
	IconURL  string
}

// stableSymbols are priced at one dollar when no indexer price exists.
//
//nolint:gochecknoglobals // fixed lookup table
var stableSymbols = map[string]struct{}{
	"USDC":  {},
	"USDBC": {},
	"DAI":   {},
}

// IsStable reports whether symbol is a dollar stablecoin.
func IsStable(symbol string) bool {
	_, ok := stableSymbols[strings.ToUpper(symbol)]
	return ok
}

// FallbackPrice is the price assumed for a priority token read from chain.
func FallbackPrice(symbol string) decimal.Decimal {
	if IsStable(symbol) {
		return decimal.NewFromInt(1)
	}
	return decimal.Zero
}
