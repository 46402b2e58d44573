package scan

import (
	"time"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/holding"
)

// Page is one page of indexer results. Items counts the raw entries the
// indexer returned before zero balances were dropped; pagination stops on
// a short page.
type Page struct {
	Holdings []holding.TokenHolding
	Items    int
}

// TokenMeta is the subset of token metadata used for imports.
type TokenMeta struct {
	Symbol   string
	Name     string
	Decimals uint8
	IconURL  string
}

// Result is one completed scan.
type Result struct {
	ID         string                 `json:"id"`
	Chain      chain.ID               `json:"chain"`
	Owner      string                 `json:"owner"`
	Generation uint64                 `json:"generation"`
	Holdings   []holding.TokenHolding `json:"holdings"`
	ScannedAt  time.Time              `json:"scanned_at"`
}

// Options tunes the Base scanner.
type Options struct {
	PageSize int `default:"100"`
	MaxPages int `default:"5"`
}
