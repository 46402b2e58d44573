// Package chain holds chain identifiers and the helpers shared by the
// Solana and Base clients: amounts, rate limiting and retries.
package chain

import (
	"strings"

	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

// ID represents a supported blockchain.
type ID string

// Supported blockchain identifiers.
const (
	Solana ID = "solana"
	Base   ID = "base"
)

// ErrUnsupportedChain indicates the chain is not supported.
var ErrUnsupportedChain = &janitorerr.JanitorError{
	Code:       "UNSUPPORTED_CHAIN",
	Message:    "unsupported chain",
	Suggestion: "use 'solana' or 'base'",
	ExitCode:   janitorerr.ExitInput,
}

// String returns the chain identifier string.
func (id ID) String() string {
	return string(id)
}

// IsValid returns true if the chain ID is a known chain.
func (id ID) IsValid() bool {
	return id == Solana || id == Base
}

// IsEVM reports whether the chain uses the Ethereum account model.
func (id ID) IsEVM() bool {
	return id == Base
}

// NativeSymbol returns the ticker of the chain's gas token.
func (id ID) NativeSymbol() string {
	if id == Solana {
		return "SOL"
	}
	return "ETH"
}

// NativeDecimals returns the decimals of the chain's gas token.
func (id ID) NativeDecimals() uint8 {
	if id == Solana {
		return 9
	}
	return 18
}

// DerivationPath returns the account path used when importing a mnemonic.
func (id ID) DerivationPath() string {
	switch id {
	case Solana:
		return "m/44'/501'/0'/0'"
	case Base:
		return "m/44'/60'/0'/0/0"
	default:
		return ""
	}
}

// ParseChainID parses a chain name. "sol", "evm" and "base-mainnet" style
// aliases are accepted.
func ParseChainID(s string) (ID, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "solana", "sol":
		return Solana, nil
	case "base", "base-mainnet", "evm":
		return Base, nil
	default:
		return "", janitorerr.WithDetails(ErrUnsupportedChain, map[string]string{"chain": s})
	}
}

// AllChains returns all supported chain IDs.
func AllChains() []ID {
	return []ID{Solana, Base}
}

// TxResult is the outcome of a submitted cleanup transaction. Only
// submission is reported; on-chain confirmation is not tracked.
type TxResult struct {
	Chain  ID     `json:"chain"`
	Action string `json:"action"`
	Hash   string `json:"hash"`
	Status string `json:"status"`
}

// StatusSubmitted marks a transaction that was accepted by the RPC node or wallet.
const StatusSubmitted = "submitted"
