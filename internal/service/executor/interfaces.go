package executor

import (
	"context"
	"math/big"

	"github.com/mrz1836/janitor/internal/chain/evm/zeroex"
)

// LogWriter provides logging operations.
type LogWriter interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

// Quoter prices a token sale into the chain's gas token.
// Satisfied by *zeroex.Client.
type Quoter interface {
	Quote(ctx context.Context, sellToken, taker string, sellAmount *big.Int) (*zeroex.Quote, error)
}
