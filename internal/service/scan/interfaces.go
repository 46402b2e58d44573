package scan

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mrz1836/janitor/internal/chain/evm"
	"github.com/mrz1836/janitor/internal/chain/solana"
)

// LogWriter provides logging operations.
type LogWriter interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

// TokenSource is a paginated token indexer.
// Adapters: ChainbaseSource, BlockscoutSource.
type TokenSource interface {
	Name() string
	TokenPage(ctx context.Context, owner string, page, limit int) (Page, error)
}

// NativeSource reports the owner's gas token balance.
type NativeSource interface {
	NativeBalance(ctx context.Context, owner string) (*big.Int, error)
}

// MetadataSource resolves token metadata for imports.
type MetadataSource interface {
	TokenMetadata(ctx context.Context, contract string) (TokenMeta, error)
}

// BaseReader reads balances directly from a Base node.
// Satisfied by *evm.Client.
type BaseReader interface {
	BalanceAt(ctx context.Context, addr common.Address) (*big.Int, error)
	TokenBalances(ctx context.Context, owner common.Address, tokens []common.Address) []evm.Uint256Result
}

// SolanaReader reads token accounts from a Solana node.
// Satisfied by *solana.Client.
type SolanaReader interface {
	TokenAccountsByOwner(ctx context.Context, owner solana.PublicKey) ([]solana.TokenAccount, error)
	TokenSymbols(ctx context.Context, mints []solana.PublicKey) map[solana.PublicKey]string
}

// Scanner produces the holdings of one owner on one chain.
type Scanner interface {
	Scan(ctx context.Context, owner string) (*Result, error)
}
