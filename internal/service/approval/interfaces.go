package approval

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mrz1836/janitor/internal/chain/evm"
	"github.com/mrz1836/janitor/internal/holding"
)

// LogWriter provides logging operations.
type LogWriter interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

// CandidateSource lists unverified approvals from an indexer.
// Adapter: BlockscoutCandidates.
type CandidateSource interface {
	Candidates(ctx context.Context, owner string) ([]holding.ApprovalGrant, error)
}

// AllowanceReader reads allowance(owner, spender) on-chain.
// Satisfied by *evm.Client.
type AllowanceReader interface {
	Allowances(ctx context.Context, owner common.Address, queries []evm.AllowanceQuery) []evm.Uint256Result
}
