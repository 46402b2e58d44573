package approval

import (
	"context"
	"strings"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/chain/evm/blockscout"
	"github.com/mrz1836/janitor/internal/holding"
)

// BlockscoutCandidates adapts the Blockscout approvals endpoint.
type BlockscoutCandidates struct {
	client *blockscout.Client
}

// NewBlockscoutCandidates wraps client.
func NewBlockscoutCandidates(client *blockscout.Client) *BlockscoutCandidates {
	return &BlockscoutCandidates{client: client}
}

// Candidates returns the indexer's approvals. Allowances are the
// indexer's view and must be verified before use.
func (b *BlockscoutCandidates) Candidates(ctx context.Context, owner string) ([]holding.ApprovalGrant, error) {
	approvals, err := b.client.Approvals(ctx, owner)
	if err != nil {
		return nil, err
	}
	out := make([]holding.ApprovalGrant, 0, len(approvals))
	for _, a := range approvals {
		token := a.Token.ContractAddress()
		if token == "" || a.Spender == "" {
			continue
		}
		g := holding.ApprovalGrant{
			Chain:   chain.Base,
			Token:   token,
			Spender: a.Spender,
			Symbol:  strings.TrimSpace(a.Token.Symbol),
		}
		if v, ok := chain.ParseQuantity(a.Amount); ok {
			g.Allowance = v
		}
		out = append(out, g)
	}
	return out, nil
}
