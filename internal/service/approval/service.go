// Package approval finds third-party spending permissions on the scanned
// wallet: ERC-20 allowances on Base and token account delegates on Solana.
package approval

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/chain/evm"
	"github.com/mrz1836/janitor/internal/holding"
)

// Config holds the collaborators of a Service.
type Config struct {
	Candidates CandidateSource
	Reader     AllowanceReader
	Priority   []holding.PriorityToken
	Logger     LogWriter
}

// Service lists verified approvals.
type Service struct {
	candidates CandidateSource
	reader     AllowanceReader
	priority   []holding.PriorityToken
	logger     LogWriter
}

// NewService creates an approval service.
func NewService(cfg *Config) *Service {
	return &Service{
		candidates: cfg.Candidates,
		reader:     cfg.Reader,
		priority:   cfg.Priority,
		logger:     cfg.Logger,
	}
}

// Approvals returns the active grants of owner on chainID. holdings is the
// owner's latest scan.
func (s *Service) Approvals(ctx context.Context, chainID chain.ID, owner string, holdings []holding.TokenHolding) ([]holding.ApprovalGrant, error) {
	switch chainID {
	case chain.Base:
		return s.BaseApprovals(ctx, owner, holdings)
	case chain.Solana:
		return SolanaDelegates(holdings), nil
	default:
		return nil, chain.ErrUnsupportedChain
	}
}

// BaseApprovals returns the owner's active ERC-20 approvals. Every
// indexer candidate is re-read on-chain; a zero or unreadable allowance
// drops the candidate. known supplies symbols for tokens the wallet
// holds. An indexer failure yields no approvals, not an error.
func (s *Service) BaseApprovals(ctx context.Context, owner string, known []holding.TokenHolding) ([]holding.ApprovalGrant, error) {
	ownerAddr, err := evm.ParseAddress(owner)
	if err != nil {
		return nil, err
	}

	candidates, err := s.candidates.Candidates(ctx, ownerAddr.Hex())
	if err != nil {
		s.logger.Error("approvals: candidates for %s: %v", ownerAddr.Hex(), err)
		return nil, nil
	}
	candidates = dedupe(candidates)
	if len(candidates) == 0 {
		return nil, nil
	}

	queries := make([]evm.AllowanceQuery, len(candidates))
	for i, c := range candidates {
		queries[i] = evm.AllowanceQuery{Token: common.HexToAddress(c.Token), Spender: common.HexToAddress(c.Spender)}
	}
	results := s.reader.Allowances(ctx, ownerAddr, queries)

	var out []holding.ApprovalGrant
	for i, c := range candidates {
		if i >= len(results) {
			break
		}
		r := results[i]
		if r.Err != nil {
			s.logger.Debug("approvals: allowance %s -> %s: %v", c.Token, c.Spender, r.Err)
			continue
		}
		if r.Value == nil || r.Value.Sign() == 0 {
			continue
		}
		c.Allowance = r.Value
		c.Symbol = s.symbol(c, known)
		out = append(out, c)
	}
	return out, nil
}

// symbol picks the label of a grant: the held token's symbol, then the
// priority list, then the indexer's label, then UNK.
func (s *Service) symbol(g holding.ApprovalGrant, known []holding.TokenHolding) string {
	if h, ok := holding.Find(known, chain.Base, g.Token); ok && h.Symbol != "" && h.Symbol != holding.UnknownSymbol {
		return h.Symbol
	}
	for _, p := range s.priority {
		if holding.Key(chain.Base, p.Address) == holding.Key(chain.Base, g.Token) {
			return p.Symbol
		}
	}
	if g.Symbol != "" {
		return g.Symbol
	}
	return holding.UnknownSymbol
}

// SolanaDelegates returns a grant for every token account with a live
// delegate. Parsed account state is already on-chain truth, so no second
// read is made.
func SolanaDelegates(holdings []holding.TokenHolding) []holding.ApprovalGrant {
	var out []holding.ApprovalGrant
	for _, h := range holdings {
		if h.Chain != chain.Solana || !h.HasDelegate() {
			continue
		}
		out = append(out, holding.ApprovalGrant{
			Chain:     chain.Solana,
			Token:     h.Address,
			Spender:   h.Delegate,
			Allowance: new(big.Int).Set(h.DelegatedAmount),
			Symbol:    h.Symbol,
			Account:   h.Account,
		})
	}
	return out
}

func dedupe(grants []holding.ApprovalGrant) []holding.ApprovalGrant {
	seen := make(map[string]struct{}, len(grants))
	out := grants[:0]
	for _, g := range grants {
		key := holding.Key(chain.Base, g.Token) + "|" + holding.Key(chain.Base, g.Spender)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, g)
	}
	return out
}
