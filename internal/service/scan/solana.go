package scan

import (
	"context"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/chain/solana"
	"github.com/mrz1836/janitor/internal/holding"
)

// SolanaScanner lists every SPL token account of an owner, empty ones
// included.
type SolanaScanner struct {
	reader SolanaReader
	logger LogWriter
}

// NewSolanaScanner creates a Solana scanner.
func NewSolanaScanner(reader SolanaReader, logger LogWriter) *SolanaScanner {
	return &SolanaScanner{reader: reader, logger: logger}
}

// Scan returns one holding per token account. The node is the only
// source, so a failed account listing is returned as an error rather than
// reported as a clean wallet.
func (s *SolanaScanner) Scan(ctx context.Context, owner string) (*Result, error) {
	pk, err := solana.ParsePublicKey(owner)
	if err != nil {
		return nil, err
	}

	accounts, err := s.reader.TokenAccountsByOwner(ctx, pk)
	if err != nil {
		s.logger.Error("scan: token accounts for %s: %v", pk, err)
		return nil, err
	}

	mints := make([]solana.PublicKey, 0, len(accounts))
	seen := make(map[solana.PublicKey]struct{}, len(accounts))
	for _, acc := range accounts {
		if _, ok := seen[acc.Mint]; !ok {
			seen[acc.Mint] = struct{}{}
			mints = append(mints, acc.Mint)
		}
	}
	symbols := s.reader.TokenSymbols(ctx, mints)

	holdings := make([]holding.TokenHolding, 0, len(accounts))
	for _, acc := range accounts {
		symbol, ok := symbols[acc.Mint]
		if !ok {
			symbol = holding.UnknownSymbol + "-" + acc.Mint.Short()
		}
		h := holding.New(chain.Solana, acc.Mint.String(), symbol, acc.Decimals,
			new(big.Int).SetUint64(acc.Amount), holding.SourcePrimary)
		h.Account = acc.Address.String()
		h.Lamports = acc.Lamports
		h.Frozen = acc.Frozen
		if acc.Delegate != nil {
			h.Delegate = acc.Delegate.String()
			h.DelegatedAmount = new(big.Int).SetUint64(acc.DelegatedAmount)
		}
		holdings = append(holdings, h)
	}
	holding.Sort(holdings)

	s.logger.Debug("scan: %d token accounts for %s", len(holdings), pk)
	return &Result{
		ID:        uuid.NewString(),
		Chain:     chain.Solana,
		Owner:     pk.String(),
		Holdings:  holdings,
		ScannedAt: time.Now().UTC(),
	}, nil
}
