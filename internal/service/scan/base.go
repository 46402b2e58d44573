package scan

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/chain/evm"
	"github.com/mrz1836/janitor/internal/holding"
)

// wethSymbol prices native ETH when present in the merged set.
const wethSymbol = "WETH"

// BaseConfig holds the collaborators of a BaseScanner.
type BaseConfig struct {
	Tokens   TokenSource
	Native   NativeSource // optional; Reader is used when nil or failing
	Reader   BaseReader
	Priority []holding.PriorityToken
	Overlay  *Overlay // optional; imported tokens
	Logger   LogWriter
	Options  Options
}

// BaseScanner aggregates Base holdings from an indexer, direct balanceOf
// reads of priority tokens, and user imports.
type BaseScanner struct {
	tokens   TokenSource
	native   NativeSource
	reader   BaseReader
	priority []holding.PriorityToken
	overlay  *Overlay
	logger   LogWriter
	opts     Options
}

// NewBaseScanner creates a Base scanner.
func NewBaseScanner(cfg *BaseConfig) (*BaseScanner, error) {
	opts := cfg.Options
	if err := defaults.Set(&opts); err != nil {
		return nil, err
	}
	return &BaseScanner{
		tokens:   cfg.Tokens,
		native:   cfg.Native,
		reader:   cfg.Reader,
		priority: cfg.Priority,
		overlay:  cfg.Overlay,
		logger:   cfg.Logger,
		opts:     opts,
	}, nil
}

// Scan returns the owner's holdings. Only an invalid owner is an error:
// source failures are logged and the source contributes nothing.
func (s *BaseScanner) Scan(ctx context.Context, owner string) (*Result, error) {
	addr, err := evm.ParseAddress(owner)
	if err != nil {
		return nil, err
	}
	ownerHex := addr.Hex()

	var (
		native *big.Int
		first  Page
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		native = s.nativeBalance(gctx, addr)
		return nil
	})
	g.Go(func() error {
		var pageErr error
		first, pageErr = s.tokens.TokenPage(gctx, ownerHex, 1, s.opts.PageSize)
		if pageErr != nil {
			s.logger.Error("scan: %s page 1 for %s: %v", s.tokens.Name(), ownerHex, pageErr)
			first = Page{}
		}
		return nil
	})
	_ = g.Wait()

	primary := append([]holding.TokenHolding(nil), first.Holdings...)
	primary = append(primary, s.morePages(ctx, ownerHex, first)...)
	primary = s.markPriority(dedupe(primary))

	merged := append(primary, s.fallback(ctx, addr, primary)...)
	if s.overlay != nil {
		for _, h := range s.overlay.List(ownerHex) {
			if _, found := holding.Find(merged, chain.Base, h.Address); !found {
				merged = append(merged, h)
			}
		}
	}

	if native != nil && native.Sign() > 0 {
		merged = append(merged, s.nativeHolding(native, merged))
	}

	holding.Sort(merged)
	return &Result{
		ID:        uuid.NewString(),
		Chain:     chain.Base,
		Owner:     ownerHex,
		Holdings:  merged,
		ScannedAt: time.Now().UTC(),
	}, nil
}

// morePages follows pagination after page 1 until a short page, an empty
// page, an error, or the page cap.
func (s *BaseScanner) morePages(ctx context.Context, owner string, first Page) []holding.TokenHolding {
	var out []holding.TokenHolding
	last := first
	for page := 2; page <= s.opts.MaxPages && last.Items >= s.opts.PageSize; page++ {
		next, err := s.tokens.TokenPage(ctx, owner, page, s.opts.PageSize)
		if err != nil {
			s.logger.Error("scan: %s page %d for %s: %v", s.tokens.Name(), page, owner, err)
			break
		}
		if next.Items == 0 {
			break
		}
		out = append(out, next.Holdings...)
		last = next
	}
	return out
}

func (s *BaseScanner) nativeBalance(ctx context.Context, addr common.Address) *big.Int {
	if s.native != nil {
		bal, err := s.native.NativeBalance(ctx, addr.Hex())
		if err == nil {
			return bal
		}
		s.logger.Debug("scan: indexer native balance failed, using RPC: %v", err)
	}
	if s.reader == nil {
		return nil
	}
	bal, err := s.reader.BalanceAt(ctx, addr)
	if err != nil {
		s.logger.Error("scan: native balance for %s: %v", addr.Hex(), err)
		return nil
	}
	return bal
}

// fallback reads every priority token the indexer did not report.
func (s *BaseScanner) fallback(ctx context.Context, owner common.Address, found []holding.TokenHolding) []holding.TokenHolding {
	if s.reader == nil {
		return nil
	}

	var missing []holding.PriorityToken
	var addrs []common.Address
	for _, p := range s.priority {
		if _, ok := holding.Find(found, chain.Base, p.Address); ok {
			continue
		}
		missing = append(missing, p)
		addrs = append(addrs, common.HexToAddress(p.Address))
	}
	if len(missing) == 0 {
		return nil
	}

	results := s.reader.TokenBalances(ctx, owner, addrs)
	var out []holding.TokenHolding
	for i, r := range results {
		if i >= len(missing) {
			break
		}
		p := missing[i]
		if r.Err != nil {
			s.logger.Debug("scan: balanceOf %s: %v", p.Symbol, r.Err)
			continue
		}
		if r.Value == nil || r.Value.Sign() == 0 {
			continue
		}
		h := holding.New(chain.Base, p.Address, p.Symbol, p.Decimals, r.Value, holding.SourceFallback)
		h.Priority = true
		h.IconURL = p.IconURL
		out = append(out, h.WithPrice(holding.FallbackPrice(p.Symbol)))
	}
	return out
}

func (s *BaseScanner) markPriority(list []holding.TokenHolding) []holding.TokenHolding {
	for i := range list {
		for _, p := range s.priority {
			if holding.Key(chain.Base, p.Address) == list[i].Key() {
				list[i].Priority = true
				break
			}
		}
	}
	return list
}

func (s *BaseScanner) nativeHolding(wei *big.Int, merged []holding.TokenHolding) holding.TokenHolding {
	h := holding.New(chain.Base, holding.NativeAddress, chain.Base.NativeSymbol(), chain.Base.NativeDecimals(), wei, holding.SourcePrimary)
	for _, t := range merged {
		if strings.EqualFold(t.Symbol, wethSymbol) && t.PriceUSD.Valid && t.PriceUSD.Decimal.IsPositive() {
			return h.WithPrice(t.PriceUSD.Decimal)
		}
	}
	return h
}

// dedupe keeps the first holding per token address.
func dedupe(list []holding.TokenHolding) []holding.TokenHolding {
	seen := make(map[string]struct{}, len(list))
	out := list[:0]
	for _, h := range list {
		if _, ok := seen[h.Key()]; ok {
			continue
		}
		seen[h.Key()] = struct{}{}
		out = append(out, h)
	}
	return out
}
