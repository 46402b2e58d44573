package executor

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/chain/evm"
	"github.com/mrz1836/janitor/internal/holding"
	"github.com/mrz1836/janitor/internal/metrics"
	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

// EVMConfig wires an EVMExecutor.
type EVMConfig struct {
	Wallet      evm.Wallet
	Quoter      Quoter // optional; SweepViaSwap is unavailable without it
	BurnAddress string // defaults to evm.DeadAddress
	Logger      LogWriter
}

// EVMExecutor submits ERC-20 cleanup transactions on Base. Every wallet
// call is one signature prompt, and a user rejection is never retried.
type EVMExecutor struct {
	wallet evm.Wallet
	quoter Quoter
	sink   common.Address
	logger LogWriter
}

// NewEVMExecutor creates an executor from cfg.
func NewEVMExecutor(cfg EVMConfig) (*EVMExecutor, error) {
	if cfg.Wallet == nil {
		return nil, janitorerr.Wrap(janitorerr.ErrInvalidInput, "executor requires a wallet")
	}
	burn := cfg.BurnAddress
	if burn == "" {
		burn = evm.DeadAddress
	}
	sink, err := evm.ParseAddress(burn)
	if err != nil {
		return nil, err
	}
	return &EVMExecutor{wallet: cfg.Wallet, quoter: cfg.Quoter, sink: sink, logger: cfg.Logger}, nil
}

// RevokeApproval sets the grant's allowance to zero. Approving zero again
// on an already revoked pair succeeds and leaves it at zero.
func (e *EVMExecutor) RevokeApproval(ctx context.Context, grant holding.ApprovalGrant) (*chain.TxResult, error) {
	token, err := evm.ParseAddress(grant.Token)
	if err != nil {
		return nil, err
	}
	spender, err := evm.ParseAddress(grant.Spender)
	if err != nil {
		return nil, err
	}

	hash, err := e.wallet.SendTransaction(ctx, evm.Call{To: token, Data: evm.PackApprove(spender, nil)})
	err = e.record(ActionRevoke, err)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("revoked %s allowance for %s: %s", grant.Token, grant.Spender, hash.Hex())
	res := submitted(chain.Base, ActionRevoke, hash.Hex())
	return &res, nil
}

// BurnMany disposes of tokens by sending their whole balance to the burn
// address. It first asks the wallet for one atomic batch. If the wallet
// cannot batch, each token is tried on its own: transfer to the burn
// address, then the token's own burn(amount). Tokens where both fail are
// reported in Failed. A user rejection anywhere stops the run and returns
// ErrUserRejected together with the report so far. Nothing eligible yields
// an empty report.
func (e *EVMExecutor) BurnMany(ctx context.Context, tokens []holding.TokenHolding) (*BurnReport, error) {
	report := &BurnReport{Burned: []Burned{}, Failed: []Failure{}}
	targets := e.eligible(tokens)
	if len(targets) == 0 {
		return report, nil
	}
	report.Mode = BurnModeBatch

	calls := make([]evm.Call, len(targets))
	for i, t := range targets {
		calls[i] = evm.Call{To: t.address, Data: evm.PackTransfer(e.sink, t.RawValue)}
	}
	batchID, err := e.wallet.SendCalls(ctx, calls)
	err = e.record(ActionBurnBatch, err)
	switch {
	case err == nil:
		report.BatchID = batchID
		for _, t := range targets {
			report.Burned = append(report.Burned, Burned{Token: t.Address, Symbol: t.Symbol, Method: MethodBatch, Hash: batchID})
		}
		return report, nil
	case isRejected(err):
		report.Aborted = true
		return report, err
	}

	e.logger.Debug("batch burn unavailable, processing %d token(s) one at a time: %v", len(targets), err)
	report.Mode = BurnModeSequential

	for _, t := range targets {
		hash, err := e.wallet.SendTransaction(ctx, evm.Call{To: t.address, Data: evm.PackTransfer(e.sink, t.RawValue)})
		err = e.record(ActionTransfer, err)
		if err == nil {
			report.Burned = append(report.Burned, Burned{Token: t.Address, Symbol: t.Symbol, Method: MethodTransfer, Hash: hash.Hex()})
			continue
		}
		if isRejected(err) {
			report.Aborted = true
			return report, err
		}
		e.logger.Debug("transfer of %s to burn address failed, trying burn(): %v", t.Symbol, err)

		hash, err = e.wallet.SendTransaction(ctx, evm.Call{To: t.address, Data: evm.PackBurn(t.RawValue)})
		err = e.record(ActionNativeBurn, err)
		if err == nil {
			report.Burned = append(report.Burned, Burned{Token: t.Address, Symbol: t.Symbol, Method: MethodBurn, Hash: hash.Hex()})
			continue
		}
		if isRejected(err) {
			report.Aborted = true
			return report, err
		}
		e.logger.Error("could not burn %s: %v", t.Symbol, err)
		report.Failed = append(report.Failed, Failure{Token: t.Address, Symbol: t.Symbol, Reason: err.Error()})
	}
	return report, nil
}

// SweepViaSwap sells each token for ETH through a 0x quote. Tokens without
// a route are skipped, other per-token errors are recorded and the sweep
// moves on. A user rejection stops the sweep.
func (e *EVMExecutor) SweepViaSwap(ctx context.Context, tokens []holding.TokenHolding) (*SweepReport, error) {
	if e.quoter == nil {
		return nil, janitorerr.WithSuggestion(janitorerr.ErrNotSupported, "set swap.api_key to enable sweeping")
	}
	report := &SweepReport{Swept: []Swapped{}, Skipped: []Failure{}, Failed: []Failure{}}
	targets := e.eligible(tokens)
	if len(targets) == 0 {
		return report, nil
	}
	taker := e.wallet.Address().Hex()

	for _, t := range targets {
		quote, err := e.quoter.Quote(ctx, t.Address, taker, t.RawValue)
		if err != nil {
			e.logger.Error("quote for %s failed: %v", t.Symbol, err)
			report.Failed = append(report.Failed, Failure{Token: t.Address, Symbol: t.Symbol, Reason: err.Error()})
			continue
		}
		if !quote.Routable() {
			e.logger.Debug("skipping %s: %s", t.Symbol, quote.SkipReason())
			report.Skipped = append(report.Skipped, Failure{Token: t.Address, Symbol: t.Symbol, Reason: quote.SkipReason()})
			continue
		}
		to, data, value, err := quote.Call()
		if err != nil {
			report.Failed = append(report.Failed, Failure{Token: t.Address, Symbol: t.Symbol, Reason: err.Error()})
			continue
		}

		hash, err := e.wallet.SendTransaction(ctx, evm.Call{To: to, Data: data, Value: value})
		err = e.record(ActionSwap, err)
		if isRejected(err) {
			report.Aborted = true
			return report, err
		}
		if err != nil {
			e.logger.Error("swap of %s failed: %v", t.Symbol, err)
			report.Failed = append(report.Failed, Failure{Token: t.Address, Symbol: t.Symbol, Reason: err.Error()})
			continue
		}
		report.Swept = append(report.Swept, Swapped{Token: t.Address, Symbol: t.Symbol, Hash: hash.Hex(), BuyAmount: quote.BuyAmount})
	}
	return report, nil
}

type target struct {
	holding.TokenHolding

	address common.Address
}

// eligible keeps non-native holdings with a positive balance and a valid
// contract address, in input order.
func (e *EVMExecutor) eligible(tokens []holding.TokenHolding) []target {
	out := make([]target, 0, len(tokens))
	seen := make(map[common.Address]bool, len(tokens))
	for _, h := range tokens {
		if h.IsNative() || h.IsZero() {
			continue
		}
		addr, err := evm.ParseAddress(h.Address)
		if err != nil {
			e.logger.Error("skipping %s: %v", h.Symbol, err)
			continue
		}
		if seen[addr] {
			continue
		}
		seen[addr] = true
		out = append(out, target{TokenHolding: h, address: addr})
	}
	return out
}

// record normalizes wallet rejections to ErrUserRejected and counts the attempt.
func (e *EVMExecutor) record(action string, err error) error {
	if err != nil && evm.IsUserRejection(err) && !isRejected(err) {
		err = janitorerr.Wrap(janitorerr.ErrUserRejected, "%v", err)
	}
	metrics.Global.RecordTx(chain.Base.String(), action, err)
	return err
}

func isRejected(err error) bool {
	return err != nil && janitorerr.Is(err, janitorerr.ErrUserRejected)
}
