package executor

import (
	"context"
	"fmt"
	"math/big"

	"github.com/creasty/defaults"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/chain/solana"
	"github.com/mrz1836/janitor/internal/holding"
	"github.com/mrz1836/janitor/internal/metrics"
	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

// SolanaExecutor builds and submits SPL Token cleanup transactions for the
// sender's own token accounts.
type SolanaExecutor struct {
	sender solana.Sender
	logger LogWriter
	opts   SolanaOptions
}

// NewSolanaExecutor creates an executor signing with sender.
func NewSolanaExecutor(sender solana.Sender, logger LogWriter, opts SolanaOptions) (*SolanaExecutor, error) {
	if err := defaults.Set(&opts); err != nil {
		return nil, fmt.Errorf("executor options: %w", err)
	}
	if opts.MaxReclaim <= 0 || opts.MaxReclaim > solana.MaxReclaimAccounts {
		opts.MaxReclaim = solana.MaxReclaimAccounts
	}
	return &SolanaExecutor{sender: sender, logger: logger, opts: opts}, nil
}

// ReclaimEmpty closes up to MaxReclaim empty token accounts in one
// transaction and returns their rent to the owner. Frozen accounts cannot
// be closed and are skipped. With nothing to close no transaction is sent
// and the result is empty.
func (e *SolanaExecutor) ReclaimEmpty(ctx context.Context, holdings []holding.TokenHolding) (*ReclaimResult, error) {
	owner := e.sender.Address()

	var (
		instructions []solana.Instruction
		closed       []string
		lamports     uint64
		deferred     int
	)
	for _, h := range holdings {
		if h.IsNative() || !h.IsZero() || h.Frozen || h.Account == "" {
			continue
		}
		if len(instructions) == e.opts.MaxReclaim {
			deferred++
			continue
		}
		account, err := solana.ParsePublicKey(h.Account)
		if err != nil {
			e.logger.Error("skipping token account %q: %v", h.Account, err)
			continue
		}
		instructions = append(instructions, solana.CloseAccount(account, owner, owner))
		closed = append(closed, h.Account)
		lamports += h.Lamports
	}
	if len(instructions) == 0 {
		return &ReclaimResult{Closed: []string{}}, nil
	}

	summary := fmt.Sprintf("Close %d empty token account(s) and reclaim %s SOL",
		len(instructions), chain.FormatDecimalAmount(new(big.Int).SetUint64(lamports), chain.Solana.NativeDecimals()))
	sig, err := e.send(ctx, ActionReclaim, summary, instructions)
	if err != nil {
		return nil, err
	}
	if deferred > 0 {
		e.logger.Debug("reclaim: %d empty account(s) left for the next run", deferred)
	}
	return &ReclaimResult{
		TxResult: submitted(chain.Solana, ActionReclaim, sig),
		Closed:   closed,
		Lamports: lamports,
		Deferred: deferred,
	}, nil
}

// BurnAndClose burns the full balance of one token account and closes it
// in the same transaction.
func (e *SolanaExecutor) BurnAndClose(ctx context.Context, h holding.TokenHolding) (*chain.TxResult, error) {
	if h.Account == "" || h.IsNative() {
		return nil, janitorerr.Wrap(janitorerr.ErrInvalidInput, "holding %s has no token account", h.Symbol)
	}
	if h.Frozen {
		return nil, janitorerr.WithSuggestion(
			janitorerr.Wrap(janitorerr.ErrInvalidInput, "token account %s is frozen", h.Account),
			"frozen accounts can only be thawed by the mint's freeze authority")
	}
	if h.RawValue != nil && !h.RawValue.IsUint64() {
		return nil, janitorerr.Wrap(janitorerr.ErrInvalidInput, "balance of %s exceeds u64", h.Account)
	}
	account, err := solana.ParsePublicKey(h.Account)
	if err != nil {
		return nil, err
	}
	mint, err := solana.ParsePublicKey(h.Address)
	if err != nil {
		return nil, err
	}

	owner := e.sender.Address()
	instructions := make([]solana.Instruction, 0, 2)
	var amount uint64
	if h.RawValue != nil {
		amount = h.RawValue.Uint64()
	}
	if amount > 0 {
		instructions = append(instructions, solana.Burn(account, mint, owner, amount))
	}
	instructions = append(instructions, solana.CloseAccount(account, owner, owner))

	summary := fmt.Sprintf("Burn %s %s and close account %s", displayAmount(h), h.Symbol, h.Account)
	sig, err := e.send(ctx, ActionBurnClose, summary, instructions)
	if err != nil {
		return nil, err
	}
	res := submitted(chain.Solana, ActionBurnClose, sig)
	return &res, nil
}

// Revoke clears the delegate of a token account. Revoking an account with
// no delegate is accepted by the token program and changes nothing.
func (e *SolanaExecutor) Revoke(ctx context.Context, tokenAccount string) (*chain.TxResult, error) {
	account, err := solana.ParsePublicKey(tokenAccount)
	if err != nil {
		return nil, err
	}
	summary := "Revoke delegate of token account " + tokenAccount
	sig, err := e.send(ctx, ActionRevoke, summary, []solana.Instruction{solana.Revoke(account, e.sender.Address())})
	if err != nil {
		return nil, err
	}
	res := submitted(chain.Solana, ActionRevoke, sig)
	return &res, nil
}

func (e *SolanaExecutor) send(ctx context.Context, action, summary string, instructions []solana.Instruction) (string, error) {
	sig, err := e.sender.Send(ctx, summary, instructions)
	metrics.Global.RecordTx(chain.Solana.String(), action, err)
	if err != nil {
		e.logger.Error("%s failed: %v", action, err)
		return "", err
	}
	e.logger.Debug("%s submitted: %s", action, sig)
	return sig, nil
}

func submitted(id chain.ID, action, hash string) chain.TxResult {
	return chain.TxResult{Chain: id, Action: action, Hash: hash, Status: chain.StatusSubmitted}
}

func displayAmount(h holding.TokenHolding) string {
	if h.DisplayValue != "" {
		return h.DisplayValue
	}
	return h.Amount().String()
}
