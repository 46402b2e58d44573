package executor

import "github.com/mrz1836/janitor/internal/chain"

// Action names used in tx results and metrics.
const (
	ActionReclaim    = "reclaim"
	ActionBurnClose  = "burn_close"
	ActionRevoke     = "revoke"
	ActionBurnBatch  = "burn_batch"
	ActionTransfer   = "burn_transfer"
	ActionNativeBurn = "burn_native"
	ActionSwap       = "swap"
)

// SolanaOptions tunes the Solana executor.
type SolanaOptions struct {
	// MaxReclaim caps the accounts closed by one ReclaimEmpty transaction.
	MaxReclaim int `default:"10"`
}

// ReclaimResult is the outcome of ReclaimEmpty.
type ReclaimResult struct {
	chain.TxResult

	Closed   []string `json:"closed"`   // token accounts closed
	Lamports uint64   `json:"lamports"` // rent returned to the owner
	Deferred int      `json:"deferred"` // eligible accounts left for a later run
}

// Empty reports whether no account was closed.
func (r *ReclaimResult) Empty() bool { return len(r.Closed) == 0 }

// BurnMode is the path BurnMany finished on.
type BurnMode string

// Burn modes.
const (
	BurnModeBatch      BurnMode = "batch"
	BurnModeSequential BurnMode = "sequential"
)

// BurnMethod records how a single token was disposed of.
type BurnMethod string

// Burn methods.
const (
	MethodBatch    BurnMethod = "batch_transfer"
	MethodTransfer BurnMethod = "transfer"
	MethodBurn     BurnMethod = "burn"
)

// Burned is one token that left the wallet.
type Burned struct {
	Token  string     `json:"token"`
	Symbol string     `json:"symbol"`
	Method BurnMethod `json:"method"`
	Hash   string     `json:"hash,omitempty"`
}

// Failure is a token an action could not process.
type Failure struct {
	Token  string `json:"token"`
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// BurnReport is the outcome of BurnMany.
type BurnReport struct {
	Mode    BurnMode  `json:"mode,omitempty"`
	BatchID string    `json:"batch_id,omitempty"`
	Burned  []Burned  `json:"burned"`
	Failed  []Failure `json:"failed"`
	Aborted bool      `json:"aborted"`
}

// Empty reports whether BurnMany had nothing to act on.
func (r *BurnReport) Empty() bool { return r.Mode == "" }

// Swapped is one token sold through a swap.
type Swapped struct {
	Token     string `json:"token"`
	Symbol    string `json:"symbol"`
	Hash      string `json:"hash"`
	BuyAmount string `json:"buy_amount,omitempty"`
}

// SweepReport is the outcome of SweepViaSwap.
type SweepReport struct {
	Swept   []Swapped `json:"swept"`
	Skipped []Failure `json:"skipped"`
	Failed  []Failure `json:"failed"`
	Aborted bool      `json:"aborted"`
}

// Empty reports whether no token was processed.
func (r *SweepReport) Empty() bool {
	return len(r.Swept) == 0 && len(r.Skipped) == 0 && len(r.Failed) == 0 && !r.Aborted
}
