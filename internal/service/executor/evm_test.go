package executor

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/janitor/internal/chain/evm"
	"github.com/mrz1836/janitor/internal/chain/evm/zeroex"
	"github.com/mrz1836/janitor/internal/chain/jsonrpc"
	"github.com/mrz1836/janitor/internal/holding"
	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

const (
	tokenA  = "0x00000000000000000000000000000000000000a1"
	tokenB  = "0x00000000000000000000000000000000000000b2"
	tokenC  = "0x00000000000000000000000000000000000000c3"
	tokenD  = "0x00000000000000000000000000000000000000d4"
	owner   = "0x1111111111111111111111111111111111111111"
	spender = "0x2222222222222222222222222222222222222222"
	router  = "0xdef1c0ded9bec7f1a1670819833240f027b25eff"
)

var errReverted = errors.New("execution reverted")

func newEVMExecutor(t *testing.T, wallet *mockWallet, quoter Quoter) *EVMExecutor {
	t.Helper()
	wallet.addr = common.HexToAddress(owner)
	exec, err := NewEVMExecutor(EVMConfig{Wallet: wallet, Quoter: quoter, Logger: &mockLogWriter{}})
	require.NoError(t, err)
	return exec
}

func threeTokens() []holding.TokenHolding {
	return []holding.TokenHolding{
		evmToken(tokenA, "AAA", 1),
		evmToken(tokenB, "BBB", 2),
		evmToken(tokenC, "CCC", 3),
	}
}

func TestNewEVMExecutor(t *testing.T) {
	t.Parallel()

	_, err := NewEVMExecutor(EVMConfig{})
	require.ErrorIs(t, err, janitorerr.ErrInvalidInput)

	_, err = NewEVMExecutor(EVMConfig{Wallet: &mockWallet{}, BurnAddress: "0xnope"})
	require.ErrorIs(t, err, janitorerr.ErrInvalidAddress)
}

func TestBurnMany_Batch(t *testing.T) {
	t.Parallel()

	wallet := &mockWallet{}
	exec := newEVMExecutor(t, wallet, nil)

	native := evmToken(holding.NativeAddress, "ETH", 5)
	tokens := append(threeTokens(), native, evmToken(tokenD, "ZERO", 0), evmToken(tokenA, "AAA", 1))

	report, err := exec.BurnMany(t.Context(), tokens)
	require.NoError(t, err)

	assert.Equal(t, BurnModeBatch, report.Mode)
	assert.Equal(t, "batch-1", report.BatchID)
	assert.Len(t, report.Burned, 3)
	assert.Empty(t, report.Failed)
	assert.False(t, report.Aborted)

	require.Len(t, wallet.batches, 1)
	batch := wallet.batches[0]
	require.Len(t, batch, 3)
	for i, want := range []string{tokenA, tokenB, tokenC} {
		assert.Equal(t, common.HexToAddress(want), batch[i].To)
		assert.Equal(t, evm.PackTransfer(common.HexToAddress(evm.DeadAddress), big.NewInt(int64(i+1))), batch[i].Data)
	}
	assert.Empty(t, wallet.sentCalls())
}

func TestBurnMany_SequentialFallback(t *testing.T) {
	t.Parallel()

	// #1 transfers, #2 refuses transfers but has burn(), #3 refuses both.
	wallet := &mockWallet{
		sendCallsFunc: func([]evm.Call) (string, error) { return "", janitorerr.ErrBatchUnsupported },
		sendTxFunc: func(call evm.Call) (common.Hash, error) {
			switch {
			case call.To == common.HexToAddress(tokenA):
				return common.HexToHash("0xa1"), nil
			case call.To == common.HexToAddress(tokenB) && evm.HasSelector(call.Data, evm.SigBurn):
				return common.HexToHash("0xb2"), nil
			default:
				return common.Hash{}, errReverted
			}
		},
	}
	exec := newEVMExecutor(t, wallet, nil)

	report, err := exec.BurnMany(t.Context(), threeTokens())
	require.NoError(t, err)

	assert.Equal(t, BurnModeSequential, report.Mode)
	assert.False(t, report.Aborted)
	require.Len(t, report.Burned, 2)
	assert.Equal(t, Burned{Token: tokenA, Symbol: "AAA", Method: MethodTransfer, Hash: common.HexToHash("0xa1").Hex()}, report.Burned[0])
	assert.Equal(t, Burned{Token: tokenB, Symbol: "BBB", Method: MethodBurn, Hash: common.HexToHash("0xb2").Hex()}, report.Burned[1])
	require.Len(t, report.Failed, 1)
	assert.Equal(t, tokenC, report.Failed[0].Token)
	assert.Contains(t, report.Failed[0].Reason, "execution reverted")

	sent := wallet.sentCalls()
	require.Len(t, sent, 5)
	assert.True(t, sent[0].transfer)
	assert.True(t, sent[1].transfer)
	assert.True(t, sent[2].burn)
	assert.True(t, sent[3].transfer)
	assert.True(t, sent[4].burn)
	assert.Equal(t, evm.PackBurn(big.NewInt(3)), sent[4].data)
}

func TestBurnMany_BatchRejected(t *testing.T) {
	t.Parallel()

	wallet := &mockWallet{
		sendCallsFunc: func([]evm.Call) (string, error) {
			return "", &jsonrpc.Error{Code: jsonrpc.CodeUserRejected, Message: "User rejected the request."}
		},
	}
	exec := newEVMExecutor(t, wallet, nil)

	report, err := exec.BurnMany(t.Context(), threeTokens())
	require.ErrorIs(t, err, janitorerr.ErrUserRejected)
	require.NotNil(t, report)
	assert.True(t, report.Aborted)
	assert.Equal(t, BurnModeBatch, report.Mode)
	assert.Empty(t, report.Burned)
	assert.Empty(t, wallet.sentCalls(), "a rejected batch must not fall back")
}

func TestBurnMany_SequentialRejection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		sendTx     func(call evm.Call) (common.Hash, error)
		wantBurned int
		wantFailed int
		wantSent   int
	}{
		{
			name: "transfer rejected",
			sendTx: func(call evm.Call) (common.Hash, error) {
				if call.To == common.HexToAddress(tokenB) {
					return common.Hash{}, janitorerr.ErrUserRejected
				}
				return common.HexToHash("0x01"), nil
			},
			wantBurned: 1,
			wantSent:   2,
		},
		{
			name: "burn rejected after failed transfer",
			sendTx: func(call evm.Call) (common.Hash, error) {
				if evm.HasSelector(call.Data, evm.SigTransfer) {
					return common.Hash{}, errReverted
				}
				return common.Hash{}, errors.New("User denied transaction signature")
			},
			wantSent: 2,
		},
		{
			name: "failure before rejection is reported",
			sendTx: func(call evm.Call) (common.Hash, error) {
				if call.To == common.HexToAddress(tokenA) {
					return common.Hash{}, errReverted
				}
				return common.Hash{}, janitorerr.ErrUserRejected
			},
			wantFailed: 1,
			wantSent:   3,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			wallet := &mockWallet{
				sendCallsFunc: func([]evm.Call) (string, error) { return "", janitorerr.ErrBatchUnsupported },
				sendTxFunc:    tc.sendTx,
			}
			exec := newEVMExecutor(t, wallet, nil)

			report, err := exec.BurnMany(t.Context(), threeTokens())
			require.ErrorIs(t, err, janitorerr.ErrUserRejected)
			assert.True(t, report.Aborted)
			assert.Equal(t, BurnModeSequential, report.Mode)
			assert.Len(t, report.Burned, tc.wantBurned)
			assert.Len(t, report.Failed, tc.wantFailed)
			assert.Len(t, wallet.sentCalls(), tc.wantSent)
		})
	}
}

func TestBurnMany_NothingEligibleIsNoop(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		tokens []holding.TokenHolding
	}{
		{name: "nil set"},
		{name: "native and zero balances", tokens: []holding.TokenHolding{
			evmToken(holding.NativeAddress, "ETH", 10),
			evmToken(tokenA, "AAA", 0),
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			wallet := &mockWallet{}
			exec := newEVMExecutor(t, wallet, nil)

			report, err := exec.BurnMany(t.Context(), tc.tokens)
			require.NoError(t, err)
			require.NotNil(t, report)
			assert.True(t, report.Empty())
			assert.Empty(t, report.Burned)
			assert.Empty(t, report.Failed)
			assert.Empty(t, wallet.batches)
			assert.Empty(t, wallet.sentCalls())
		})
	}
}

func TestRevokeApproval(t *testing.T) {
	t.Parallel()

	wallet := &mockWallet{}
	exec := newEVMExecutor(t, wallet, nil)
	grant := holding.ApprovalGrant{Token: tokenA, Spender: spender, Allowance: big.NewInt(100)}

	// Revoking twice submits the same approve(spender, 0) and both succeed.
	for range 2 {
		res, err := exec.RevokeApproval(t.Context(), grant)
		require.NoError(t, err)
		assert.Equal(t, ActionRevoke, res.Action)
	}

	sent := wallet.sentCalls()
	require.Len(t, sent, 2)
	want := evm.PackApprove(common.HexToAddress(spender), big.NewInt(0))
	for _, s := range sent {
		assert.True(t, s.approve)
		assert.Equal(t, common.HexToAddress(tokenA), s.to)
		assert.Equal(t, want, s.data)
	}
}

func TestRevokeApproval_Errors(t *testing.T) {
	t.Parallel()

	t.Run("invalid spender", func(t *testing.T) {
		t.Parallel()
		wallet := &mockWallet{}
		exec := newEVMExecutor(t, wallet, nil)

		_, err := exec.RevokeApproval(t.Context(), holding.ApprovalGrant{Token: tokenA, Spender: "bogus"})
		require.ErrorIs(t, err, janitorerr.ErrInvalidAddress)
		assert.Empty(t, wallet.sentCalls())
	})

	t.Run("rejected", func(t *testing.T) {
		t.Parallel()
		wallet := &mockWallet{sendTxFunc: func(evm.Call) (common.Hash, error) {
			return common.Hash{}, &jsonrpc.Error{Code: jsonrpc.CodeUserRejected, Message: "rejected"}
		}}
		exec := newEVMExecutor(t, wallet, nil)

		_, err := exec.RevokeApproval(t.Context(), holding.ApprovalGrant{Token: tokenA, Spender: spender})
		require.ErrorIs(t, err, janitorerr.ErrUserRejected)
	})
}

func routableQuote() *zeroex.Quote {
	return &zeroex.Quote{To: router, Data: "0xd9627aa4", Value: "0", BuyAmount: "1000"}
}

func TestSweepViaSwap(t *testing.T) {
	t.Parallel()

	quoter := &mockQuoter{quoteFunc: func(sellToken string, _ *big.Int) (*zeroex.Quote, error) {
		switch sellToken {
		case tokenB:
			return &zeroex.Quote{Reason: "INSUFFICIENT_ASSET_LIQUIDITY"}, nil
		case tokenC:
			return nil, janitorerr.ErrAPIError
		default:
			return routableQuote(), nil
		}
	}}
	wallet := &mockWallet{}
	exec := newEVMExecutor(t, wallet, quoter)

	tokens := append(threeTokens(), evmToken(tokenD, "DDD", 4))
	report, err := exec.SweepViaSwap(t.Context(), tokens)
	require.NoError(t, err)

	assert.False(t, report.Aborted)
	require.Len(t, report.Swept, 2)
	assert.Equal(t, tokenA, report.Swept[0].Token)
	assert.Equal(t, tokenD, report.Swept[1].Token)
	assert.Equal(t, "1000", report.Swept[0].BuyAmount)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, Failure{Token: tokenB, Symbol: "BBB", Reason: "INSUFFICIENT_ASSET_LIQUIDITY"}, report.Skipped[0])
	require.Len(t, report.Failed, 1)
	assert.Equal(t, tokenC, report.Failed[0].Token)

	sent := wallet.sentCalls()
	require.Len(t, sent, 2)
	for _, s := range sent {
		assert.Equal(t, common.HexToAddress(router), s.to)
	}
	assert.Equal(t, []string{tokenA, tokenB, tokenC, tokenD}, quoter.quoted)
}

func TestSweepViaSwap_EmptySetIsNoop(t *testing.T) {
	t.Parallel()

	quoter := &mockQuoter{quoteFunc: func(string, *big.Int) (*zeroex.Quote, error) {
		return routableQuote(), nil
	}}
	wallet := &mockWallet{}
	exec := newEVMExecutor(t, wallet, quoter)

	report, err := exec.SweepViaSwap(t.Context(), nil)
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.True(t, report.Empty())
	assert.Empty(t, quoter.quoted)
	assert.Empty(t, wallet.sentCalls())
}

func TestSweepViaSwap_MissingTargetIsSkip(t *testing.T) {
	t.Parallel()

	quoter := &mockQuoter{quoteFunc: func(string, *big.Int) (*zeroex.Quote, error) {
		return &zeroex.Quote{Data: "0x"}, nil
	}}
	wallet := &mockWallet{}
	exec := newEVMExecutor(t, wallet, quoter)

	report, err := exec.SweepViaSwap(t.Context(), threeTokens()[:1])
	require.NoError(t, err)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "no quote found", report.Skipped[0].Reason)
	assert.Empty(t, wallet.sentCalls())
}

func TestSweepViaSwap_RejectionAborts(t *testing.T) {
	t.Parallel()

	quoter := &mockQuoter{quoteFunc: func(string, *big.Int) (*zeroex.Quote, error) {
		return routableQuote(), nil
	}}
	wallet := &mockWallet{sendTxFunc: func(evm.Call) (common.Hash, error) {
		return common.Hash{}, janitorerr.ErrUserRejected
	}}
	exec := newEVMExecutor(t, wallet, quoter)

	report, err := exec.SweepViaSwap(t.Context(), threeTokens())
	require.ErrorIs(t, err, janitorerr.ErrUserRejected)
	assert.True(t, report.Aborted)
	assert.Empty(t, report.Swept)
	assert.Len(t, wallet.sentCalls(), 1, "no retry and no further tokens")
	assert.Equal(t, []string{tokenA}, quoter.quoted)
}

func TestSweepViaSwap_FailedSubmissionContinues(t *testing.T) {
	t.Parallel()

	quoter := &mockQuoter{quoteFunc: func(string, *big.Int) (*zeroex.Quote, error) {
		return routableQuote(), nil
	}}
	calls := 0
	wallet := &mockWallet{sendTxFunc: func(evm.Call) (common.Hash, error) {
		calls++
		if calls == 1 {
			return common.Hash{}, errReverted
		}
		return common.HexToHash("0x02"), nil
	}}
	exec := newEVMExecutor(t, wallet, quoter)

	report, err := exec.SweepViaSwap(t.Context(), threeTokens())
	require.NoError(t, err)
	assert.Len(t, report.Failed, 1)
	assert.Len(t, report.Swept, 2)
}

func TestSweepViaSwap_NoQuoter(t *testing.T) {
	t.Parallel()

	exec := newEVMExecutor(t, &mockWallet{}, nil)
	_, err := exec.SweepViaSwap(t.Context(), threeTokens())
	require.ErrorIs(t, err, janitorerr.ErrNotSupported)
}
