package executor

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/chain/evm"
	"github.com/mrz1836/janitor/internal/chain/evm/zeroex"
	"github.com/mrz1836/janitor/internal/chain/solana"
	"github.com/mrz1836/janitor/internal/holding"
)

type mockLogWriter struct {
	mu            sync.Mutex
	debugMessages []string
	errorMessages []string
}

func (m *mockLogWriter) Debug(format string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.debugMessages = append(m.debugMessages, fmt.Sprintf(format, args...))
}

func (m *mockLogWriter) Error(format string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorMessages = append(m.errorMessages, fmt.Sprintf(format, args...))
}

// sentCall is one SendTransaction seen by mockWallet.
type sentCall struct {
	to       common.Address
	transfer bool
	burn     bool
	approve  bool
	data     []byte
}

type mockWallet struct {
	addr common.Address

	sendCallsFunc func(calls []evm.Call) (string, error)
	sendTxFunc    func(call evm.Call) (common.Hash, error)

	mu      sync.Mutex
	batches [][]evm.Call
	sent    []sentCall
}

func (m *mockWallet) Address() common.Address { return m.addr }

func (m *mockWallet) SendCalls(_ context.Context, calls []evm.Call) (string, error) {
	m.mu.Lock()
	m.batches = append(m.batches, calls)
	m.mu.Unlock()
	if m.sendCallsFunc == nil {
		return "batch-1", nil
	}
	return m.sendCallsFunc(calls)
}

func (m *mockWallet) SendTransaction(_ context.Context, call evm.Call) (common.Hash, error) {
	m.mu.Lock()
	m.sent = append(m.sent, sentCall{
		to:       call.To,
		transfer: evm.HasSelector(call.Data, evm.SigTransfer),
		burn:     evm.HasSelector(call.Data, evm.SigBurn),
		approve:  evm.HasSelector(call.Data, evm.SigApprove),
		data:     call.Data,
	})
	m.mu.Unlock()
	if m.sendTxFunc == nil {
		return common.BytesToHash(call.To.Bytes()), nil
	}
	return m.sendTxFunc(call)
}

func (m *mockWallet) sentCalls() []sentCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentCall(nil), m.sent...)
}

type mockQuoter struct {
	quoteFunc func(sellToken string, amount *big.Int) (*zeroex.Quote, error)

	mu     sync.Mutex
	quoted []string
}

func (m *mockQuoter) Quote(_ context.Context, sellToken, _ string, sellAmount *big.Int) (*zeroex.Quote, error) {
	m.mu.Lock()
	m.quoted = append(m.quoted, sellToken)
	m.mu.Unlock()
	return m.quoteFunc(sellToken, sellAmount)
}

type mockSender struct {
	addr     solana.PublicKey
	sendFunc func(summary string, instructions []solana.Instruction) (string, error)

	mu        sync.Mutex
	summaries []string
	sent      [][]solana.Instruction
}

func (m *mockSender) Address() solana.PublicKey { return m.addr }

func (m *mockSender) Send(_ context.Context, summary string, instructions []solana.Instruction) (string, error) {
	m.mu.Lock()
	m.summaries = append(m.summaries, summary)
	m.sent = append(m.sent, instructions)
	m.mu.Unlock()
	if m.sendFunc == nil {
		return "5igSig", nil
	}
	return m.sendFunc(summary, instructions)
}

func testKey(b byte) solana.PublicKey {
	var pk solana.PublicKey
	for i := range pk {
		pk[i] = b
	}
	return pk
}

func evmToken(addr, symbol string, raw int64) holding.TokenHolding {
	return holding.New(chain.Base, addr, symbol, 18, big.NewInt(raw), holding.SourcePrimary)
}

func splAccount(account, mint solana.PublicKey, raw int64) holding.TokenHolding {
	h := holding.New(chain.Solana, mint.String(), "UNK-"+mint.Short(), 6, big.NewInt(raw), holding.SourcePrimary)
	h.Account = account.String()
	h.Lamports = 2039280
	return h
}
