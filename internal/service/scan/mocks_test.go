package scan

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mrz1836/janitor/internal/chain/evm"
	"github.com/mrz1836/janitor/internal/chain/solana"
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

func (m *mockLogWriter) errors() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.errorMessages...)
}

type mockTokenSource struct {
	mu       sync.Mutex
	pages    []int
	pageFunc func(page, limit int) (Page, error)
}

func (m *mockTokenSource) Name() string { return "mock" }

func (m *mockTokenSource) TokenPage(_ context.Context, _ string, page, limit int) (Page, error) {
	m.mu.Lock()
	m.pages = append(m.pages, page)
	m.mu.Unlock()
	return m.pageFunc(page, limit)
}

func (m *mockTokenSource) requested() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.pages...)
}

type mockNativeSource struct {
	balanceFunc func() (*big.Int, error)
}

func (m *mockNativeSource) NativeBalance(context.Context, string) (*big.Int, error) {
	return m.balanceFunc()
}

type mockBaseReader struct {
	mu                sync.Mutex
	queried           [][]common.Address
	balanceAtFunc     func(common.Address) (*big.Int, error)
	tokenBalancesFunc func(tokens []common.Address) []evm.Uint256Result
}

func (m *mockBaseReader) BalanceAt(_ context.Context, addr common.Address) (*big.Int, error) {
	if m.balanceAtFunc == nil {
		return new(big.Int), nil
	}
	return m.balanceAtFunc(addr)
}

func (m *mockBaseReader) TokenBalances(_ context.Context, _ common.Address, tokens []common.Address) []evm.Uint256Result {
	m.mu.Lock()
	m.queried = append(m.queried, tokens)
	m.mu.Unlock()
	if m.tokenBalancesFunc == nil {
		out := make([]evm.Uint256Result, len(tokens))
		for i := range out {
			out[i].Value = new(big.Int)
		}
		return out
	}
	return m.tokenBalancesFunc(tokens)
}

type mockMetadataSource struct {
	calls    int
	metaFunc func(contract string) (TokenMeta, error)
}

func (m *mockMetadataSource) TokenMetadata(_ context.Context, contract string) (TokenMeta, error) {
	m.calls++
	return m.metaFunc(contract)
}

type mockSolanaReader struct {
	accountsFunc func(owner solana.PublicKey) ([]solana.TokenAccount, error)
	symbolsFunc  func(mints []solana.PublicKey) map[solana.PublicKey]string
}

func (m *mockSolanaReader) TokenAccountsByOwner(_ context.Context, owner solana.PublicKey) ([]solana.TokenAccount, error) {
	return m.accountsFunc(owner)
}

func (m *mockSolanaReader) TokenSymbols(_ context.Context, mints []solana.PublicKey) map[solana.PublicKey]string {
	if m.symbolsFunc == nil {
		return map[solana.PublicKey]string{}
	}
	return m.symbolsFunc(mints)
}

type mockScanner struct {
	scanFunc func(ctx context.Context, owner string) (*Result, error)
}

func (m *mockScanner) Scan(ctx context.Context, owner string) (*Result, error) {
	return m.scanFunc(ctx, owner)
}
