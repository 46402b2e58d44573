package approval

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/chain/evm"
	"github.com/mrz1836/janitor/internal/chain/evm/blockscout"
	"github.com/mrz1836/janitor/internal/chain/rest"
	"github.com/mrz1836/janitor/internal/holding"
	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

const (
	owner    = "0x1111111111111111111111111111111111111111"
	usdc     = "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"
	tokenA   = "0x000000000000000000000000000000000000000a"
	tokenB   = "0x000000000000000000000000000000000000000b"
	tokenC   = "0x000000000000000000000000000000000000000c"
	spender1 = "0x00000000000000000000000000000000000000f1"
	spender2 = "0x00000000000000000000000000000000000000f2"
)

type mockLogWriter struct {
	debugMessages []string
	errorMessages []string
}

func (m *mockLogWriter) Debug(format string, args ...any) {
	m.debugMessages = append(m.debugMessages, fmt.Sprintf(format, args...))
}

func (m *mockLogWriter) Error(format string, args ...any) {
	m.errorMessages = append(m.errorMessages, fmt.Sprintf(format, args...))
}

type mockCandidates struct {
	candidatesFunc func(owner string) ([]holding.ApprovalGrant, error)
}

func (m *mockCandidates) Candidates(_ context.Context, owner string) ([]holding.ApprovalGrant, error) {
	return m.candidatesFunc(owner)
}

type mockReader struct {
	queries        []evm.AllowanceQuery
	allowancesFunc func(queries []evm.AllowanceQuery) []evm.Uint256Result
}

func (m *mockReader) Allowances(_ context.Context, _ common.Address, queries []evm.AllowanceQuery) []evm.Uint256Result {
	m.queries = append(m.queries, queries...)
	return m.allowancesFunc(queries)
}

func grant(token, spender, symbol string) holding.ApprovalGrant {
	return holding.ApprovalGrant{Chain: chain.Base, Token: token, Spender: spender, Symbol: symbol, Allowance: big.NewInt(1)}
}

func TestBaseApprovals_VerifiesOnChain(t *testing.T) {
	t.Parallel()

	candidates := &mockCandidates{candidatesFunc: func(string) ([]holding.ApprovalGrant, error) {
		return []holding.ApprovalGrant{
			grant(tokenA, spender1, "IDXA"),
			grant(tokenB, spender1, ""),
			grant(tokenC, spender2, "IDXC"),
			grant(usdc, spender2, "USD Coin"),
			grant(tokenA, spender1, "IDXA"),
		}, nil
	}}
	reader := &mockReader{allowancesFunc: func(queries []evm.AllowanceQuery) []evm.Uint256Result {
		out := make([]evm.Uint256Result, len(queries))
		for i, q := range queries {
			switch q.Token {
			case common.HexToAddress(tokenA):
				out[i].Value = big.NewInt(500)
			case common.HexToAddress(tokenB):
				out[i].Value = big.NewInt(0)
			case common.HexToAddress(tokenC):
				out[i].Err = janitorerr.ErrNetworkError
			default:
				out[i].Value = big.NewInt(1)
			}
		}
		return out
	}}
	svc := NewService(&Config{
		Candidates: candidates,
		Reader:     reader,
		Priority:   []holding.PriorityToken{{Symbol: "USDC", Address: usdc, Decimals: 6}},
		Logger:     &mockLogWriter{},
	})
	known := []holding.TokenHolding{holding.New(chain.Base, tokenA, "AAA", 18, big.NewInt(1), holding.SourcePrimary)}

	grants, err := svc.BaseApprovals(context.Background(), owner, known)
	require.NoError(t, err)
	assert.Len(t, reader.queries, 4, "duplicates are verified once")

	require.Len(t, grants, 2)
	assert.Equal(t, "AAA", grants[0].Symbol, "held token symbol wins")
	assert.Equal(t, "500", grants[0].Allowance.String())
	assert.Equal(t, "USDC", grants[1].Symbol, "priority list beats indexer label")
}

func TestBaseApprovals_SymbolFallbacks(t *testing.T) {
	t.Parallel()

	svc := NewService(&Config{Logger: &mockLogWriter{}})
	assert.Equal(t, "IDX", svc.symbol(grant(tokenA, spender1, "IDX"), nil))
	assert.Equal(t, "UNK", svc.symbol(grant(tokenA, spender1, ""), nil))

	unknownHeld := []holding.TokenHolding{holding.New(chain.Base, tokenA, "UNK", 18, big.NewInt(1), holding.SourcePrimary)}
	assert.Equal(t, "IDX", svc.symbol(grant(tokenA, spender1, "IDX"), unknownHeld))
}

func TestBaseApprovals_IndexerFailureIsEmpty(t *testing.T) {
	t.Parallel()

	logger := &mockLogWriter{}
	reader := &mockReader{allowancesFunc: func([]evm.AllowanceQuery) []evm.Uint256Result { return nil }}
	svc := NewService(&Config{
		Candidates: &mockCandidates{candidatesFunc: func(string) ([]holding.ApprovalGrant, error) {
			return nil, janitorerr.ErrAPIError
		}},
		Reader: reader,
		Logger: logger,
	})

	grants, err := svc.BaseApprovals(context.Background(), owner, nil)
	require.NoError(t, err)
	assert.Empty(t, grants)
	assert.Empty(t, reader.queries)
	assert.Len(t, logger.errorMessages, 1)
}

func TestBaseApprovals_InvalidOwner(t *testing.T) {
	t.Parallel()

	svc := NewService(&Config{Logger: &mockLogWriter{}})
	_, err := svc.BaseApprovals(context.Background(), "nope", nil)
	assert.True(t, janitorerr.Is(err, janitorerr.ErrInvalidAddress))
}

func TestSolanaDelegates(t *testing.T) {
	t.Parallel()

	delegated := holding.New(chain.Solana, "MintA", "AAA", 6, big.NewInt(10), holding.SourcePrimary)
	delegated.Account = "AcctA"
	delegated.Delegate = "Spender"
	delegated.DelegatedAmount = big.NewInt(4)

	spent := holding.New(chain.Solana, "MintB", "BBB", 6, big.NewInt(10), holding.SourcePrimary)
	spent.Delegate = "Spender"
	spent.DelegatedAmount = big.NewInt(0)

	grants := SolanaDelegates([]holding.TokenHolding{delegated, spent})
	require.Len(t, grants, 1)
	assert.Equal(t, holding.ApprovalGrant{
		Chain: chain.Solana, Token: "MintA", Spender: "Spender", Allowance: big.NewInt(4), Symbol: "AAA", Account: "AcctA",
	}, grants[0])
}

func TestApprovals_Dispatch(t *testing.T) {
	t.Parallel()

	svc := NewService(&Config{Logger: &mockLogWriter{}})

	delegated := holding.New(chain.Solana, "MintA", "AAA", 6, big.NewInt(10), holding.SourcePrimary)
	delegated.Delegate = "Spender"
	delegated.DelegatedAmount = big.NewInt(1)

	grants, err := svc.Approvals(context.Background(), chain.Solana, "Owner", []holding.TokenHolding{delegated})
	require.NoError(t, err)
	assert.Len(t, grants, 1)

	_, err = svc.Approvals(context.Background(), chain.ID("btc"), "x", nil)
	require.ErrorIs(t, err, chain.ErrUnsupportedChain)
}

func TestBlockscoutCandidates(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ERC-20", r.URL.Query().Get("type"))
		_, _ = w.Write([]byte(`{"items":[
			{"token":{"address_hash":"` + tokenA + `","symbol":" AAA "},"spender":{"hash":"` + spender1 + `"},"amount":"115792089237316195423570985008687907853269984665640564039457584007913129639935"},
			{"token":{"address_hash":""},"spender":{"hash":"` + spender1 + `"},"amount":"1"}
		]}`))
	}))
	t.Cleanup(srv.Close)

	retry := chain.RetryConfig{MaxAttempts: 1}
	src := NewBlockscoutCandidates(blockscout.NewClient("", srv.URL, &rest.Options{Retry: &retry}))

	grants, err := src.Candidates(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, "AAA", grants[0].Symbol)
	assert.Equal(t, spender1, grants[0].Spender)
	assert.Equal(t, 256, grants[0].Allowance.BitLen())
}
