package classify

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/holding"
)

func token(raw int64, decimals uint8) holding.TokenHolding {
	return holding.New(chain.Solana, "Mint", "TKN", decimals, big.NewInt(raw), holding.SourcePrimary)
}

func TestThreshold_Raw(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "100000000", Threshold{}.Raw(6).String())
	assert.Equal(t, "100", Threshold{}.Raw(0).String())
	assert.Equal(t, "3", NewThreshold(decimal.RequireFromString("2.5")).Raw(0).String())
	assert.Equal(t, "100", NewThreshold(decimal.NewFromInt(-1)).Units().String())
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		h        holding.TokenHolding
		approved bool
		want     Result
	}{
		{"zero balance is empty", token(0, 6), false, Result{Empty: true}},
		{"one raw unit is dust", token(1, 6), false, Result{Dust: true}},
		{"just below threshold", token(99_999_999, 6), false, Result{Dust: true}},
		{"at threshold is not dust", token(100_000_000, 6), false, Result{}},
		{"above threshold", token(250_000_000, 6), false, Result{}},
		{"approved large balance is risky only", token(500_000_000, 6), true, Result{Risky: true}},
		{"approved dust is both", token(5, 6), true, Result{Dust: true, Risky: true}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Classify(tc.h, Threshold{}, tc.approved))
		})
	}
}

func TestClassify_PrecisionAtBoundary(t *testing.T) {
	t.Parallel()

	// 99.999999999999999999 in 18 decimals rounds to 100 as a float.
	raw, ok := new(big.Int).SetString("99999999999999999999", 10)
	require.True(t, ok)
	h := holding.New(chain.Base, "0xabc", "X", 18, raw, holding.SourcePrimary)
	assert.True(t, Classify(h, Threshold{}, false).Dust)
}

func TestClassify_DelegateOnEmptyAccount(t *testing.T) {
	t.Parallel()

	h := token(0, 6)
	h.Delegate = "Spender"
	h.DelegatedAmount = big.NewInt(10)

	r := Classify(h, Threshold{}, false)
	assert.True(t, r.Empty)
	assert.True(t, r.Risky)
	assert.False(t, r.Dust)
	assert.Equal(t, []Bucket{Empty, Risky}, r.Buckets())
}

func TestClassify_NativeNeverDust(t *testing.T) {
	t.Parallel()

	h := holding.New(chain.Base, holding.NativeAddress, "ETH", 18, big.NewInt(1000), holding.SourcePrimary)
	assert.Equal(t, Result{}, Classify(h, Threshold{}, false))
}

func TestSplit(t *testing.T) {
	t.Parallel()

	a := holding.New(chain.Base, "0xAAA", "A", 0, big.NewInt(0), holding.SourcePrimary)
	b := holding.New(chain.Base, "0xBBB", "B", 0, big.NewInt(5), holding.SourcePrimary)
	c := holding.New(chain.Base, "0xCCC", "C", 0, big.NewInt(500), holding.SourcePrimary)

	grants := []holding.ApprovalGrant{
		{Chain: chain.Base, Token: "0xccc", Spender: "0x1", Allowance: big.NewInt(1)},
		{Chain: chain.Base, Token: "0xbbb", Spender: "0x2", Allowance: big.NewInt(0)},
	}

	s := Split([]holding.TokenHolding{a, b, c}, Threshold{}, grants)
	require.Len(t, s.Empty, 1)
	require.Len(t, s.Dust, 1)
	require.Len(t, s.Risky, 1)
	assert.Equal(t, "A", s.Empty[0].Symbol)
	assert.Equal(t, "B", s.Dust[0].Symbol)
	assert.Equal(t, "C", s.Risky[0].Symbol)
}

func TestSplit_Empty(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Set{}, Split(nil, Threshold{}, nil))
}

func TestSplit_EmptyAndDustDisjoint(t *testing.T) {
	t.Parallel()

	var list []holding.TokenHolding
	for i := int64(0); i < 300; i += 7 {
		list = append(list, token(i, 0))
	}
	s := Split(list, Threshold{}, nil)

	seen := map[string]bool{}
	for _, h := range s.Empty {
		seen[h.RawValue.String()] = true
	}
	for _, h := range s.Dust {
		assert.False(t, seen[h.RawValue.String()], "holding %s in both Empty and Dust", h.RawValue)
	}
}
