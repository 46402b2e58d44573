package chain_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/janitor/internal/chain"
)

var errBadAmount = errors.New("bad amount")

func mustBigInt(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("invalid big.Int literal: " + s)
	}
	return v
}

func TestFormatDecimalAmount(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw      *big.Int
		decimals uint8
		want     string
	}{
		{mustBigInt("1500000000000000000"), 18, "1.5"},
		{big.NewInt(1), 6, "0.000001"},
		{big.NewInt(0), 18, "0"},
		{nil, 18, "0"},
		{big.NewInt(123), 0, "123"},
		{mustBigInt("115792089237316195423570985008687907853269984665640564039457584007913129639935"), 18,
			"115792089237316195423570985008687907853269984665640564039457.584007913129639935"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, chain.FormatDecimalAmount(tt.raw, tt.decimals))
	}
}

func TestFormatDisplayAmount(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "1.2345", chain.FormatDisplayAmount(big.NewInt(1234567), 6, 4))
	assert.Equal(t, "<0.0001", chain.FormatDisplayAmount(big.NewInt(1), 6, 4))
	assert.Equal(t, "0", chain.FormatDisplayAmount(big.NewInt(0), 6, 4))
}

func TestToDecimal(t *testing.T) {
	t.Parallel()
	assert.True(t, decimal.RequireFromString("99.999999").Equal(chain.ToDecimal(big.NewInt(99999999), 6)))
}

func TestParseDecimalAmount(t *testing.T) {
	t.Parallel()

	valid := []struct {
		in       string
		decimals uint8
		want     string
	}{
		{"1.5", 18, "1500000000000000000"},
		{"100", 6, "100000000"},
		{"0.1234567", 6, "123456"},
	}
	for _, tt := range valid {
		got, err := chain.ParseDecimalAmount(tt.in, tt.decimals, errBadAmount)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got.String(), tt.in)
	}

	for _, in := range []string{"", "-1", "abc", "1.2.3", "1e5"} {
		_, err := chain.ParseDecimalAmount(in, 6, errBadAmount)
		require.ErrorIs(t, err, errBadAmount, in)
	}
}

func TestParseRawAmount(t *testing.T) {
	t.Parallel()
	v, ok := chain.ParseRawAmount(" 42 ")
	require.True(t, ok)
	assert.Equal(t, int64(42), v.Int64())

	for _, in := range []string{"", "-1", "0x10", "1.5"} {
		_, ok := chain.ParseRawAmount(in)
		assert.False(t, ok, in)
	}
}

func TestParseQuantity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"0x1dcd6500", "500000000", true},
		{"0x", "0", true},
		{"", "0", true},
		{"1234", "1234", true},
		{"0xzz", "", false},
		{"-5", "", false},
	}
	for _, tc := range tests {
		v, ok := chain.ParseQuantity(tc.in)
		require.Equal(t, tc.ok, ok, tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, v.String(), tc.in)
		}
	}
}
