package chain

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// ToDecimal converts a raw integer amount into display units.
func ToDecimal(raw *big.Int, decimals uint8) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -int32(decimals))
}

// FormatDecimalAmount renders a raw amount in display units with trailing
// zeros removed. 1500000000000000000 with 18 decimals returns "1.5".
func FormatDecimalAmount(raw *big.Int, decimals uint8) string {
	return ToDecimal(raw, decimals).String()
}

// FormatDisplayAmount renders a raw amount rounded down to at most places
// fractional digits, for tables. Values that round to zero but are not zero
// render as "<0.0001" style strings.
func FormatDisplayAmount(raw *big.Int, decimals uint8, places int32) string {
	d := ToDecimal(raw, decimals)
	if d.IsZero() {
		return "0"
	}
	rounded := d.RoundDown(places)
	if rounded.IsZero() {
		return "<" + decimal.New(1, -places).String()
	}
	return rounded.String()
}

// ParseDecimalAmount parses a human amount such as "1.5" into raw units.
// Digits beyond the token's precision are truncated.
func ParseDecimalAmount(amount string, decimals uint8, invalidAmountErr error) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" || strings.HasPrefix(amount, "-") || strings.ContainsAny(amount, "eE") {
		return nil, invalidAmountErr
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, invalidAmountErr
	}
	return d.Shift(int32(decimals)).Truncate(0).BigInt(), nil
}

// ParseRawAmount parses a base-10 integer string such as an indexer balance.
func ParseRawAmount(s string) (*big.Int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, false
	}
	return v, true
}

// ParseQuantity parses an indexer quantity given either as a 0x-prefixed
// hex string or as a base-10 string. Empty input is zero.
func ParseQuantity(s string) (*big.Int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return new(big.Int), true
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		if len(s) == 2 {
			return new(big.Int), true
		}
		v, ok := new(big.Int).SetString(s[2:], 16)
		return v, ok
	}
	return ParseRawAmount(s)
}
