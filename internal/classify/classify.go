// Package classify sorts holdings into the Empty, Dust and Risky buckets.
//
// Empty and Dust are mutually exclusive and depend only on the balance.
// Risky is independent of both: an empty account with a live delegate is
// Empty and Risky at once.
package classify

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/mrz1836/janitor/internal/holding"
)

// DefaultDustThreshold is the dust cut-off in display units.
const DefaultDustThreshold = 100

// Bucket names a cleanup category.
type Bucket string

// Buckets.
const (
	Empty Bucket = "empty"
	Dust  Bucket = "dust"
	Risky Bucket = "risky"
)

// Threshold is a dust cut-off in display units. The zero value means
// DefaultDustThreshold.
type Threshold struct {
	units decimal.Decimal
}

// NewThreshold returns a threshold of units display units. Non-positive
// values fall back to DefaultDustThreshold.
func NewThreshold(units decimal.Decimal) Threshold {
	return Threshold{units: units}
}

// Units returns the threshold in display units.
func (t Threshold) Units() decimal.Decimal {
	if !t.units.IsPositive() {
		return decimal.NewFromInt(DefaultDustThreshold)
	}
	return t.units
}

// Raw scales the threshold to raw units of a token with the given
// decimals, rounding up so that a fractional cut-off still excludes the
// boundary amount.
func (t Threshold) Raw(decimals uint8) *big.Int {
	return t.Units().Shift(int32(decimals)).Ceil().BigInt()
}

// Result is the classification of one holding.
type Result struct {
	Empty bool
	Dust  bool
	Risky bool
}

// Buckets lists the buckets set in r.
func (r Result) Buckets() []Bucket {
	var out []Bucket
	if r.Empty {
		out = append(out, Empty)
	}
	if r.Dust {
		out = append(out, Dust)
	}
	if r.Risky {
		out = append(out, Risky)
	}
	return out
}

// Classify places h in its buckets. The dust comparison is done in raw
// integer units: raw < threshold * 10^decimals. approved marks a token
// with an active ERC-20 approval, which makes it risky like a delegate.
func Classify(h holding.TokenHolding, threshold Threshold, approved bool) Result {
	var r Result
	switch {
	case h.IsZero():
		r.Empty = true
	case h.IsNative():
	case h.RawValue.Cmp(threshold.Raw(h.Decimals)) < 0:
		r.Dust = true
	}
	r.Risky = h.HasDelegate() || approved
	return r
}

// Set groups holdings by bucket. A holding appears in every bucket it
// belongs to.
type Set struct {
	Empty []holding.TokenHolding `json:"empty"`
	Dust  []holding.TokenHolding `json:"dust"`
	Risky []holding.TokenHolding `json:"risky"`
}

// Split classifies every holding. grants are matched by token address;
// only active grants count.
func Split(holdings []holding.TokenHolding, threshold Threshold, grants []holding.ApprovalGrant) Set {
	approved := make(map[string]struct{}, len(grants))
	for _, g := range grants {
		if g.Active() {
			approved[holding.Key(g.Chain, g.Token)] = struct{}{}
		}
	}

	var s Set
	for _, h := range holdings {
		_, ok := approved[h.Key()]
		r := Classify(h, threshold, ok)
		if r.Empty {
			s.Empty = append(s.Empty, h)
		}
		if r.Dust {
			s.Dust = append(s.Dust, h)
		}
		if r.Risky {
			s.Risky = append(s.Risky, h)
		}
	}
	return s
}
