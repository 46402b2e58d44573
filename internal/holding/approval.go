package holding

import (
	"encoding/json"
	"math/big"

	"github.com/mrz1836/janitor/internal/chain"
)

// UnknownSymbol labels tokens without a resolvable symbol.
const UnknownSymbol = "UNK"

// ApprovalGrant is a spending permission held by a third party. On Solana
// the spender is the token account's delegate and Account is set.
type ApprovalGrant struct {
	Chain     chain.ID `json:"chain"`
	Token     string   `json:"token"`
	Spender   string   `json:"spender"`
	Allowance *big.Int `json:"-"`
	Symbol    string   `json:"symbol"`
	Account   string   `json:"account,omitempty"`
}

// Active reports whether the grant still lets the spender move tokens.
func (g ApprovalGrant) Active() bool {
	return g.Allowance != nil && g.Allowance.Sign() > 0
}

// MarshalJSON renders the allowance as a decimal string.
func (g ApprovalGrant) MarshalJSON() ([]byte, error) {
	type plain ApprovalGrant
	allowance := "0"
	if g.Allowance != nil {
		allowance = g.Allowance.String()
	}
	return json.Marshal(struct {
		plain
		Allowance string `json:"allowance"`
	}{plain(g), allowance})
}
