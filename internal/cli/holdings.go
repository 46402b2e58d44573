package cli

import (
	"context"
	"io"
	"math/big"
	"strings"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/chain/evm"
	"github.com/mrz1836/janitor/internal/chain/solana"
	"github.com/mrz1836/janitor/internal/holding"
	"github.com/mrz1836/janitor/internal/output"
	"github.com/mrz1836/janitor/internal/service/report"
	"github.com/mrz1836/janitor/internal/service/scan"
	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

// unlimitedAllowance is the smallest allowance shown as "unlimited".
//
//nolint:gochecknoglobals // constant big.Int
var unlimitedAllowance = new(big.Int).Lsh(big.NewInt(1), 255)

// validateOwner rejects addresses that are not valid on chainID before any
// network call is made.
func validateOwner(chainID chain.ID, address string) error {
	ok := false
	switch chainID {
	case chain.Base:
		ok = evm.IsValidAddress(address)
	case chain.Solana:
		ok = solana.IsValidAddress(address)
	default:
		return chain.ErrUnsupportedChain
	}
	if !ok {
		return janitorerr.WithDetails(janitorerr.ErrInvalidAddress, map[string]string{
			"chain":   chainID.String(),
			"address": address,
		})
	}
	return nil
}

// scanOwner runs a fresh scan of owner.
func scanOwner(ctx context.Context, cc *CommandContext, chainID chain.ID, owner string) (*scan.Result, error) {
	svc, err := cc.Factory.ScanService()
	if err != nil {
		return nil, err
	}
	return svc.Scan(ctx, chainID, owner)
}

// buildReport scans owner and classifies the result.
func buildReport(ctx context.Context, cc *CommandContext, chainID chain.ID, owner string, opts report.Options) (*report.Report, error) {
	res, err := scanOwner(ctx, cc, chainID, owner)
	if err != nil {
		return nil, err
	}
	builder, err := cc.Factory.Reporter()
	if err != nil {
		return nil, err
	}
	return builder.Build(ctx, res, opts)
}

// selectTokens resolves a comma-separated token list against holdings.
func selectTokens(holdings []holding.TokenHolding, chainID chain.ID, tokens []string) ([]holding.TokenHolding, error) {
	selected := make([]holding.TokenHolding, 0, len(tokens))
	var missing []string
	for _, t := range tokens {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		h, ok := holding.Find(holdings, chainID, t)
		if !ok {
			missing = append(missing, t)
			continue
		}
		selected = append(selected, h)
	}
	if len(missing) > 0 {
		return nil, janitorerr.WithSuggestion(
			janitorerr.WithDetails(janitorerr.ErrTokenNotFound, map[string]string{"tokens": strings.Join(missing, ",")}),
			"run janitor scan to list the tokens this wallet holds",
		)
	}
	return selected, nil
}

// renderHoldings writes a holdings table.
func renderHoldings(w io.Writer, holdings []holding.TokenHolding) error {
	if len(holdings) == 0 {
		outln(w, "  (none)")
		return nil
	}
	t := output.NewTable("SYMBOL", "BALANCE", "USD", "TOKEN", "SOURCE", "FLAGS").AlignRight(1, 2)
	for _, h := range holdings {
		usd := "-"
		if h.USDValue.Valid {
			usd = h.USDValue.Decimal.StringFixed(2)
		}
		t.AddRow(h.Symbol, h.DisplayValue, usd, shortAddress(h.Address), string(h.Source), holdingFlags(h))
	}
	return t.Render(w)
}

func holdingFlags(h holding.TokenHolding) string {
	var flags []string
	if h.Priority {
		flags = append(flags, "priority")
	}
	if h.Frozen {
		flags = append(flags, "frozen")
	}
	if h.HasDelegate() {
		flags = append(flags, "delegated")
	}
	return strings.Join(flags, ",")
}

// renderApprovals writes an approvals table.
func renderApprovals(w io.Writer, grants []holding.ApprovalGrant) error {
	if len(grants) == 0 {
		outln(w, "  (none)")
		return nil
	}
	t := output.NewTable("SYMBOL", "TOKEN", "SPENDER", "ALLOWANCE", "ACCOUNT").AlignRight(3)
	for _, g := range grants {
		t.AddRow(g.Symbol, shortAddress(g.Token), g.Spender, formatAllowance(g.Allowance), shortAddress(g.Account))
	}
	return t.Render(w)
}

// formatAllowance renders a raw allowance, collapsing max-style approvals.
func formatAllowance(v *big.Int) string {
	if v == nil {
		return "0"
	}
	if v.Cmp(unlimitedAllowance) >= 0 {
		return "unlimited"
	}
	return v.String()
}

// shortAddress abbreviates long addresses for tables.
func shortAddress(s string) string {
	const keep = 6
	if len(s) <= 2*keep+3 {
		return s
	}
	return s[:keep] + "..." + s[len(s)-keep:]
}

func bigUint(v uint64) *big.Int {
	return new(big.Int).SetUint64(v)
}
