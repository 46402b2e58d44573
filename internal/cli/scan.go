package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/service/report"
	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	scanChain      string
	scanAddress    string
	scanImports    []string
	scanShowHidden bool
)

// scanCmd scans a wallet and classifies its holdings.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a wallet for empty, dust and risky holdings",
	Long: `Scan lists every token the wallet holds and sorts it into buckets.

Empty holdings have a zero balance. Dust holdings are below the configured
dust threshold. Risky holdings have a live approval or delegate. Hidden
tokens are left out unless --show-hidden is set.

On Base, --import adds a token the indexer does not know about; it is read
on-chain and kept for the rest of the session.`,
	Example: `  janitor scan --chain base --address 0xabc...
  janitor scan --chain solana --address 7xKX... --show-hidden
  janitor scan --chain base --address 0xabc... --import 0xdef... -o json`,
	RunE: runScan,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.GroupID = "inspect"

	scanCmd.Flags().StringVarP(&scanChain, "chain", "c", "", "chain to scan: base or solana (required)")
	scanCmd.Flags().StringVarP(&scanAddress, "address", "a", "", "wallet address (required)")
	scanCmd.Flags().StringSliceVar(&scanImports, "import", nil, "Base token contract to import (repeatable)")
	scanCmd.Flags().BoolVar(&scanShowHidden, "show-hidden", false, "include hidden tokens")
	_ = scanCmd.MarkFlagRequired("chain")
	_ = scanCmd.MarkFlagRequired("address")
}

func runScan(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	chainID, err := chain.ParseChainID(scanChain)
	if err != nil {
		return err
	}
	if err = validateOwner(chainID, scanAddress); err != nil {
		return err
	}
	if len(scanImports) > 0 && chainID != chain.Base {
		return janitorerr.WithSuggestion(janitorerr.ErrNotSupported, "token import is only available on Base")
	}

	ctx, cancel := contextWithTimeout(cmd, scanTimeout)
	defer cancel()

	if len(scanImports) > 0 {
		res, scanErr := scanOwner(ctx, cc, chainID, scanAddress)
		if scanErr != nil {
			return scanErr
		}
		importer, impErr := cc.Factory.Importer()
		if impErr != nil {
			return impErr
		}
		existing := res.Holdings
		for _, token := range scanImports {
			h, impErr := importer.Import(ctx, scanAddress, token, existing)
			if impErr != nil {
				return impErr
			}
			existing = append(existing, h)
			cc.Log.Debug("cli: imported %s (%s)", h.Symbol, h.Address)
		}
	}

	rep, err := buildReport(ctx, cc, chainID, scanAddress, report.Options{
		ShowHidden: scanShowHidden,
		Approvals:  true,
	})
	if err != nil {
		return err
	}

	return cc.Fmt.Render(rep, func(w io.Writer) error {
		return displayReportText(w, rep)
	})
}

// displayReportText renders a report as tables.
func displayReportText(w io.Writer, rep *report.Report) error {
	out(w, "%s wallet %s\n", rep.Chain, rep.Owner)
	out(w, "Scanned %s, dust below %s\n\n", rep.ScannedAt.Format("2006-01-02 15:04:05 MST"), rep.Threshold)

	outln(w, "Holdings:")
	if err := renderHoldings(w, rep.Holdings); err != nil {
		return err
	}
	outln(w)

	sections := []struct {
		title string
		count int
	}{
		{"Empty", len(rep.Buckets.Empty)},
		{"Dust", len(rep.Buckets.Dust)},
		{"Risky", len(rep.Buckets.Risky)},
	}
	for _, s := range sections {
		out(w, "%-6s %d\n", s.title+":", s.count)
	}
	if rep.Hidden > 0 {
		out(w, "Hidden: %d\n", rep.Hidden)
	}

	if len(rep.Approvals) > 0 {
		outln(w)
		outln(w, "Approvals:")
		return renderApprovals(w, rep.Approvals)
	}
	return nil
}
