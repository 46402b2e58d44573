package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/config"
	"github.com/mrz1836/janitor/internal/holding"
	"github.com/mrz1836/janitor/internal/output"
	"github.com/mrz1836/janitor/internal/service/executor"
	"github.com/mrz1836/janitor/internal/service/report"
	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	burnTokens []string
	burnDust   bool

	sweepTokens []string
	sweepDust   bool
)

// burnCmd burns Base tokens.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var burnCmd = &cobra.Command{
	Use:   "burn",
	Short: "Burn unwanted Base tokens",
	Long: `Send the full balance of each selected token to the burn address.

When the wallet supports batched calls all tokens go out in one signature.
Otherwise each token is sent on its own; a token whose transfer reverts is
retried with burn(amount). Declining any signature stops the run.`,
	Example: `  janitor burn --tokens 0xabc...,0xdef...
  janitor burn --dust --yes`,
	RunE: runBurn,
}

// sweepCmd swaps Base dust into the configured buy token.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Swap Base dust into the configured buy token through 0x",
	Long: `Sell the full balance of each selected token through a 0x swap quote.

Tokens without a route are skipped. A failed submission is reported and the
sweep moves on; declining a signature stops it.`,
	Example: `  janitor sweep --tokens 0xabc...
  janitor sweep --dust`,
	RunE: runSweep,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(burnCmd)
	burnCmd.GroupID = "cleanup"
	rootCmd.AddCommand(sweepCmd)
	sweepCmd.GroupID = "cleanup"

	burnCmd.Flags().StringSliceVar(&burnTokens, "tokens", nil, "token contracts to burn, comma separated")
	burnCmd.Flags().BoolVar(&burnDust, "dust", false, "burn every dust token")
	burnCmd.MarkFlagsMutuallyExclusive("tokens", "dust")
	burnCmd.MarkFlagsOneRequired("tokens", "dust")

	sweepCmd.Flags().StringSliceVar(&sweepTokens, "tokens", nil, "token contracts to swap, comma separated")
	sweepCmd.Flags().BoolVar(&sweepDust, "dust", false, "swap every dust token")
	sweepCmd.MarkFlagsMutuallyExclusive("tokens", "dust")
	sweepCmd.MarkFlagsOneRequired("tokens", "dust")
}

// baseTargets scans owner and picks the tokens to act on: the listed
// contracts, or the visible dust bucket.
func baseTargets(ctx context.Context, cc *CommandContext, owner string, tokens []string, dust bool) ([]holding.TokenHolding, error) {
	if dust {
		rep, err := buildReport(ctx, cc, chain.Base, owner, report.Options{})
		if err != nil {
			return nil, err
		}
		return rep.Buckets.Dust, nil
	}
	res, err := scanOwner(ctx, cc, chain.Base, owner)
	if err != nil {
		return nil, err
	}
	return selectTokens(res.Holdings, chain.Base, tokens)
}

func runBurn(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	ctx, cancel := contextWithTimeout(cmd, actionTimeout)
	defer cancel()

	exec, owner, err := newEVMExecutor(ctx, cc)
	if err != nil {
		return err
	}
	targets, err := baseTargets(ctx, cc, owner, burnTokens, burnDust)
	if err != nil {
		return err
	}

	rep, runErr := exec.BurnMany(ctx, targets)
	if rep != nil {
		if err := cc.Fmt.Render(rep, func(w io.Writer) error { return displayBurnText(w, rep) }); err != nil {
			return err
		}
	}
	return runErr
}

func displayBurnText(w io.Writer, rep *executor.BurnReport) error {
	if rep.Empty() {
		output.Infof(w, "Nothing to burn")
		return nil
	}
	if rep.BatchID != "" {
		out(w, "Batch: %s\n", rep.BatchID)
	}
	for _, b := range rep.Burned {
		output.Successf(w, "%s burned via %s %s", b.Symbol, b.Method, b.Hash)
	}
	for _, f := range rep.Failed {
		output.Warnf(w, "%s not burned: %s", f.Symbol, f.Reason)
	}
	if rep.Aborted {
		output.Warnf(w, "stopped: a signature was declined")
	}
	return nil
}

func runSweep(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	if cc.Cfg.Swap.APIKey == "" {
		return janitorerr.WithSuggestion(janitorerr.ErrAPIKeyRequired,
			"set swap.api_key or "+config.EnvZeroExAPIKey)
	}

	ctx, cancel := contextWithTimeout(cmd, actionTimeout)
	defer cancel()

	exec, owner, err := newEVMExecutor(ctx, cc)
	if err != nil {
		return err
	}
	targets, err := baseTargets(ctx, cc, owner, sweepTokens, sweepDust)
	if err != nil {
		return err
	}

	rep, runErr := exec.SweepViaSwap(ctx, targets)
	if rep != nil {
		if err := cc.Fmt.Render(rep, func(w io.Writer) error { return displaySweepText(w, rep) }); err != nil {
			return err
		}
	}
	return runErr
}

func displaySweepText(w io.Writer, rep *executor.SweepReport) error {
	if rep.Empty() {
		output.Infof(w, "Nothing to sweep")
		return nil
	}
	for _, s := range rep.Swept {
		output.Successf(w, "%s swapped %s", s.Symbol, s.Hash)
	}
	for _, s := range rep.Skipped {
		output.Infof(w, "%s skipped: %s", s.Symbol, s.Reason)
	}
	for _, f := range rep.Failed {
		output.Warnf(w, "%s failed: %s", f.Symbol, f.Reason)
	}
	if rep.Aborted {
		output.Warnf(w, "stopped: a signature was declined")
	}
	return nil
}
