package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/chain/solana"
	"github.com/mrz1836/janitor/internal/holding"
	"github.com/mrz1836/janitor/internal/output"
	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	reclaimAddress string
	reclaimMax     int

	burnCloseAccount string
)

// reclaimCmd closes empty Solana token accounts.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var reclaimCmd = &cobra.Command{
	Use:   "reclaim",
	Short: "Close empty Solana token accounts and reclaim their rent",
	Long: `Close empty SPL token accounts owned by the keystore signer and return
their rent deposit to the wallet.

At most 10 accounts are closed per transaction. Run the command again to
close the rest. Frozen accounts cannot be closed and are skipped.`,
	Example: `  janitor reclaim
  janitor reclaim --address 7xKX... --max 5`,
	RunE: runReclaim,
}

// burnCloseCmd burns a Solana token balance and closes its account.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var burnCloseCmd = &cobra.Command{
	Use:   "burn-close",
	Short: "Burn a Solana token balance and close the account",
	Long: `Burn the entire balance of one SPL token account and close it in a single
transaction, returning its rent deposit to the wallet.`,
	Example: `  janitor burn-close --account 9yQp...`,
	RunE:    runBurnClose,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(reclaimCmd)
	reclaimCmd.GroupID = "cleanup"
	rootCmd.AddCommand(burnCloseCmd)
	burnCloseCmd.GroupID = "cleanup"

	reclaimCmd.Flags().StringVarP(&reclaimAddress, "address", "a", "", "wallet address (default: keystore signer)")
	reclaimCmd.Flags().IntVar(&reclaimMax, "max", solana.MaxReclaimAccounts, "accounts to close in one transaction")

	burnCloseCmd.Flags().StringVar(&burnCloseAccount, "account", "", "token account to burn and close (required)")
	_ = burnCloseCmd.MarkFlagRequired("account")
}

func runReclaim(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	if reclaimAddress != "" {
		if err := validateOwner(chain.Solana, reclaimAddress); err != nil {
			return err
		}
	}

	ctx, cancel := contextWithTimeout(cmd, actionTimeout)
	defer cancel()

	exec, owner, err := newSolanaExecutor(cc, reclaimAddress, reclaimMax)
	if err != nil {
		return err
	}
	res, err := scanOwner(ctx, cc, chain.Solana, owner)
	if err != nil {
		return err
	}
	result, err := exec.ReclaimEmpty(ctx, res.Holdings)
	if err != nil {
		return err
	}

	return cc.Fmt.Render(result, func(w io.Writer) error {
		if result.Empty() {
			output.Infof(w, "Nothing to reclaim: no closable empty token accounts")
			return nil
		}
		output.Successf(w, "Closed %d account(s), reclaimed %s SOL",
			len(result.Closed), chain.FormatDecimalAmount(bigUint(result.Lamports), chain.Solana.NativeDecimals()))
		out(w, "Transaction: %s\n", result.Hash)
		if result.Deferred > 0 {
			output.Infof(w, "%d more empty account(s) remain; run reclaim again", result.Deferred)
		}
		return nil
	})
}

func runBurnClose(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	if !solana.IsValidAddress(burnCloseAccount) {
		return janitorerr.WithDetails(janitorerr.ErrInvalidAddress, map[string]string{"account": burnCloseAccount})
	}

	ctx, cancel := contextWithTimeout(cmd, actionTimeout)
	defer cancel()

	exec, owner, err := newSolanaExecutor(cc, "", 0)
	if err != nil {
		return err
	}
	res, err := scanOwner(ctx, cc, chain.Solana, owner)
	if err != nil {
		return err
	}
	h, ok := findAccount(res.Holdings, burnCloseAccount)
	if !ok {
		return janitorerr.WithDetails(janitorerr.ErrNotFound, map[string]string{
			"account": burnCloseAccount,
			"owner":   owner,
		})
	}

	result, err := exec.BurnAndClose(ctx, h)
	if err != nil {
		return err
	}
	return cc.Fmt.Render(result, func(w io.Writer) error {
		output.Successf(w, "Burned %s %s and closed %s", h.DisplayValue, h.Symbol, shortAddress(h.Account))
		out(w, "Transaction: %s\n", result.Hash)
		return nil
	})
}

// findAccount returns the holding stored in token account acct.
func findAccount(holdings []holding.TokenHolding, acct string) (holding.TokenHolding, bool) {
	for _, h := range holdings {
		if h.Account == acct {
			return h, true
		}
	}
	return holding.TokenHolding{}, false
}
