package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/chain/evm"
	"github.com/mrz1836/janitor/internal/chain/solana"
	"github.com/mrz1836/janitor/internal/holding"
	"github.com/mrz1836/janitor/internal/output"
	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	revokeChain   string
	revokeAccount string
	revokeToken   string
	revokeSpender string
)

// revokeCmd removes a spending permission.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var revokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Revoke a token approval or delegate",
	Long: `Remove a third party's permission to move tokens.

On Base this sets the ERC-20 allowance of --spender on --token to zero. On
Solana this clears the delegate of the token account --account. Revoking a
permission that is already gone succeeds and changes nothing.`,
	Example: `  janitor revoke --chain base --token 0xabc... --spender 0xdef...
  janitor revoke --chain solana --account 9yQp...`,
	RunE: runRevoke,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(revokeCmd)
	revokeCmd.GroupID = "cleanup"

	revokeCmd.Flags().StringVarP(&revokeChain, "chain", "c", "", "chain: base or solana (required)")
	revokeCmd.Flags().StringVar(&revokeAccount, "account", "", "Solana token account")
	revokeCmd.Flags().StringVar(&revokeToken, "token", "", "Base token contract")
	revokeCmd.Flags().StringVar(&revokeSpender, "spender", "", "Base spender to revoke")
	_ = revokeCmd.MarkFlagRequired("chain")
	revokeCmd.MarkFlagsRequiredTogether("token", "spender")
	revokeCmd.MarkFlagsMutuallyExclusive("account", "token")
}

func runRevoke(cmd *cobra.Command, _ []string) error {
	chainID, err := chain.ParseChainID(revokeChain)
	if err != nil {
		return err
	}
	switch chainID {
	case chain.Solana:
		return revokeSolana(cmd)
	case chain.Base:
		return revokeBase(cmd)
	default:
		return chain.ErrUnsupportedChain
	}
}

func revokeSolana(cmd *cobra.Command) error {
	cc := GetCmdContext(cmd)
	if !solana.IsValidAddress(revokeAccount) {
		return janitorerr.WithSuggestion(
			janitorerr.WithDetails(janitorerr.ErrInvalidAddress, map[string]string{"account": revokeAccount}),
			"pass the delegated token account with --account",
		)
	}

	ctx, cancel := contextWithTimeout(cmd, actionTimeout)
	defer cancel()

	exec, _, err := newSolanaExecutor(cc, "", 0)
	if err != nil {
		return err
	}
	result, err := exec.Revoke(ctx, revokeAccount)
	if err != nil {
		return err
	}
	return cc.Fmt.Render(result, func(w io.Writer) error {
		output.Successf(w, "Delegate cleared on %s", shortAddress(revokeAccount))
		out(w, "Transaction: %s\n", result.Hash)
		return nil
	})
}

func revokeBase(cmd *cobra.Command) error {
	cc := GetCmdContext(cmd)
	for _, f := range [][2]string{{"token", revokeToken}, {"spender", revokeSpender}} {
		if !evm.IsValidAddress(f[1]) {
			return janitorerr.WithSuggestion(
				janitorerr.WithDetails(janitorerr.ErrInvalidAddress, map[string]string{f[0]: f[1]}),
				"pass both --token and --spender as 0x addresses",
			)
		}
	}

	ctx, cancel := contextWithTimeout(cmd, actionTimeout)
	defer cancel()

	exec, _, err := newEVMExecutor(ctx, cc)
	if err != nil {
		return err
	}
	result, err := exec.RevokeApproval(ctx, holding.ApprovalGrant{
		Chain:   chain.Base,
		Token:   revokeToken,
		Spender: revokeSpender,
	})
	if err != nil {
		return err
	}
	return cc.Fmt.Render(result, func(w io.Writer) error {
		output.Successf(w, "Allowance of %s on %s set to zero", shortAddress(revokeSpender), shortAddress(revokeToken))
		out(w, "Transaction: %s\n", result.Hash)
		return nil
	})
}
