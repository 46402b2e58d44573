package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/holding"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	approvalsChain   string
	approvalsAddress string
)

// approvalsCmd lists third-party spending permissions.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var approvalsCmd = &cobra.Command{
	Use:   "approvals",
	Short: "List active token approvals and delegates",
	Long: `List the third parties that can move tokens out of the wallet.

On Base these are ERC-20 allowances. Every candidate reported by the
indexer is re-read on-chain and only non-zero allowances are shown. On
Solana these are token account delegates.`,
	Example: `  janitor approvals --chain base --address 0xabc...
  janitor approvals --chain solana --address 7xKX... -o json`,
	RunE: runApprovals,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(approvalsCmd)
	approvalsCmd.GroupID = "inspect"

	approvalsCmd.Flags().StringVarP(&approvalsChain, "chain", "c", "", "chain: base or solana (required)")
	approvalsCmd.Flags().StringVarP(&approvalsAddress, "address", "a", "", "wallet address (required)")
	_ = approvalsCmd.MarkFlagRequired("chain")
	_ = approvalsCmd.MarkFlagRequired("address")
}

func runApprovals(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	chainID, err := chain.ParseChainID(approvalsChain)
	if err != nil {
		return err
	}
	if err = validateOwner(chainID, approvalsAddress); err != nil {
		return err
	}

	ctx, cancel := contextWithTimeout(cmd, scanTimeout)
	defer cancel()

	res, err := scanOwner(ctx, cc, chainID, approvalsAddress)
	if err != nil {
		return err
	}
	svc, err := cc.Factory.ApprovalService()
	if err != nil {
		return err
	}
	grants, err := svc.Approvals(ctx, chainID, approvalsAddress, res.Holdings)
	if err != nil {
		return err
	}
	if grants == nil {
		grants = []holding.ApprovalGrant{}
	}

	return cc.Fmt.Render(grants, func(w io.Writer) error {
		out(w, "Approvals of %s on %s:\n", approvalsAddress, chainID)
		return renderApprovals(w, grants)
	})
}
