package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/hidden"
	"github.com/mrz1836/janitor/internal/output"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var hiddenChain string

// hideCmd adds a token to the hidden set.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var hideCmd = &cobra.Command{
	Use:   "hide <token>",
	Short: "Hide a token from scan results",
	Long: `Hide a token so scans and bulk actions such as burn --dust ignore it.

The hidden list is kept per chain in the janitor home directory.`,
	Example: `  janitor hide 0xabc... --chain base
  janitor hide EPjF... --chain solana`,
	Args: cobra.ExactArgs(1),
	RunE: runHide,
}

// unhideCmd removes a token from the hidden set.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var unhideCmd = &cobra.Command{
	Use:     "unhide <token>",
	Short:   "Show a hidden token again",
	Long:    `Remove a token from the hidden list of a chain.`,
	Example: `  janitor unhide 0xabc... --chain base`,
	Args:    cobra.ExactArgs(1),
	RunE:    runUnhide,
}

// hiddenCmd lists the hidden set.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var hiddenCmd = &cobra.Command{
	Use:     "hidden",
	Short:   "List hidden tokens",
	Long:    `List the tokens hidden on a chain.`,
	Example: `  janitor hidden --chain base -o json`,
	RunE:    runHidden,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	for _, c := range []*cobra.Command{hideCmd, unhideCmd, hiddenCmd} {
		rootCmd.AddCommand(c)
		c.GroupID = "inspect"
		c.Flags().StringVarP(&hiddenChain, "chain", "c", chain.Base.String(), "chain: base or solana")
	}
}

func runHide(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	chainID, err := chain.ParseChainID(hiddenChain)
	if err != nil {
		return err
	}
	token := args[0]
	if err = validateOwner(chainID, token); err != nil {
		return err
	}

	if err = hidden.Hide(cc.Factory.HiddenStore(chainID), chainID, token); err != nil {
		return err
	}
	cc.Log.Debug("cli: hid %s on %s", token, chainID)
	output.Successf(cmd.OutOrStdout(), "Hidden %s on %s", token, chainID)
	return nil
}

func runUnhide(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	chainID, err := chain.ParseChainID(hiddenChain)
	if err != nil {
		return err
	}

	removed, err := hidden.Unhide(cc.Factory.HiddenStore(chainID), chainID, args[0])
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if !removed {
		output.Infof(w, "%s was not hidden on %s", args[0], chainID)
		return nil
	}
	output.Successf(w, "%s is visible again on %s", args[0], chainID)
	return nil
}

func runHidden(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	chainID, err := chain.ParseChainID(hiddenChain)
	if err != nil {
		return err
	}

	set, reset, err := hidden.Load(cc.Factory.HiddenStore(chainID))
	if err != nil {
		return err
	}
	if reset {
		output.Warnf(cmd.ErrOrStderr(), "hidden token file for %s is unreadable and is treated as empty", chainID)
	}
	tokens := set.Slice()

	return cc.Fmt.Render(tokens, func(w io.Writer) error {
		if len(tokens) == 0 {
			out(w, "No hidden tokens on %s\n", chainID)
			return nil
		}
		for _, t := range tokens {
			outln(w, t)
		}
		return nil
	})
}
