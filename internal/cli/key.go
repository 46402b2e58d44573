package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/keystore"
	"github.com/mrz1836/janitor/internal/output"
	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	keyChain      string
	keyPassphrase bool
	keyForce      bool
)

// keyCmd is the parent command for signer keys.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage signer keys",
	Long: `Manage the encrypted signer keys used by reclaim, burn-close, revoke, burn
and sweep. One key is kept per chain, encrypted with a password.`,
}

// keyImportCmd imports a signer key.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var keyImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a recovery phrase or private key",
	Long: `Import the signer of one chain from a BIP39 recovery phrase or a private key.

Base keys derive from m/44'/60'/0'/0/0 or are given as 32-byte hex. Solana
keys derive from m/44'/501'/0'/0' or are given as a base58 keypair or the
JSON byte array written by solana-keygen. The secret is read without echo
and stored encrypted under the janitor home directory.`,
	Example: `  janitor key import --chain base
  janitor key import --chain solana --passphrase`,
	RunE: runKeyImport,
}

// keyListCmd lists signer keys.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var keyListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List imported signer keys",
	Long:    `List the chain, address and origin of every imported key. Keys stay encrypted.`,
	Example: `  janitor key list -o json`,
	RunE:    runKeyList,
}

// keyDeleteCmd removes a signer key.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var keyDeleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Delete the signer key of a chain",
	Long:    `Delete the encrypted signer key of one chain. This cannot be undone.`,
	Example: `  janitor key delete --chain solana`,
	RunE:    runKeyDelete,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(keyCmd)
	keyCmd.GroupID = "config"
	keyCmd.AddCommand(keyImportCmd)
	keyCmd.AddCommand(keyListCmd)
	keyCmd.AddCommand(keyDeleteCmd)

	keyImportCmd.Flags().StringVarP(&keyChain, "chain", "c", "", "chain of the key: base or solana (required)")
	keyImportCmd.Flags().BoolVar(&keyPassphrase, "passphrase", false, "prompt for a BIP39 passphrase")
	keyImportCmd.Flags().BoolVar(&keyForce, "force", false, "replace an existing key")
	_ = keyImportCmd.MarkFlagRequired("chain")

	keyDeleteCmd.Flags().StringVarP(&keyChain, "chain", "c", "", "chain of the key: base or solana (required)")
	_ = keyDeleteCmd.MarkFlagRequired("chain")
}

func runKeyImport(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	chainID, err := chain.ParseChainID(keyChain)
	if err != nil {
		return err
	}

	store := cc.Factory.Keystore()
	exists, err := store.Exists(chainID)
	if err != nil {
		return err
	}
	if exists && !keyForce {
		return janitorerr.WithSuggestion(
			janitorerr.WithDetails(janitorerr.ErrKeyExists, map[string]string{"chain": chainID.String()}),
			"use --force to replace it",
		)
	}

	secret, err := promptSecretFn()
	if err != nil {
		return err
	}

	passphrase := ""
	if keyPassphrase && keystore.LooksLikeMnemonic(secret) {
		if passphrase, err = promptPassphraseFn(); err != nil {
			return err
		}
	}

	imported, err := keystore.ParseSecret(chainID, secret, passphrase)
	if err != nil {
		return err
	}
	defer keystore.Zero(imported.Key)

	password, err := promptNewPasswordFn()
	if err != nil {
		return err
	}
	defer keystore.Zero(password)

	if exists {
		if err = store.Delete(chainID); err != nil {
			return err
		}
	}
	if err = store.Save(imported.Entry, imported.Key, string(password)); err != nil {
		return err
	}
	cc.Log.Debug("cli: imported %s key %s from %s", chainID, imported.Entry.Address, imported.Entry.Source)

	return cc.Fmt.Render(imported.Entry, func(w io.Writer) error {
		output.Successf(w, "Imported %s signer %s", chainID, imported.Entry.Address)
		return nil
	})
}

func runKeyList(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	entries, err := cc.Factory.Keystore().List()
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []keystore.Entry{}
	}

	return cc.Fmt.Render(entries, func(w io.Writer) error {
		if len(entries) == 0 {
			outln(w, "No keys imported. Run: janitor key import --chain <chain>")
			return nil
		}
		t := output.NewTable("CHAIN", "ADDRESS", "SOURCE", "IMPORTED")
		for _, e := range entries {
			t.AddRow(e.Chain.String(), e.Address, e.Source, e.CreatedAt.Format("2006-01-02"))
		}
		return t.Render(w)
	})
}

func runKeyDelete(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	chainID, err := chain.ParseChainID(keyChain)
	if err != nil {
		return err
	}
	store := cc.Factory.Keystore()
	entry, err := store.Entry(chainID)
	if err != nil {
		return err
	}

	if !assumeYes && !promptConfirmFn("Delete the "+chainID.String()+" key for "+entry.Address+"?") {
		output.Infof(cmd.OutOrStdout(), "Nothing deleted")
		return nil
	}
	if err = store.Delete(chainID); err != nil {
		return err
	}
	output.Successf(cmd.OutOrStdout(), "Deleted %s key %s", chainID, entry.Address)
	return nil
}
