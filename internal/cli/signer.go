package cli

import (
	"context"
	"crypto/ed25519"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/chain/evm"
	"github.com/mrz1836/janitor/internal/chain/solana"
	"github.com/mrz1836/janitor/internal/keystore"
	"github.com/mrz1836/janitor/internal/service/executor"
	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

// unlockKey decrypts the keystore key of chainID after prompting for its
// password. Destroy the returned bytes when done.
func unlockKey(store *keystore.Store, chainID chain.ID) (*keystore.Entry, *keystore.SecureBytes, error) {
	entry, err := store.Entry(chainID)
	if err != nil {
		return nil, nil, janitorerr.WithSuggestion(err,
			"import a signer first: janitor key import --chain "+chainID.String())
	}

	password, err := promptPasswordFn("Keystore password for " + entry.Address + ": ")
	if err != nil {
		return nil, nil, err
	}
	defer keystore.Zero(password)

	return store.Load(chainID, string(password))
}

// baseWallet returns the Base signer: the external wallet when
// networks.base.wallet_url is set, the keystore key otherwise.
func baseWallet(ctx context.Context, cc *CommandContext) (evm.Wallet, error) {
	if url := cc.Cfg.GetWalletURL(); url != "" {
		cc.Log.Debug("cli: using external wallet at %s", url)
		return evm.NewProviderWallet(ctx, url, cc.Cfg.GetBaseChainID())
	}

	client, err := cc.Factory.BaseClient()
	if err != nil {
		return nil, err
	}
	_, key, err := unlockKey(cc.Factory.Keystore(), chain.Base)
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	return evm.NewKeyWallet(key.Bytes(), client, signatureConfirm())
}

// solanaSigner returns the Solana keystore signer.
func solanaSigner(cc *CommandContext) (*solana.KeySigner, error) {
	client, err := cc.Factory.SolanaClient()
	if err != nil {
		return nil, err
	}
	_, key, err := unlockKey(cc.Factory.Keystore(), chain.Solana)
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	// The signer keeps the key for the life of the command.
	priv := make(ed25519.PrivateKey, len(key.Bytes()))
	copy(priv, key.Bytes())
	return solana.NewKeySigner(priv, client, signatureConfirm()), nil
}

// newEVMExecutor builds the Base executor with the swap quoter attached
// and returns it with the signing address.
func newEVMExecutor(ctx context.Context, cc *CommandContext) (*executor.EVMExecutor, string, error) {
	wallet, err := baseWallet(ctx, cc)
	if err != nil {
		return nil, "", err
	}
	exec, err := executor.NewEVMExecutor(executor.EVMConfig{
		Wallet:      wallet,
		Quoter:      cc.Factory.Quoter(),
		BurnAddress: cc.Cfg.Networks.Base.BurnAddress,
		Logger:      cc.Log,
	})
	if err != nil {
		return nil, "", err
	}
	return exec, wallet.Address().Hex(), nil
}

// newSolanaExecutor builds the Solana executor and returns it with the
// signing address. owner, when set, must be that address.
func newSolanaExecutor(cc *CommandContext, owner string, maxReclaim int) (*executor.SolanaExecutor, string, error) {
	signer, err := solanaSigner(cc)
	if err != nil {
		return nil, "", err
	}
	addr := signer.Address().String()
	if owner != "" && owner != addr {
		return nil, "", janitorerr.WithSuggestion(
			janitorerr.WithDetails(janitorerr.ErrInvalidInput, map[string]string{"address": owner, "signer": addr}),
			"the keystore signer must own the accounts being changed",
		)
	}
	exec, err := executor.NewSolanaExecutor(signer, cc.Log, executor.SolanaOptions{MaxReclaim: maxReclaim})
	if err != nil {
		return nil, "", err
	}
	return exec, addr, nil
}
