package evm

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/mrz1836/janitor/internal/chain"
	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

// KeyWallet signs locally with a private key from the keystore.
type KeyWallet struct {
	key     *ecdsa.PrivateKey
	addr    common.Address
	client  *Client
	confirm chain.ConfirmFunc
}

// NewKeyWallet creates a wallet for a 32-byte secp256k1 private key. Each
// transaction is shown to confirm before it is signed.
func NewKeyWallet(privateKey []byte, client *Client, confirm chain.ConfirmFunc) (*KeyWallet, error) {
	key, err := crypto.ToECDSA(privateKey)
	if err != nil {
		return nil, janitorerr.Wrap(janitorerr.ErrInvalidKey, "%v", err)
	}
	if confirm == nil {
		confirm = chain.AutoApprove
	}
	return &KeyWallet{
		key:     key,
		addr:    crypto.PubkeyToAddress(key.PublicKey),
		client:  client,
		confirm: confirm,
	}, nil
}

// Address returns the signing account.
func (w *KeyWallet) Address() common.Address {
	return w.addr
}

// SendTransaction estimates, signs and submits one EIP-1559 transaction.
func (w *KeyWallet) SendTransaction(ctx context.Context, call Call) (common.Hash, error) {
	estimate, err := w.client.EstimateGas(ctx, w.addr, call)
	if err != nil {
		return common.Hash{}, janitorerr.Wrap(janitorerr.ErrTxRejected, "gas estimation failed: %v", err)
	}
	gasLimit := BufferGas(estimate)

	fees, err := w.client.SuggestFees(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	ok, err := w.confirm(ctx, describeCall(call, gasLimit, fees))
	if err != nil {
		return common.Hash{}, err
	}
	if !ok {
		return common.Hash{}, janitorerr.ErrUserRejected
	}

	nonce, err := w.client.PendingNonceAt(ctx, w.addr)
	if err != nil {
		return common.Hash{}, fmt.Errorf("getting nonce: %w", err)
	}

	value := call.Value
	if value == nil {
		value = new(big.Int)
	}
	to := call.To
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   w.client.ChainID(),
		Nonce:     nonce,
		GasTipCap: fees.TipCap,
		GasFeeCap: fees.FeeCap,
		Gas:       gasLimit,
		To:        &to,
		Value:     value,
		Data:      call.Data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(w.client.ChainID()), w.key)
	if err != nil {
		w.client.ResetNonce(w.addr)
		return common.Hash{}, janitorerr.Wrap(janitorerr.ErrInvalidTransaction, "signing: %v", err)
	}

	hash, err := w.client.SendRawTransaction(ctx, signed)
	if err != nil {
		w.client.ResetNonce(w.addr)
		return common.Hash{}, janitorerr.Wrap(janitorerr.ErrTxRejected, "%v", err)
	}
	return hash, nil
}

// SendCalls is not available for local keys; batches fall back to one
// transaction per call.
func (w *KeyWallet) SendCalls(context.Context, []Call) (string, error) {
	return "", janitorerr.ErrBatchUnsupported
}

func describeCall(call Call, gasLimit uint64, fees *Fees) string {
	action := "call"
	switch {
	case HasSelector(call.Data, SigTransfer):
		action = "transfer"
	case HasSelector(call.Data, SigApprove):
		action = "approve"
	case HasSelector(call.Data, SigBurn):
		action = "burn"
	}
	return fmt.Sprintf("%s on %s (gas limit %d, max fee %s)",
		action, call.To.Hex(), gasLimit, FormatGwei(fees.FeeCap))
}
