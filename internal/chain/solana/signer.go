package solana

import (
	"context"
	"crypto/ed25519"

	"github.com/mrz1836/janitor/internal/chain"
	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

// Sender submits a set of instructions as one signed transaction.
type Sender interface {
	Address() PublicKey
	Send(ctx context.Context, summary string, instructions []Instruction) (string, error)
}

// KeySigner signs with a local ed25519 key. Each Send is one prompt.
type KeySigner struct {
	key     ed25519.PrivateKey
	addr    PublicKey
	client  *Client
	confirm chain.ConfirmFunc
}

// NewKeySigner creates a signer for key submitting through client.
func NewKeySigner(key ed25519.PrivateKey, client *Client, confirm chain.ConfirmFunc) *KeySigner {
	if confirm == nil {
		confirm = chain.AutoApprove
	}
	return &KeySigner{key: key, addr: PublicKeyOf(key), client: client, confirm: confirm}
}

// Address returns the fee payer and token owner.
func (s *KeySigner) Address() PublicKey {
	return s.addr
}

// Send confirms, signs and submits instructions in a single transaction.
func (s *KeySigner) Send(ctx context.Context, summary string, instructions []Instruction) (string, error) {
	ok, err := s.confirm(ctx, summary)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", janitorerr.ErrUserRejected
	}

	blockhash, err := s.client.LatestBlockhash(ctx)
	if err != nil {
		return "", err
	}
	msg, err := NewMessage(s.addr, blockhash, instructions)
	if err != nil {
		return "", janitorerr.Wrap(janitorerr.ErrInvalidTransaction, "%v", err)
	}
	tx, err := SignTransaction(msg, s.key)
	if err != nil {
		return "", janitorerr.Wrap(janitorerr.ErrInvalidTransaction, "%v", err)
	}
	return s.client.SendTransaction(ctx, tx)
}
