package keystore

import (
	"crypto/ed25519"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/chain/solana"
	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

// Key sources recorded in Entry.Source.
const (
	SourceMnemonic   = "mnemonic"
	SourcePrivateKey = "private_key"
)

// Imported is a parsed secret ready to Save. Zero Key after saving.
type Imported struct {
	Entry Entry
	Key   []byte
}

// ParseSecret accepts a BIP39 mnemonic or a chain-native private key
// export. Base keys are 32-byte hex; Solana keys are base58 or a JSON byte
// array. Solana keys are stored as the 64-byte keypair.
func ParseSecret(chainID chain.ID, secret, passphrase string) (*Imported, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, janitorerr.Wrap(janitorerr.ErrInvalidKey, "empty secret")
	}

	fromMnemonic := LooksLikeMnemonic(secret)
	var (
		key     []byte
		address string
		err     error
	)
	switch chainID {
	case chain.Base:
		key, address, err = parseEVMSecret(secret, passphrase, fromMnemonic)
	case chain.Solana:
		key, address, err = parseSolanaSecret(secret, passphrase, fromMnemonic)
	default:
		return nil, chain.ErrUnsupportedChain
	}
	if err != nil {
		return nil, err
	}

	source := SourcePrivateKey
	if fromMnemonic {
		source = SourceMnemonic
	}
	return &Imported{
		Entry: Entry{Chain: chainID, Address: address, Source: source},
		Key:   key,
	}, nil
}

func parseEVMSecret(secret, passphrase string, fromMnemonic bool) ([]byte, string, error) {
	var raw []byte
	if fromMnemonic {
		seed, err := MnemonicToSeed(secret, passphrase)
		if err != nil {
			return nil, "", err
		}
		defer Zero(seed)
		if raw, err = DeriveEVMKey(seed); err != nil {
			return nil, "", err
		}
	} else {
		priv, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimPrefix(secret, "0x"), "0X"))
		if err != nil {
			return nil, "", janitorerr.Wrap(janitorerr.ErrInvalidKey, "hex private key: %v", err)
		}
		raw = crypto.FromECDSA(priv)
	}

	priv, err := crypto.ToECDSA(raw)
	if err != nil {
		Zero(raw)
		return nil, "", janitorerr.Wrap(janitorerr.ErrInvalidKey, "%v", err)
	}
	return raw, crypto.PubkeyToAddress(priv.PublicKey).Hex(), nil
}

func parseSolanaSecret(secret, passphrase string, fromMnemonic bool) ([]byte, string, error) {
	var key ed25519.PrivateKey
	if fromMnemonic {
		seed, err := MnemonicToSeed(secret, passphrase)
		if err != nil {
			return nil, "", err
		}
		defer Zero(seed)
		derived, err := DeriveSolanaKey(seed)
		if err != nil {
			return nil, "", err
		}
		key = ed25519.NewKeyFromSeed(derived)
		Zero(derived)
	} else {
		var err error
		if key, err = solana.ParsePrivateKey(secret); err != nil {
			return nil, "", err
		}
	}
	return key, solana.PublicKeyOf(key).String(), nil
}
