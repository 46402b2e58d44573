package keystore

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"

	"github.com/tyler-smith/go-bip32"

	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

// DeriveEVMKey returns the secp256k1 private key at m/44'/60'/0'/0/0.
func DeriveEVMKey(seed []byte) ([]byte, error) {
	key, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, janitorerr.Wrap(janitorerr.ErrInvalidKey, "master key: %v", err)
	}
	path := []uint32{
		bip32.FirstHardenedChild + 44,
		bip32.FirstHardenedChild + 60,
		bip32.FirstHardenedChild,
		0,
		0,
	}
	for _, idx := range path {
		if key, err = key.NewChildKey(idx); err != nil {
			return nil, janitorerr.Wrap(janitorerr.ErrInvalidKey, "derive child %d: %v", idx, err)
		}
	}
	out := make([]byte, len(key.Key))
	copy(out, key.Key)
	return out, nil
}

// hardened is the SLIP-10 hardened index offset.
const hardened uint32 = 0x80000000

// DeriveSolanaKey returns the ed25519 seed at m/44'/501'/0'/0', the path
// used by Phantom and the Solana CLI.
func DeriveSolanaKey(seed []byte) ([]byte, error) {
	if len(seed) < 16 {
		return nil, janitorerr.Wrap(janitorerr.ErrInvalidKey, "seed too short")
	}
	key, chainCode := slip10Ed25519(seed, []uint32{44, 501, 0, 0})
	Zero(chainCode)
	return key, nil
}

// slip10Ed25519 derives a SLIP-10 ed25519 key. ed25519 only has hardened
// children, so every index in path is hardened.
func slip10Ed25519(seed []byte, path []uint32) (key, chainCode []byte) {
	mac := hmac.New(sha512.New, []byte("ed25519 seed"))
	_, _ = mac.Write(seed)
	sum := mac.Sum(nil)

	for _, idx := range path {
		data := make([]byte, 0, 37)
		data = append(data, 0)
		data = append(data, sum[:32]...)
		data = binary.BigEndian.AppendUint32(data, idx+hardened)

		mac = hmac.New(sha512.New, sum[32:])
		_, _ = mac.Write(data)
		Zero(data)
		Zero(sum)
		sum = mac.Sum(nil)
	}

	key = make([]byte, ed25519.SeedSize)
	chainCode = make([]byte, 32)
	copy(key, sum[:32])
	copy(chainCode, sum[32:])
	Zero(sum)
	return key, chainCode
}
