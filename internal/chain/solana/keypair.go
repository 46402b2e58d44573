package solana

import (
	"crypto/ed25519"
	"encoding/json"
	"strings"

	"github.com/mr-tron/base58"

	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

// ParsePrivateKey accepts the two common export formats: a base58 string of
// the 64-byte keypair, or a JSON array of 64 numbers as written by the
// Solana CLI. A bare 32-byte seed is also accepted.
func ParsePrivateKey(s string) (ed25519.PrivateKey, error) {
	s = strings.TrimSpace(s)

	var raw []byte
	if strings.HasPrefix(s, "[") {
		var nums []int
		if err := json.Unmarshal([]byte(s), &nums); err != nil {
			return nil, janitorerr.Wrap(janitorerr.ErrInvalidKey, "keypair JSON: %v", err)
		}
		raw = make([]byte, len(nums))
		for i, n := range nums {
			if n < 0 || n > 255 {
				return nil, janitorerr.Wrap(janitorerr.ErrInvalidKey, "keypair byte %d out of range", i)
			}
			raw[i] = byte(n)
		}
	} else {
		var err error
		raw, err = base58.Decode(s)
		if err != nil {
			return nil, janitorerr.Wrap(janitorerr.ErrInvalidKey, "base58: %v", err)
		}
	}
	return PrivateKeyFromBytes(raw)
}

// PrivateKeyFromBytes builds a key from a 32-byte seed or 64-byte keypair.
// A keypair whose public half does not match its seed is rejected.
func PrivateKeyFromBytes(raw []byte) (ed25519.PrivateKey, error) {
	switch len(raw) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(raw), nil
	case ed25519.PrivateKeySize:
		key := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
		if !key.Public().(ed25519.PublicKey).Equal(ed25519.PublicKey(raw[ed25519.SeedSize:])) {
			return nil, janitorerr.Wrap(janitorerr.ErrInvalidKey, "public key does not match seed")
		}
		return key, nil
	default:
		return nil, janitorerr.Wrap(janitorerr.ErrInvalidKey, "expected 32 or 64 bytes, got %d", len(raw))
	}
}

// PublicKeyOf returns the address of key.
func PublicKeyOf(key ed25519.PrivateKey) PublicKey {
	var pk PublicKey
	copy(pk[:], key.Public().(ed25519.PublicKey))
	return pk
}
