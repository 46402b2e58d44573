// Package solana provides the Solana pieces janitor needs: public keys and
// program derived addresses, SPL Token instructions, legacy transaction
// encoding and signing, and a JSON-RPC client.
package solana

import (
	"crypto/sha256"
	"encoding/json"
	"errors"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"

	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

// PublicKeySize is the length of a Solana address.
const PublicKeySize = 32

// maxSeedLength is the longest single seed a PDA accepts.
const maxSeedLength = 32

// Well-known program ids.
//
//nolint:gochecknoglobals // immutable program ids
var (
	TokenProgramID    = MustParsePublicKey("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	MetadataProgramID = MustParsePublicKey("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")
)

// ErrNoViableBump is returned when no bump seed yields an off-curve address.
var ErrNoViableBump = errors.New("unable to find a viable program address bump seed")

// PublicKey is a 32-byte ed25519 public key or program address.
type PublicKey [PublicKeySize]byte

// ParsePublicKey decodes a base58 address.
func ParsePublicKey(s string) (PublicKey, error) {
	var pk PublicKey
	b, err := base58.Decode(s)
	if err != nil || len(b) != PublicKeySize {
		return pk, janitorerr.WithDetails(janitorerr.ErrInvalidAddress, map[string]string{
			"address": s,
			"chain":   "solana",
		})
	}
	copy(pk[:], b)
	return pk, nil
}

// MustParsePublicKey is ParsePublicKey for constants.
func MustParsePublicKey(s string) PublicKey {
	pk, err := ParsePublicKey(s)
	if err != nil {
		panic(err)
	}
	return pk
}

// IsValidAddress reports whether s decodes to a 32-byte key.
func IsValidAddress(s string) bool {
	_, err := ParsePublicKey(s)
	return err == nil
}

// String returns the base58 form.
func (pk PublicKey) String() string {
	return base58.Encode(pk[:])
}

// Short returns the first four characters, used for unnamed tokens.
func (pk PublicKey) Short() string {
	s := pk.String()
	if len(s) <= 4 {
		return s
	}
	return s[:4]
}

// IsZero reports whether pk is all zeros.
func (pk PublicKey) IsZero() bool {
	return pk == PublicKey{}
}

// MarshalJSON encodes the key as a base58 string.
func (pk PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(pk.String())
}

// UnmarshalJSON decodes a base58 string.
func (pk *PublicKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePublicKey(s)
	if err != nil {
		return err
	}
	*pk = parsed
	return nil
}

// IsOnCurve reports whether b is a valid compressed ed25519 point.
func IsOnCurve(b []byte) bool {
	if len(b) != PublicKeySize {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

// CreateProgramAddress hashes seeds, programID and the PDA marker. The
// result must lie off the curve so no private key can sign for it.
func CreateProgramAddress(seeds [][]byte, programID PublicKey) (PublicKey, error) {
	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) > maxSeedLength {
			return PublicKey{}, errors.New("seed exceeds 32 bytes")
		}
		h.Write(seed)
	}
	h.Write(programID[:])
	h.Write([]byte("ProgramDerivedAddress"))

	var pk PublicKey
	copy(pk[:], h.Sum(nil))
	if IsOnCurve(pk[:]) {
		return PublicKey{}, errors.New("derived address is on the curve")
	}
	return pk, nil
}

// FindProgramAddress searches bump seeds from 255 down and returns the
// first off-curve address.
func FindProgramAddress(seeds [][]byte, programID PublicKey) (PublicKey, uint8, error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	for bump := 255; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}
		pk, err := CreateProgramAddress(withBump, programID)
		if err == nil {
			return pk, uint8(bump), nil
		}
	}
	return PublicKey{}, 0, ErrNoViableBump
}
