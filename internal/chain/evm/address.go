// Package evm provides the Base (EVM) node client, ERC-20 call encoding and
// the two transaction signers: a local key and an external wallet.
package evm

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

// ZeroAddress stands for the chain's native token in holding lists.
//
//nolint:gochecknoglobals // immutable sentinel address
var ZeroAddress = common.Address{}

// IsValidAddress reports whether s is a 0x-prefixed 20-byte hex address.
// Checksums are not enforced.
func IsValidAddress(s string) bool {
	return len(s) == 42 && strings.HasPrefix(s, "0x") && common.IsHexAddress(s)
}

// ParseAddress validates s and returns it as an address.
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !IsValidAddress(s) {
		return common.Address{}, janitorerr.WithDetails(janitorerr.ErrInvalidAddress, map[string]string{
			"address": s,
		})
	}
	return common.HexToAddress(s), nil
}

// NormalizeAddress returns the EIP-55 checksummed form of s.
func NormalizeAddress(s string) (string, error) {
	addr, err := ParseAddress(s)
	if err != nil {
		return "", err
	}
	return addr.Hex(), nil
}

// SameAddress compares two hex addresses case-insensitively.
func SameAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// DeadAddress is the conventional burn sink. Tokens sent here are
// unrecoverable.
const DeadAddress = "0x000000000000000000000000000000000000dEaD"
