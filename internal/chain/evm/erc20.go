package evm

import (
	"bytes"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

const erc20JSON = `[
 {"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
 {"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
 {"type":"function","name":"transfer","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
 {"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
 {"type":"function","name":"burn","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]}
]`

// ERC-20 function signatures.
const (
	SigBalanceOf = "balanceOf(address)"
	SigAllowance = "allowance(address,address)"
	SigTransfer  = "transfer(address,uint256)"
	SigApprove   = "approve(address,uint256)"
	SigBurn      = "burn(uint256)"
)

//nolint:gochecknoglobals // parsed once, read-only afterwards
var erc20ABI = mustParseABI(erc20JSON)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(fmt.Sprintf("invalid ERC-20 ABI: %v", err))
	}
	return parsed
}

// Selector returns the 4-byte function selector for a canonical signature.
func Selector(sig string) []byte {
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write([]byte(sig))
	return h.Sum(nil)[:4]
}

// HasSelector reports whether calldata starts with the selector of sig.
func HasSelector(data []byte, sig string) bool {
	return len(data) >= 4 && bytes.Equal(data[:4], Selector(sig))
}

// PackBalanceOf encodes balanceOf(owner).
func PackBalanceOf(owner common.Address) []byte {
	return mustPack("balanceOf", owner)
}

// PackAllowance encodes allowance(owner, spender).
func PackAllowance(owner, spender common.Address) []byte {
	return mustPack("allowance", owner, spender)
}

// PackTransfer encodes transfer(to, amount).
func PackTransfer(to common.Address, amount *big.Int) []byte {
	return mustPack("transfer", to, nonNil(amount))
}

// PackApprove encodes approve(spender, amount). Passing zero revokes.
func PackApprove(spender common.Address, amount *big.Int) []byte {
	return mustPack("approve", spender, nonNil(amount))
}

// PackBurn encodes the non-standard burn(amount) some tokens expose.
func PackBurn(amount *big.Int) []byte {
	return mustPack("burn", nonNil(amount))
}

// UnpackUint256 decodes a single uint256 return value. An empty return
// (call to an address without code) is reported as an error.
func UnpackUint256(data []byte) (*big.Int, error) {
	if len(data) < 32 {
		return nil, fmt.Errorf("short uint256 return: %d bytes", len(data))
	}
	return new(big.Int).SetBytes(data[:32]), nil
}

func mustPack(method string, args ...any) []byte {
	data, err := erc20ABI.Pack(method, args...)
	if err != nil {
		// Argument types are fixed by the typed wrappers above.
		panic(fmt.Sprintf("packing %s: %v", method, err))
	}
	return data
}

func nonNil(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
