package evm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

const (
	// gasBufferDivisor pads node estimates by 20%; token contracts with
	// hooks occasionally need more than the simulation reported.
	gasBufferDivisor = 5

	// baseFeeMultiplier lets a transaction survive base fee growth over a few blocks.
	baseFeeMultiplier = 2
)

// DefaultTipCap is used when the node does not implement eth_maxPriorityFeePerGas.
//
//nolint:gochecknoglobals // read-only default
var DefaultTipCap = big.NewInt(1_000_000) // 0.001 gwei

// Fees holds EIP-1559 fee caps in wei.
type Fees struct {
	TipCap *big.Int
	FeeCap *big.Int
}

// SuggestFees returns a tip from the node and a fee cap of 2*baseFee + tip.
func (c *Client) SuggestFees(ctx context.Context) (*Fees, error) {
	tip := new(big.Int).Set(DefaultTipCap)
	var suggested hexutil.Big
	if err := c.rpc.Call(ctx, &suggested, "eth_maxPriorityFeePerGas"); err == nil {
		tip = suggested.ToInt()
	}

	var head struct {
		BaseFee *hexutil.Big `json:"baseFeePerGas"`
	}
	if err := c.rpc.Call(ctx, &head, "eth_getBlockByNumber", "latest", false); err != nil {
		return nil, fmt.Errorf("getting latest block: %w", err)
	}
	if head.BaseFee == nil {
		return nil, fmt.Errorf("latest block has no base fee")
	}

	feeCap := new(big.Int).Mul(head.BaseFee.ToInt(), big.NewInt(baseFeeMultiplier))
	feeCap.Add(feeCap, tip)
	return &Fees{TipCap: tip, FeeCap: feeCap}, nil
}

// BufferGas pads a gas estimate by 20%.
func BufferGas(estimate uint64) uint64 {
	return estimate + estimate/gasBufferDivisor
}

// MaxCost returns gasLimit * feeCap, the most a transaction can spend on gas.
func (f *Fees) MaxCost(gasLimit uint64) *big.Int {
	return new(big.Int).Mul(f.FeeCap, new(big.Int).SetUint64(gasLimit))
}

// FormatGwei renders a wei amount in gwei with up to four decimals.
func FormatGwei(wei *big.Int) string {
	if wei == nil {
		return "0 gwei"
	}
	gwei := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(1e9))
	return gwei.Text('f', 4) + " gwei"
}
