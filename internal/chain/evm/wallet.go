package evm

import (
	"context"
	"errors"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mrz1836/janitor/internal/chain/jsonrpc"
	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

// Call is one contract call to submit.
type Call struct {
	To    common.Address
	Data  []byte
	Value *big.Int
}

// Wallet signs and submits transactions for a single account. Every
// SendTransaction or SendCalls is exactly one signature prompt.
type Wallet interface {
	Address() common.Address
	SendTransaction(ctx context.Context, call Call) (common.Hash, error)
	// SendCalls submits calls as one atomic batch and returns the batch id.
	// Wallets without batch support return ErrBatchUnsupported.
	SendCalls(ctx context.Context, calls []Call) (string, error)
}

// IsUserRejection reports whether err means the user declined to sign.
func IsUserRejection(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, janitorerr.ErrUserRejected) {
		return true
	}
	if code, ok := jsonrpc.ErrorCode(err); ok && code == jsonrpc.CodeUserRejected {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "user rejected") || strings.Contains(msg, "user denied")
}
