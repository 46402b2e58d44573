package evm

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/janitor/internal/chain/jsonrpc"
	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

const walletAccount = "0x9c84ed136b859b11f10f92133de0457a3e2c497f"

func TestProviderWallet_SendCalls(t *testing.T) {
	t.Parallel()

	var got sendCallsRequest
	node := newMockNode(t, func(method string, params []json.RawMessage) (any, *jsonrpc.Error) {
		switch method {
		case "eth_requestAccounts":
			return []string{walletAccount}, nil
		case "wallet_sendCalls":
			require.NoError(t, json.Unmarshal(params[0], &got))
			return map[string]string{"id": "0xbatch"}, nil
		}
		return nil, &jsonrpc.Error{Code: jsonrpc.CodeMethodNotFound, Message: method}
	})

	w, err := NewProviderWallet(context.Background(), node.URL, 8453)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(walletAccount), w.Address())

	dead := common.HexToAddress(DeadAddress)
	id, err := w.SendCalls(context.Background(), []Call{
		{To: common.HexToAddress("0x0a"), Data: PackTransfer(dead, big.NewInt(1))},
		{To: common.HexToAddress("0x0b"), Data: PackTransfer(dead, big.NewInt(2))},
	})
	require.NoError(t, err)
	assert.Equal(t, "0xbatch", id)

	assert.Equal(t, "2.0.0", got.Version)
	assert.True(t, got.AtomicRequired)
	assert.Equal(t, int64(8453), got.ChainID.ToInt().Int64())
	assert.Len(t, got.Calls, 2)
	assert.Zero(t, got.Calls[0].Value.ToInt().Sign())
}

func TestProviderWallet_SendCallsErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		rpcErr    *jsonrpc.Error
		wantErr   error
		rejection bool
	}{
		{"rejected", &jsonrpc.Error{Code: 4001, Message: "User rejected the request."}, janitorerr.ErrUserRejected, true},
		{"method not found", &jsonrpc.Error{Code: jsonrpc.CodeMethodNotFound, Message: "Method not found"}, janitorerr.ErrBatchUnsupported, false},
		{"unsupported method", &jsonrpc.Error{Code: jsonrpc.CodeUnsupportedMethod, Message: "unsupported"}, janitorerr.ErrBatchUnsupported, false},
		{"atomic unsupported", &jsonrpc.Error{Code: 5700, Message: "atomic not supported"}, janitorerr.ErrBatchUnsupported, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			node := newMockNode(t, func(method string, _ []json.RawMessage) (any, *jsonrpc.Error) {
				if method == "eth_requestAccounts" {
					return []string{walletAccount}, nil
				}
				return nil, tc.rpcErr
			})
			w, err := NewProviderWallet(context.Background(), node.URL, 8453)
			require.NoError(t, err)

			_, err = w.SendCalls(context.Background(), []Call{{To: common.HexToAddress("0x0a")}})
			require.Error(t, err)
			assert.True(t, janitorerr.Is(err, tc.wantErr))
			assert.Equal(t, tc.rejection, IsUserRejection(err))
		})
	}
}

func TestProviderWallet_SendTransaction(t *testing.T) {
	t.Parallel()

	var tx providerTx
	node := newMockNode(t, func(method string, params []json.RawMessage) (any, *jsonrpc.Error) {
		switch method {
		case "eth_requestAccounts":
			return []string{walletAccount}, nil
		case "eth_sendTransaction":
			require.NoError(t, json.Unmarshal(params[0], &tx))
			return "0xab" + strings.Repeat("0", 62), nil
		}
		return nil, &jsonrpc.Error{Code: jsonrpc.CodeMethodNotFound, Message: method}
	})
	w, err := NewProviderWallet(context.Background(), node.URL, 8453)
	require.NoError(t, err)

	spender := common.HexToAddress("0x1111111111111111111111111111111111111111")
	hash, err := w.SendTransaction(context.Background(), Call{
		To:   common.HexToAddress("0x0a"),
		Data: PackApprove(spender, nil),
	})
	require.NoError(t, err)
	assert.Equal(t, byte(0xab), hash[0])
	assert.Equal(t, common.HexToAddress(walletAccount), tx.From)
	assert.True(t, HasSelector(tx.Data, SigApprove))
	assert.Nil(t, tx.Value)
}

func TestNewProviderWallet_NoAccounts(t *testing.T) {
	t.Parallel()

	node := newMockNode(t, func(string, []json.RawMessage) (any, *jsonrpc.Error) {
		return []string{}, nil
	})
	_, err := NewProviderWallet(context.Background(), node.URL, 8453)
	require.Error(t, err)
	assert.True(t, janitorerr.Is(err, janitorerr.ErrAuthentication))
}

func TestParseBatchID(t *testing.T) {
	t.Parallel()

	id, err := parseBatchID(json.RawMessage(`"0xabc"`))
	require.NoError(t, err)
	assert.Equal(t, "0xabc", id)

	id, err = parseBatchID(json.RawMessage(`{"id":"0xdef"}`))
	require.NoError(t, err)
	assert.Equal(t, "0xdef", id)

	_, err = parseBatchID(json.RawMessage(`{}`))
	require.Error(t, err)
}

func TestIsUserRejection(t *testing.T) {
	t.Parallel()

	assert.True(t, IsUserRejection(janitorerr.ErrUserRejected))
	assert.True(t, IsUserRejection(&jsonrpc.Error{Code: 4001, Message: "x"}))
	assert.True(t, IsUserRejection(errors.New("MetaMask Tx Signature: User denied transaction signature.")))
	assert.False(t, IsUserRejection(assert.AnError))
	assert.False(t, IsUserRejection(nil))
	assert.False(t, IsUserRejection(janitorerr.ErrBatchUnsupported))
}
