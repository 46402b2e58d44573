package evm

import (
	"context"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/janitor/internal/chain/jsonrpc"
	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

func signingNode(t *testing.T, sent chan<- *types.Transaction) *mockNode {
	t.Helper()
	return newMockNode(t, func(method string, params []json.RawMessage) (any, *jsonrpc.Error) {
		switch method {
		case "eth_estimateGas":
			return "0xc350", nil // 50000
		case "eth_maxPriorityFeePerGas":
			return "0x1", nil
		case "eth_getBlockByNumber":
			return map[string]any{"baseFeePerGas": "0xa"}, nil
		case "eth_getTransactionCount":
			return "0x7", nil
		case "eth_sendRawTransaction":
			var raw hexutil.Bytes
			require.NoError(t, json.Unmarshal(params[0], &raw))
			tx := new(types.Transaction)
			require.NoError(t, tx.UnmarshalBinary(raw))
			sent <- tx
			return tx.Hash().Hex(), nil
		}
		return nil, &jsonrpc.Error{Code: jsonrpc.CodeMethodNotFound, Message: method}
	})
}

func TestKeyWallet_SendTransaction(t *testing.T) {
	t.Parallel()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	sent := make(chan *types.Transaction, 1)
	node := signingNode(t, sent)
	client, err := NewClient(node.URL, 8453, noRetry())
	require.NoError(t, err)

	var prompts []string
	confirm := func(_ context.Context, summary string) (bool, error) {
		prompts = append(prompts, summary)
		return true, nil
	}
	w, err := NewKeyWallet(crypto.FromECDSA(key), client, confirm)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), w.Address())

	token := common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913")
	hash, err := w.SendTransaction(context.Background(), Call{
		To:   token,
		Data: PackTransfer(common.HexToAddress(DeadAddress), big.NewInt(5)),
	})
	require.NoError(t, err)

	tx := <-sent
	assert.Equal(t, tx.Hash(), hash)
	assert.Equal(t, uint64(7), tx.Nonce())
	assert.Equal(t, uint64(60000), tx.Gas())
	assert.Equal(t, int64(21), tx.GasFeeCap().Int64())
	assert.Equal(t, token, *tx.To())
	assert.Equal(t, int64(8453), tx.ChainId().Int64())

	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(8453)), tx)
	require.NoError(t, err)
	assert.Equal(t, w.Address(), sender)

	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "transfer")
}

func TestKeyWallet_Declined(t *testing.T) {
	t.Parallel()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	sent := make(chan *types.Transaction, 1)
	node := signingNode(t, sent)
	client, err := NewClient(node.URL, 8453, noRetry())
	require.NoError(t, err)

	decline := func(context.Context, string) (bool, error) { return false, nil }
	w, err := NewKeyWallet(crypto.FromECDSA(key), client, decline)
	require.NoError(t, err)

	_, err = w.SendTransaction(context.Background(), Call{To: common.HexToAddress("0x01")})
	require.Error(t, err)
	assert.True(t, IsUserRejection(err))
	assert.NotContains(t, node.methods(), "eth_sendRawTransaction")
	assert.NotContains(t, node.methods(), "eth_getTransactionCount")
}

func TestKeyWallet_EstimateFailure(t *testing.T) {
	t.Parallel()

	node := newMockNode(t, func(string, []json.RawMessage) (any, *jsonrpc.Error) {
		return nil, &jsonrpc.Error{Code: 3, Message: "execution reverted: transfer disabled"}
	})
	client, err := NewClient(node.URL, 8453, noRetry())
	require.NoError(t, err)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	w, err := NewKeyWallet(crypto.FromECDSA(key), client, nil)
	require.NoError(t, err)

	_, err = w.SendTransaction(context.Background(), Call{To: common.HexToAddress("0x01")})
	require.Error(t, err)
	assert.True(t, janitorerr.Is(err, janitorerr.ErrTxRejected))
	assert.False(t, IsUserRejection(err))
}

func TestKeyWallet_SendCallsUnsupported(t *testing.T) {
	t.Parallel()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	w, err := NewKeyWallet(crypto.FromECDSA(key), nil, nil)
	require.NoError(t, err)

	_, err = w.SendCalls(context.Background(), []Call{{}})
	require.ErrorIs(t, err, janitorerr.ErrBatchUnsupported)
}

func TestNewKeyWallet_InvalidKey(t *testing.T) {
	t.Parallel()
	_, err := NewKeyWallet([]byte{1, 2, 3}, nil, nil)
	require.Error(t, err)
	assert.True(t, janitorerr.Is(err, janitorerr.ErrInvalidKey))
}
