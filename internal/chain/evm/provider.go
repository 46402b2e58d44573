package evm

import (
	"context"
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/chain/jsonrpc"
	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

// EIP-5792 error codes for wallets that cannot honor a batch.
const (
	codeUnsupportedNonOptionalCapability = 5700
	codeUnsupportedChain                 = 5710
)

// sendCallsVersion is the wallet_sendCalls request version.
const sendCallsVersion = "2.0.0"

// ProviderWallet forwards transactions to an external EIP-1193 wallet
// exposed over JSON-RPC. The wallet owns the key and the signing prompt.
type ProviderWallet struct {
	rpc     *jsonrpc.Client
	chainID *big.Int
	from    common.Address
}

// NewProviderWallet connects to the wallet at url and selects its first account.
func NewProviderWallet(ctx context.Context, url string, chainID int64, opts ...jsonrpc.Option) (*ProviderWallet, error) {
	// A wallet request is a user prompt; never repeat it.
	opts = append([]jsonrpc.Option{
		jsonrpc.WithProvider("wallet"),
		jsonrpc.WithRetry(chain.RetryConfig{MaxAttempts: 1}),
	}, opts...)
	w := &ProviderWallet{rpc: jsonrpc.New(url, opts...), chainID: big.NewInt(chainID)}

	var accounts []common.Address
	if err := w.rpc.Call(ctx, &accounts, "eth_requestAccounts"); err != nil {
		return nil, mapProviderError(err, false)
	}
	if len(accounts) == 0 {
		return nil, janitorerr.WithSuggestion(janitorerr.ErrAuthentication, "unlock the wallet and allow this connection")
	}
	w.from = accounts[0]
	return w, nil
}

// Address returns the connected account.
func (w *ProviderWallet) Address() common.Address {
	return w.from
}

type providerTx struct {
	From  common.Address `json:"from"`
	To    common.Address `json:"to"`
	Data  hexutil.Bytes  `json:"data,omitempty"`
	Value *hexutil.Big   `json:"value,omitempty"`
}

type providerCall struct {
	To    common.Address `json:"to"`
	Data  hexutil.Bytes  `json:"data,omitempty"`
	Value *hexutil.Big   `json:"value"`
}

type sendCallsRequest struct {
	Version        string         `json:"version"`
	ChainID        *hexutil.Big   `json:"chainId"`
	From           common.Address `json:"from"`
	AtomicRequired bool           `json:"atomicRequired"`
	Calls          []providerCall `json:"calls"`
}

// SendTransaction asks the wallet to sign and submit call via eth_sendTransaction.
func (w *ProviderWallet) SendTransaction(ctx context.Context, call Call) (common.Hash, error) {
	tx := providerTx{From: w.from, To: call.To, Data: call.Data}
	if call.Value != nil && call.Value.Sign() > 0 {
		tx.Value = (*hexutil.Big)(call.Value)
	}
	var hash common.Hash
	if err := w.rpc.Call(ctx, &hash, "eth_sendTransaction", tx); err != nil {
		return common.Hash{}, mapProviderError(err, false)
	}
	return hash, nil
}

// SendCalls submits calls atomically through wallet_sendCalls.
func (w *ProviderWallet) SendCalls(ctx context.Context, calls []Call) (string, error) {
	req := sendCallsRequest{
		Version:        sendCallsVersion,
		ChainID:        (*hexutil.Big)(w.chainID),
		From:           w.from,
		AtomicRequired: true,
		Calls:          make([]providerCall, len(calls)),
	}
	for i, c := range calls {
		value := c.Value
		if value == nil {
			value = new(big.Int)
		}
		req.Calls[i] = providerCall{To: c.To, Data: c.Data, Value: (*hexutil.Big)(value)}
	}

	var raw json.RawMessage
	if err := w.rpc.Call(ctx, &raw, "wallet_sendCalls", req); err != nil {
		return "", mapProviderError(err, true)
	}
	return parseBatchID(raw)
}

// parseBatchID accepts both the older string result and the {id} object.
func parseBatchID(raw json.RawMessage) (string, error) {
	var id string
	if err := json.Unmarshal(raw, &id); err == nil && id != "" {
		return id, nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.ID != "" {
		return obj.ID, nil
	}
	return "", janitorerr.Wrap(jsonrpc.ErrInvalidResponse, "wallet_sendCalls: no batch id in %s", string(raw))
}

func mapProviderError(err error, batch bool) error {
	if IsUserRejection(err) {
		return janitorerr.Wrap(janitorerr.ErrUserRejected, "%v", err)
	}
	code, ok := jsonrpc.ErrorCode(err)
	if !ok {
		return err
	}
	switch code {
	case jsonrpc.CodeMethodNotFound, jsonrpc.CodeUnsupportedMethod,
		codeUnsupportedNonOptionalCapability, codeUnsupportedChain:
		if batch {
			return janitorerr.Wrap(janitorerr.ErrBatchUnsupported, "%v", err)
		}
		return janitorerr.Wrap(janitorerr.ErrNotSupported, "%v", err)
	case jsonrpc.CodeUnauthorized:
		return janitorerr.Wrap(janitorerr.ErrAuthentication, "%v", err)
	}
	return err
}
