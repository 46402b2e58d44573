package evm

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/mrz1836/janitor/internal/chain/jsonrpc"
	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

// BatchChunkSize bounds the number of eth_call elements per HTTP request.
const BatchChunkSize = 50

// ErrRPCURLRequired indicates the RPC URL was not provided.
var ErrRPCURLRequired = &janitorerr.JanitorError{
	Code:     "EVM_RPC_URL_REQUIRED",
	Message:  "Base RPC URL is required",
	ExitCode: janitorerr.ExitInput,
}

// Client reads chain state and submits raw transactions over JSON-RPC.
type Client struct {
	rpc     *jsonrpc.Client
	chainID *big.Int
	nonces  *NonceManager
}

// NewClient creates a client for rpcURL. The chain id is taken from
// configuration rather than queried, so signing never depends on the node.
func NewClient(rpcURL string, chainID int64, opts ...jsonrpc.Option) (*Client, error) {
	if rpcURL == "" {
		return nil, ErrRPCURLRequired
	}
	opts = append([]jsonrpc.Option{jsonrpc.WithProvider("base-rpc")}, opts...)
	return &Client{
		rpc:     jsonrpc.New(rpcURL, opts...),
		chainID: big.NewInt(chainID),
		nonces:  NewNonceManager(),
	}, nil
}

// ChainID returns the configured chain id.
func (c *Client) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// BalanceAt returns the native balance in wei at the latest block.
func (c *Client) BalanceAt(ctx context.Context, addr common.Address) (*big.Int, error) {
	var out hexutil.Big
	if err := c.rpc.Call(ctx, &out, "eth_getBalance", addr, "latest"); err != nil {
		return nil, err
	}
	return out.ToInt(), nil
}

// PendingNonceAt returns the next nonce to use for addr, accounting for
// transactions this process sent that the node may not show yet.
func (c *Client) PendingNonceAt(ctx context.Context, addr common.Address) (uint64, error) {
	var out hexutil.Uint64
	if err := c.rpc.Call(ctx, &out, "eth_getTransactionCount", addr, "pending"); err != nil {
		return 0, err
	}
	return c.nonces.Next(addr, uint64(out)), nil
}

type callArgs struct {
	From  *common.Address `json:"from,omitempty"`
	To    *common.Address `json:"to"`
	Data  hexutil.Bytes   `json:"data,omitempty"`
	Value *hexutil.Big    `json:"value,omitempty"`
}

func newCallArgs(from *common.Address, call Call) callArgs {
	to := call.To
	args := callArgs{From: from, To: &to, Data: call.Data}
	if call.Value != nil && call.Value.Sign() > 0 {
		args.Value = (*hexutil.Big)(call.Value)
	}
	return args
}

// CallContract executes a read-only call against the latest block.
func (c *Client) CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	var out hexutil.Bytes
	if err := c.rpc.Call(ctx, &out, "eth_call", newCallArgs(nil, Call{To: to, Data: data}), "latest"); err != nil {
		return nil, err
	}
	return out, nil
}

// EstimateGas asks the node for the gas a call from the given sender needs.
func (c *Client) EstimateGas(ctx context.Context, from common.Address, call Call) (uint64, error) {
	var out hexutil.Uint64
	if err := c.rpc.Call(ctx, &out, "eth_estimateGas", newCallArgs(&from, call)); err != nil {
		return 0, err
	}
	return uint64(out), nil
}

// SendRawTransaction submits a signed transaction and returns its hash.
// The hash is returned as soon as the node accepts it.
func (c *Client) SendRawTransaction(ctx context.Context, tx *types.Transaction) (common.Hash, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return common.Hash{}, janitorerr.Wrap(janitorerr.ErrInvalidTransaction, "encoding: %v", err)
	}
	var hash common.Hash
	if err := c.rpc.Call(ctx, &hash, "eth_sendRawTransaction", hexutil.Bytes(raw)); err != nil {
		return common.Hash{}, err
	}
	return hash, nil
}

// ResetNonce drops local nonce tracking for addr after a failed send.
func (c *Client) ResetNonce(addr common.Address) {
	c.nonces.Reset(addr)
}

// Uint256Result is the outcome of one element of a batched read. A failed
// element leaves Value nil and sets Err.
type Uint256Result struct {
	Value *big.Int
	Err   error
}

// AllowanceQuery identifies one (token, spender) pair to read.
type AllowanceQuery struct {
	Token   common.Address
	Spender common.Address
}

// TokenBalances reads balanceOf(owner) on every token. Results are index
// aligned with tokens and fail independently.
func (c *Client) TokenBalances(ctx context.Context, owner common.Address, tokens []common.Address) []Uint256Result {
	calls := make([]Call, len(tokens))
	for i, token := range tokens {
		calls[i] = Call{To: token, Data: PackBalanceOf(owner)}
	}
	return c.batchUint256(ctx, calls)
}

// Allowances reads allowance(owner, spender) for every query. Results are
// index aligned with queries and fail independently.
func (c *Client) Allowances(ctx context.Context, owner common.Address, queries []AllowanceQuery) []Uint256Result {
	calls := make([]Call, len(queries))
	for i, q := range queries {
		calls[i] = Call{To: q.Token, Data: PackAllowance(owner, q.Spender)}
	}
	return c.batchUint256(ctx, calls)
}

func (c *Client) batchUint256(ctx context.Context, calls []Call) []Uint256Result {
	results := make([]Uint256Result, len(calls))

	for start := 0; start < len(calls); start += BatchChunkSize {
		end := min(start+BatchChunkSize, len(calls))

		outs := make([]hexutil.Bytes, end-start)
		elems := make([]jsonrpc.BatchElem, end-start)
		for i := range elems {
			elems[i] = jsonrpc.BatchElem{
				Method: "eth_call",
				Params: []any{newCallArgs(nil, calls[start+i]), "latest"},
				Result: &outs[i],
			}
		}

		if err := c.rpc.BatchCall(ctx, elems); err != nil {
			for i := start; i < end; i++ {
				results[i].Err = err
			}
			continue
		}

		for i, elem := range elems {
			if elem.Error != nil {
				results[start+i].Err = elem.Error
				continue
			}
			results[start+i].Value, results[start+i].Err = UnpackUint256(outs[i])
		}
	}
	return results
}
