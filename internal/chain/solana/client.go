package solana

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/mr-tron/base58"

	"github.com/mrz1836/janitor/internal/chain/jsonrpc"
	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

// DefaultCommitment is used when none is configured.
const DefaultCommitment = "confirmed"

// metadataBatchSize bounds getAccountInfo calls per HTTP request.
const metadataBatchSize = 100

// ErrRPCURLRequired indicates the RPC URL was not provided.
var ErrRPCURLRequired = &janitorerr.JanitorError{
	Code:     "SOLANA_RPC_URL_REQUIRED",
	Message:  "Solana RPC URL is required",
	ExitCode: janitorerr.ExitInput,
}

// Client talks to a Solana JSON-RPC node.
type Client struct {
	rpc        *jsonrpc.Client
	commitment string
}

// NewClient creates a client for rpcURL.
func NewClient(rpcURL, commitment string, opts ...jsonrpc.Option) (*Client, error) {
	if rpcURL == "" {
		return nil, ErrRPCURLRequired
	}
	if commitment == "" {
		commitment = DefaultCommitment
	}
	opts = append([]jsonrpc.Option{jsonrpc.WithProvider("solana-rpc")}, opts...)
	return &Client{rpc: jsonrpc.New(rpcURL, opts...), commitment: commitment}, nil
}

// TokenAccount is one parsed SPL token account.
type TokenAccount struct {
	Address         PublicKey
	Mint            PublicKey
	Owner           PublicKey
	Amount          uint64
	Decimals        uint8
	UIAmount        string
	Delegate        *PublicKey
	DelegatedAmount uint64
	Lamports        uint64
	Frozen          bool
}

type tokenAmount struct {
	Amount         string `json:"amount"`
	Decimals       uint8  `json:"decimals"`
	UIAmountString string `json:"uiAmountString"`
}

type parsedTokenAccount struct {
	Pubkey  PublicKey `json:"pubkey"`
	Account struct {
		Lamports uint64 `json:"lamports"`
		Data     struct {
			Parsed struct {
				Info struct {
					Mint            PublicKey    `json:"mint"`
					Owner           PublicKey    `json:"owner"`
					State           string       `json:"state"`
					TokenAmount     tokenAmount  `json:"tokenAmount"`
					Delegate        *PublicKey   `json:"delegate"`
					DelegatedAmount *tokenAmount `json:"delegatedAmount"`
				} `json:"info"`
			} `json:"parsed"`
		} `json:"data"`
	} `json:"account"`
}

// TokenAccountsByOwner lists every SPL Token account of owner, including
// empty ones.
func (c *Client) TokenAccountsByOwner(ctx context.Context, owner PublicKey) ([]TokenAccount, error) {
	var resp struct {
		Value []parsedTokenAccount `json:"value"`
	}
	err := c.rpc.Call(ctx, &resp, "getParsedTokenAccountsByOwner",
		owner.String(),
		map[string]string{"programId": TokenProgramID.String()},
		map[string]string{"encoding": "jsonParsed", "commitment": c.commitment},
	)
	if err != nil {
		return nil, err
	}

	out := make([]TokenAccount, 0, len(resp.Value))
	for _, item := range resp.Value {
		info := item.Account.Data.Parsed.Info
		amount, err := strconv.ParseUint(info.TokenAmount.Amount, 10, 64)
		if err != nil {
			return nil, janitorerr.Wrap(jsonrpc.ErrInvalidResponse, "token amount %q for %s", info.TokenAmount.Amount, item.Pubkey)
		}
		acc := TokenAccount{
			Address:  item.Pubkey,
			Mint:     info.Mint,
			Owner:    info.Owner,
			Amount:   amount,
			Decimals: info.TokenAmount.Decimals,
			UIAmount: info.TokenAmount.UIAmountString,
			Lamports: item.Account.Lamports,
			Frozen:   info.State == "frozen",
		}
		if info.Delegate != nil && info.DelegatedAmount != nil {
			delegated, err := strconv.ParseUint(info.DelegatedAmount.Amount, 10, 64)
			if err == nil {
				acc.Delegate = info.Delegate
				acc.DelegatedAmount = delegated
			}
		}
		out = append(out, acc)
	}
	return out, nil
}

type accountInfo struct {
	Value *struct {
		Data     []string `json:"data"`
		Lamports uint64   `json:"lamports"`
	} `json:"value"`
}

func (a *accountInfo) decode() ([]byte, bool, error) {
	if a.Value == nil || len(a.Value.Data) == 0 {
		return nil, false, nil
	}
	data, err := base64.StdEncoding.DecodeString(a.Value.Data[0])
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// AccountData returns the raw data of an account; found is false when the
// account does not exist.
func (c *Client) AccountData(ctx context.Context, addr PublicKey) (data []byte, found bool, err error) {
	var resp accountInfo
	if err := c.rpc.Call(ctx, &resp, "getAccountInfo", addr.String(),
		map[string]string{"encoding": "base64", "commitment": c.commitment}); err != nil {
		return nil, false, err
	}
	return resp.decode()
}

// TokenSymbols resolves Metaplex symbols for mints. Mints without a
// metadata account or with an unreadable one are absent from the result.
func (c *Client) TokenSymbols(ctx context.Context, mints []PublicKey) map[PublicKey]string {
	out := make(map[PublicKey]string, len(mints))

	for start := 0; start < len(mints); start += metadataBatchSize {
		end := min(start+metadataBatchSize, len(mints))
		chunk := mints[start:end]

		resps := make([]accountInfo, len(chunk))
		elems := make([]jsonrpc.BatchElem, 0, len(chunk))
		idx := make([]int, 0, len(chunk))
		for i, mint := range chunk {
			pda, err := MetadataAddress(mint)
			if err != nil {
				continue
			}
			elems = append(elems, jsonrpc.BatchElem{
				Method: "getAccountInfo",
				Params: []any{pda.String(), map[string]string{"encoding": "base64", "commitment": c.commitment}},
				Result: &resps[i],
			})
			idx = append(idx, i)
		}
		if err := c.rpc.BatchCall(ctx, elems); err != nil {
			continue
		}
		for j, elem := range elems {
			if elem.Error != nil {
				continue
			}
			i := idx[j]
			data, found, err := resps[i].decode()
			if err != nil || !found {
				continue
			}
			meta, err := ParseMetadata(data)
			if err != nil || meta.Symbol == "" {
				continue
			}
			out[chunk[i]] = meta.Symbol
		}
	}
	return out
}

// LatestBlockhash returns a recent blockhash for a new transaction.
func (c *Client) LatestBlockhash(ctx context.Context) ([32]byte, error) {
	var resp struct {
		Value struct {
			Blockhash string `json:"blockhash"`
		} `json:"value"`
	}
	if err := c.rpc.Call(ctx, &resp, "getLatestBlockhash", map[string]string{"commitment": c.commitment}); err != nil {
		return [32]byte{}, err
	}
	raw, err := base58.Decode(resp.Value.Blockhash)
	if err != nil || len(raw) != 32 {
		return [32]byte{}, janitorerr.Wrap(jsonrpc.ErrInvalidResponse, "blockhash %q", resp.Value.Blockhash)
	}
	var hash [32]byte
	copy(hash[:], raw)
	return hash, nil
}

// SendTransaction submits a signed transaction and returns its signature.
// Confirmation is not awaited.
func (c *Client) SendTransaction(ctx context.Context, tx *Transaction) (string, error) {
	encoded, err := tx.Base64()
	if err != nil {
		return "", err
	}
	var sig string
	if err := c.rpc.Call(ctx, &sig, "sendTransaction", encoded, map[string]any{
		"encoding":            "base64",
		"preflightCommitment": c.commitment,
	}); err != nil {
		return "", janitorerr.Wrap(janitorerr.ErrTxRejected, "%v", err)
	}
	if sig == "" {
		return "", fmt.Errorf("sendTransaction returned no signature")
	}
	return sig, nil
}
