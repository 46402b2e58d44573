package evm

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/chain/jsonrpc"
)

type rpcReq struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type rpcHandler func(method string, params []json.RawMessage) (any, *jsonrpc.Error)

// mockNode is a JSON-RPC server answering single and batch requests.
type mockNode struct {
	*httptest.Server

	mu    sync.Mutex
	calls []string
}

func newMockNode(t *testing.T, handle rpcHandler) *mockNode {
	t.Helper()
	n := &mockNode{}
	n.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		answer := func(req rpcReq) map[string]any {
			n.mu.Lock()
			n.calls = append(n.calls, req.Method)
			n.mu.Unlock()

			result, rpcErr := handle(req.Method, req.Params)
			resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
			if rpcErr != nil {
				resp["error"] = rpcErr
			} else {
				resp["result"] = result
			}
			return resp
		}

		w.Header().Set("Content-Type", "application/json")
		if len(body) > 0 && body[0] == '[' {
			var reqs []rpcReq
			require.NoError(t, json.Unmarshal(body, &reqs))
			out := make([]map[string]any, 0, len(reqs))
			for _, req := range reqs {
				out = append(out, answer(req))
			}
			_ = json.NewEncoder(w).Encode(out)
			return
		}
		var req rpcReq
		require.NoError(t, json.Unmarshal(body, &req))
		_ = json.NewEncoder(w).Encode(answer(req))
	}))
	t.Cleanup(n.Close)
	return n
}

func (n *mockNode) methods() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.calls...)
}

func noRetry() jsonrpc.Option {
	return jsonrpc.WithRetry(chain.RetryConfig{MaxAttempts: 1})
}
