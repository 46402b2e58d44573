package zeroex

import (
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

const (
	taker = "0x1111111111111111111111111111111111111111"
	token = "0x2222222222222222222222222222222222222222"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("zx-key", 8453, Options{
		BaseURL:       srv.URL,
		FeeRecipient:  "0x9c84ed136b859b11f10f92133de0457a3e2c497f",
		FeePercentage: DefaultFeePercentage,
	})
}

func TestClient_Quote(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/swap/v1/quote", r.URL.Path)
		assert.Equal(t, "zx-key", r.Header.Get("0x-api-key"))
		assert.Equal(t, "8453", q.Get("chainId"))
		assert.Equal(t, token, q.Get("sellToken"))
		assert.Equal(t, "ETH", q.Get("buyToken"))
		assert.Equal(t, "5000", q.Get("sellAmount"))
		assert.Equal(t, taker, q.Get("takerAddress"))
		assert.Equal(t, "0x9c84ed136b859b11f10f92133de0457a3e2c497f", q.Get("feeRecipient"))
		assert.Equal(t, "0.01", q.Get("buyTokenPercentageFee"))
		_, _ = w.Write([]byte(`{"to":"0xdef1c0ded9bec7f1a1670819833240f027b25eff","data":"0xd9627aa4","value":"0"}`))
	})

	quote, err := c.Quote(context.Background(), token, taker, big.NewInt(5000))
	require.NoError(t, err)
	require.True(t, quote.Routable())

	to, data, value, err := quote.Call()
	require.NoError(t, err)
	assert.Equal(t, "0xDef1C0ded9bec7F1a1670819833240f027b25EfF", to.Hex())
	assert.Equal(t, []byte{0xd9, 0x62, 0x7a, 0xa4}, data)
	assert.Zero(t, value.Sign())
}

func TestClient_QuoteSkips(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		reason string
	}{
		{"reason in 400", http.StatusBadRequest, `{"code":100,"reason":"Validation Failed"}`, "Validation Failed"},
		{"reason in 200", http.StatusOK, `{"reason":"INSUFFICIENT_ASSET_LIQUIDITY"}`, "INSUFFICIENT_ASSET_LIQUIDITY"},
		{"missing to", http.StatusOK, `{"data":"0x"}`, "no quote found"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			quote, err := c.Quote(context.Background(), token, taker, big.NewInt(1))
			require.NoError(t, err)
			assert.False(t, quote.Routable())
			assert.Equal(t, tc.reason, quote.SkipReason())

			_, _, _, err = quote.Call()
			assert.True(t, janitorerr.Is(err, janitorerr.ErrNoRoute))
		})
	}
}

func TestClient_QuoteNotRetried(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	_, err := c.Quote(context.Background(), token, taker, big.NewInt(1))
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}
