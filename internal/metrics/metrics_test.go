package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

func TestMetrics_RecordRPCCall(t *testing.T) {
	t.Parallel()
	m := &Metrics{}
	before := testutil.ToFloat64(RemoteCallsTotal.WithLabelValues("test-rpc-call", StatusError))

	m.RecordRPCCall("test-rpc-call", 100*time.Millisecond, nil)
	m.RecordRPCCall("test-rpc-call", 50*time.Millisecond, janitorerr.ErrNetworkError)

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.RPCCallsTotal)
	assert.Equal(t, int64(1), snap.RPCErrorsTotal)
	assert.InDelta(t, 75.0, m.RPCLatencyAvgMs(), 0.001)
	assert.InDelta(t, before+1, testutil.ToFloat64(RemoteCallsTotal.WithLabelValues("test-rpc-call", StatusError)), 0.001)
}

func TestMetrics_RecordScan(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordScan("test-chain-scan", ScanPublished)
	m.RecordScan("test-chain-scan", ScanStale)
	m.RecordScan("test-chain-scan", "bogus")

	snap := m.Snapshot()
	assert.Equal(t, int64(1), snap.ScansPublished)
	assert.Equal(t, int64(1), snap.ScansStale)
	assert.Equal(t, int64(1), snap.ScansFailed)
	assert.InDelta(t, 1.0, testutil.ToFloat64(ScansTotal.WithLabelValues("test-chain-scan", ScanFailed)), 0.001)
}

func TestMetrics_RecordTx(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordTx("test-chain-tx", "burn", nil)
	m.RecordTx("test-chain-tx", "burn", janitorerr.Wrap(janitorerr.ErrUserRejected, "batch"))
	m.RecordTx("test-chain-tx", "burn", janitorerr.ErrTxRejected)

	snap := m.Snapshot()
	assert.Equal(t, int64(1), snap.TxSubmitted)
	assert.Equal(t, int64(1), snap.TxRejected)
	assert.Equal(t, int64(1), snap.TxFailed)
	assert.InDelta(t, 1.0, testutil.ToFloat64(TransactionsTotal.WithLabelValues("test-chain-tx", "burn", StatusRejected)), 0.001)
}

func TestMetrics_RPCLatencyAvgMs_NoCalls(t *testing.T) {
	t.Parallel()
	m := &Metrics{}
	assert.InDelta(t, 0.0, m.RPCLatencyAvgMs(), 0.001)
}

func TestMetrics_Reset(t *testing.T) {
	t.Parallel()
	m := &Metrics{}
	m.RecordRPCCall("test-reset", time.Millisecond, nil)
	m.RecordTx("test-reset", "revoke", nil)
	m.Reset()
	assert.Equal(t, Snapshot{}, m.Snapshot())
}
