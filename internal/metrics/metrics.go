// Package metrics provides application-level metrics collection.
// Counters are kept both as in-process atomics (for CLI summaries) and as
// Prometheus collectors exposed by the serve command.
package metrics

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

// Outcome labels.
const (
	StatusOK        = "ok"
	StatusError     = "error"
	StatusRejected  = "rejected"
	ScanPublished   = "published"
	ScanStale       = "stale"
	ScanFailed      = "failed"
	namespace       = "janitor"
	subsystemRemote = "remote"
)

//nolint:gochecknoglobals // Prometheus collectors are registered once per process
var (
	// RemoteCallsTotal counts indexer and RPC calls by provider and status.
	RemoteCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemRemote,
			Name:      "calls_total",
			Help:      "Total number of indexer and RPC calls",
		},
		[]string{"provider", "status"},
	)

	// RemoteCallDuration tracks indexer and RPC call latency.
	RemoteCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemRemote,
			Name:      "call_duration_seconds",
			Help:      "Indexer and RPC call duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	// ScansTotal counts scans by chain and outcome (published, stale, failed).
	ScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "Total number of wallet scans",
		},
		[]string{"chain", "outcome"},
	)

	// TransactionsTotal counts submitted actions by chain, action and status.
	TransactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Total number of cleanup transactions attempted",
		},
		[]string{"chain", "action", "status"},
	)
)

// Metrics holds application metrics using atomic counters for thread safety.
type Metrics struct {
	rpcCallsTotal   atomic.Int64
	rpcErrorsTotal  atomic.Int64
	rpcLatencyNanos atomic.Int64

	scansPublished atomic.Int64
	scansStale     atomic.Int64
	scansFailed    atomic.Int64

	txSubmitted atomic.Int64
	txFailed    atomic.Int64
	txRejected  atomic.Int64
}

// Global is the global metrics instance.
//
//nolint:gochecknoglobals // Intentional global for metrics access
var Global = &Metrics{}

// RecordRPCCall records a remote call with its duration and success status.
func (m *Metrics) RecordRPCCall(provider string, duration time.Duration, err error) {
	m.rpcCallsTotal.Add(1)
	m.rpcLatencyNanos.Add(duration.Nanoseconds())

	status := StatusOK
	if err != nil {
		m.rpcErrorsTotal.Add(1)
		status = StatusError
	}

	RemoteCallsTotal.WithLabelValues(provider, status).Inc()
	RemoteCallDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordScan records the outcome of a scan cycle.
func (m *Metrics) RecordScan(chain, outcome string) {
	switch outcome {
	case ScanPublished:
		m.scansPublished.Add(1)
	case ScanStale:
		m.scansStale.Add(1)
	default:
		outcome = ScanFailed
		m.scansFailed.Add(1)
	}
	ScansTotal.WithLabelValues(chain, outcome).Inc()
}

// RecordTx records a transaction attempt. A user rejection is tracked
// separately from other failures.
func (m *Metrics) RecordTx(chain, action string, err error) {
	status := StatusOK
	switch {
	case err == nil:
		m.txSubmitted.Add(1)
	case errors.Is(err, janitorerr.ErrUserRejected):
		m.txRejected.Add(1)
		status = StatusRejected
	default:
		m.txFailed.Add(1)
		status = StatusError
	}
	TransactionsTotal.WithLabelValues(chain, action, status).Inc()
}

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	RPCCallsTotal   int64
	RPCErrorsTotal  int64
	RPCLatencyNanos int64
	ScansPublished  int64
	ScansStale      int64
	ScansFailed     int64
	TxSubmitted     int64
	TxFailed        int64
	TxRejected      int64
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		RPCCallsTotal:   m.rpcCallsTotal.Load(),
		RPCErrorsTotal:  m.rpcErrorsTotal.Load(),
		RPCLatencyNanos: m.rpcLatencyNanos.Load(),
		ScansPublished:  m.scansPublished.Load(),
		ScansStale:      m.scansStale.Load(),
		ScansFailed:     m.scansFailed.Load(),
		TxSubmitted:     m.txSubmitted.Load(),
		TxFailed:        m.txFailed.Load(),
		TxRejected:      m.txRejected.Load(),
	}
}

// RPCLatencyAvgMs returns the average remote call latency in milliseconds.
// Returns 0 if no calls have been made.
func (m *Metrics) RPCLatencyAvgMs() float64 {
	calls := m.rpcCallsTotal.Load()
	if calls == 0 {
		return 0
	}
	return float64(m.rpcLatencyNanos.Load()) / float64(calls) / 1e6
}

// Reset resets the in-process counters to zero. Prometheus collectors are
// cumulative and are not reset.
func (m *Metrics) Reset() {
	m.rpcCallsTotal.Store(0)
	m.rpcErrorsTotal.Store(0)
	m.rpcLatencyNanos.Store(0)
	m.scansPublished.Store(0)
	m.scansStale.Store(0)
	m.scansFailed.Store(0)
	m.txSubmitted.Store(0)
	m.txFailed.Store(0)
	m.txRejected.Store(0)
}
