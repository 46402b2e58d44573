// Package report combines a scan result with the hidden-token filter,
// approvals and the classifier into what the CLI and HTTP API show.
package report

import (
	"context"
	"time"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/classify"
	"github.com/mrz1836/janitor/internal/hidden"
	"github.com/mrz1836/janitor/internal/holding"
	"github.com/mrz1836/janitor/internal/service/scan"
)

// LogWriter provides logging operations.
type LogWriter interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

// ApprovalLister lists active grants. Satisfied by *approval.Service.
type ApprovalLister interface {
	Approvals(ctx context.Context, chainID chain.ID, owner string, holdings []holding.TokenHolding) ([]holding.ApprovalGrant, error)
}

// Options selects what Build includes.
type Options struct {
	ShowHidden bool // include hidden tokens
	Approvals  bool // look up approvals so Risky reflects them
}

// Report is a classified view of one scan.
type Report struct {
	ScanID     string                  `json:"scan_id"`
	Chain      chain.ID                `json:"chain"`
	Owner      string                  `json:"owner"`
	Generation uint64                  `json:"generation"`
	ScannedAt  time.Time               `json:"scanned_at"`
	Holdings   []holding.TokenHolding  `json:"holdings"`
	Hidden     int                     `json:"hidden"`
	Buckets    classify.Set            `json:"buckets"`
	Approvals  []holding.ApprovalGrant `json:"approvals,omitempty"`
	Threshold  string                  `json:"dust_threshold"`
}

// Builder builds reports.
type Builder struct {
	threshold classify.Threshold
	hidden    map[chain.ID]hidden.Store
	approvals ApprovalLister
	logger    LogWriter
}

// NewBuilder creates a builder. approvals may be nil.
func NewBuilder(threshold classify.Threshold, stores map[chain.ID]hidden.Store, approvals ApprovalLister, logger LogWriter) *Builder {
	return &Builder{threshold: threshold, hidden: stores, approvals: approvals, logger: logger}
}

// Build classifies res. Approvals are looked up on the full holding list
// so a hidden token with a live approval still counts.
func (b *Builder) Build(ctx context.Context, res *scan.Result, opts Options) (*Report, error) {
	visible := res.Holdings
	hiddenCount := 0
	if !opts.ShowHidden {
		set := b.hiddenSet(res.Chain)
		visible = hidden.Filter(res.Holdings, set)
		hiddenCount = len(res.Holdings) - len(visible)
	}

	var grants []holding.ApprovalGrant
	if opts.Approvals && b.approvals != nil {
		var err error
		grants, err = b.approvals.Approvals(ctx, res.Chain, res.Owner, res.Holdings)
		if err != nil {
			return nil, err
		}
	}

	return &Report{
		ScanID:     res.ID,
		Chain:      res.Chain,
		Owner:      res.Owner,
		Generation: res.Generation,
		ScannedAt:  res.ScannedAt,
		Holdings:   visible,
		Hidden:     hiddenCount,
		Buckets:    classify.Split(visible, b.threshold, grants),
		Approvals:  grants,
		Threshold:  b.threshold.Units().String(),
	}, nil
}

func (b *Builder) hiddenSet(chainID chain.ID) hidden.Set {
	store, ok := b.hidden[chainID]
	if !ok {
		return nil
	}
	set, reset, err := hidden.Load(store)
	if err != nil {
		b.logger.Error("hidden tokens for %s: %v", chainID, err)
		return nil
	}
	if reset {
		b.logger.Error("hidden tokens for %s were unreadable and have been reset", chainID)
	}
	return set
}
