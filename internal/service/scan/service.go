// Package scan aggregates token holdings for an owner on Base or Solana.
//
// Base holdings come from a paginated indexer, direct balanceOf reads of a
// fixed priority list, and user imports. Solana holdings come from the
// owner's parsed token accounts. Service guards overlapping scans so that
// a slow, older scan never replaces a newer result.
package scan

import (
	"context"
	"sync"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/holding"
	"github.com/mrz1836/janitor/internal/metrics"
	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

// ErrSuperseded is returned when a newer scan of the same owner started
// before this one finished. The newer result wins.
var ErrSuperseded = &janitorerr.JanitorError{
	Code:     "SCAN_SUPERSEDED",
	Message:  "scan was superseded by a newer scan",
	ExitCode: janitorerr.ExitGeneral,
}

// Service runs guarded scans across chains.
type Service struct {
	scanners map[chain.ID]Scanner
	logger   LogWriter

	mu   sync.Mutex
	gens map[string]*Generations
}

// NewService creates a service over the given per-chain scanners.
func NewService(scanners map[chain.ID]Scanner, logger LogWriter) *Service {
	return &Service{
		scanners: scanners,
		logger:   logger,
		gens:     make(map[string]*Generations),
	}
}

// Scan runs a scan and publishes it unless a newer scan of the same owner
// began meanwhile, in which case ErrSuperseded is returned.
func (s *Service) Scan(ctx context.Context, chainID chain.ID, owner string) (*Result, error) {
	scanner, ok := s.scanners[chainID]
	if !ok {
		return nil, janitorerr.WithDetails(chain.ErrUnsupportedChain, map[string]string{"chain": chainID.String()})
	}

	g := s.generations(chainID, owner)
	gen := g.Begin()

	result, err := scanner.Scan(ctx, owner)
	if err != nil {
		metrics.Global.RecordScan(chainID.String(), metrics.ScanFailed)
		return nil, err
	}

	if !g.Publish(gen, result) {
		s.logger.Debug("scan: discarding stale generation %d for %s (current %d)", gen, owner, g.Current())
		metrics.Global.RecordScan(chainID.String(), metrics.ScanStale)
		return nil, ErrSuperseded
	}
	metrics.Global.RecordScan(chainID.String(), metrics.ScanPublished)
	s.logger.Debug("scan %s: %d holdings for %s on %s", result.ID, len(result.Holdings), result.Owner, chainID)
	return result, nil
}

// Latest returns the last published scan of owner, if any.
func (s *Service) Latest(chainID chain.ID, owner string) (*Result, bool) {
	r := s.generations(chainID, owner).Latest()
	return r, r != nil
}

func (s *Service) generations(chainID chain.ID, owner string) *Generations {
	key := chainID.String() + ":" + holding.Key(chainID, owner)
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.gens[key]
	if !ok {
		g = &Generations{}
		s.gens[key] = g
	}
	return g
}
