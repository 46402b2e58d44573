package cli

import (
	"path/filepath"
	"sync"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/chain/evm"
	"github.com/mrz1836/janitor/internal/chain/evm/blockscout"
	"github.com/mrz1836/janitor/internal/chain/evm/chainbase"
	"github.com/mrz1836/janitor/internal/chain/evm/zeroex"
	"github.com/mrz1836/janitor/internal/chain/jsonrpc"
	"github.com/mrz1836/janitor/internal/chain/rest"
	"github.com/mrz1836/janitor/internal/chain/solana"
	"github.com/mrz1836/janitor/internal/classify"
	"github.com/mrz1836/janitor/internal/config"
	"github.com/mrz1836/janitor/internal/hidden"
	"github.com/mrz1836/janitor/internal/holding"
	"github.com/mrz1836/janitor/internal/keystore"
	"github.com/mrz1836/janitor/internal/service/approval"
	"github.com/mrz1836/janitor/internal/service/report"
	"github.com/mrz1836/janitor/internal/service/scan"
	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

// keysDir is the keystore directory under the janitor home.
const keysDir = "keys"

// Factory builds chain clients and services from configuration. Clients
// are created once and shared, so every request of a command goes through
// the same rate limiter.
type Factory struct {
	cfg     *config.Config
	log     *config.Logger
	limiter *chain.RateLimiter

	mu         sync.Mutex
	base       *evm.Client
	sol        *solana.Client
	chainbase  *chainbase.Client
	blockscout *blockscout.Client
	overlay    *scan.Overlay
	scans      *scan.Service
	approvals  *approval.Service
}

// NewFactory creates a factory for cfg.
func NewFactory(c *config.Config, l *config.Logger) *Factory {
	if l == nil {
		l = config.NullLogger()
	}
	return &Factory{
		cfg:     c,
		log:     l,
		limiter: chain.DefaultRateLimiter(),
		overlay: scan.NewOverlay(),
	}
}

func (f *Factory) restOptions() *rest.Options {
	return &rest.Options{RateLimiter: f.limiter}
}

// BaseClient returns the Base JSON-RPC client.
func (f *Factory) BaseClient() (*evm.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.baseClient()
}

func (f *Factory) baseClient() (*evm.Client, error) {
	if f.base != nil {
		return f.base, nil
	}
	c, err := evm.NewClient(f.cfg.GetBaseRPC(), f.cfg.GetBaseChainID(), jsonrpc.WithRateLimiter(f.limiter))
	if err != nil {
		return nil, err
	}
	f.base = c
	return c, nil
}

// SolanaClient returns the Solana JSON-RPC client.
func (f *Factory) SolanaClient() (*solana.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.solanaClient()
}

func (f *Factory) solanaClient() (*solana.Client, error) {
	if f.sol != nil {
		return f.sol, nil
	}
	c, err := solana.NewClient(f.cfg.GetSolanaRPC(), f.cfg.GetSolanaCommitment(), jsonrpc.WithRateLimiter(f.limiter))
	if err != nil {
		return nil, err
	}
	f.sol = c
	return c, nil
}

func (f *Factory) chainbaseClient() (*chainbase.Client, error) {
	if f.chainbase != nil {
		return f.chainbase, nil
	}
	ix := f.cfg.Networks.Base.Chainbase
	c, err := chainbase.NewClient(ix.APIKey, ix.URL, f.cfg.GetBaseChainID(), f.restOptions())
	if err != nil {
		return nil, janitorerr.WithSuggestion(err,
			"set networks.base.chainbase.api_key or "+config.EnvChainbaseAPIKey)
	}
	f.chainbase = c
	return c, nil
}

func (f *Factory) blockscoutClient() *blockscout.Client {
	if f.blockscout == nil {
		ix := f.cfg.Networks.Base.Blockscout
		f.blockscout = blockscout.NewClient(ix.APIKey, ix.URL, f.restOptions())
	}
	return f.blockscout
}

// tokenSource picks the configured Base indexer. Chainbase without an API
// key falls back to Blockscout.
func (f *Factory) tokenSource() (scan.TokenSource, scan.NativeSource) {
	if f.cfg.GetScanProvider() == "chainbase" {
		cb, err := f.chainbaseClient()
		if err == nil {
			src := scan.NewChainbaseSource(cb)
			return src, src
		}
		f.log.Debug("cli: chainbase unavailable, using blockscout: %v", err)
	}
	return scan.NewBlockscoutSource(f.blockscoutClient()), nil
}

func (f *Factory) priorityTokens() []holding.PriorityToken {
	tokens := f.cfg.GetPriorityTokens()
	out := make([]holding.PriorityToken, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, holding.PriorityToken{Symbol: t.Symbol, Address: t.Address, Decimals: t.Decimals})
	}
	return out
}

// ScanService returns the scan service covering both chains.
func (f *Factory) ScanService() (*scan.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scans != nil {
		return f.scans, nil
	}

	baseClient, err := f.baseClient()
	if err != nil {
		return nil, err
	}
	solClient, err := f.solanaClient()
	if err != nil {
		return nil, err
	}

	tokens, native := f.tokenSource()
	baseScanner, err := scan.NewBaseScanner(&scan.BaseConfig{
		Tokens:   tokens,
		Native:   native,
		Reader:   baseClient,
		Priority: f.priorityTokens(),
		Overlay:  f.overlay,
		Logger:   f.log,
		Options: scan.Options{
			PageSize: f.cfg.Scan.PageSize,
			MaxPages: f.cfg.Scan.MaxPages,
		},
	})
	if err != nil {
		return nil, err
	}

	f.scans = scan.NewService(map[chain.ID]scan.Scanner{
		chain.Base:   baseScanner,
		chain.Solana: scan.NewSolanaScanner(solClient, f.log),
	}, f.log)
	return f.scans, nil
}

// Importer returns the Base token importer. Imports need token metadata,
// which only Chainbase serves.
func (f *Factory) Importer() (*scan.Importer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	baseClient, err := f.baseClient()
	if err != nil {
		return nil, err
	}
	cb, err := f.chainbaseClient()
	if err != nil {
		return nil, err
	}
	return scan.NewImporter(scan.NewChainbaseSource(cb), baseClient, f.overlay, f.log), nil
}

// ApprovalService returns the approval scanner.
func (f *Factory) ApprovalService() (*approval.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.approvals != nil {
		return f.approvals, nil
	}

	baseClient, err := f.baseClient()
	if err != nil {
		return nil, err
	}
	f.approvals = approval.NewService(&approval.Config{
		Candidates: approval.NewBlockscoutCandidates(f.blockscoutClient()),
		Reader:     baseClient,
		Priority:   f.priorityTokens(),
		Logger:     f.log,
	})
	return f.approvals, nil
}

// HiddenStore returns the file-backed hidden set of chainID.
func (f *Factory) HiddenStore(chainID chain.ID) hidden.Store {
	return hidden.NewFileStore(f.cfg.GetHome(), chainID)
}

// Reporter returns a report builder using the configured dust threshold.
func (f *Factory) Reporter() (*report.Builder, error) {
	approvals, err := f.ApprovalService()
	if err != nil {
		return nil, err
	}
	stores := make(map[chain.ID]hidden.Store, len(chain.AllChains()))
	for _, id := range chain.AllChains() {
		stores[id] = f.HiddenStore(id)
	}
	threshold := classify.NewThreshold(f.cfg.GetDustThreshold())
	return report.NewBuilder(threshold, stores, approvals, f.log), nil
}

// Quoter returns the 0x swap quote client.
func (f *Factory) Quoter() *zeroex.Client {
	s := f.cfg.Swap
	return zeroex.NewClient(s.APIKey, f.cfg.GetBaseChainID(), zeroex.Options{
		BaseURL:       s.URL,
		BuyToken:      s.BuyToken,
		FeeRecipient:  s.FeeRecipient,
		FeePercentage: s.FeePercentage,
		HTTP:          f.restOptions(),
	})
}

// Keystore returns the encrypted signer keystore.
func (f *Factory) Keystore() *keystore.Store {
	return keystore.NewStore(filepath.Join(f.cfg.GetHome(), keysDir))
}
