package scan

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/chain/evm"
	"github.com/mrz1836/janitor/internal/config"
	"github.com/mrz1836/janitor/internal/holding"
	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

// importedSymbol labels imports whose metadata has no symbol.
const importedSymbol = "IMP"

// Importer adds a token the indexer missed, by contract address.
type Importer struct {
	meta    MetadataSource
	reader  BaseReader
	overlay *Overlay
	logger  LogWriter
}

// NewImporter creates an importer writing into overlay.
func NewImporter(meta MetadataSource, reader BaseReader, overlay *Overlay, logger LogWriter) *Importer {
	return &Importer{meta: meta, reader: reader, overlay: overlay, logger: logger}
}

// Import validates token, reads its metadata and the owner's balance, and
// records it in the overlay. existing is the owner's current holdings;
// a token already listed there is rejected.
func (i *Importer) Import(ctx context.Context, owner, token string, existing []holding.TokenHolding) (holding.TokenHolding, error) {
	if err := config.Validator().Var(token, "required,eth_addr"); err != nil {
		return holding.TokenHolding{}, janitorerr.WithDetails(janitorerr.ErrInvalidAddress, map[string]string{"token": token})
	}
	ownerAddr, err := evm.ParseAddress(owner)
	if err != nil {
		return holding.TokenHolding{}, err
	}
	if _, dup := holding.Find(existing, chain.Base, token); dup {
		return holding.TokenHolding{}, janitorerr.WithDetails(janitorerr.ErrTokenExists, map[string]string{"token": token})
	}
	if _, dup := holding.Find(i.overlay.List(ownerAddr.Hex()), chain.Base, token); dup {
		return holding.TokenHolding{}, janitorerr.WithDetails(janitorerr.ErrTokenExists, map[string]string{"token": token})
	}

	meta, err := i.meta.TokenMetadata(ctx, token)
	if err != nil {
		i.logger.Error("import: metadata for %s: %v", token, err)
		return holding.TokenHolding{}, janitorerr.Wrap(err, "reading metadata for %s", token)
	}
	if meta.Symbol == "" {
		meta.Symbol = importedSymbol
	}
	if meta.Decimals == 0 {
		meta.Decimals = defaultDecimals
	}

	tokenAddr := common.HexToAddress(token)
	results := i.reader.TokenBalances(ctx, ownerAddr, []common.Address{tokenAddr})
	if len(results) != 1 || results[0].Err != nil {
		var cause error = janitorerr.ErrNetworkError
		if len(results) == 1 {
			cause = results[0].Err
		}
		return holding.TokenHolding{}, janitorerr.Wrap(cause, "reading balance of %s", token)
	}
	if results[0].Value == nil || results[0].Value.Sign() == 0 {
		return holding.TokenHolding{}, janitorerr.ErrZeroBalance
	}

	h := holding.New(chain.Base, tokenAddr.Hex(), meta.Symbol, meta.Decimals, results[0].Value, holding.SourceImported)
	h.Name = meta.Name
	h.IconURL = meta.IconURL
	i.overlay.Add(ownerAddr.Hex(), h)
	i.logger.Debug("import: added %s (%s) for %s", h.Symbol, h.Address, ownerAddr.Hex())
	return h, nil
}
