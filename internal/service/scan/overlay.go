package scan

import (
	"sync"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/holding"
)

// Overlay holds user-imported tokens for the lifetime of the process.
// Imported tokens are merged into every later scan of the same owner.
type Overlay struct {
	mu     sync.RWMutex
	tokens map[string][]holding.TokenHolding
}

// NewOverlay returns an empty overlay.
func NewOverlay() *Overlay {
	return &Overlay{tokens: make(map[string][]holding.TokenHolding)}
}

// Add records an imported holding for owner.
func (o *Overlay) Add(owner string, h holding.TokenHolding) {
	o.mu.Lock()
	defer o.mu.Unlock()
	key := holding.Key(chain.Base, owner)
	o.tokens[key] = append(o.tokens[key], h)
}

// List returns the imported holdings of owner.
func (o *Overlay) List(owner string) []holding.TokenHolding {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]holding.TokenHolding(nil), o.tokens[holding.Key(chain.Base, owner)]...)
}
