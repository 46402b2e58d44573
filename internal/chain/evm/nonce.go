package evm

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// NonceManager hands out nonces for back-to-back sends. The node's pending
// count lags behind transactions it has only just accepted, so the manager
// remembers one past the highest nonce it issued per sender.
type NonceManager struct {
	mu     sync.Mutex
	nonces map[common.Address]uint64
}

// NewNonceManager creates an empty NonceManager.
func NewNonceManager() *NonceManager {
	return &NonceManager{nonces: make(map[common.Address]uint64)}
}

// Next returns max(rpcNonce, local) and advances the local counter.
func (nm *NonceManager) Next(addr common.Address, rpcNonce uint64) uint64 {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	nonce := rpcNonce
	if local, ok := nm.nonces[addr]; ok && local > rpcNonce {
		nonce = local
	}
	nm.nonces[addr] = nonce + 1
	return nonce
}

// Reset forgets the local counter for addr.
func (nm *NonceManager) Reset(addr common.Address) {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	delete(nm.nonces, addr)
}
